// Package command implements gremlinsqlctl's cobra sub-commands. Grounded
// on cayley's cmd/cayley/command package: the same config-key-constant +
// viper-lookup shape as its database command's KeyBackend/KeyAddress/
// KeyOptions, narrowed from "which quadstore backend to open" to "which SQL
// dialect, join limits, and topology catalog to compile against" — this
// compiler has no backing database of its own to load or dump.
package command

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config keys, bound to persistent flags on the root command by
// RegisterConfigFlags and read back via viper anywhere a sub-command needs
// them, mirroring cayley's store.* key namespace.
const (
	KeyGraphID            = "compile.graph_id"
	KeyDialect            = "compile.dialect"
	KeyMaxJoinsPerStmt    = "compile.max_joins_per_statement"
	KeyTempTableThreshold = "compile.temp_table_threshold"
	KeyIgnoreLabelOpt     = "compile.ignore_label_optimization"
	KeyCatalogFile        = "compile.catalog_file"
	KeyVerbosity          = "log.verbosity"
)

// RegisterConfigFlags attaches the persistent flags every sub-command reads
// through viper, and binds each to its config key.
func RegisterConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("graph", "", "graph id the pipeline's source step must match")
	flags.String("dialect", "postgres", `SQL dialect to target ("postgres", "mysql", "sqlite", "cockroach")`)
	flags.Int("max-joins", 0, "override the dialect's MaxJoinsPerSelect (0 = use dialect default)")
	flags.Int("temp-table-threshold", 100, "IN-list size at or above which membership predicates materialize a scratch table (0 disables)")
	flags.Bool("ignore-label-optimization", false, "ignore declared step labels during topology resolution and try every vertex label the catalog lists")
	flags.String("catalog", "", "path to a JSON topology catalog fixture")
	flags.IntP("v", "v", 0, "clog verbosity level")

	_ = viper.BindPFlag(KeyGraphID, flags.Lookup("graph"))
	_ = viper.BindPFlag(KeyDialect, flags.Lookup("dialect"))
	_ = viper.BindPFlag(KeyMaxJoinsPerStmt, flags.Lookup("max-joins"))
	_ = viper.BindPFlag(KeyTempTableThreshold, flags.Lookup("temp-table-threshold"))
	_ = viper.BindPFlag(KeyIgnoreLabelOpt, flags.Lookup("ignore-label-optimization"))
	_ = viper.BindPFlag(KeyCatalogFile, flags.Lookup("catalog"))
	_ = viper.BindPFlag(KeyVerbosity, flags.Lookup("v"))
}
