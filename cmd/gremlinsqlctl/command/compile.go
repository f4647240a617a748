package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gremlinsql/compiler/clog"
	"github.com/gremlinsql/compiler/compiler"
	"github.com/gremlinsql/compiler/dialect"
	"github.com/gremlinsql/compiler/internal/config"
	"github.com/gremlinsql/compiler/sqlbuild"
)

const flagIn = "in"

// NewCompileCmd returns the `compile` sub-command: read a pipeline fixture,
// fold it, resolve it against a topology catalog fixture, and print the
// generated SQL. Grounded on cayley's database command shape (flag parsing,
// preamble logging via clog, RunE returning a wrapped error) narrowed from
// "load/dump a quadstore" to "compile and print SQL", since this CLI has no
// database of its own to operate on.
func NewCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a host step pipeline fixture into SQL statements.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString(flagIn)
			if in == "" {
				return fmt.Errorf("gremlinsqlctl: --%s is required", flagIn)
			}

			opts, err := optionsFromConfig()
			if err != nil {
				return err
			}

			steps, err := readSteps(in)
			if err != nil {
				return err
			}

			clog.Infof("compiling %d steps for graph %q against dialect %q", len(steps), opts.GraphID, opts.Build.Dialect.Name())
			plan, err := compiler.Compile(context.Background(), steps, opts)
			if err != nil {
				return err
			}

			printPlan(cmd, plan, opts.Build.Dialect)
			return nil
		},
	}
	cmd.Flags().StringP(flagIn, "i", "", `pipeline fixture to compile (".json", "-" for stdin)`)
	return cmd
}

// optionsFromConfig reads compiler.Options out of viper, as bound by
// RegisterConfigFlags. The compile.* keys are unmarshaled into a
// config.Config first, mirroring cayley's own config.Config-plus-flag-
// defaults layering in internal/config, so a config file, environment
// variables, and flags all resolve through the same field set.
func optionsFromConfig() (compiler.Options, error) {
	cfg := config.Default()
	if err := viper.UnmarshalKey("compile", &cfg); err != nil {
		return compiler.Options{}, fmt.Errorf("gremlinsqlctl: decode compile config: %w", err)
	}

	d, err := resolveDialect(cfg.Dialect)
	if err != nil {
		return compiler.Options{}, err
	}
	cat, err := loadCatalog(viper.GetString(KeyCatalogFile))
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		GraphID: viper.GetString(KeyGraphID),
		Catalog: cat,
		Build: sqlbuild.Options{
			Dialect:                 d,
			MaxJoinsPerStatement:    cfg.MaxJoinsPerStatement,
			TempTableThreshold:      cfg.TempTableThreshold,
			IgnoreLabelOptimization: cfg.IgnoreLabelOptimization,
		},
	}, nil
}

// printPlan renders every generated statement's SQL text and bound
// parameters to the command's stdout, noting when the plan required more
// than one statement (see sqlbuild.Result.IsForMultipleQueries).
func printPlan(cmd *cobra.Command, plan *compiler.Plan, d dialect.Dialect) {
	out := cmd.OutOrStdout()
	if plan.Result.IsForMultipleQueries {
		fmt.Fprintf(out, "-- plan split into %d statements\n", len(plan.Result.Statements))
	}
	for i, st := range plan.Result.Statements {
		b := sqlbuild.NewBuilder(d)
		fmt.Fprintf(out, "-- statement %d\n%s\n", i, st.Select.SQL(b))
		if len(st.Select.Params) > 0 {
			fmt.Fprintf(out, "-- params: %v\n", st.Select.Params)
		}
	}
}
