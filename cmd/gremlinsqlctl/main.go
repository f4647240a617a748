// Command gremlinsqlctl compiles a host traversal-step pipeline into SQL
// without a running database, for host-framework integration testing.
// Grounded on cayley's cmd/cayleyimport (single cobra root, cmd.Execute())
// and cmd/cayley/command's viper-backed config wiring, simplified since
// gremlinsqlctl has no quadstore lifecycle of its own to manage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gremlinsql/compiler/clog"
	_ "github.com/gremlinsql/compiler/clog/glog"
	"github.com/gremlinsql/compiler/cmd/gremlinsqlctl/command"
)

func main() {
	root := &cobra.Command{
		Use:   "gremlinsqlctl",
		Short: "Compile host traversal pipelines into SQL without a database.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			clog.SetV(viper.GetInt(command.KeyVerbosity))
		},
	}

	cfgFile := root.PersistentFlags().String("config", "", "path to a gremlinsqlctl config file")
	command.RegisterConfigFlags(root)

	cobra.OnInitialize(func() {
		viper.SetEnvPrefix("GREMLINSQLCTL")
		viper.AutomaticEnv()
		if *cfgFile != "" {
			viper.SetConfigFile(*cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				clog.Warningf("could not read config file %q: %v", *cfgFile, err)
			}
		}
	})

	root.AddCommand(command.NewCompileCmd())
	root.AddCommand(command.NewServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
