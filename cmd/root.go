package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "syllabus",
	Short:         "Learning-path planner",
	Long:          "Syllabus finds the cheapest sequence of learning units that takes a learner from what they know to a goal set of skills.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default .syllabus.yaml)")
	pf.String("catalog", "", "catalog file (.toml, .yaml)")
	pf.String("db", "", "SQLite catalog store; used instead of --catalog when set")
	pf.String("log-mode", "", "log mode: dev, quiet, prod")
	pf.String("telemetry", "", "append JSONL planning events to this file")

	bindFlag("catalog", pf.Lookup("catalog"))
	bindFlag("db", pf.Lookup("db"))
	bindFlag("log_mode", pf.Lookup("log-mode"))
	bindFlag("telemetry_path", pf.Lookup("telemetry"))
}

// flagBindings map config keys to flags. They are applied by initConfig
// on every execution, after any viper.Reset.
var flagBindings = map[string]*pflag.Flag{}

// bindFlag registers f as the flag source of a config key.
func bindFlag(key string, f *pflag.Flag) {
	flagBindings[key] = f
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".syllabus")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	for key, f := range flagBindings {
		_ = viper.BindPFlag(key, f)
	}

	viper.SetEnvPrefix("SYLLABUS")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
