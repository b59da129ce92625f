package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/eqlog/eqlog"
)

var force bool

// initCmd: eqlog init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initConfigurationFile(cfgFile, force)
		if err != nil {
			return fmt.Errorf("initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, overwrite bool) (string, error) {
	if configurationPath == "" {
		configurationPath = eqlog.DefaultConfigFile
	}
	if !overwrite {
		if _, err := os.Stat(configurationPath); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", configurationPath)
		}
	}
	return configurationPath, eqlog.WriteConfig(configurationPath, eqlog.DefaultConfig())
}
