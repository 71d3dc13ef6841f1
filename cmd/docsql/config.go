package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/docsql/internal/cli"
)

var (
	configShowSource bool
	configShowReveal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect docsql configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration docsql runs with: built-in defaults, overlaid by
the config file, overlaid by DOCSQL_* environment variables.

Database passwords are masked unless --reveal is given.`,
	Example: `  docsql config show
  docsql config show --source
  DOCSQL_BASE_URL=https://api.example.com/ docsql config show`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if configShowSource {
			fmt.Fprintf(out, "Config file: %s\n\n", describeConfigPath())
		}

		shown := *cfg
		if !configShowReveal {
			shown.Database = redactDatabase(shown.Database)
		}
		data, err := yaml.Marshal(shown)
		if err != nil {
			return cli.GeneralError("encoding configuration", err)
		}
		_, err = out.Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), describeConfigPath())
		return nil
	},
}

func describeConfigPath() string {
	if configPath == "" {
		return "(none, using defaults)"
	}
	return configPath
}

const redacted = "xxxxx"

// redactDatabase masks the password field and any password embedded in the
// connection URL.
func redactDatabase(db cli.DatabaseConfig) cli.DatabaseConfig {
	if db.Password != "" {
		db.Password = redacted
	}
	if db.URL != "" {
		if u, err := url.Parse(db.URL); err == nil {
			db.URL = u.Redacted()
		}
	}
	return db
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowSource, "source", false, "print the config file path first")
	configShowCmd.Flags().BoolVar(&configShowReveal, "reveal", false, "print database passwords in clear text")
	configCmd.AddCommand(configShowCmd, configPathCmd)
}
