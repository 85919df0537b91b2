// Package cmd implements the concur-accruals CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/concur-accruals/internal/api/client"
	"github.com/donaldgifford/concur-accruals/internal/config"
	"github.com/donaldgifford/concur-accruals/pkg/logger"
)

const envPrefix = "CONCUR_ACCRUALS"

var rootCmd = &cobra.Command{
	Use:   "concur-accruals",
	Short: "Serve SAP Concur card and expense data for accruals",
	Long: "concur-accruals keeps a Concur OAuth session alive and exposes directory\n" +
		"users, expense reports and card transactions over a JSON API so finance\n" +
		"can compute month-end accruals.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		String("config", "", "config file (default: built-in defaults)")
	rootCmd.PersistentFlags().
		String("log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		String("output", "table", "output format for client commands (table, json)")
	rootCmd.PersistentFlags().
		String("server", "", "query a running server at this URL instead of working in-process")

	cobra.CheckErr(viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")))
	cobra.CheckErr(viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))
	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(secretsCmd())
	rootCmd.AddCommand(jobsCmd())
	rootCmd.AddCommand(quotaCmd())
	rootCmd.AddCommand(cardsCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the config file named by --config or
// CONCUR_ACCRUALS_CONFIG and builds the logger from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if lvl := viper.GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	return cfg, log, nil
}

// apiClient returns a client for the server named by --server or
// CONCUR_ACCRUALS_SERVER, or false when commands should run in-process.
func apiClient(opts ...client.Option) (*client.Client, bool) {
	server := strings.TrimSpace(viper.GetString("server"))
	if server == "" {
		return nil, false
	}
	return client.New(server, opts...), true
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
