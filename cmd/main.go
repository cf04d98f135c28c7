package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/swifttrack/internal/app"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "swifttrack",
		Short: "Project tracking service with kanban boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			serve(configPath)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (.env, .yaml, .json or .toml); the environment is used when empty")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			serve(configPath)
			return nil
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate(configPath)
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bootstrap(configPath string) {
	app.InitDefaultLogger()
	app.MustReadConfig(configPath)
	app.MustInitApplicationLogger()
}

func serve(configPath string) {
	bootstrap(configPath)

	app.MustConnectPostgres()
	defer app.DisconnectPostgres()

	app.MustListenAndServeHTTP()
}

func migrate(configPath string) {
	bootstrap(configPath)

	app.MustConnectPostgres()
	defer app.DisconnectPostgres()

	app.MustMigratePostgres()
}
