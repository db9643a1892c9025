// Package cmd defines the command-line interface for contacts.
package cmd

import (
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(favCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("base-url", contract.DefaultBaseURL, "Base URL of the contacts collection")
	rootCmd.PersistentFlags().String("timeout", "", "Per-request timeout such as 5s (empty = no client timeout)")
	rootCmd.PersistentFlags().Int("page", 1, "Page to show, starting at 1")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultPageSize, "Contacts per page")
	rootCmd.PersistentFlags().StringP("search", "s", "", "Only show contacts matching this text")
	rootCmd.PersistentFlags().Bool("favourites", false, "Only show favourite contacts")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored markers in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log cache and HTTP activity to stderr")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Field flags for add and edit are read straight from the command
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().String("name", "", "Full name")
		c.Flags().String("email", "", "Email address")
		c.Flags().String("phone", "", "Phone number")
		c.Flags().String("address", "", "Postal address")
		c.Flags().Bool("favourite", false, "Mark as favourite")
		c.Flags().String("avatar", "", "Image URL")
	}

	serveCmd.Flags().Int("port", 0, "Port to listen on (default from CONTACTS_STORE_PORT or 3001)")
	serveCmd.Flags().String("seed", "", "JSON file with initial contacts (default from CONTACTS_STORE_SEED)")

	// Bind all flags of cachePruneCmd to Viper
	cachePruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Remove results written longer ago than this")
	if err := viper.BindPFlags(cachePruneCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache prune flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
