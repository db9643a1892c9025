package cmd

import (
	"context"
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/huangsam/contacts/internal/contacts"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/iocache"
	"github.com/huangsam/contacts/internal/querycache"
	"github.com/huangsam/contacts/internal/restclient"
	"github.com/huangsam/contacts/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cacheManager owns the durable query store for this process.
var cacheManager *iocache.CacheStoreManager

// service is the data access layer shared by every command.
var service *contacts.Service

// logger is the diagnostic logger, quiet unless --verbose is set.
var logger = contract.NewLogger(false)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "contacts",
	Short:              "Browse and edit contacts kept on a REST contact store.",
	Long:               `Contacts lists, searches and edits the records of a json-server style contact store, caching reads so repeated views stay fast.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Set environment variable prefix
	viper.SetEnvPrefix("CONTACTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("base-url", contract.DefaultBaseURL)
	viper.SetDefault("page", 1)
	viper.SetDefault("limit", contract.DefaultPageSize)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("color", "yes")
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".contacts") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and wires the service.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	logger = contract.NewLogger(cfg.Verbose)

	// 4. Initialize persistence layer with validated config
	mgr, err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	cacheManager = mgr

	// 5. Wire the query cache and the data access layer
	service = newService(cfg, mgr, logger)
	return nil
}

// newService builds the data access layer for one session.
func newService(cfg *contract.Config, mgr contract.CacheManager, logger *charmlog.Logger) *contacts.Service {
	opts := []querycache.Option{querycache.WithLogger(logger.WithPrefix("cache"))}
	if store := mgr.GetQueryStore(); store != nil {
		opts = append(opts, querycache.WithStore(store))
	}
	client := restclient.New(cfg.BaseURL,
		restclient.WithTimeout(cfg.Timeout),
		restclient.WithUserAgent("contacts/"+version),
		restclient.WithLogger(logger.WithPrefix("http")),
	)
	return contacts.NewService(client, querycache.New(opts...), contacts.WithLogger(logger))
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Close releases the durable cache, if one was opened.
func Close() {
	if cacheManager != nil {
		cacheManager.CloseCaching()
	}
}
