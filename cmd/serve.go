package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/contacts/internal/contactstore"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd runs a local contact store for development and demos.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local json-server style contact store",
	Long: `Serve an in-memory contact collection at /contacts with the same paging,
search and favourite filters the client relies on. Data lives only as long as
the process.

Settings come from the environment and may be overridden by flags:
  CONTACTS_STORE_HOST  - listen host (default localhost)
  CONTACTS_STORE_PORT  - listen port (default 3001)
  CONTACTS_STORE_SEED  - JSON file with initial contacts

Examples:
  # Serve an empty store on localhost:3001
  contacts serve

  # Serve seeded data on another port
  contacts serve --port 4000 --seed db.json`,
	Run: func(cmd *cobra.Command, _ []string) {
		storeCfg, err := contactstore.LoadConfig()
		if err != nil {
			contract.LogFatal("Failed to load store config", err)
		}
		if cmd.Flags().Changed("port") {
			storeCfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("seed") {
			storeCfg.Seed, _ = cmd.Flags().GetString("seed")
		}

		store, err := storeCfg.NewStore()
		if err != nil {
			contract.LogFatal("Failed to seed store", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := contactstore.NewServer(store, contract.NewLogger(viper.GetBool("verbose")).WithPrefix("store"), version)
		if err := srv.ListenAndServe(ctx, storeCfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			contract.LogFatal("Store stopped", err)
		}
	},
}
