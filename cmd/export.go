package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/parquet"
	"github.com/spf13/cobra"
)

// exportCmd writes every matching contact to a Parquet file.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export contacts to a Parquet file",
	Long: `Walk every page of the current listing and write the contacts to Parquet.

The --search and --favourites filters apply. Pages are read --limit contacts
at a time through the same cache as the list command.

Examples:
  # Export everything
  contacts export --output-file contacts.parquet

  # Export favourites only
  contacts export --favourites --output-file favourites.parquet`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		if cfg.OutputFile == "" {
			return errors.New("export requires --output-file")
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		cs, err := service.ListAll(rootCtx, cfg.Search, cfg.FavouritesOnly, cfg.Limit)
		if err != nil {
			contract.LogFatal("Failed to list contacts", err)
		}
		rows := parquet.ConvertContacts(cs, time.Now().UTC())
		if err := parquet.WriteContactsParquet(rows, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to write parquet file", err)
		}
		fmt.Printf("Wrote %d contacts to %s\n", len(rows), cfg.OutputFile)
	},
}
