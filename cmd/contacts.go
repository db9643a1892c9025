package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/outwriter"
	"github.com/huangsam/contacts/internal/selection"
	"github.com/huangsam/contacts/schema"
	"github.com/spf13/cobra"
)

// listCmd shows one page of contacts.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts one page at a time",
	Long: `Show one page of contacts from the store.

Results are cached per page, search text and favourites filter, so running the
same listing again is answered from the cache. Adding, editing or deleting a
contact marks every cached listing stale.

Examples:
  # First page
  contacts list

  # Third page of favourites matching "ada"
  contacts list --page 3 --favourites --search ada`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		browser := selection.NewBrowser(service, nil, cfg.Limit)
		browser.SetSearch(cfg.Search)
		browser.SetFavouritesOnly(cfg.FavouritesOnly)
		browser.SetPage(cfg.Page)

		view, err := browser.Load(rootCtx)
		if err != nil {
			if !view.HasData {
				contract.LogFatal("Failed to list contacts", err)
			}
			contract.LogWarn("Showing last known page", err)
		}
		info := outwriter.PageInfo{Page: browser.Page(), Limit: cfg.Limit, Stale: view.Err != nil}
		if err := outwriter.NewOutWriter().WritePage(view.Page, info, cfg); err != nil {
			contract.LogFatal("Failed to write contacts", err)
		}
	},
}

// getCmd shows one contact.
var getCmd = &cobra.Command{
	Use:     "get <id>",
	Short:   "Show a single contact",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		c, err := service.GetContact(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Failed to get contact", err)
		}
		writeContact(c)
	},
}

// addCmd creates a contact.
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a contact",
	Long: `Create a contact. Name, email, phone and address are required.

Examples:
  contacts add --name "Ada Lovelace" --email ada@example.com --phone 555-0101 --address London`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		fields := applyFieldFlags(cmd, schema.ContactFields{})
		c, err := service.CreateContact(rootCtx, fields)
		if err != nil {
			contract.LogFatal("Failed to create contact", err)
		}
		writeContact(c)
	},
}

// editCmd changes some fields of a contact.
var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a contact",
	Long: `Change fields of an existing contact. Fields without a flag keep their value.

Examples:
  contacts edit 3 --phone "+44 20 7946 0000"`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		current, err := service.GetContact(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Failed to get contact", err)
		}
		fields := applyFieldFlags(cmd, current.Fields())
		c, err := service.UpdateContact(rootCtx, current.ID, fields)
		if err != nil {
			contract.LogFatal("Failed to update contact", err)
		}
		writeContact(c)
	},
}

// deleteCmd removes a contact.
var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Delete a contact",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		err := service.DeleteContact(rootCtx, args[0])
		switch {
		case errors.Is(err, contract.ErrNotFound):
			fmt.Printf("Contact %s was already deleted.\n", args[0])
		case err != nil:
			contract.LogFatal("Failed to delete contact", err)
		default:
			fmt.Printf("Deleted contact %s.\n", args[0])
		}
	},
}

// favCmd toggles the favourite flag of a contact.
var favCmd = &cobra.Command{
	Use:     "fav <id>",
	Short:   "Toggle the favourite flag of a contact",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		current, err := service.GetContact(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Failed to get contact", err)
		}
		c, err := service.ToggleFavourite(rootCtx, current)
		if err != nil {
			contract.LogFatal("Failed to toggle favourite", err)
		}
		writeContact(c)
	},
}

// applyFieldFlags overlays the field flags the user set onto fields.
func applyFieldFlags(cmd *cobra.Command, fields schema.ContactFields) schema.ContactFields {
	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"name":    &fields.Name,
		"email":   &fields.Email,
		"phone":   &fields.Phone,
		"address": &fields.Address,
		"avatar":  &fields.Avatar,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	if flags.Changed("favourite") {
		fields.Favourite, _ = flags.GetBool("favourite")
	}
	return fields
}

func writeContact(c schema.Contact) {
	if err := outwriter.NewOutWriter().WriteContact(c, cfg); err != nil {
		contract.LogFatal("Failed to write contact", err)
	}
}
