package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var contactCSVHeader = []string{"id", "name", "email", "phone", "address", "favourite", "avatar_url"}

// jsonContact is a contact plus its resolved avatar.
type jsonContact struct {
	schema.Contact
	AvatarURL string `json:"avatar_url"`
}

// jsonPage is the JSON shape of one page.
type jsonPage struct {
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
	Pages int           `json:"pages"`
	Stale bool          `json:"stale"`
	Items []jsonContact `json:"items"`
}

// WritePageResults outputs a page, dispatching based on the output format configured.
func WritePageResults(page schema.PageResult, info PageInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePageJSON(w, page, info)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContactsCSV(w, page.Items)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePageTable(w, page, info, cfg)
		}, "Wrote table")
	}
	return nil
}

// WriteContactResult outputs one contact, dispatching based on the output format configured.
func WriteContactResult(c schema.Contact, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, jsonContact{Contact: c, AvatarURL: AvatarURL(c)})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContactsCSV(w, []schema.Contact{c})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeContactTable(w, c, cfg)
		}, "Wrote table")
	}
}

func writePageJSON(w io.Writer, page schema.PageResult, info PageInfo) error {
	out := jsonPage{
		Page:  info.Page,
		Limit: info.Limit,
		Total: page.Total,
		Pages: info.Pages(page.Total),
		Stale: info.Stale,
		Items: make([]jsonContact, 0, len(page.Items)),
	}
	for _, c := range page.Items {
		out.Items = append(out.Items, jsonContact{Contact: c, AvatarURL: AvatarURL(c)})
	}
	return writeJSON(w, out)
}

func writeContactsCSV(w io.Writer, cs []schema.Contact) error {
	return writeCSVWithHeader(w, contactCSVHeader, func(csvWriter *csv.Writer) error {
		for _, c := range cs {
			rec := []string{
				c.ID,
				c.Name,
				c.Email,
				c.Phone,
				c.Address,
				strconv.FormatBool(c.Favourite),
				AvatarURL(c),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writePageTable renders the page as a table with a summary line underneath.
func writePageTable(w io.Writer, page schema.PageResult, info PageInfo, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Name", "Email", "Phone", "Address", "Fav", "ID"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignLeft
	})

	width := maxCellWidth(cfg)
	offset := max(info.Page-1, 0) * info.Limit
	var data [][]string
	for i, c := range page.Items {
		data = append(data, []string{
			strconv.Itoa(offset + i + 1),
			contract.Truncate(c.Name, width),
			contract.Truncate(c.Email, width),
			c.Phone,
			contract.Truncate(c.Address, width),
			favouriteMarker(c.Favourite, cfg),
			c.ID,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	summary := fmt.Sprintf("Page %d of %d (%d contacts)", info.Page, max(info.Pages(page.Total), 1), page.Total)
	if cfg.UseColors {
		summary = contract.HeaderColor.Sprint(summary)
	}
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	if len(page.Items) == 0 && page.Total > 0 {
		if _, err := fmt.Fprintln(w, "No contacts on this page, try --page 1"); err != nil {
			return err
		}
	}
	if info.Stale {
		note := "Showing cached results, the store could not be reached"
		if cfg.UseColors {
			note = contract.StaleColor.Sprint(note)
		}
		if _, err := fmt.Fprintln(w, note); err != nil {
			return err
		}
	}
	return nil
}

// writeContactTable renders one contact as field/value rows.
func writeContactTable(w io.Writer, c schema.Contact, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	rows := [][]string{
		{"ID", c.ID},
		{"Name", c.Name},
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Address", c.Address},
		{"Favourite", favouriteMarker(c.Favourite, cfg)},
		{"Avatar", AvatarURL(c)},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func favouriteMarker(favourite bool, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorFavourite(favourite)
	}
	return contract.GetPlainFavourite(favourite)
}
