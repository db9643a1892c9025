package iocache

import (
	"fmt"
	"io"

	"github.com/huangsam/contacts/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintCacheStatus writes one "Label: value" line per known fact about the durable tier.
// A disconnected store only reports its backend.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	rows := [][2]string{
		{"Cache Backend", status.Backend},
		{"Connected", fmt.Sprint(status.Connected)},
	}
	if status.Connected {
		rows = append(rows, [2]string{"Total Entries", fmt.Sprint(status.TotalEntries)})
		if status.TotalEntries > 0 {
			rows = append(rows,
				[2]string{"Last Entry", status.LastEntryTime.Format(statusTimeLayout)},
				[2]string{"Oldest Entry", status.OldestEntryTime.Format(statusTimeLayout)},
				[2]string{"Entry Span", status.Span().String()},
			)
		}
		rows = append(rows, [2]string{"Table Size", fmt.Sprintf("%d bytes", status.TableSizeBytes)})
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s: %s\n", row[0], row[1])
	}
}
