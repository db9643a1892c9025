// Package parquet exports contacts to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/contacts/schema"
	"github.com/parquet-go/parquet-go"
)

// ContactRow is one exported contact.
type ContactRow struct {
	// ID is the store-assigned identifier
	ID string `parquet:"id,snappy"`

	Name    string `parquet:"name,snappy"`
	Email   string `parquet:"email,snappy"`
	Phone   string `parquet:"phone,snappy"`
	Address string `parquet:"address,snappy"`

	Favourite bool `parquet:"favourite"`

	// Avatar is the contact's own image URL (nullable)
	Avatar *string `parquet:"avatar,optional,snappy"`

	// ExportedAt is when the export ran (stored as TIMESTAMP with nanosecond precision)
	ExportedAt time.Time `parquet:"exported_at,snappy"`
}

// ConvertContacts converts contacts to rows stamped with exportedAt.
func ConvertContacts(cs []schema.Contact, exportedAt time.Time) []ContactRow {
	result := make([]ContactRow, len(cs))
	for i, c := range cs {
		result[i] = ContactRow{
			ID:         c.ID,
			Name:       c.Name,
			Email:      c.Email,
			Phone:      c.Phone,
			Address:    c.Address,
			Favourite:  c.Favourite,
			ExportedAt: exportedAt,
		}
		if c.Avatar != "" {
			avatar := c.Avatar
			result[i].Avatar = &avatar
		}
	}
	return result
}

// WriteContactsParquet writes rows to a Parquet file at outputPath.
func WriteContactsParquet(rows []ContactRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the ContactRow struct tags
	writer := parquet.NewGenericWriter[ContactRow](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}
