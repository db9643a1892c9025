// Package outwriter renders contacts as text tables, JSON or CSV.
package outwriter

import (
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// PageInfo describes where a page sits in its listing.
type PageInfo struct {
	Page  int
	Limit int
	Stale bool // served from a stale or failed refresh
}

// Pages returns how many pages total spans at this page size.
func (p PageInfo) Pages(total int) int {
	if p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WritePage prints one page of contacts using the configured output format.
func (ow *OutWriter) WritePage(page schema.PageResult, info PageInfo, cfg *contract.Config) error {
	return WritePageResults(page, info, cfg)
}

// WriteContact prints a single contact using the configured output format.
func (ow *OutWriter) WriteContact(c schema.Contact, cfg *contract.Config) error {
	return WriteContactResult(c, cfg)
}
