// Package contract provides interfaces and shared utilities for the contacts CLI's internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/contacts/schema"
)

// ContactStore defines the operations of the remote contact store.
// This allows the data access layer to be tested without a running server.
type ContactStore interface {
	// List returns one page of contacts matching the params, along with the
	// total number of matches across all pages.
	List(ctx context.Context, params schema.ListParams) (schema.PageResult, error)

	// Get returns a single contact, or ErrNotFound.
	Get(ctx context.Context, id string) (schema.Contact, error)

	// Create stores a new contact and returns it with its assigned id.
	Create(ctx context.Context, fields schema.ContactFields) (schema.Contact, error)

	// Update replaces every field of an existing contact, or returns ErrNotFound.
	Update(ctx context.Context, id string, fields schema.ContactFields) (schema.Contact, error)

	// Delete removes a contact, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetQueryStore() CacheStore
}

// CacheStore defines the interface for durable cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}
