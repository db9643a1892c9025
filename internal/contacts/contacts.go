// Package contacts is the data access layer between callers and the remote contact store.
//
// Reads go through the query cache under keys derived from their inputs.
// Successful mutations mark every cached list stale so the next read refetches.
package contacts

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/querycache"
	"github.com/huangsam/contacts/schema"
)

// Service exposes the contact operations used by every front end.
type Service struct {
	store  contract.ContactStore
	cache  *querycache.Cache
	logger *charmlog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *charmlog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires a store and a cache together. A nil cache gets a fresh one.
func NewService(store contract.ContactStore, cache *querycache.Cache, opts ...Option) *Service {
	if cache == nil {
		cache = querycache.New()
	}
	s := &Service{
		store:  store,
		cache:  cache,
		logger: contract.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the query cache behind the service.
func (s *Service) Cache() *querycache.Cache {
	return s.cache
}

// ListContacts returns one page of contacts and the total number of matches.
func (s *Service) ListContacts(ctx context.Context, params schema.ListParams) (schema.PageResult, error) {
	entry, err := s.ListEntry(ctx, params)
	if err != nil {
		return schema.PageResult{}, err
	}
	return entry.Data, nil
}

// ListEntry is ListContacts for callers that want the cache entry itself.
// On a failed fetch the entry still carries the last good page, if any.
func (s *Service) ListEntry(ctx context.Context, params schema.ListParams) (querycache.Entry[schema.PageResult], error) {
	key := schema.ListKey(params)
	if err := contract.ValidateListParams(params); err != nil {
		return querycache.Entry[schema.PageResult]{Key: key}, err
	}
	entry, err := querycache.Read(ctx, s.cache, key, func(ctx context.Context) (schema.PageResult, error) {
		page, err := s.store.List(ctx, params)
		if err != nil {
			return schema.PageResult{}, fmt.Errorf("list contacts: %w", err)
		}
		return page, nil
	})
	return entry, err
}

// ListAll walks every page of a filtered listing, limit contacts at a time.
// Each page goes through the cache like any other list read.
func (s *Service) ListAll(ctx context.Context, search string, favouritesOnly bool, limit int) ([]schema.Contact, error) {
	var all []schema.Contact
	for page := 1; ; page++ {
		result, err := s.ListContacts(ctx, schema.ListParams{
			Page:           page,
			Limit:          limit,
			Search:         search,
			FavouritesOnly: favouritesOnly,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, result.Items...)
		if len(result.Items) == 0 || len(all) >= result.Total {
			return all, nil
		}
	}
}

// GetContact returns a single contact by id.
func (s *Service) GetContact(ctx context.Context, id string) (schema.Contact, error) {
	if err := contract.ValidateID(id); err != nil {
		return schema.Contact{}, err
	}
	entry, err := querycache.Read(ctx, s.cache, schema.ContactKey(id), func(ctx context.Context) (schema.Contact, error) {
		c, err := s.store.Get(ctx, id)
		if err != nil {
			return schema.Contact{}, fmt.Errorf("get contact %s: %w", id, err)
		}
		return c, nil
	})
	if err != nil {
		return schema.Contact{}, err
	}
	return entry.Data, nil
}

// CreateContact stores a new contact and returns it with its assigned id.
func (s *Service) CreateContact(ctx context.Context, fields schema.ContactFields) (schema.Contact, error) {
	if err := contract.ValidateContactFields(fields); err != nil {
		return schema.Contact{}, err
	}
	c, err := s.store.Create(ctx, fields)
	if err != nil {
		return schema.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	s.invalidateLists()
	return c, nil
}

// UpdateContact replaces every field of an existing contact.
func (s *Service) UpdateContact(ctx context.Context, id string, fields schema.ContactFields) (schema.Contact, error) {
	if err := contract.ValidateID(id); err != nil {
		return schema.Contact{}, err
	}
	if err := contract.ValidateContactFields(fields); err != nil {
		return schema.Contact{}, err
	}
	c, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return schema.Contact{}, fmt.Errorf("update contact %s: %w", id, err)
	}
	s.invalidateLists()
	s.cache.InvalidateKey(schema.ContactKey(id))
	return c, nil
}

// DeleteContact removes a contact.
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	if err := contract.ValidateID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	s.invalidateLists()
	s.cache.Remove(schema.ContactKey(id))
	return nil
}

// ToggleFavourite flips the favourite flag of c and saves every other field unchanged.
func (s *Service) ToggleFavourite(ctx context.Context, c schema.Contact) (schema.Contact, error) {
	fields := c.Fields()
	fields.Favourite = !fields.Favourite
	return s.UpdateContact(ctx, c.ID, fields)
}

// invalidateLists marks every cached list page stale, whatever its filters.
func (s *Service) invalidateLists() {
	n := s.cache.InvalidateResource(schema.ContactsResource)
	s.logger.Debug("lists invalidated", "entries", n)
}
