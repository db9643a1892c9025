// Package contactstore is an in-process contact store speaking the same REST
// dialect as json-server. Tests and `contacts serve` run it.
package contactstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// Inmem keeps contacts in insertion order behind a mutex.
type Inmem struct {
	mu       sync.Mutex
	index    map[string]int
	contacts []schema.Contact
}

var _ contract.ContactStore = (*Inmem)(nil)

// NewInmem returns a store holding cs. Contacts without an id get one.
func NewInmem(cs ...schema.Contact) *Inmem {
	s := &Inmem{index: make(map[string]int, len(cs))}
	for _, c := range cs {
		if c.ID == "" {
			c.ID = s.newID()
		}
		s.index[c.ID] = len(s.contacts)
		s.contacts = append(s.contacts, c)
	}
	return s
}

// LoadSeed reads a JSON array of contacts, or a json-server db file
// with a top-level "contacts" array.
func LoadSeed(path string) ([]schema.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var cs []schema.Contact
	if err := json.Unmarshal(data, &cs); err == nil {
		return cs, nil
	}
	var db struct {
		Contacts []schema.Contact `json:"contacts"`
	}
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return db.Contacts, nil
}

// newID returns an id not yet in use. Caller holds s.mu or owns s.
func (s *Inmem) newID() string {
	for {
		id := uuid.NewString()
		if _, taken := s.index[id]; !taken {
			return id
		}
	}
}

// List implements the ContactStore interface.
// A zero page returns every match. A zero limit with a page uses json-server's default of 10.
func (s *Inmem) List(_ context.Context, params schema.ListParams) (schema.PageResult, error) {
	return s.list(params, nil), nil
}

// list pages the contacts passing params and keep. A nil keep accepts all.
func (s *Inmem) list(params schema.ListParams, keep func(schema.Contact) bool) schema.PageResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]schema.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if params.FavouritesOnly && !c.Favourite {
			continue
		}
		if keep != nil && !keep(c) {
			continue
		}
		if params.Search != "" && !matchesSearch(c, params.Search) {
			continue
		}
		matches = append(matches, c)
	}

	total := len(matches)
	if params.Page > 0 {
		limit := params.Limit
		if limit <= 0 {
			limit = 10
		}
		start := min((params.Page-1)*limit, total)
		end := min(start+limit, total)
		matches = matches[start:end]
	}
	return schema.PageResult{Items: slices.Clone(matches), Total: total}
}

// matchesSearch reports whether q occurs in any text field of c, ignoring case.
func matchesSearch(c schema.Contact, q string) bool {
	q = strings.ToLower(q)
	for _, field := range []string{c.Name, c.Email, c.Phone, c.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Get implements the ContactStore interface.
func (s *Inmem) Get(_ context.Context, id string) (schema.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return schema.Contact{}, contract.ErrNotFound
	}
	return s.contacts[i], nil
}

// Create implements the ContactStore interface.
func (s *Inmem) Create(_ context.Context, fields schema.ContactFields) (schema.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := fields.WithID(s.newID())
	s.index[c.ID] = len(s.contacts)
	s.contacts = append(s.contacts, c)
	return c, nil
}

// Update implements the ContactStore interface.
func (s *Inmem) Update(_ context.Context, id string, fields schema.ContactFields) (schema.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return schema.Contact{}, contract.ErrNotFound
	}
	s.contacts[i] = fields.WithID(id)
	return s.contacts[i], nil
}

// Delete implements the ContactStore interface.
func (s *Inmem) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return contract.ErrNotFound
	}
	s.contacts = slices.Delete(s.contacts, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.contacts); j++ {
		s.index[s.contacts[j].ID] = j
	}
	return nil
}

// Len returns the number of stored contacts.
func (s *Inmem) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts)
}
