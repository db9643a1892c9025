// Package selection holds the shared selection and filter state that decides
// which contacts are on screen, and the Browser that turns it into reads.
package selection

import "sync"

// Values is a copy of the state at one point in time.
type Values struct {
	SelectedContactID  *string
	SearchQuery        string
	ShowFavouritesOnly bool
}

// State is the selected contact and the active list filters.
// Setters are unconditional and never touch the network.
type State struct {
	mu     sync.RWMutex
	values Values
}

// SetSelectedContactID selects the contact with id.
func (s *State) SetSelectedContactID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.SelectedContactID = &id
}

// ClearSelection deselects any contact.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.SelectedContactID = nil
}

// SetSearchQuery replaces the search text.
func (s *State) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.SearchQuery = q
}

// SetShowFavouritesOnly sets the favourites filter.
func (s *State) SetShowFavouritesOnly(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.ShowFavouritesOnly = on
}

// ToggleShowFavouritesOnly flips the favourites filter and returns the new value.
func (s *State) ToggleShowFavouritesOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.ShowFavouritesOnly = !s.values.ShowFavouritesOnly
	return s.values.ShowFavouritesOnly
}

// Snapshot returns a copy of the current values.
func (s *State) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.values
	if v.SelectedContactID != nil {
		id := *v.SelectedContactID
		v.SelectedContactID = &id
	}
	return v
}
