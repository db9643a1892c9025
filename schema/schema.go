// Package schema has models, keys and enums shared by all parts of contacts.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Contact is a record owned by the remote contact store.
// ID is assigned by the store on creation and never changes afterwards.
type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Favourite bool   `json:"favourite"`
	Avatar    string `json:"avatar,omitempty"` // Optional image URL
}

// UnmarshalJSON accepts the id as a JSON string or a JSON integer, since stores
// differ in which one they assign. Integer ids are kept as their decimal text.
func (c *Contact) UnmarshalJSON(data []byte) error {
	type plain Contact
	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	*c = Contact(aux.plain)
	c.ID = id
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return "", nil
	case raw[0] == '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return "", fmt.Errorf("contact id must be a string or an integer, got %s", raw)
	}
	return strconv.FormatInt(n, 10), nil
}

// ContactFields is the writable part of a Contact, used as the body of create and update calls.
type ContactFields struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Favourite bool   `json:"favourite"`
	Avatar    string `json:"avatar,omitempty"`
}

// Fields returns the writable fields of the contact.
func (c Contact) Fields() ContactFields {
	return ContactFields{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Favourite: c.Favourite,
		Avatar:    c.Avatar,
	}
}

// WithID builds a Contact from the fields and a store-assigned id.
func (f ContactFields) WithID(id string) Contact {
	return Contact{
		ID:        id,
		Name:      f.Name,
		Email:     f.Email,
		Phone:     f.Phone,
		Address:   f.Address,
		Favourite: f.Favourite,
		Avatar:    f.Avatar,
	}
}

// ListParams are the inputs of a paged, filtered list request.
type ListParams struct {
	Page           int    // 1-based page number
	Limit          int    // Page size, must be positive
	Search         string // Substring filter, empty means no filter
	FavouritesOnly bool   // Only return favourite contacts
}

// PageResult is one page of a list request.
// Items are in store order and Total counts every record matching the filter across all pages.
type PageResult struct {
	Items []Contact `json:"items"`
	Total int       `json:"total"`
}
