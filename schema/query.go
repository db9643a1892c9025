package schema

import (
	"crypto/sha256"
	"fmt"
	"strconv"
)

// Resources addressed by query keys.
const (
	ContactsResource = "contacts" // Paged list family
	ContactResource  = "contact"  // Single record
)

// QueryKey identifies a cacheable query result.
// It is comparable, so two keys hit the same cache entry iff every component is equal.
type QueryKey struct {
	Resource       string
	Page           int
	Limit          int
	Search         string
	FavouritesOnly bool
	ID             string
}

// ListKey returns the key of a list query.
func ListKey(params ListParams) QueryKey {
	return QueryKey{
		Resource:       ContactsResource,
		Page:           params.Page,
		Limit:          params.Limit,
		Search:         params.Search,
		FavouritesOnly: params.FavouritesOnly,
	}
}

// ContactKey returns the key of a single contact query.
func ContactKey(id string) QueryKey {
	return QueryKey{Resource: ContactResource, ID: id}
}

// IsList reports whether the key belongs to the list family.
func (k QueryKey) IsList() bool {
	return k.Resource == ContactsResource
}

// String renders the key unambiguously. Search and ID are quoted so that
// separators inside them cannot collide with another key.
func (k QueryKey) String() string {
	if k.Resource == ContactResource {
		return k.Resource + ":" + strconv.Quote(k.ID)
	}
	return fmt.Sprintf("%s:page=%d:limit=%d:q=%s:fav=%t",
		k.Resource, k.Page, k.Limit, strconv.Quote(k.Search), k.FavouritesOnly)
}

// Hash returns a fixed-width digest of the key, suitable as a SQL primary key.
func (k QueryKey) Hash() string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(k.String())))
}
