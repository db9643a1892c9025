package selection

import (
	"context"
	"errors"
	"sync"

	"github.com/huangsam/contacts/internal/querycache"
	"github.com/huangsam/contacts/schema"
)

// ErrSuperseded is returned by Load when the filters or page changed while
// the read was in flight. The result is cached but not shown.
var ErrSuperseded = errors.New("view changed while loading")

// Source is the part of the data access layer a Browser reads from.
type Source interface {
	ListEntry(ctx context.Context, params schema.ListParams) (querycache.Entry[schema.PageResult], error)
	GetContact(ctx context.Context, id string) (schema.Contact, error)
}

// View is what a list screen shows.
type View struct {
	Key     schema.QueryKey
	Page    schema.PageResult
	HasData bool
	Stale   bool  // Page belongs to an earlier key or failed refresh
	Err     error // Last load error, kept next to the retained page
}

// Browser derives list reads from a State plus a page cursor.
// The last applied page stays visible while a new key loads.
type Browser struct {
	src   Source
	state *State

	mu     sync.Mutex
	page   int
	limit  int
	filter filter // filters the page cursor belongs to
	view   View
}

type filter struct {
	search         string
	favouritesOnly bool
}

// NewBrowser returns a Browser on page 1. A nil state gets a fresh one.
func NewBrowser(src Source, state *State, limit int) *Browser {
	if state == nil {
		state = &State{}
	}
	b := &Browser{src: src, state: state, page: 1, limit: limit}
	b.syncLocked()
	return b
}

// State returns the shared state behind the browser. Filters changed on it
// directly also send the browser back to page 1 on its next read.
func (b *Browser) State() *State {
	return b.state
}

// Params derives the list parameters from the current state and cursor.
func (b *Browser) Params() schema.ListParams {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paramsLocked()
}

func (b *Browser) paramsLocked() schema.ListParams {
	b.syncLocked()
	return schema.ListParams{
		Page:           b.page,
		Limit:          b.limit,
		Search:         b.filter.search,
		FavouritesOnly: b.filter.favouritesOnly,
	}
}

// syncLocked resets the cursor to page 1 when the state's filters moved away
// from the ones the cursor was set under.
func (b *Browser) syncLocked() {
	v := b.state.Snapshot()
	f := filter{search: v.SearchQuery, favouritesOnly: v.ShowFavouritesOnly}
	if f != b.filter {
		b.filter = f
		b.page = 1
	}
}

// Key is the query key the next Load reads.
func (b *Browser) Key() schema.QueryKey {
	return schema.ListKey(b.Params())
}

// SetSearch changes the search text and goes back to page 1.
func (b *Browser) SetSearch(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	if b.filter.search == q {
		return
	}
	b.state.SetSearchQuery(q)
	b.syncLocked()
	b.page = 1
}

// SetFavouritesOnly changes the favourites filter and goes back to page 1.
func (b *Browser) SetFavouritesOnly(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	if b.filter.favouritesOnly == on {
		return
	}
	b.state.SetShowFavouritesOnly(on)
	b.syncLocked()
	b.page = 1
}

// ToggleFavouritesOnly flips the favourites filter and goes back to page 1.
func (b *Browser) ToggleFavouritesOnly() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	on := b.state.ToggleShowFavouritesOnly()
	b.syncLocked()
	b.page = 1
	return on
}

// SetPage moves the cursor. Pages below 1 clamp to 1.
func (b *Browser) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	b.page = max(page, 1)
}

// Page returns the current page number.
func (b *Browser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	return b.page
}

// PageCount returns how many pages the last shown total spans.
func (b *Browser) PageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.view.HasData || b.limit <= 0 {
		return 0
	}
	return (b.view.Page.Total + b.limit - 1) / b.limit
}

// View returns what is currently shown.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// Load reads the page for the current key and shows it, unless the key moved
// on while reading. A failed read keeps the previous page on screen with Err set.
func (b *Browser) Load(ctx context.Context) (View, error) {
	params := b.Params()
	key := schema.ListKey(params)

	entry, err := b.src.ListEntry(ctx, params)

	b.mu.Lock()
	defer b.mu.Unlock()
	if schema.ListKey(b.paramsLocked()) != key {
		return b.view, ErrSuperseded
	}

	switch {
	case err == nil:
		b.view = View{Key: key, Page: entry.Data, HasData: true, Stale: entry.Stale}
	case entry.HasData:
		b.view = View{Key: key, Page: entry.Data, HasData: true, Stale: true, Err: err}
	default:
		b.view.Stale = b.view.HasData
		b.view.Err = err
	}
	return b.view, err
}

// Select marks id as the selected contact.
func (b *Browser) Select(id string) {
	b.state.SetSelectedContactID(id)
}

// Selected fetches the selected contact. It reports false when nothing is selected.
func (b *Browser) Selected(ctx context.Context) (schema.Contact, bool, error) {
	id := b.state.Snapshot().SelectedContactID
	if id == nil {
		return schema.Contact{}, false, nil
	}
	c, err := b.src.GetContact(ctx, *id)
	if err != nil {
		return schema.Contact{}, true, err
	}
	return c, true, nil
}
