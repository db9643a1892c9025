// Package querycache keeps the results of remote reads keyed by QueryKey.
//
// Reads of the same key share one in-flight fetch. Entries keep their last
// good data across refetches and failures, and can be marked stale by
// predicate so the next read goes back to the store.
package querycache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/schema"
)

// PayloadVersion tags entries written to the durable tier.
// Bump it whenever the JSON shape of cached values changes.
const PayloadVersion = 1

// Entry is a snapshot of one cache entry.
type Entry[T any] struct {
	Key           schema.QueryKey
	Status        schema.EntryStatus
	Data          T
	HasData       bool // Data holds a successful result, possibly from an earlier fetch
	Err           error
	Stale         bool
	Fetching      bool
	LastFetchedAt time.Time
}

// Stats counts how reads were served.
type Stats struct {
	Hits     int // fresh entry returned without a fetch
	Attaches int // read joined an in-flight fetch
	Fetches  int // fetch functions started
	Seeds    int // entries loaded from the durable tier
}

// Cache is the in-memory query cache. The zero value is not usable; call New.
type Cache struct {
	mu      sync.Mutex
	entries map[schema.QueryKey]*entry
	stats   Stats

	store  contract.CacheStore
	logger *charmlog.Logger
	now    func() time.Time
	maxAge time.Duration
}

// entry is the mutable record behind Entry.
type entry struct {
	status        schema.EntryStatus
	data          any
	hasData       bool
	err           error
	stale         bool
	lastFetchedAt time.Time
	call          *call // non-nil while a fetch is in flight
}

// call is one in-flight fetch shared by every waiter of a key.
type call struct {
	done        chan struct{}
	invalidated bool
	result      Entry[any]
	err         error
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore attaches a durable tier. Successful results are written through
// and entries missing from memory are seeded from it as stale.
func WithStore(store contract.CacheStore) Option {
	return func(c *Cache) { c.store = store }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *charmlog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMaxAge treats successful entries older than d as stale.
// Zero keeps entries fresh until they are invalidated.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) { c.maxAge = d }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[schema.QueryKey]*entry),
		logger:  contract.NewDiscardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the entry for key, fetching it when it is absent, stale or failed.
//
// Concurrent reads of the same key share a single fetch. The fetch runs on a
// context detached from ctx's cancellation, so a caller that gives up only
// stops waiting. On failure the returned entry still carries the last good
// data, and the fetch error is returned.
func Read[T any](ctx context.Context, c *Cache, key schema.QueryKey, fetch func(context.Context) (T, error)) (Entry[T], error) {
	c.seed(key, decodeInto[T])

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{status: schema.PendingStatus}
		c.entries[key] = e
	}

	if cl := e.call; cl != nil {
		c.stats.Attaches++
		c.mu.Unlock()
		c.logger.Debug("attach", "key", key)
		return wait[T](ctx, key, cl)
	}

	if e.status == schema.SuccessStatus && !c.isStale(e) {
		c.stats.Hits++
		snap := c.snapshot(key, e)
		c.mu.Unlock()
		c.logger.Debug("hit", "key", key)
		return convert[T](snap), nil
	}

	cl := &call{done: make(chan struct{})}
	e.call = cl
	e.status = schema.PendingStatus
	c.stats.Fetches++
	retained := e.hasData
	c.mu.Unlock()
	c.logger.Debug("fetch", "key", key, "retained", retained)

	fctx := context.WithoutCancel(ctx)
	go c.run(key, e, cl, func() (any, error) {
		return fetch(fctx)
	})
	return wait[T](ctx, key, cl)
}

// run executes a fetch and settles its entry.
func (c *Cache) run(key schema.QueryKey, e *entry, cl *call, fetch func() (any, error)) {
	val, err := fetch()
	now := c.now()

	c.mu.Lock()
	current := c.entries[key] == e && e.call == cl
	if current {
		e.call = nil
		if err != nil {
			e.status = schema.ErrorStatus
			e.err = err
		} else {
			e.status = schema.SuccessStatus
			e.data = val
			e.hasData = true
			e.err = nil
			e.lastFetchedAt = now
			e.stale = cl.invalidated
		}
		cl.result = c.snapshot(key, e)
	} else {
		// Cleared or removed mid-fetch: report the outcome without storing it.
		cl.result = Entry[any]{Key: key, Status: schema.SuccessStatus, Data: val, HasData: err == nil, LastFetchedAt: now}
		if err != nil {
			cl.result.Status = schema.ErrorStatus
			cl.result.Err = err
		}
	}
	cl.err = err
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("fetch failed", "key", key, "err", err)
	} else if current {
		c.persist(key, val, now)
	}
	close(cl.done)
}

// wait blocks until the fetch settles or ctx is done.
func wait[T any](ctx context.Context, key schema.QueryKey, cl *call) (Entry[T], error) {
	select {
	case <-cl.done:
		return convert[T](cl.result), cl.err
	case <-ctx.Done():
		return Entry[T]{Key: key, Status: schema.PendingStatus, Fetching: true}, ctx.Err()
	}
}

// Peek returns a snapshot of the entry for key without fetching.
func (c *Cache) Peek(key schema.QueryKey) (Entry[any], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry[any]{}, false
	}
	return c.snapshot(key, e), true
}

// Invalidate marks every entry whose key matches pred as stale and returns
// how many were marked. An entry whose fetch is in flight stays stale once
// that fetch lands.
func (c *Cache) Invalidate(pred func(schema.QueryKey) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if !pred(key) {
			continue
		}
		e.stale = true
		if e.call != nil {
			e.call.invalidated = true
		}
		n++
	}
	c.logger.Debug("invalidate", "entries", n)
	return n
}

// InvalidateResource marks every entry of a resource as stale.
func (c *Cache) InvalidateResource(resource string) int {
	return c.Invalidate(func(k schema.QueryKey) bool { return k.Resource == resource })
}

// InvalidateKey marks a single entry as stale.
func (c *Cache) InvalidateKey(key schema.QueryKey) int {
	return c.Invalidate(func(k schema.QueryKey) bool { return k == key })
}

// Remove drops an entry from memory and from the durable tier.
// A fetch in flight for the key still completes for its waiters but is not stored.
func (c *Cache) Remove(key schema.QueryKey) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Delete(key.Hash()); err != nil {
		c.logger.Warn("durable cache delete failed", "key", key, "err", err)
	}
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every in-memory entry. The durable tier is left alone.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[schema.QueryKey]*entry)
}

// Stats returns a copy of the read counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// isStale reports whether e must be refetched. Caller holds c.mu.
func (c *Cache) isStale(e *entry) bool {
	if e.stale {
		return true
	}
	return c.maxAge > 0 && c.now().Sub(e.lastFetchedAt) > c.maxAge
}

// snapshot copies e into an Entry. Caller holds c.mu.
func (c *Cache) snapshot(key schema.QueryKey, e *entry) Entry[any] {
	return Entry[any]{
		Key:           key,
		Status:        e.status,
		Data:          e.data,
		HasData:       e.hasData,
		Err:           e.err,
		Stale:         c.isStale(e),
		Fetching:      e.call != nil,
		LastFetchedAt: e.lastFetchedAt,
	}
}

// convert narrows an Entry[any] to Entry[T]. Data of another type is dropped.
func convert[T any](src Entry[any]) Entry[T] {
	dst := Entry[T]{
		Key:           src.Key,
		Status:        src.Status,
		Err:           src.Err,
		Stale:         src.Stale,
		Fetching:      src.Fetching,
		LastFetchedAt: src.LastFetchedAt,
	}
	if v, ok := src.Data.(T); ok && src.HasData {
		dst.Data = v
		dst.HasData = true
	}
	return dst
}

// decodeInto returns a decoder for persisted payloads of type T.
func decodeInto[T any](payload []byte) (any, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return v, nil
}
