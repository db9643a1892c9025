package querycache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/huangsam/contacts/schema"
)

// seed loads key from the durable tier when it is not in memory yet.
// Seeded entries are always stale so they are only served as last good data.
func (c *Cache) seed(key schema.QueryKey, decode func([]byte) (any, error)) {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	_, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return
	}

	payload, version, ts, err := c.store.Get(key.Hash())
	if errors.Is(err, sql.ErrNoRows) {
		return
	}
	if err != nil {
		c.logger.Warn("durable cache read failed", "key", key, "err", err)
		return
	}
	if payload == nil {
		return
	}
	if version != PayloadVersion {
		c.logger.Debug("durable cache version mismatch", "key", key, "version", version)
		return
	}
	val, err := decode(payload)
	if err != nil {
		c.logger.Warn("durable cache decode failed", "key", key, "err", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = &entry{
		status:        schema.SuccessStatus,
		data:          val,
		hasData:       true,
		stale:         true,
		lastFetchedAt: time.Unix(ts, 0),
	}
	c.stats.Seeds++
	c.logger.Debug("seeded", "key", key)
}

// persist writes a successful result through to the durable tier.
// Failures are logged and otherwise ignored.
func (c *Cache) persist(key schema.QueryKey, val any, at time.Time) {
	if c.store == nil {
		return
	}
	payload, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn("durable cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.store.Set(key.Hash(), payload, PayloadVersion, at.Unix()); err != nil {
		c.logger.Warn("durable cache write failed", "key", key, "err", err)
	}
}
