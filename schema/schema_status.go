package schema

import "time"

// CacheStatus describes the durable tier of the query cache.
// The entry times are zero when the table is empty.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// Span is the time between the oldest and the newest persisted result.
func (s CacheStatus) Span() time.Duration {
	if s.TotalEntries == 0 || s.OldestEntryTime.IsZero() {
		return 0
	}
	return s.LastEntryTime.Sub(s.OldestEntryTime)
}
