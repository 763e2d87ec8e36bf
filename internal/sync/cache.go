// Package sync keeps a dashboard session's locally cached entity lists
// consistent with the authoritative store by applying change feed events in
// place, without full reloads.
package sync

import (
	"encoding/json"
	"sort"
	stdsync "sync"

	"go-bakery-ws/internal/feed"

	"github.com/google/uuid"
)

// Row is one cached entity as loose fields, keyed by its primary key. Events
// may carry partial rows, so updates merge field-wise instead of replacing.
type Row map[string]interface{}

// Cache is the reconciled local copy of one table. Apply is idempotent:
// duplicate delivery of any event leaves the cache unchanged, and events
// older than the last one seen for a row are dropped.
type Cache struct {
	mu       stdsync.Mutex
	rows     map[uuid.UUID]Row
	versions map[uuid.UUID]uint64
}

func NewCache() *Cache {
	return &Cache{
		rows:     make(map[uuid.UUID]Row),
		versions: make(map[uuid.UUID]uint64),
	}
}

// Apply reconciles one change event into the cache.
//   - insert: append if the primary key is not already present (the initiating
//     session's optimistic insert and the echoed event collapse to one row)
//   - update: merge payload fields into the matching row; unknown id is a no-op
//   - delete: remove the matching row; unknown id is a no-op
func (c *Cache) Apply(ev feed.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Version != 0 && ev.Version <= c.versions[ev.RowID] {
		return // stale or duplicate delivery
	}

	switch ev.Action {
	case feed.ActionInsert:
		if _, exists := c.rows[ev.RowID]; !exists {
			c.rows[ev.RowID] = decodeRow(ev.Payload)
		}
	case feed.ActionUpdate:
		row, exists := c.rows[ev.RowID]
		if !exists {
			return
		}
		for k, v := range decodeRow(ev.Payload) {
			row[k] = v
		}
	case feed.ActionDelete:
		delete(c.rows, ev.RowID)
	}

	if ev.Version != 0 {
		c.versions[ev.RowID] = ev.Version
	}
}

// Put seeds or replaces a row outside the event path (initial fetch,
// reconnect refetch, optimistic local insert).
func (c *Cache) Put(id uuid.UUID, row Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[id] = row
}

// Reset replaces the whole cache with a fresh authoritative snapshot.
// Row versions restart with the snapshot; events from before the refetch
// are superseded by it.
func (c *Cache) Reset(rows map[uuid.UUID]Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = make(map[uuid.UUID]Row, len(rows))
	for id, row := range rows {
		c.rows[id] = row
	}
	c.versions = make(map[uuid.UUID]uint64)
}

// Get returns a copy of one cached row.
func (c *Cache) Get(id uuid.UUID) (Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[id]
	if !ok {
		return nil, false
	}
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out, true
}

// Len reports the number of cached rows.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// IDs returns the cached primary keys in stable order.
func (c *Cache) IDs() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(c.rows))
	for id := range c.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func decodeRow(raw json.RawMessage) Row {
	row := make(Row)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &row)
	}
	return row
}
