package feed

import (
	"encoding/json"

	"github.com/google/uuid"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Event is one row-level change notification. Version orders events for a
// row: writers of versioned rows (menus, ingredients) attach the row version
// written by the same UPDATE, and the hub stamps everything else with a feed
// counter at publish time. Either way, two events for the same row can always
// be ordered even if a transport reorders them.
type Event struct {
	Table   string          `json:"table"`
	Action  Action          `json:"action"`
	RowID   uuid.UUID       `json:"row_id"`
	Version uint64          `json:"version"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals payload into a change event. The payload is the new row
// state for inserts/updates (full or partial) and may be nil for deletes.
func NewEvent(table string, action Action, rowID uuid.UUID, payload interface{}) Event {
	ev := Event{Table: table, Action: action, RowID: rowID}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ev.Payload = raw
		}
	}
	return ev
}

// NewVersionedEvent is NewEvent carrying the row's own version, taken from
// the committed write that produced the payload. The hub passes it through
// unstamped, so version order for the row matches commit order.
func NewVersionedEvent(table string, action Action, rowID uuid.UUID, version int64, payload interface{}) Event {
	ev := NewEvent(table, action, rowID, payload)
	ev.Version = uint64(version)
	return ev
}
