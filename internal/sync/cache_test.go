package sync

import (
	"testing"

	"go-bakery-ws/internal/feed"

	"github.com/google/uuid"
)

func insertEvent(table string, id uuid.UUID, version uint64, row map[string]interface{}) feed.Event {
	ev := feed.NewEvent(table, feed.ActionInsert, id, row)
	ev.Version = version
	return ev
}

func updateEvent(table string, id uuid.UUID, version uint64, row map[string]interface{}) feed.Event {
	ev := feed.NewEvent(table, feed.ActionUpdate, id, row)
	ev.Version = version
	return ev
}

func deleteEvent(table string, id uuid.UUID, version uint64) feed.Event {
	ev := feed.NewEvent(table, feed.ActionDelete, id, nil)
	ev.Version = version
	return ev
}

func TestApplyInsertThenUpdateThenDelete(t *testing.T) {
	c := NewCache()
	id := uuid.New()

	c.Apply(insertEvent("ingredients", id, 1, map[string]interface{}{"name": "flour", "current_stock": 100}))
	row, ok := c.Get(id)
	if !ok || row["name"] != "flour" {
		t.Fatalf("row after insert = %v, %v", row, ok)
	}

	c.Apply(updateEvent("ingredients", id, 2, map[string]interface{}{"current_stock": 70}))
	row, _ = c.Get(id)
	if row["current_stock"] != float64(70) {
		t.Errorf("current_stock = %v, want 70", row["current_stock"])
	}
	if row["name"] != "flour" {
		t.Errorf("name = %v, partial update must not drop fields", row["name"])
	}

	c.Apply(deleteEvent("ingredients", id, 3))
	if _, ok := c.Get(id); ok {
		t.Error("row still present after delete")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestApplyIsIdempotentOnDuplicateDelivery(t *testing.T) {
	c := NewCache()
	id := uuid.New()

	ev := insertEvent("menus", id, 5, map[string]interface{}{"name": "croissant", "current_stock": 10})
	c.Apply(ev)
	c.Apply(ev)
	c.Apply(ev)

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1 after duplicate inserts", c.Len())
	}

	up := updateEvent("menus", id, 6, map[string]interface{}{"current_stock": 9})
	c.Apply(up)
	c.Apply(up)
	row, _ := c.Get(id)
	if row["current_stock"] != float64(9) {
		t.Errorf("current_stock = %v, want 9", row["current_stock"])
	}
}

func TestApplyInsertDedupesOptimisticRow(t *testing.T) {
	c := NewCache()
	id := uuid.New()

	// The initiating session already put the row locally; the echoed insert
	// must not create a second copy or clobber local state.
	c.Put(id, Row{"name": "croissant", "current_stock": 10, "pending": true})
	c.Apply(insertEvent("menus", id, 1, map[string]interface{}{"name": "croissant", "current_stock": 10}))

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	row, _ := c.Get(id)
	if row["pending"] != true {
		t.Error("echoed insert replaced the optimistic row")
	}
}

func TestApplyUnknownIDIsNoOp(t *testing.T) {
	c := NewCache()
	known := uuid.New()
	c.Put(known, Row{"name": "baguette"})

	c.Apply(updateEvent("menus", uuid.New(), 1, map[string]interface{}{"current_stock": 3}))
	c.Apply(deleteEvent("menus", uuid.New(), 2))

	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestApplyDropsStaleVersions(t *testing.T) {
	c := NewCache()
	id := uuid.New()

	c.Apply(insertEvent("ingredients", id, 1, map[string]interface{}{"current_stock": 100}))
	c.Apply(updateEvent("ingredients", id, 3, map[string]interface{}{"current_stock": 120}))

	// A reordered transport delivers an older update late.
	c.Apply(updateEvent("ingredients", id, 2, map[string]interface{}{"current_stock": 70}))

	row, _ := c.Get(id)
	if row["current_stock"] != float64(120) {
		t.Errorf("current_stock = %v, want 120 after stale event dropped", row["current_stock"])
	}
}

func TestResetInstallsSnapshotAndClearsVersions(t *testing.T) {
	c := NewCache()
	stale := uuid.New()
	c.Apply(insertEvent("menus", stale, 9, map[string]interface{}{"name": "old"}))

	fresh := uuid.New()
	c.Reset(map[uuid.UUID]Row{fresh: {"name": "new", "current_stock": 5}})

	if _, ok := c.Get(stale); ok {
		t.Error("pre-reset row survived the snapshot")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}

	// Versions restart with the snapshot: an event numbered below the old
	// high-water mark still applies.
	c.Apply(updateEvent("menus", fresh, 1, map[string]interface{}{"current_stock": 4}))
	row, _ := c.Get(fresh)
	if row["current_stock"] != float64(4) {
		t.Errorf("current_stock = %v, want 4", row["current_stock"])
	}
}

func TestIDsStableOrder(t *testing.T) {
	c := NewCache()
	for i := 0; i < 5; i++ {
		c.Put(uuid.New(), Row{})
	}
	a := c.IDs()
	b := c.IDs()
	if len(a) != 5 {
		t.Fatalf("IDs len = %d, want 5", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("IDs order is not stable across calls")
		}
	}
}
