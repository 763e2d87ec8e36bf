package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go-bakery-ws/internal/feed"
	"go-bakery-ws/internal/model"
	viewsync "go-bakery-ws/internal/sync"

	"github.com/google/uuid"
)

func waitForCondition(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// An in-process dashboard session watching the menus table sees a placed
// order land in its cache through the live feed alone: one initial fetch,
// then the versioned menu update carries the committed stock.
func TestPlacedOrderReachesDashboardCacheWithoutRefetch(t *testing.T) {
	hub := feed.NewHub()
	go hub.Run()

	menus := newMemMenuRepo()
	orders := newMemOrderRepo()
	svc := NewOrderService(menus, orders, fakeTx{}, hub)

	storeID := uuid.New()
	croissant := &model.Menu{StoreID: storeID, Name: "croissant", Price: 2500, CurrentStock: 10, Status: model.MenuStatusSelling}
	menus.seed(croissant)

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (map[uuid.UUID]viewsync.Row, error) {
		fetches.Add(1)
		all, err := menus.FindAll(storeID)
		if err != nil {
			return nil, err
		}
		rows := make(map[uuid.UUID]viewsync.Row, len(all))
		for _, m := range all {
			rows[m.ID] = viewsync.Row{"name": m.Name, "current_stock": float64(m.CurrentStock)}
		}
		return rows, nil
	}

	cache := viewsync.NewCache()
	sess := viewsync.NewSession("menus", cache, &viewsync.HubTransport{Hub: hub}, fetch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Run(ctx)

	waitForCondition(t, "session sync", func() bool { return sess.State() == viewsync.StateSynced })

	if _, err := svc.PlaceOrder(storeID, croissant.ID, 2); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	waitForCondition(t, "cache to apply the stock update", func() bool {
		row, ok := cache.Get(croissant.ID)
		return ok && row["current_stock"] == float64(8)
	})

	row, _ := cache.Get(croissant.ID)
	if row["name"] != "croissant" {
		t.Errorf("merge lost catalog fields: %+v", row)
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("fetch count = %d, want 1 (no refetch for a live update)", n)
	}
}
