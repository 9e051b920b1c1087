package cascade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kazzy/internal/models"
)

// fakeCatalog serves options from maps and can hold a fetch open until
// released, to exercise the stale-response guard.
type fakeCatalog struct {
	mu     sync.Mutex
	routes []models.Route
	places map[string][]models.Place
	shops  map[string][]models.Shop
	err    error

	blockPlaces map[string]chan struct{}
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		places:      make(map[string][]models.Place),
		shops:       make(map[string][]models.Shop),
		blockPlaces: make(map[string]chan struct{}),
	}
}

func (f *fakeCatalog) Routes(ctx context.Context, force bool) ([]models.Route, error) {
	return f.routes, f.err
}

func (f *fakeCatalog) Places(ctx context.Context, routeID string, force bool) ([]models.Place, error) {
	f.mu.Lock()
	gate := f.blockPlaces[routeID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.places[routeID], nil
}

func (f *fakeCatalog) Shops(ctx context.Context, placeID string, force bool) ([]models.Shop, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.shops[placeID], nil
}

func twoRouteCatalog() *fakeCatalog {
	f := newFakeCatalog()
	f.routes = []models.Route{{ID: "a", Name: "Route A"}, {ID: "b", Name: "Route B"}}
	f.places["a"] = []models.Place{{ID: "a_p1", Name: "A Place 1", RouteID: "a"}}
	f.places["b"] = []models.Place{{ID: "b_p1", Name: "B Place 1", RouteID: "b"}}
	f.shops["a_p1"] = []models.Shop{{ID: "a_s1", Name: "A Shop 1", PlaceID: "a_p1"}}
	f.shops["b_p1"] = []models.Shop{{ID: "b_s1", Name: "B Shop 1", PlaceID: "b_p1"}}
	return f
}

func TestSelectRouteResolvesPlaceAndShopWithDefaults(t *testing.T) {
	c := New(twoRouteCatalog())

	if err := c.SelectRoute(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}

	place := c.Place()
	if place.State != Populated || place.Selected != "a_p1" || place.SelectedName != "A Place 1" {
		t.Fatalf("expected first place default-selected, got %+v", place)
	}
	shop := c.Shop()
	if shop.State != Populated || shop.Selected != "a_s1" {
		t.Fatalf("expected first shop default-selected, got %+v", shop)
	}
}

func TestEmptyRouteIsEmptyNotUnselected(t *testing.T) {
	f := twoRouteCatalog()
	f.places["c"] = nil
	f.routes = append(f.routes, models.Route{ID: "c", Name: "Route C"})
	c := New(f)

	if err := c.SelectRoute(context.Background(), "c"); err != nil {
		t.Fatal(err)
	}
	if got := c.Place().State; got != Empty {
		t.Fatalf("expected Empty for a valid route with no places, got %q", got)
	}
}

func TestClearingRouteResetsDownstreamToUnselected(t *testing.T) {
	c := New(twoRouteCatalog())
	c.SelectRoute(context.Background(), "a")
	c.SelectRoute(context.Background(), "")

	if got := c.Place().State; got != Unselected {
		t.Fatalf("expected Unselected after clearing route, got %q", got)
	}
	if got := c.Shop().State; got != Unselected {
		t.Fatalf("expected shop Unselected after clearing route, got %q", got)
	}
}

func TestStaleResolutionDiscarded(t *testing.T) {
	f := twoRouteCatalog()
	gate := make(chan struct{})
	f.blockPlaces["b"] = gate

	c := New(f)
	if err := c.SelectRoute(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}

	// switch to B (fetch hangs), then back to A before B resolves
	done := make(chan struct{})
	go func() {
		c.SelectRoute(context.Background(), "b")
		close(done)
	}()

	// wait until the B fetch is parked on the gate, then re-select A
	for c.Route().Selected != "b" {
		time.Sleep(time.Millisecond)
	}
	if err := c.SelectRoute(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}

	close(gate)
	<-done

	place := c.Place()
	if place.Selected != "a_p1" || place.State != Populated {
		t.Fatalf("expected Route A's data after A→B→A, got %+v", place)
	}
	shop := c.Shop()
	if shop.Selected != "a_s1" {
		t.Fatalf("expected Route A's shop after A→B→A, got %+v", shop)
	}
}

func TestRestoreKeepsSavedSelections(t *testing.T) {
	f := twoRouteCatalog()
	f.places["a"] = append(f.places["a"], models.Place{ID: "a_p2", Name: "A Place 2", RouteID: "a"})
	f.shops["a_p2"] = []models.Shop{
		{ID: "a_s2", Name: "A Shop 2", PlaceID: "a_p2"},
		{ID: "a_s3", Name: "A Shop 3", PlaceID: "a_p2"},
	}
	c := New(f)

	if err := c.Restore(context.Background(), "a", "a_p2", "a_s3"); err != nil {
		t.Fatal(err)
	}

	if got := c.Place().Selected; got != "a_p2" {
		t.Fatalf("expected restored place kept, got %q", got)
	}
	if got := c.Shop().Selected; got != "a_s3" {
		t.Fatalf("expected restored shop kept, got %q", got)
	}
}

func TestRestoreWithVanishedSelectionFallsBackToFirst(t *testing.T) {
	c := New(twoRouteCatalog())

	if err := c.Restore(context.Background(), "a", "deleted_place", "deleted_shop"); err != nil {
		t.Fatal(err)
	}
	if got := c.Place().Selected; got != "a_p1" {
		t.Fatalf("expected fallback to first place, got %q", got)
	}
}

func TestFetchErrorLeavesLevelUnselected(t *testing.T) {
	f := twoRouteCatalog()
	c := New(f)
	f.err = errors.New("network down")

	if err := c.SelectRoute(context.Background(), "a"); err == nil {
		t.Fatal("expected error to surface")
	}
	// Empty means "valid route, no places"; a failed fetch is neither
	if got := c.Place().State; got != Unselected {
		t.Fatalf("expected Unselected on fetch failure, got %q", got)
	}
}

func TestTrailingShopResolutionDiscardedAfterRouteSwitch(t *testing.T) {
	c := New(twoRouteCatalog())

	// park route A between installing its places and resolving its
	// shops; a full switch to route B completes in that window
	fired := false
	c.afterPlaces = func() {
		if fired {
			return
		}
		fired = true
		if err := c.SelectRoute(context.Background(), "b"); err != nil {
			t.Error(err)
		}
	}

	if err := c.SelectRoute(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}

	if got := c.Place().Selected; got != "b_p1" {
		t.Fatalf("expected route B's place after the switch, got %q", got)
	}
	shop := c.Shop()
	if shop.Selected != "b_s1" {
		t.Fatalf("expected route B's shop, not route A's trailing resolution, got %+v", shop)
	}
}

func TestLoadRoutes(t *testing.T) {
	c := New(twoRouteCatalog())
	if err := c.LoadRoutes(context.Background()); err != nil {
		t.Fatal(err)
	}
	routes := c.Route()
	if routes.State != Populated || len(routes.Options) != 2 {
		t.Fatalf("expected two routes populated, got %+v", routes)
	}
}
