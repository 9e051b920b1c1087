package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"kazzy/internal/eventbus"
	"kazzy/internal/models"
)

type fakeFetcher struct {
	routeCalls   int
	placeCalls   map[string]int
	shopCalls    map[string]int
	productCalls int

	routes   []models.Route
	places   map[string][]models.Place
	shops    map[string][]models.Shop
	products []models.Product
	err      error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		placeCalls: make(map[string]int),
		shopCalls:  make(map[string]int),
		places:     make(map[string][]models.Place),
		shops:      make(map[string][]models.Shop),
	}
}

func (f *fakeFetcher) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	f.routeCalls++
	return f.routes, f.err
}

func (f *fakeFetcher) FetchPlacesByRoute(ctx context.Context, routeID string) ([]models.Place, error) {
	f.placeCalls[routeID]++
	return f.places[routeID], f.err
}

func (f *fakeFetcher) FetchShopsByPlace(ctx context.Context, placeID string) ([]models.Shop, error) {
	f.shopCalls[placeID]++
	return f.shops[placeID], f.err
}

func (f *fakeFetcher) FetchProducts(ctx context.Context) ([]models.Product, error) {
	f.productCalls++
	return f.products, f.err
}

type mapMirror struct {
	data map[string][]byte
}

func newMapMirror() *mapMirror { return &mapMirror{data: make(map[string][]byte)} }

func (m *mapMirror) Save(key string, value interface{}) {
	if b, err := json.Marshal(value); err == nil {
		m.data[key] = b
	}
}

func (m *mapMirror) Load(key string, into interface{}) bool {
	b, ok := m.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, into) == nil
}

func (m *mapMirror) Clear(key string) { delete(m.data, key) }

func TestRoutesFetchedOnceThenCached(t *testing.T) {
	f := newFakeFetcher()
	f.routes = []models.Route{{ID: "north", Name: "North"}}
	s := New(f, newMapMirror(), eventbus.New())

	for i := 0; i < 3; i++ {
		routes, err := s.Routes(context.Background(), false)
		if err != nil || len(routes) != 1 {
			t.Fatalf("Routes returned %v, %v", routes, err)
		}
	}
	if f.routeCalls != 1 {
		t.Fatalf("expected a single fetch, got %d", f.routeCalls)
	}
}

func TestForceRefreshBypassesCache(t *testing.T) {
	f := newFakeFetcher()
	f.routes = []models.Route{{ID: "north"}}
	s := New(f, newMapMirror(), eventbus.New())

	s.Routes(context.Background(), false)
	s.Routes(context.Background(), true)
	if f.routeCalls != 2 {
		t.Fatalf("expected 2 fetches with force, got %d", f.routeCalls)
	}
}

func TestPlacesCachedPerRouteAndPublished(t *testing.T) {
	f := newFakeFetcher()
	f.places["north"] = []models.Place{{ID: "north_old_market", Name: "Old Market", RouteID: "north"}}
	bus := eventbus.New()
	s := New(f, newMapMirror(), bus)

	var published *PlacesUpdate
	bus.Subscribe(eventbus.TopicPlacesUpdated, func(p interface{}) {
		u := p.(PlacesUpdate)
		published = &u
	})

	s.Places(context.Background(), "north", false)
	s.Places(context.Background(), "north", false)

	if f.placeCalls["north"] != 1 {
		t.Fatalf("expected one fetch per route, got %d", f.placeCalls["north"])
	}
	if published == nil || published.RouteID != "north" || len(published.Places) != 1 {
		t.Fatalf("expected places-updated with route payload, got %+v", published)
	}
}

func TestEmptyResultIsCachedNotRefetched(t *testing.T) {
	f := newFakeFetcher()
	s := New(f, newMapMirror(), eventbus.New())

	places, err := s.Places(context.Background(), "lonely", false)
	if err != nil || len(places) != 0 {
		t.Fatalf("expected empty result, got %v, %v", places, err)
	}
	s.Places(context.Background(), "lonely", false)

	if f.placeCalls["lonely"] != 1 {
		t.Fatalf("expected empty result to be cached, got %d fetches", f.placeCalls["lonely"])
	}
}

func TestBlankIDsShortCircuit(t *testing.T) {
	f := newFakeFetcher()
	s := New(f, newMapMirror(), eventbus.New())

	if places, err := s.Places(context.Background(), "", false); err != nil || places != nil {
		t.Fatalf("expected nil for blank route, got %v, %v", places, err)
	}
	if shops, err := s.Shops(context.Background(), "", false); err != nil || shops != nil {
		t.Fatalf("expected nil for blank place, got %v, %v", shops, err)
	}
	if len(f.placeCalls)+len(f.shopCalls) != 0 {
		t.Fatal("expected no fetches for blank ids")
	}
}

func TestFetchErrorPropagatesAndCacheStaysEmpty(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("network down")
	s := New(f, newMapMirror(), eventbus.New())

	if _, err := s.Routes(context.Background(), false); err == nil {
		t.Fatal("expected error to propagate")
	}

	f.err = nil
	f.routes = []models.Route{{ID: "north"}}
	routes, err := s.Routes(context.Background(), false)
	if err != nil || len(routes) != 1 {
		t.Fatalf("expected recovery after error, got %v, %v", routes, err)
	}
}

func TestSnapshotSurvivesRestartThroughMirror(t *testing.T) {
	mirror := newMapMirror()
	f := newFakeFetcher()
	f.routes = []models.Route{{ID: "north"}}

	s := New(f, mirror, eventbus.New())
	s.Routes(context.Background(), false)

	// new store over the same mirror: cache is warm, no fetch needed
	f2 := newFakeFetcher()
	s2 := New(f2, mirror, eventbus.New())
	routes, err := s2.Routes(context.Background(), false)
	if err != nil || len(routes) != 1 {
		t.Fatalf("expected mirrored snapshot to restore, got %v, %v", routes, err)
	}
	if f2.routeCalls != 0 {
		t.Fatalf("expected no fetch after mirror restore, got %d", f2.routeCalls)
	}
}

func TestStaleSnapshotVersionDiscarded(t *testing.T) {
	mirror := newMapMirror()
	mirror.Save(CacheKey, map[string]interface{}{
		"version": CacheVersion + 1,
		"routes":  []models.Route{{ID: "ghost"}},
	})

	f := newFakeFetcher()
	f.routes = []models.Route{{ID: "north"}}
	s := New(f, mirror, eventbus.New())

	routes, _ := s.Routes(context.Background(), false)
	if len(routes) != 1 || routes[0].ID != "north" {
		t.Fatalf("expected stale snapshot to be ignored, got %+v", routes)
	}
}

func TestAddAndRemoveMutateCacheAndPublish(t *testing.T) {
	bus := eventbus.New()
	s := New(newFakeFetcher(), newMapMirror(), bus)

	updates := 0
	bus.Subscribe(eventbus.TopicShopsUpdated, func(p interface{}) { updates++ })

	s.AddShop("north_old_market", models.Shop{ID: "shop-1", Name: "Sharma Stores"})
	shops, _ := s.Shops(context.Background(), "north_old_market", false)
	if len(shops) != 1 {
		t.Fatalf("expected added shop in cache, got %+v", shops)
	}

	s.RemoveShop("north_old_market", "shop-1")
	shops, _ = s.Shops(context.Background(), "north_old_market", false)
	if len(shops) != 0 {
		t.Fatalf("expected shop removed from cache, got %+v", shops)
	}
	if updates != 2 {
		t.Fatalf("expected 2 shops-updated events, got %d", updates)
	}
}

func TestFindProduct(t *testing.T) {
	s := New(newFakeFetcher(), newMapMirror(), eventbus.New())
	s.AddProduct(models.Product{ID: "p1", Category: "Dairy", Name: "Milk 500ml", SellingPrice: 25})

	p, ok := s.FindProduct("Dairy", "Milk 500ml")
	if !ok || p.SellingPrice != 25 {
		t.Fatalf("expected product hit, got %+v ok=%v", p, ok)
	}
	if _, ok := s.FindProduct("Dairy", "Butter"); ok {
		t.Fatal("expected miss for unknown product")
	}
}
