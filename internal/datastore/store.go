package datastore

import (
	"context"
	"sync"
	"time"

	"kazzy/internal/eventbus"
	"kazzy/internal/models"
)

// CacheVersion guards the mirrored snapshot; an old version on disk is
// discarded instead of migrated.
const CacheVersion = 1

// CacheKey is the mirror key the catalog snapshot lives under.
const CacheKey = "kazzyStore"

// Fetcher is the remote read side for catalog data. The mongo-backed
// implementation lives in fetcher.go; tests substitute a fake.
type Fetcher interface {
	FetchRoutes(ctx context.Context) ([]models.Route, error)
	FetchPlacesByRoute(ctx context.Context, routeID string) ([]models.Place, error)
	FetchShopsByPlace(ctx context.Context, placeID string) ([]models.Shop, error)
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// Mirror is the local snapshot tier (see internal/mirror).
type Mirror interface {
	Save(key string, value interface{})
	Load(key string, into interface{}) bool
	Clear(key string)
}

// PlacesUpdate is the payload published on places-updated.
type PlacesUpdate struct {
	RouteID string         `json:"routeId"`
	Places  []models.Place `json:"places"`
}

// ShopsUpdate is the payload published on shops-updated.
type ShopsUpdate struct {
	PlaceID string        `json:"placeId"`
	Shops   []models.Shop `json:"shops"`
}

type snapshot struct {
	Version   int                       `json:"version"`
	Timestamp time.Time                 `json:"timestamp"`
	Routes    []models.Route            `json:"routes"`
	Places    map[string][]models.Place `json:"places"`
	Shops     map[string][]models.Shop  `json:"shops"`
	Products  []models.Product          `json:"products"`
}

// Store is the shared cache-first catalog store. It is constructed per
// session context, not a package singleton, so independent sessions and
// tests get independent caches. Successful resolutions fan out through
// the bus so sibling views re-render without re-fetching.
type Store struct {
	fetcher Fetcher
	mirror  Mirror
	bus     *eventbus.Bus

	mu    sync.Mutex
	cache snapshot
}

func New(fetcher Fetcher, mirror Mirror, bus *eventbus.Bus) *Store {
	s := &Store{
		fetcher: fetcher,
		mirror:  mirror,
		bus:     bus,
		cache: snapshot{
			Version: CacheVersion,
			Places:  make(map[string][]models.Place),
			Shops:   make(map[string][]models.Shop),
		},
	}

	var persisted snapshot
	if mirror.Load(CacheKey, &persisted) && persisted.Version == CacheVersion {
		s.cache = persisted
		if s.cache.Places == nil {
			s.cache.Places = make(map[string][]models.Place)
		}
		if s.cache.Shops == nil {
			s.cache.Shops = make(map[string][]models.Shop)
		}
	}
	return s
}

func (s *Store) persistLocked() {
	s.cache.Timestamp = time.Now()
	s.mirror.Save(CacheKey, s.cache)
}

// Routes returns cached routes, fetching on first use or when forced.
func (s *Store) Routes(ctx context.Context, force bool) ([]models.Route, error) {
	s.mu.Lock()
	if !force && len(s.cache.Routes) > 0 {
		defer s.mu.Unlock()
		return append([]models.Route(nil), s.cache.Routes...), nil
	}
	s.mu.Unlock()

	routes, err := s.fetcher.FetchRoutes(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache.Routes = routes
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicRoutesUpdated, routes)
	return append([]models.Route(nil), routes...), nil
}

// Places returns the places of a route, cache first.
func (s *Store) Places(ctx context.Context, routeID string, force bool) ([]models.Place, error) {
	if routeID == "" {
		return nil, nil
	}

	s.mu.Lock()
	if cached, ok := s.cache.Places[routeID]; ok && !force {
		defer s.mu.Unlock()
		return append([]models.Place(nil), cached...), nil
	}
	s.mu.Unlock()

	places, err := s.fetcher.FetchPlacesByRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []models.Place{}
	}

	s.mu.Lock()
	s.cache.Places[routeID] = places
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicPlacesUpdated, PlacesUpdate{RouteID: routeID, Places: places})
	return append([]models.Place(nil), places...), nil
}

// Shops returns the shops of a place, cache first.
func (s *Store) Shops(ctx context.Context, placeID string, force bool) ([]models.Shop, error) {
	if placeID == "" {
		return nil, nil
	}

	s.mu.Lock()
	if cached, ok := s.cache.Shops[placeID]; ok && !force {
		defer s.mu.Unlock()
		return append([]models.Shop(nil), cached...), nil
	}
	s.mu.Unlock()

	shops, err := s.fetcher.FetchShopsByPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if shops == nil {
		shops = []models.Shop{}
	}

	s.mu.Lock()
	s.cache.Shops[placeID] = shops
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicShopsUpdated, ShopsUpdate{PlaceID: placeID, Shops: shops})
	return append([]models.Shop(nil), shops...), nil
}

// Products returns the full catalog, cache first.
func (s *Store) Products(ctx context.Context, force bool) ([]models.Product, error) {
	s.mu.Lock()
	if !force && len(s.cache.Products) > 0 {
		defer s.mu.Unlock()
		return append([]models.Product(nil), s.cache.Products...), nil
	}
	s.mu.Unlock()

	products, err := s.fetcher.FetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache.Products = products
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicProductsUpdated, products)
	return append([]models.Product(nil), products...), nil
}

// AddRoute appends a freshly created route to the cache. The database
// insert happens at the call site; the cache and its observers follow.
func (s *Store) AddRoute(route models.Route) {
	s.mu.Lock()
	s.cache.Routes = append(s.cache.Routes, route)
	routes := append([]models.Route(nil), s.cache.Routes...)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicRoutesUpdated, routes)
}

// AddPlace appends a place to its route's cache entry.
func (s *Store) AddPlace(routeID string, place models.Place) {
	s.mu.Lock()
	s.cache.Places[routeID] = append(s.cache.Places[routeID], place)
	places := append([]models.Place(nil), s.cache.Places[routeID]...)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicPlacesUpdated, PlacesUpdate{RouteID: routeID, Places: places})
}

// AddShop appends a shop to its place's cache entry.
func (s *Store) AddShop(placeID string, shop models.Shop) {
	s.mu.Lock()
	s.cache.Shops[placeID] = append(s.cache.Shops[placeID], shop)
	shops := append([]models.Shop(nil), s.cache.Shops[placeID]...)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicShopsUpdated, ShopsUpdate{PlaceID: placeID, Shops: shops})
}

// AddProduct appends a product to the cached catalog.
func (s *Store) AddProduct(product models.Product) {
	s.mu.Lock()
	s.cache.Products = append(s.cache.Products, product)
	products := append([]models.Product(nil), s.cache.Products...)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicProductsUpdated, products)
}

// RemovePlace drops a deleted place from the cache.
func (s *Store) RemovePlace(routeID, placeID string) {
	s.mu.Lock()
	kept := s.cache.Places[routeID][:0]
	for _, p := range s.cache.Places[routeID] {
		if p.ID != placeID {
			kept = append(kept, p)
		}
	}
	s.cache.Places[routeID] = kept
	places := append([]models.Place(nil), kept...)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicPlacesUpdated, PlacesUpdate{RouteID: routeID, Places: places})
}

// RemoveShop drops a deleted shop from the cache.
func (s *Store) RemoveShop(placeID, shopID string) {
	s.mu.Lock()
	kept := s.cache.Shops[placeID][:0]
	for _, sh := range s.cache.Shops[placeID] {
		if sh.ID != shopID {
			kept = append(kept, sh)
		}
	}
	s.cache.Shops[placeID] = kept
	shops := append([]models.Shop(nil), kept...)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(eventbus.TopicShopsUpdated, ShopsUpdate{PlaceID: placeID, Shops: shops})
}

// FindProduct looks a product up in the cache by category + name.
func (s *Store) FindProduct(category, name string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.cache.Products {
		if p.Category == category && p.Name == name {
			return p, true
		}
	}
	return models.Product{}, false
}

// Clear empties the cache and its mirrored snapshot.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cache = snapshot{
		Version: CacheVersion,
		Places:  make(map[string][]models.Place),
		Shops:   make(map[string][]models.Shop),
	}
	s.mu.Unlock()
	s.mirror.Clear(CacheKey)
}
