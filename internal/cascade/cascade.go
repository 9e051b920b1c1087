package cascade

import (
	"context"
	"log"
	"sync"

	"kazzy/internal/models"
)

// State of one selection level.
type State string

const (
	// Unselected: nothing chosen yet (or upstream changed and reset us).
	Unselected State = "unselected"
	// Loading: upstream selected, options being resolved.
	Loading State = "loading"
	// Populated: options resolved, something selectable.
	Populated State = "populated"
	// Empty: upstream is valid but has no data. Distinct from Unselected
	// so the UI can say "no places on this route" instead of "pick one".
	Empty State = "empty"
)

// Catalog is the option source, satisfied by *datastore.Store.
type Catalog interface {
	Routes(ctx context.Context, force bool) ([]models.Route, error)
	Places(ctx context.Context, routeID string, force bool) ([]models.Place, error)
	Shops(ctx context.Context, placeID string, force bool) ([]models.Shop, error)
}

// RouteLevel is the snapshot of the top level.
type RouteLevel struct {
	State    State          `json:"state"`
	Selected string         `json:"selected"`
	Options  []models.Route `json:"options"`
}

// PlaceLevel is the snapshot of the middle level.
type PlaceLevel struct {
	State        State          `json:"state"`
	Selected     string         `json:"selected"`
	SelectedName string         `json:"selectedName"`
	Options      []models.Place `json:"options"`
}

// ShopLevel is the snapshot of the bottom level.
type ShopLevel struct {
	State        State         `json:"state"`
	Selected     string        `json:"selected"`
	SelectedName string        `json:"selectedName"`
	Options      []models.Shop `json:"options"`
}

// Cascade drives the route → place → shop dependent selection. Selecting
// a route resets downstream levels and resolves places through the shared
// cache; selecting a place cascades into shops the same way. Each level
// carries a monotonic generation counter; a resolution that comes back
// after a newer selection is discarded, so rapid A→B→A switching cannot
// leave level B's data on screen.
type Cascade struct {
	store Catalog

	mu       sync.Mutex
	routes   RouteLevel
	places   PlaceLevel
	shops    ShopLevel
	placeGen uint64
	shopGen  uint64

	// stubbed in tests to interleave a competing selection between the
	// place install and the trailing shop resolution
	afterPlaces func()
}

func New(store Catalog) *Cascade {
	return &Cascade{
		store:  store,
		routes: RouteLevel{State: Unselected},
		places: PlaceLevel{State: Unselected},
		shops:  ShopLevel{State: Unselected},
	}
}

// LoadRoutes resolves the free top level.
func (c *Cascade) LoadRoutes(ctx context.Context) error {
	routes, err := c.store.Routes(ctx, false)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Println("[CASCADE] route fetch failed:", err)
		// a failed fetch is not "no data"; the level stays unselected
		// and the error surfaces to the caller
		c.routes.State = Unselected
		c.routes.Options = nil
		return err
	}
	c.routes.Options = routes
	if len(routes) == 0 {
		c.routes.State = Empty
		return nil
	}
	c.routes.State = Populated
	return nil
}

// SelectRoute chooses a route, resets place and shop to unselected, and
// resolves places (and, via default selection, shops).
func (c *Cascade) SelectRoute(ctx context.Context, routeID string) error {
	c.mu.Lock()
	c.routes.Selected = routeID
	// a previous choice survives the reset as a hint; it is kept only if
	// it still appears in the freshly resolved options
	c.places = PlaceLevel{State: Loading, Selected: c.places.Selected}
	c.shops = ShopLevel{State: Unselected, Selected: c.shops.Selected}
	c.placeGen++
	c.shopGen++
	gen := c.placeGen
	c.mu.Unlock()

	if routeID == "" {
		c.mu.Lock()
		if gen == c.placeGen {
			c.places = PlaceLevel{State: Unselected}
		}
		c.mu.Unlock()
		return nil
	}

	options, err := c.store.Places(ctx, routeID, false)

	c.mu.Lock()
	if gen != c.placeGen {
		// a newer route selection won the race; drop this resolution
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		log.Printf("[CASCADE] place fetch for route %q failed: %v", routeID, err)
		c.places = PlaceLevel{State: Unselected}
		c.mu.Unlock()
		return err
	}
	if len(options) == 0 {
		c.places = PlaceLevel{State: Empty}
		c.mu.Unlock()
		return nil
	}

	c.places.Options = options
	c.places.State = Populated
	selected := pickPlace(options, c.places.Selected)
	c.places.Selected = selected.ID
	c.places.SelectedName = selected.Name
	c.mu.Unlock()

	if c.afterPlaces != nil {
		c.afterPlaces()
	}
	return c.resolveShops(ctx, selected.ID, gen)
}

// SelectPlace chooses a place among the current options and cascades into
// shop resolution.
func (c *Cascade) SelectPlace(ctx context.Context, placeID string) error {
	c.mu.Lock()
	c.places.Selected = placeID
	c.places.SelectedName = ""
	for _, p := range c.places.Options {
		if p.ID == placeID {
			c.places.SelectedName = p.Name
			break
		}
	}
	gen := c.placeGen
	c.mu.Unlock()

	return c.resolveShops(ctx, placeID, gen)
}

// resolveShops resolves the bottom level for placeID. placeGen is the
// place generation the caller observed; if a newer route selection has
// bumped it by the time we get here, this resolution is already stale
// and must not touch the shop level at all.
func (c *Cascade) resolveShops(ctx context.Context, placeID string, placeGen uint64) error {
	c.mu.Lock()
	if placeGen != c.placeGen {
		c.mu.Unlock()
		return nil
	}
	c.shops = ShopLevel{State: Loading, Selected: c.shops.Selected}
	c.shopGen++
	gen := c.shopGen
	c.mu.Unlock()

	if placeID == "" {
		c.mu.Lock()
		if gen == c.shopGen {
			c.shops = ShopLevel{State: Unselected}
		}
		c.mu.Unlock()
		return nil
	}

	options, err := c.store.Shops(ctx, placeID, false)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.shopGen || placeGen != c.placeGen {
		return nil
	}
	if err != nil {
		log.Printf("[CASCADE] shop fetch for place %q failed: %v", placeID, err)
		c.shops = ShopLevel{State: Unselected}
		return err
	}
	if len(options) == 0 {
		c.shops = ShopLevel{State: Empty}
		return nil
	}

	c.shops.Options = options
	c.shops.State = Populated
	selected := pickShop(options, c.shops.Selected)
	c.shops.Selected = selected.ID
	c.shops.SelectedName = selected.Name
	return nil
}

// SelectShop chooses a shop among the resolved options.
func (c *Cascade) SelectShop(shopID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.shops.Options {
		if s.ID == shopID {
			c.shops.Selected = s.ID
			c.shops.SelectedName = s.Name
			return
		}
	}
}

// Restore seeds the cascade from a saved draft and resolves every level,
// keeping the saved selections when they still exist.
func (c *Cascade) Restore(ctx context.Context, routeID, placeID, shopID string) error {
	if err := c.LoadRoutes(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.places.Selected = placeID
	c.shops.Selected = shopID
	c.mu.Unlock()

	return c.SelectRoute(ctx, routeID)
}

// Route returns the top-level snapshot.
func (c *Cascade) Route() RouteLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	lvl := c.routes
	lvl.Options = append([]models.Route(nil), c.routes.Options...)
	return lvl
}

// Place returns the middle-level snapshot.
func (c *Cascade) Place() PlaceLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	lvl := c.places
	lvl.Options = append([]models.Place(nil), c.places.Options...)
	return lvl
}

// Shop returns the bottom-level snapshot.
func (c *Cascade) Shop() ShopLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	lvl := c.shops
	lvl.Options = append([]models.Shop(nil), c.shops.Options...)
	return lvl
}

// pickPlace keeps a still-valid previous choice, otherwise defaults to
// the first option.
func pickPlace(options []models.Place, previous string) models.Place {
	for _, p := range options {
		if p.ID == previous {
			return p
		}
	}
	return options[0]
}

func pickShop(options []models.Shop, previous string) models.Shop {
	for _, s := range options {
		if s.ID == previous {
			return s
		}
	}
	return options[0]
}
