package orders

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"kazzy/internal/draft"
	"kazzy/internal/eventbus"
	"kazzy/internal/lineitems"
	"kazzy/internal/models"
	"kazzy/internal/orderid"
)

var (
	ErrInvalidOrderID   = errors.New("invalid order id format")
	ErrEmptyOrder       = errors.New("order has no items")
	ErrMissingSelection = errors.New("route, place and shop must be selected")
	ErrDuplicateOrderID = errors.New("order id already exists")
)

// Filters narrows a Fetch. OrderID takes priority and short-circuits the
// rest; Date selects the whole calendar day of the order date.
type Filters struct {
	OrderID string
	RouteID string
	PlaceID string
	ShopID  string
	Date    *time.Time
}

// DayRange returns the [start, end] bounds of the filtered day.
func (f Filters) DayRange() (time.Time, time.Time, bool) {
	if f.Date == nil {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := f.Date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, f.Date.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)
	return start, end, true
}

// Changes is the partial update accepted for an existing order. OrderID
// and CreatedAt are immutable and deliberately absent.
type Changes struct {
	Status       *string           `json:"status,omitempty"`
	DeliveryDate *time.Time        `json:"deliveryDate,omitempty"`
	Items        []models.LineItem `json:"items,omitempty"`
}

// Repo is the persistence side of the order lifecycle; the Mongo
// implementation lives in repo.go.
type Repo interface {
	Insert(ctx context.Context, o models.Order) error
	Get(ctx context.Context, id string) (models.Order, bool, error)
	Update(ctx context.Context, id string, c Changes, total *float64, updatedAt time.Time) error
	Delete(ctx context.Context, id string) (bool, error)
	Find(ctx context.Context, f Filters) ([]models.Order, error)
	IDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Service converts the draft into submitted orders and manages them
// afterwards. All validation happens before the first write; a rejected
// submission leaves both the orders collection and the draft untouched.
type Service struct {
	repo   Repo
	drafts *draft.Manager
	bus    *eventbus.Bus
	userID string

	now func() time.Time
}

func NewService(repo Repo, drafts *draft.Manager, bus *eventbus.Bus, userID string) *Service {
	return &Service{repo: repo, drafts: drafts, bus: bus, userID: userID, now: time.Now}
}

// NextSequence resolves the next free sequence number for a date by
// scanning existing ids with that day's prefix and taking max + 1.
func (s *Service) NextSequence(ctx context.Context, date time.Time) (int, error) {
	prefix := orderid.DayPrefix(date)
	ids, err := s.repo.IDsWithPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, id := range ids {
		dash := strings.Index(id, "-")
		if dash < 0 {
			continue
		}
		if n, err := strconv.Atoi(id[dash+1:]); err == nil && n > max {
			max = n
		}
	}
	return max + 1, nil
}

// NextOrderID builds the canonical id for the next order of a date.
func (s *Service) NextOrderID(ctx context.Context, date time.Time) (string, error) {
	seq, err := s.NextSequence(ctx, date)
	if err != nil {
		return "", err
	}
	return orderid.GenerateOrderID(seq, date), nil
}

// Place submits the current draft as an order. The draft's rows are
// reconciled to the persistence invariant first; an empty result rejects
// the submission before any write. On success the draft is destroyed in
// all tiers and order-placed is published.
func (s *Service) Place(ctx context.Context, rawID string, orderDate time.Time) (models.Order, error) {
	id := orderid.NormalizeOrderID(rawID)
	if !orderid.IsValidOrderID(id) {
		return models.Order{}, ErrInvalidOrderID
	}

	d := s.drafts.Draft(ctx)
	if d.RouteID == "" || d.PlaceID == "" || d.ShopID == "" {
		return models.Order{}, ErrMissingSelection
	}

	items := lineitems.CanonicalRows(d.Rows)
	if len(items) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	now := s.now().UTC()
	order := models.Order{
		OrderID:      id,
		UserID:       s.userID,
		OrderDate:    orderDate,
		DeliveryDate: d.DeliveryDate,
		RouteID:      d.RouteID,
		PlaceID:      d.PlaceID,
		PlaceName:    d.PlaceName,
		ShopID:       d.ShopID,
		ShopName:     d.ShopName,
		Items:        items,
		Total:        lineitems.GrandTotal(items),
		Status:       models.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		return models.Order{}, err
	}

	s.drafts.Discard(ctx)
	s.bus.Publish(eventbus.TopicOrderPlaced, order)
	return order, nil
}

// Get fetches one order by loosely formatted id. Absent is ok=false.
func (s *Service) Get(ctx context.Context, rawID string) (models.Order, bool, error) {
	id := orderid.NormalizeOrderID(rawID)
	if !orderid.IsValidOrderID(id) {
		return models.Order{}, false, ErrInvalidOrderID
	}
	return s.repo.Get(ctx, id)
}

// Update applies a partial change, recomputing totals when items change
// and stamping updatedAt. OrderID and CreatedAt stay as created.
func (s *Service) Update(ctx context.Context, rawID string, c Changes) error {
	id := orderid.NormalizeOrderID(rawID)
	if !orderid.IsValidOrderID(id) {
		return ErrInvalidOrderID
	}

	var total *float64
	if c.Items != nil {
		c.Items = lineitems.CanonicalRows(c.Items)
		if len(c.Items) == 0 {
			return ErrEmptyOrder
		}
		t := lineitems.GrandTotal(c.Items)
		total = &t
	}

	return s.repo.Update(ctx, id, c, total, s.now().UTC())
}

// Delete removes an order. Absent is ok=false, not an error.
func (s *Service) Delete(ctx context.Context, rawID string) (bool, error) {
	id := orderid.NormalizeOrderID(rawID)
	if !orderid.IsValidOrderID(id) {
		return false, ErrInvalidOrderID
	}
	return s.repo.Delete(ctx, id)
}

// Fetch lists orders for the filter set, newest first. An order-id filter
// short-circuits to a point lookup.
func (s *Service) Fetch(ctx context.Context, f Filters) ([]models.Order, error) {
	if f.OrderID != "" {
		order, ok, err := s.Get(ctx, f.OrderID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []models.Order{}, nil
		}
		return []models.Order{order}, nil
	}

	orders, err := s.repo.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
	return orders, nil
}
