package draft

import (
	"context"
	"log"
	"sync"
	"time"

	"kazzy/internal/eventbus"
	"kazzy/internal/lineitems"
	"kazzy/internal/models"
)

// MirrorKey is the fixed key the draft lives under in the local tier.
const MirrorKey = "draftOrder"

// Mirror is the local synchronous tier (see internal/mirror). Saves and
// clears never fail into the caller.
type Mirror interface {
	Save(key string, value interface{})
	Load(key string, into interface{}) bool
	Clear(key string)
}

// Update is the payload published on draft-updated.
type Update struct {
	Draft      models.DraftOrder `json:"draft"`
	GrandTotal float64           `json:"grandTotal"`
}

// Manager is the single source of truth for the in-memory draft during an
// editing session. All mutation goes through its whitelisted methods, and
// Persist is the only path allowed to write the storage tiers; that keeps
// the three copies from diverging.
type Manager struct {
	remote RemoteStore
	mirror Mirror
	syncer *Syncer
	bus    *eventbus.Bus

	mu     sync.Mutex
	loaded bool
	draft  models.DraftOrder
}

func NewManager(remote RemoteStore, mirror Mirror, bus *eventbus.Bus) *Manager {
	return &Manager{
		remote: remote,
		mirror: mirror,
		syncer: NewSyncer(remote),
		bus:    bus,
	}
}

// restoreLocked populates memory from the most specific available
// source: mirror first, then remote, with a remote hit backfilling the
// mirror so the next restore is local. Every read and mutation path runs
// it, so a first request that edits one field cannot silently overwrite
// a draft saved by an earlier session. Caller holds m.mu.
func (m *Manager) restoreLocked(ctx context.Context) {
	if m.loaded {
		return
	}
	m.loaded = true

	var local models.DraftOrder
	if m.mirror.Load(MirrorKey, &local) && !local.Empty() {
		m.draft = local
		return
	}

	remote, ok, err := m.remote.Load(ctx)
	if err != nil {
		log.Println("[DRAFT] [ERROR] remote load failed:", err)
		return
	}
	if ok && !remote.Empty() {
		m.draft = remote
		m.mirror.Save(MirrorKey, m.draft)
	}
}

// Initialize restores the draft from the most specific available source:
// memory, then mirror, then remote. Returns whether a non-empty draft
// was found.
func (m *Manager) Initialize(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(ctx)
	return !m.draft.Empty()
}

// Draft restores if needed and returns a copy of the current draft.
func (m *Manager) Draft(ctx context.Context) models.DraftOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(ctx)
	d := m.draft
	d.Rows = append([]models.LineItem(nil), m.draft.Rows...)
	return d
}

// Update mutates a single whitelisted selection field. Unknown fields are
// ignored; the draft shape is fixed and ad hoc fields must not appear.
func (m *Manager) Update(ctx context.Context, field string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(ctx)

	switch field {
	case "routeId":
		if v, ok := value.(string); ok {
			m.draft.RouteID = v
		}
	case "placeId":
		if v, ok := value.(string); ok {
			m.draft.PlaceID = v
		}
	case "placeName":
		if v, ok := value.(string); ok {
			m.draft.PlaceName = v
		}
	case "shopId":
		if v, ok := value.(string); ok {
			m.draft.ShopID = v
		}
	case "shopName":
		if v, ok := value.(string); ok {
			m.draft.ShopName = v
		}
	case "deliveryDate":
		switch v := value.(type) {
		case time.Time:
			m.draft.DeliveryDate = &v
		case *time.Time:
			m.draft.DeliveryDate = v
		case nil:
			m.draft.DeliveryDate = nil
		}
	default:
		log.Printf("[DRAFT] update: unknown field %q ignored", field)
	}
}

// SetRows replaces the row list wholesale (restore, table re-render).
func (m *Manager) SetRows(ctx context.Context, rows []models.LineItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(ctx)
	m.draft.Rows = append([]models.LineItem(nil), rows...)
}

// UpsertRow writes a row at index, growing the list when index points one
// past the end. Appending is refused with lineitems.ErrIncompleteRow
// while the last row still has no product or quantity; out-of-range
// indices are ignored.
func (m *Manager) UpsertRow(ctx context.Context, index int, row models.LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(ctx)

	tbl := lineitems.New(m.draft.Rows)
	switch {
	case index >= 0 && index < tbl.Len():
	case index == tbl.Len():
		if _, err := tbl.AddRow(); err != nil {
			return err
		}
	default:
		return nil
	}
	tbl.SetProduct(index, row.ProductCategory, row.ProductName, row.SellingPrice, row.MRP)
	tbl.SetQuantity(index, row.OrderQuantity)
	m.draft.Rows = tbl.Rows()
	return nil
}

// DeleteRow removes a row by index.
func (m *Manager) DeleteRow(ctx context.Context, index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(ctx)

	tbl := lineitems.New(m.draft.Rows)
	tbl.DeleteRow(index)
	m.draft.Rows = tbl.Rows()
}

// Reconcile drops in-memory rows not meeting the persistence invariant
// and recomputes their totals, returning the canonical list. Idempotent.
// Persist applies the same filter to its snapshot without touching the
// in-memory rows.
func (m *Manager) Reconcile(ctx context.Context) []models.LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(ctx)
	m.draft.Rows = lineitems.CanonicalRows(m.draft.Rows)
	return append([]models.LineItem(nil), m.draft.Rows...)
}

// Persist writes a reconciled snapshot to the mirror synchronously, then
// hands the remote write to the syncer and publishes draft-updated with
// the fresh grand total. Only canonical rows reach the storage tiers;
// incomplete rows stay in memory as editing state. Mirror-before-remote
// is load-bearing: the local tier stays at least as fresh as the remote
// one.
func (m *Manager) Persist(ctx context.Context) {
	m.mu.Lock()
	m.restoreLocked(ctx)
	snapshot := m.draft
	snapshot.Rows = lineitems.CanonicalRows(m.draft.Rows)
	m.mu.Unlock()

	m.mirror.Save(MirrorKey, snapshot)
	m.syncer.Enqueue(snapshot)
	m.bus.Publish(eventbus.TopicDraftUpdated, Update{
		Draft:      snapshot,
		GrandTotal: lineitems.GrandTotal(snapshot.Rows),
	})
}

// Discard clears all three tiers. The remote delete is best-effort; the
// mirror and memory are cleared regardless so the session moves on.
func (m *Manager) Discard(ctx context.Context) {
	m.mu.Lock()
	m.draft = models.DraftOrder{}
	m.loaded = true
	m.mu.Unlock()

	m.mirror.Clear(MirrorKey)
	if err := m.remote.Delete(ctx); err != nil {
		log.Println("[DRAFT] [ERROR] remote delete failed:", err)
	}
	m.bus.Publish(eventbus.TopicDraftDeleted, nil)
}

// SyncStatus exposes the state of the background remote write.
func (m *Manager) SyncStatus() Status {
	return m.syncer.Status()
}

// Flush waits for queued remote writes to settle. Shutdown helper; the
// interactive paths never block on it.
func (m *Manager) Flush() {
	m.syncer.Flush()
}

// Close stops the background syncer after draining.
func (m *Manager) Close() {
	m.syncer.Close()
}
