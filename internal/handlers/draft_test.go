package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"kazzy/internal/draft"
	"kazzy/internal/eventbus"
	"kazzy/internal/models"
)

type nullRemote struct{}

func (nullRemote) Save(ctx context.Context, d models.DraftOrder) error { return nil }
func (nullRemote) Load(ctx context.Context) (models.DraftOrder, bool, error) {
	return models.DraftOrder{}, false, nil
}
func (nullRemote) Delete(ctx context.Context) error { return nil }

type mapMirror struct {
	data map[string][]byte
}

func newMapMirror() *mapMirror {
	return &mapMirror{data: make(map[string][]byte)}
}

func (m *mapMirror) Save(key string, value interface{}) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.data[key] = b
}

func (m *mapMirror) Load(key string, into interface{}) bool {
	b, ok := m.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, into) == nil
}

func (m *mapMirror) Clear(key string) { delete(m.data, key) }

func newDraftRouter(t *testing.T) (*gin.Engine, *draft.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := draft.NewManager(nullRemote{}, newMapMirror(), eventbus.New())
	t.Cleanup(m.Close)

	r := gin.New()
	r.GET("/draft", GetDraft(m))
	r.PUT("/draft", UpdateDraft(m))
	r.PUT("/draft/rows/:index", UpsertDraftRow(m))
	r.DELETE("/draft/rows/:index", DeleteDraftRow(m))
	r.DELETE("/draft", DiscardDraft(m))
	return r, m
}

func TestGetDraftStartsEmpty(t *testing.T) {
	r, _ := newDraftRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/draft", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"restored":false`) {
		t.Fatalf("expected restored=false in response, got %s", body)
	}
	if !strings.Contains(body, `"grandTotal":0`) {
		t.Fatalf("expected zero grand total, got %s", body)
	}
}

func TestUpsertRowUpdatesTotalLabel(t *testing.T) {
	r, _ := newDraftRouter(t)

	row := `{"productCategory":"Milk","productName":"Milk 500ml","orderQuantity":2,"sellingPrice":25,"mrp":28}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/draft/rows/0", strings.NewReader(row)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"grandTotal":50`) {
		t.Fatalf("expected grand total 50, got %s", body)
	}
	if !strings.Contains(body, "Total: ₹50.00") {
		t.Fatalf("expected formatted total label, got %s", body)
	}
}

func TestUpdateDraftRejectsBadDeliveryDate(t *testing.T) {
	r, _ := newDraftRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/draft", strings.NewReader(`{"deliveryDate":"tomorrow"}`)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad delivery date, got %d", w.Code)
	}
}

func TestDeleteRowRejectsBadIndex(t *testing.T) {
	r, _ := newDraftRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/draft/rows/abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric index, got %d", w.Code)
	}
}

func TestDiscardDraftClearsState(t *testing.T) {
	r, m := newDraftRouter(t)

	row := `{"productCategory":"Milk","productName":"Milk 500ml","orderQuantity":1,"sellingPrice":25,"mrp":28}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/draft/rows/0", strings.NewReader(row)))
	if w.Code != http.StatusOK {
		t.Fatalf("seed row failed: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/draft", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if !m.Draft(context.Background()).Empty() {
		t.Fatal("expected draft to be empty after discard")
	}
}

func TestUpsertRowRefusesAppendPastIncompleteRow(t *testing.T) {
	r, _ := newDraftRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/draft/rows/0", strings.NewReader(`{"productCategory":"Dairy"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("incomplete row should be accepted as transient state, got %d", w.Code)
	}

	row := `{"productCategory":"Bakery","productName":"Bread","orderQuantity":1,"sellingPrice":40}`
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/draft/rows/1", strings.NewReader(row)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when appending past an incomplete row, got %d", w.Code)
	}
}
