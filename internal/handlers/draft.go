package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kazzy/internal/draft"
	"kazzy/internal/lineitems"
	"kazzy/internal/models"
)

type draftRowRequest struct {
	ProductCategory string  `json:"productCategory"`
	ProductName     string  `json:"productName"`
	OrderQuantity   int     `json:"orderQuantity"`
	SellingPrice    float64 `json:"sellingPrice"`
	MRP             float64 `json:"mrp"`
}

func (r draftRowRequest) toLineItem() models.LineItem {
	return models.LineItem{
		ProductCategory: r.ProductCategory,
		ProductName:     r.ProductName,
		OrderQuantity:   r.OrderQuantity,
		SellingPrice:    r.SellingPrice,
		MRP:             r.MRP,
	}
}

type updateDraftRequest struct {
	RouteID      *string           `json:"routeId"`
	PlaceID      *string           `json:"placeId"`
	PlaceName    *string           `json:"placeName"`
	ShopID       *string           `json:"shopId"`
	ShopName     *string           `json:"shopName"`
	DeliveryDate *string           `json:"deliveryDate"` // YYYY-MM-DD, empty clears
	Rows         []draftRowRequest `json:"rows"`
}

func draftResponse(c *gin.Context, m *draft.Manager) gin.H {
	d := m.Draft(c.Request.Context())
	return gin.H{
		"draft":      d,
		"grandTotal": lineitems.GrandTotal(d.Rows),
		"totalLabel": lineitems.FormatTotal(lineitems.GrandTotal(d.Rows)),
		"syncStatus": m.SyncStatus(),
	}
}

// GetDraft restores (on first call) and returns the current draft.
func GetDraft(m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		restored := m.Initialize(c.Request.Context())
		resp := draftResponse(c, m)
		resp["restored"] = restored
		c.JSON(http.StatusOK, resp)
	}
}

// UpdateDraft applies selection and row changes through the manager's
// whitelisted path and persists.
func UpdateDraft(m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/draft"
		defer handlePanic(c, route)

		var req updateDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx := c.Request.Context()
		if req.RouteID != nil {
			m.Update(ctx, "routeId", *req.RouteID)
		}
		if req.PlaceID != nil {
			m.Update(ctx, "placeId", *req.PlaceID)
		}
		if req.PlaceName != nil {
			m.Update(ctx, "placeName", *req.PlaceName)
		}
		if req.ShopID != nil {
			m.Update(ctx, "shopId", *req.ShopID)
		}
		if req.ShopName != nil {
			m.Update(ctx, "shopName", *req.ShopName)
		}
		if req.DeliveryDate != nil {
			if *req.DeliveryDate == "" {
				m.Update(ctx, "deliveryDate", nil)
			} else {
				when, err := time.Parse("2006-01-02", *req.DeliveryDate)
				if err != nil {
					respondWithError(c, http.StatusBadRequest, route, "invalid delivery date")
					return
				}
				m.Update(ctx, "deliveryDate", when)
			}
		}
		if req.Rows != nil {
			rows := make([]models.LineItem, 0, len(req.Rows))
			for _, r := range req.Rows {
				rows = append(rows, r.toLineItem())
			}
			m.SetRows(ctx, rows)
		}

		m.Persist(ctx)
		c.JSON(http.StatusOK, draftResponse(c, m))
	}
}

// UpsertDraftRow writes a single row by index and persists.
func UpsertDraftRow(m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/draft/rows/:index"
		defer handlePanic(c, route)

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil || index < 0 {
			respondWithError(c, http.StatusBadRequest, route, "invalid row index")
			return
		}

		var req draftRowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if err := m.UpsertRow(c.Request.Context(), index, req.toLineItem()); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		m.Persist(c.Request.Context())
		c.JSON(http.StatusOK, draftResponse(c, m))
	}
}

// DeleteDraftRow removes a row by index and persists.
func DeleteDraftRow(m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/draft/rows/:index"
		defer handlePanic(c, route)

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil || index < 0 {
			respondWithError(c, http.StatusBadRequest, route, "invalid row index")
			return
		}

		m.DeleteRow(c.Request.Context(), index)
		m.Persist(c.Request.Context())
		c.JSON(http.StatusOK, draftResponse(c, m))
	}
}

// DiscardDraft abandons the draft in all tiers.
func DiscardDraft(m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.Discard(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "draft discarded"})
	}
}

// DraftSyncStatus exposes the background remote-write state.
func DraftSyncStatus(m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"syncStatus": m.SyncStatus()})
	}
}
