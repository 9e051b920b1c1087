package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kazzy/internal/cascade"
	"kazzy/internal/draft"
)

type selectRequest struct {
	ID string `json:"id"`
}

func selectionResponse(casc *cascade.Cascade) gin.H {
	return gin.H{
		"route": casc.Route(),
		"place": casc.Place(),
		"shop":  casc.Shop(),
	}
}

// syncSelection copies the cascade's resolved selection into the draft
// and persists it. This is the only way selection changes reach storage.
func syncSelection(c *gin.Context, casc *cascade.Cascade, m *draft.Manager) {
	place := casc.Place()
	shop := casc.Shop()
	ctx := c.Request.Context()

	m.Update(ctx, "routeId", casc.Route().Selected)
	m.Update(ctx, "placeId", place.Selected)
	m.Update(ctx, "placeName", place.SelectedName)
	m.Update(ctx, "shopId", shop.Selected)
	m.Update(ctx, "shopName", shop.SelectedName)
	m.Persist(ctx)
}

// GetSelection resolves routes (first call) and returns all three levels,
// seeding the cascade from a restored draft when one exists.
func GetSelection(casc *cascade.Cascade, m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/selection"
		defer handlePanic(c, route)

		if m.Initialize(c.Request.Context()) && casc.Route().Selected == "" {
			d := m.Draft(c.Request.Context())
			if err := casc.Restore(c.Request.Context(), d.RouteID, d.PlaceID, d.ShopID); err != nil {
				respondWithError(c, http.StatusServiceUnavailable, route, "failed to resolve selection")
				return
			}
		} else if err := casc.LoadRoutes(c.Request.Context()); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "failed to load routes")
			return
		}

		c.JSON(http.StatusOK, selectionResponse(casc))
	}
}

// SelectRoute changes the top level; place and shop re-resolve and the
// draft follows.
func SelectRoute(casc *cascade.Cascade, m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/selection/route"
		defer handlePanic(c, route)

		var req selectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if err := casc.SelectRoute(c.Request.Context(), req.ID); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "failed to resolve places")
			return
		}

		syncSelection(c, casc, m)
		c.JSON(http.StatusOK, selectionResponse(casc))
	}
}

// SelectPlace changes the middle level; shops re-resolve.
func SelectPlace(casc *cascade.Cascade, m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/selection/place"
		defer handlePanic(c, route)

		var req selectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if err := casc.SelectPlace(c.Request.Context(), req.ID); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "failed to resolve shops")
			return
		}

		syncSelection(c, casc, m)
		c.JSON(http.StatusOK, selectionResponse(casc))
	}
}

// SelectShop changes the bottom level.
func SelectShop(casc *cascade.Cascade, m *draft.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/selection/shop"
		defer handlePanic(c, route)

		var req selectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		casc.SelectShop(req.ID)
		syncSelection(c, casc, m)
		c.JSON(http.StatusOK, selectionResponse(casc))
	}
}
