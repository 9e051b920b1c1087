package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kazzy/internal/orders"
)

type placeOrderRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	OrderDate string `json:"orderDate"` // YYYY-MM-DD, defaults to today
	OrderTime string `json:"orderTime"` // HH:MM, defaults to now
}

// PlaceOrder submits the current draft under the given order id.
func PlaceOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders"
		defer handlePanic(c, route)

		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "orderId is required")
			return
		}

		orderDate := time.Now()
		if req.OrderDate != "" {
			clock := req.OrderTime
			if clock == "" {
				clock = "00:00"
			}
			parsed, err := time.Parse("2006-01-02 15:04", req.OrderDate+" "+clock)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid order date")
				return
			}
			orderDate = parsed
		}

		order, err := svc.Place(c.Request.Context(), req.OrderID, orderDate)
		if err != nil {
			switch {
			case errors.Is(err, orders.ErrInvalidOrderID),
				errors.Is(err, orders.ErrEmptyOrder),
				errors.Is(err, orders.ErrMissingSelection):
				respondWithError(c, http.StatusBadRequest, route, err.Error())
			case errors.Is(err, orders.ErrDuplicateOrderID):
				respondWithError(c, http.StatusConflict, route, err.Error())
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{"order": order, "message": "order placed"})
	}
}

// GetOrders lists orders for the query filters.
func GetOrders(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"

		filters := orders.Filters{
			OrderID: c.Query("orderId"),
			RouteID: c.Query("routeId"),
			PlaceID: c.Query("placeId"),
			ShopID:  c.Query("shopId"),
		}
		if raw := c.Query("date"); raw != "" {
			day, err := time.Parse("2006-01-02", raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid date filter")
				return
			}
			filters.Date = &day
		}

		list, err := svc.Fetch(c.Request.Context(), filters)
		if err != nil {
			if errors.Is(err, orders.ErrInvalidOrderID) {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
	}
}

// GetOrder fetches a single order by id.
func GetOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id"

		order, ok, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, orders.ErrInvalidOrderID) {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrder applies a partial change to an order.
func UpdateOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id"
		defer handlePanic(c, route)

		var changes orders.Changes
		if err := c.ShouldBindJSON(&changes); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if err := svc.Update(c.Request.Context(), c.Param("id"), changes); err != nil {
			switch {
			case errors.Is(err, orders.ErrInvalidOrderID), errors.Is(err, orders.ErrEmptyOrder):
				respondWithError(c, http.StatusBadRequest, route, err.Error())
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order updated"})
	}
}

// DeleteOrder removes an order by id.
func DeleteOrder(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		ok, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, orders.ErrInvalidOrderID) {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

// NextOrderID returns the next free id for a date (today by default).
func NextOrderID(svc *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/next-id"

		date := time.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid date")
				return
			}
			date = parsed
		}

		id, err := svc.NextOrderID(c.Request.Context(), date)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"orderId": id})
	}
}
