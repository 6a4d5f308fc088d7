package api

import (
	"net/http"

	"marketplace-api/internal/validation"

	"github.com/gin-gonic/gin"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

func (h *Handler) listOrders(c *gin.Context) {
	result, err := h.orders.ListOrders(c.Request.Context(), parsePage(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":     result.Items,
		"pagination": result.Pagination,
	})
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// createOrder handles order creation. A repeated Idempotency-Key answers
// with the first order and marks the response as replayed.
func (h *Handler) createOrder(c *gin.Context) {
	var req validation.OrderCreate
	if !h.bindJSON(c, &req) {
		return
	}

	order, replayed, err := h.orders.CreateOrder(c.Request.Context(), req, c.GetHeader(idempotencyHeader))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if replayed {
		c.Header(replayedHeader, "true")
	}
	c.JSON(http.StatusCreated, order)
}

// updateOrder serves both PUT and PATCH
func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	var req validation.OrderUpdate
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := parseID(c, "order")
	if !ok {
		return
	}

	order, err := h.orders.DeleteOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
