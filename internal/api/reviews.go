package api

import (
	"net/http"

	"marketplace-api/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listReviews(c *gin.Context) {
	result, err := h.reviews.ListReviews(c.Request.Context(), parsePage(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":    result.Items,
		"pagination": result.Pagination,
	})
}

func (h *Handler) getReview(c *gin.Context) {
	id, ok := parseID(c, "review")
	if !ok {
		return
	}

	review, err := h.reviews.GetReview(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *Handler) createReview(c *gin.Context) {
	var req validation.ReviewCreate
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// updateReview serves both PUT and PATCH
func (h *Handler) updateReview(c *gin.Context) {
	id, ok := parseID(c, "review")
	if !ok {
		return
	}

	var req validation.ReviewUpdate
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.UpdateReview(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *Handler) deleteReview(c *gin.Context) {
	id, ok := parseID(c, "review")
	if !ok {
		return
	}

	review, err := h.reviews.DeleteReview(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
