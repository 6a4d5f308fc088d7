package api

import (
	"net/http"

	"marketplace-api/internal/service"
	"marketplace-api/internal/validation"

	"github.com/gin-gonic/gin"
)

// listProducts lists stored products, or searches the games catalog when
// name, about or price is given
func (h *Handler) listProducts(c *gin.Context) {
	page := parsePage(c)
	search := service.ProductSearch{
		Name:  c.Query("name"),
		About: c.Query("about"),
		Price: c.Query("price"),
	}

	if search.Active() {
		result, err := h.products.SearchProducts(c.Request.Context(), search, page)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"products":   result.Products,
			"pagination": result.Pagination,
			"searchType": result.SearchType,
		})
		return
	}

	result, err := h.products.ListProducts(c.Request.Context(), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":   result.Items,
		"pagination": result.Pagination,
	})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req validation.ProductCreate
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	product, err := h.products.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
