package api

import (
	"net/http"
	"strconv"

	"marketplace-api/internal/errs"
	"marketplace-api/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError renders err as {error, details?}. Anything that is not an
// *errs.HTTPError becomes a bare 500 and only the log sees the cause.
func (h *Handler) respondError(c *gin.Context, err error) {
	httpErr, ok := errs.As(err)
	if !ok || httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	if !ok {
		httpErr = errs.NewInternalServerError()
	}

	body := gin.H{"error": httpErr.Message}
	switch {
	case len(httpErr.Errors) > 0:
		body["details"] = httpErr.Errors
	case len(httpErr.Details) > 0:
		body["details"] = httpErr.Details
	}
	c.JSON(httpErr.Status, body)
}

// bindJSON decodes the request body into dst, answering 400 on malformed input
func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": []string{err.Error()},
		})
		return false
	}
	return true
}

// parseID reads a positive :id, answering 400 "Invalid <resource> ID" otherwise
func parseID(c *gin.Context, resource string) (int64, bool) {
	// ids are SERIAL columns
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + resource + " ID",
		})
		return 0, false
	}
	return id, true
}

// parsePage reads page and limit, falling back to defaults for missing,
// non-numeric or non-positive values and capping both
func parsePage(c *gin.Context) models.PageRequest {
	page := min(positiveInt(c.Query("page"), models.DefaultPage), models.MaxPage)
	limit := min(positiveInt(c.Query("limit"), models.DefaultLimit), models.MaxLimit)
	return models.PageRequest{Page: page, Limit: limit}
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
