package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/royantony199-hue/seoshopifybloggenerator/internal/models"
)

// parseID parses a positive integer path parameter.
func parseID(c *gin.Context, paramName, entityType string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + entityType + " ID",
		})
		return 0, false
	}
	return id, true
}

// handleRepositoryError maps repository sentinels to HTTP statuses.
func handleRepositoryError(c *gin.Context, err error, entityType, operation string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": entityType + " not found",
		})
	case errors.Is(err, models.ErrKeywordsUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Some keywords not found or already processed",
		})
	case errors.Is(err, models.ErrLimitExceeded):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Monthly blog limit exceeded",
		})
	case errors.Is(err, models.ErrAlreadyPublished):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Blog already published to Shopify",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to " + operation + " " + entityType,
		})
	}
}
