package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"civicapp/internal/config"

	"github.com/gin-gonic/gin"
)

// ParsePagination parses standard pagination query params from the request.
// It enforces bounds and applies defaults when values are missing or invalid.
func ParsePagination(c *gin.Context) (int, int) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("page_size", strconv.Itoa(config.DefaultPageSize))

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 {
		size = config.DefaultPageSize
	}
	if size > config.MaxPageSize {
		size = config.MaxPageSize
	}

	return page, size
}

// ParseFilters returns a map of non-empty trimmed query params for the given keys.
func ParseFilters(c *gin.Context, keys ...string) map[string]string {
	filters := make(map[string]string, len(keys))
	for _, key := range keys {
		if val := strings.TrimSpace(c.Query(key)); val != "" {
			filters[key] = val
		}
	}
	return filters
}

// WritePaginated standardizes paginated responses with a flexible items key,
// a pagination block, and optional extras.
func WritePaginated(c *gin.Context, itemsKey string, items interface{}, page, pageSize, total int, extra gin.H) {
	response := gin.H{
		itemsKey: items,
		"pagination": gin.H{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	}
	for k, v := range extra {
		response[k] = v
	}
	c.JSON(http.StatusOK, response)
}
