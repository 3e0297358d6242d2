package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// parseUintParam parses a numeric path parameter.
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}

// parseIntParam parses a numeric path parameter that may legitimately be
// zero or negative, leaving range checks to the service.
func parseIntParam(c *gin.Context, name string) (int, bool) {
	raw := c.Param(name)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// parseDateQuery parses an optional ?name=2006-01-02 query parameter.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}
