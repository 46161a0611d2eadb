package handler

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkwell/internal/httperr"
)

func respondError(c *gin.Context, err *httperr.Error) {
	c.JSON(err.Status, httperr.Envelope{Error: err})
}

// respondInternal 记录原始错误与关联标识，只向客户端暴露通用 500 信封
func respondInternal(c *gin.Context, err error) {
	correlationID := uuid.New().String()
	log.Printf("internal error [%s] %s %s: %v", correlationID, c.Request.Method, c.Request.URL.Path, err)
	respondError(c, httperr.Internal())
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, httperr.BadRequest("VALIDATION_ERROR", message))
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintQuery(c *gin.Context, key string) uint {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

func parseIntQuery(c *gin.Context, key string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
