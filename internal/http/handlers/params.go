package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
)

// kernelID parses the :id path param. A malformed id cannot name a kernel, so it reads as not found.
func kernelID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("kernel %q: %w", raw, pkgerrors.ErrNotFound)
	}
	return id, nil
}

// limitParam returns 0 when ?limit is absent so the service default applies.
func limitParam(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, pkgerrors.NewValidation("limit", "Limit must be a non-negative integer")
	}
	return n, nil
}
