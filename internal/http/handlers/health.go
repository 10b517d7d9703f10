package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/http/response"
)

// Pinger reports datastore reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			_ = c.Error(err)
			response.RespondError(c, http.StatusServiceUnavailable, "datastore_unavailable", errors.New("datastore unreachable"))
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
