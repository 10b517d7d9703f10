package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/http/middleware"
	"github.com/yungbote/worldkernel-backend/internal/http/response"
	"github.com/yungbote/worldkernel-backend/internal/services"
)

type NavigationHandler struct {
	nav services.NavigationService
}

func NewNavigationHandler(nav services.NavigationService) *NavigationHandler {
	return &NavigationHandler{nav: nav}
}

// GET /api/nav?path=/kernel/new
func (nh *NavigationHandler) State(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		path = services.PathHome
	}
	state, err := nh.nav.State(c.Request.Context(), middleware.RequestDataFrom(c), path)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, state)
}
