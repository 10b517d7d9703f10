package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/http/response"
	"github.com/yungbote/worldkernel-backend/internal/services"
)

type ProfileHandler struct {
	feed services.FeedService
}

func NewProfileHandler(feed services.FeedService) *ProfileHandler {
	return &ProfileHandler{feed: feed}
}

// GET /api/profiles/:username
func (ph *ProfileHandler) GetProfile(c *gin.Context) {
	limit, err := limitParam(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	page, err := ph.feed.BuildProfilePage(c.Request.Context(), c.Param("username"), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/tags/:tag
func (ph *ProfileHandler) GetTag(c *gin.Context) {
	limit, err := limitParam(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	page, err := ph.feed.BuildTagFeed(c.Request.Context(), c.Param("tag"), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, page)
}
