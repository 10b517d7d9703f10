package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/worldkernel-backend/internal/http/middleware"
	"github.com/yungbote/worldkernel-backend/internal/http/response"
	"github.com/yungbote/worldkernel-backend/internal/normalization"
	"github.com/yungbote/worldkernel-backend/internal/services"
)

type KernelHandler struct {
	kernels services.KernelService
	forks   services.ForkService
	feed    services.FeedService
	forms   services.KernelFormService
}

func NewKernelHandler(
	kernels services.KernelService,
	forks services.ForkService,
	feed services.FeedService,
	forms services.KernelFormService,
) *KernelHandler {
	return &KernelHandler{kernels: kernels, forks: forks, feed: feed, forms: forms}
}

// kernelForm is the submitted form. Tags arrive as the raw comma-separated input.
type kernelForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	License     string `json:"license"`
}

func (f kernelForm) input() normalization.KernelInput {
	return normalization.KernelInput{
		Title:       f.Title,
		Description: f.Description,
		TagsInput:   f.Tags,
		License:     f.License,
	}
}

func bindKernelForm(c *gin.Context) (kernelForm, bool) {
	var req kernelForm
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return req, false
	}
	return req, true
}

// GET /api/kernels
func (kh *KernelHandler) Feed(c *gin.Context) {
	limit, err := limitParam(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	cards, err := kh.feed.BuildFeed(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"kernels": cards})
}

// GET /api/kernels/:id
func (kh *KernelHandler) Detail(c *gin.Context) {
	id, err := kernelID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	detail, err := kh.feed.KernelDetail(c.Request.Context(), middleware.RequestDataFrom(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// POST /api/kernels
func (kh *KernelHandler) Create(c *gin.Context) {
	req, ok := bindKernelForm(c)
	if !ok {
		return
	}
	k, err := kh.kernels.Create(c.Request.Context(), middleware.RequestDataFrom(c), req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"kernel": k})
}

// PUT /api/kernels/:id
func (kh *KernelHandler) Update(c *gin.Context) {
	id, err := kernelID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	req, ok := bindKernelForm(c)
	if !ok {
		return
	}
	k, err := kh.kernels.Update(c.Request.Context(), middleware.RequestDataFrom(c), id, req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"kernel": k})
}

// DELETE /api/kernels/:id
func (kh *KernelHandler) Delete(c *gin.Context) {
	id, err := kernelID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if err := kh.kernels.Delete(c.Request.Context(), middleware.RequestDataFrom(c), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/kernels/:id/fork
func (kh *KernelHandler) Fork(c *gin.Context) {
	parentID, err := kernelID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	req, ok := bindKernelForm(c)
	if !ok {
		return
	}
	k, err := kh.forks.Fork(c.Request.Context(), middleware.RequestDataFrom(c), parentID, req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"kernel": k})
}

// GET /api/forms/kernel
func (kh *KernelHandler) CreateForm(c *gin.Context) {
	state, err := kh.forms.CreateForm(c.Request.Context(), middleware.RequestDataFrom(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, state)
}

// GET /api/kernels/:id/fork
func (kh *KernelHandler) ForkForm(c *gin.Context) {
	id, err := kernelID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	state, err := kh.forms.ForkForm(c.Request.Context(), middleware.RequestDataFrom(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, state)
}

// GET /api/kernels/:id/edit
func (kh *KernelHandler) EditForm(c *gin.Context) {
	id, err := kernelID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	state, err := kh.forms.EditForm(c.Request.Context(), middleware.RequestDataFrom(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, state)
}
