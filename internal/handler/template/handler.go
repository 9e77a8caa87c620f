package template

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brickmart/booking-api/internal/model"
	"github.com/brickmart/booking-api/internal/service/template"
	apperrors "github.com/brickmart/booking-api/pkg/errors"
	"github.com/brickmart/booking-api/pkg/httputil"
)

type Handler struct {
	service *template.Service
}

func NewHandler(service *template.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the template admin endpoints
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/templates", h.CreateTemplate)
	r.GET("/templates", h.ListTemplates)
	r.GET("/templates/:id", h.GetTemplate)
	r.PUT("/templates/:id", h.UpdateTemplate)
	r.DELETE("/templates/:id", h.DeactivateTemplate)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req model.CreateSlotTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	tpl, err := h.service.CreateTemplate(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, tpl)
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, templates)
}

func (h *Handler) GetTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid template ID"))
		return
	}

	tpl, err := h.service.GetTemplate(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tpl)
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid template ID"))
		return
	}

	var req model.UpdateSlotTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	tpl, err := h.service.UpdateTemplate(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tpl)
}

// DeactivateTemplate retires a template without deleting it. Existing
// bookings keep their slot; the slot just stops being offered.
func (h *Handler) DeactivateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid template ID"))
		return
	}

	if err := h.service.DeactivateTemplate(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deactivated": true})
}
