package professional

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	"github.com/medlinx/clinic-api/internal/service/professional"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
	"github.com/medlinx/clinic-api/pkg/httputil"
)

type Handler struct {
	service *professional.Service
}

func NewHandler(service *professional.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	professionals := r.Group("/professionals")
	{
		professionals.POST("", h.CreateProfessional)
		professionals.GET("", h.ListProfessionals)
		professionals.GET("/:id", h.GetProfessional)
		professionals.PUT("/:id", h.UpdateProfessional)
		professionals.DELETE("/:id", h.DeleteProfessional)
		professionals.POST("/:id/clinics/:clinicId", h.AssignClinic)
		professionals.DELETE("/:id/clinics/:clinicId", h.RemoveClinic)
	}
}

func (h *Handler) CreateProfessional(c *gin.Context) {
	var req model.CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request payload", err))
		return
	}

	p, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, p)
}

func (h *Handler) GetProfessional(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid professional ID", err))
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) ListProfessionals(c *gin.Context) {
	professionals, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, professionals)
}

func (h *Handler) UpdateProfessional(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid professional ID", err))
		return
	}

	var req model.UpdateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request payload", err))
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) DeleteProfessional(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid professional ID", err))
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) AssignClinic(c *gin.Context) {
	professionalID, clinicID, ok := h.affiliationIDs(c)
	if !ok {
		return
	}

	if err := h.service.AssignClinic(c.Request.Context(), professionalID, clinicID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"assigned": true})
}

func (h *Handler) RemoveClinic(c *gin.Context) {
	professionalID, clinicID, ok := h.affiliationIDs(c)
	if !ok {
		return
	}

	if err := h.service.RemoveClinic(c.Request.Context(), professionalID, clinicID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) affiliationIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	professionalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid professional ID", err))
		return uuid.Nil, uuid.Nil, false
	}

	clinicID, err := uuid.Parse(c.Param("clinicId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid clinic ID", err))
		return uuid.Nil, uuid.Nil, false
	}

	return professionalID, clinicID, true
}
