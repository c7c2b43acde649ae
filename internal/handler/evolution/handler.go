package evolution

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medlinx/clinic-api/internal/model"
	"github.com/medlinx/clinic-api/internal/service/evolution"
	apperrors "github.com/medlinx/clinic-api/pkg/errors"
	"github.com/medlinx/clinic-api/pkg/httputil"
)

type Handler struct {
	service *evolution.Service
}

func NewHandler(service *evolution.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	evolutions := r.Group("/evolutions")
	{
		evolutions.POST("", h.CreateEvolution)
		evolutions.GET("", h.ListEvolutions)
		evolutions.GET("/:id", h.GetEvolution)
		evolutions.PUT("/:id", h.UpdateEvolution)
		evolutions.DELETE("/:id", h.DeleteEvolution)
	}
}

func (h *Handler) CreateEvolution(c *gin.Context) {
	var req model.CreateEvolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request payload", err))
		return
	}

	ev, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, ev)
}

func (h *Handler) GetEvolution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid evolution ID", err))
		return
	}

	ev, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, ev)
}

func (h *Handler) ListEvolutions(c *gin.Context) {
	var patientID *uuid.UUID
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
			return
		}
		patientID = &id
	}

	evolutions, err := h.service.List(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, evolutions)
}

func (h *Handler) UpdateEvolution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid evolution ID", err))
		return
	}

	var req model.UpdateEvolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request payload", err))
		return
	}

	ev, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, ev)
}

func (h *Handler) DeleteEvolution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid evolution ID", err))
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
