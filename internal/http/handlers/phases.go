package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/supporthub/backend/internal/db"
	"github.com/supporthub/backend/internal/http/middleware"
)

type CreatePhaseRequest struct {
	Title string `json:"title" validate:"required"`
}

// @Summary List phases, newest first
// @Tags phases
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/phases [get]
func (h *Handler) PhasesList(c *gin.Context) {
	items, err := h.Store.ListPhases(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list phases", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Currently open phase
// @Tags phases
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/phases/active [get]
func (h *Handler) ActivePhase(c *gin.Context) {
	phase, err := h.Store.ActivePhase(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load active phase", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"phase": phase})
}

// @Summary Open a new phase
// @Tags phases
// @Accept json
// @Produce json
// @Param request body CreatePhaseRequest true "phase"
// @Success 201 {object} models.Phase
// @Failure 409 {object} map[string]any
// @Router /api/phases [post]
func (h *Handler) CreatePhase(c *gin.Context) {
	var req CreatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ident := middleware.MustIdentity(c)
	phase, err := h.Store.CreatePhase(c.Request.Context(), req.Title, ident.UserID)
	if err != nil {
		if errors.Is(err, db.ErrPhaseAlreadyOpen) {
			writeError(c, http.StatusConflict, "PHASE_ALREADY_OPEN", "An open phase already exists", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create phase", err.Error())
		return
	}
	h.Logger.Info().Str("phase_id", phase.ID).Str("created_by", ident.UserID).Msg("phase opened")
	h.Bus.Publish()
	c.JSON(http.StatusCreated, phase)
}

// @Summary Close an open phase
// @Tags phases
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/phases/{id}/close [post]
func (h *Handler) ClosePhase(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.ClosePhase(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrPhaseNotOpen) {
			writeError(c, http.StatusConflict, "PHASE_NOT_OPEN", "Phase is not open", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to close phase", err.Error())
		return
	}
	h.Logger.Info().Str("phase_id", id).Msg("phase closed")
	h.Bus.Publish()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Issue type catalogue
// @Tags phases
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/issue-types [get]
func (h *Handler) IssueTypes(c *gin.Context) {
	items, err := h.Store.ListIssueTypes(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list issue types", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
