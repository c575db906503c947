package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supporthub/backend/internal/export"
	"github.com/supporthub/backend/internal/http/middleware"
	"github.com/supporthub/backend/internal/service"
)

// @Summary Submit feedback against the open phase
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body service.Submission true "feedback"
// @Success 201 {object} models.Feedback
// @Failure 409 {object} map[string]any
// @Router /api/feedbacks [post]
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var sub service.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(sub); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ident := middleware.MustIdentity(c)
	inserted, err := h.Intake.Submit(c.Request.Context(), sub, ident.UserID)
	if err != nil {
		var verr service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
		case errors.Is(err, service.ErrNoActivePhase):
			writeError(c, http.StatusConflict, "NO_ACTIVE_PHASE",
				"هیچ فاز فعالی وجود ندارد. لطفاً با سرشیفت هماهنگ کنید.", nil)
		default:
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to store feedback", err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, inserted)
}

// @Summary Filtered live feed
// @Tags feedback
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/feedbacks [get]
func (h *Handler) FeedbacksList(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date filter", err.Error())
		return
	}
	items, err := h.Store.ListFeedbacks(c.Request.Context(), filters)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list feedbacks", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// @Summary Export the filtered feed as a spreadsheet
// @Tags feedback
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /api/feedbacks/export [get]
func (h *Handler) ExportFeedbacks(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date filter", err.Error())
		return
	}
	records, err := h.Store.ListFeedbacks(c.Request.Context(), filters)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list feedbacks", err.Error())
		return
	}
	profiles, err := h.Store.ListProfiles(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load profiles", err.Error())
		return
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.UserID] = p.FullName
	}

	buf, err := export.Workbook(records, names)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build workbook", err.Error())
		return
	}

	filename := fmt.Sprintf("feedbacks-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// streamHeartbeat keeps intermediaries from reaping idle SSE connections.
const streamHeartbeat = 30 * time.Second

// @Summary Server-sent invalidation stream
// @Tags feedback
// @Produce text/event-stream
// @Router /api/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	signals, cancel := h.Bus.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ident := middleware.MustIdentity(c)
	h.Logger.Info().Str("user_id", ident.UserID).Msg("stream client connected")
	defer h.Logger.Info().Str("user_id", ident.UserID).Msg("stream client disconnected")

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-signals:
			c.SSEvent("invalidate", gin.H{"at": time.Now().UTC()})
		case <-heartbeat.C:
			c.SSEvent("ping", nil)
		}
		return true
	})
}
