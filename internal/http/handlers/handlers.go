package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/supporthub/backend/internal/ai"
	"github.com/supporthub/backend/internal/auth"
	"github.com/supporthub/backend/internal/dashboard"
	"github.com/supporthub/backend/internal/db"
	"github.com/supporthub/backend/internal/realtime"
	"github.com/supporthub/backend/internal/service"
	"github.com/supporthub/backend/internal/stats"
)

type Handler struct {
	Store     *db.Store
	Auth      *auth.Service
	AI        ai.Summarizer
	Intake    *service.IntakeService
	Refresher *dashboard.Refresher
	Bus       *realtime.Bus
	Bucketer  stats.Bucketer
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "stream_clients": h.Bus.SubscriberCount()})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// parseFilters reads the feed/report query parameters into the storage
// filter set. Unparsable dates are reported, not silently dropped.
func parseFilters(c *gin.Context) (db.FeedbackFilters, error) {
	f := db.FeedbackFilters{
		PhaseID:    strings.TrimSpace(c.Query("phase_id")),
		City:       strings.TrimSpace(c.Query("city")),
		CenterName: strings.TrimSpace(c.Query("center_name")),
		CreatedBy:  strings.TrimSpace(c.Query("created_by")),
		Search:     strings.TrimSpace(c.Query("q")),
	}
	if raw := strings.TrimSpace(c.Query("issue_types")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.IssueTypes = append(f.IssueTypes, part)
			}
		}
	}
	var err error
	if f.DateFrom, err = parseDate(c.Query("date_from")); err != nil {
		return f, err
	}
	if f.DateTo, err = parseDate(c.Query("date_to")); err != nil {
		return f, err
	}
	return f, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// bare dates come from the date-range picker
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
	}
	t = t.UTC()
	return &t, nil
}
