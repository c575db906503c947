package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/supporthub/backend/internal/ai"
	"github.com/supporthub/backend/internal/stats"
)

// @Summary Dashboard snapshot
// @Tags analytics
// @Produce json
// @Success 200 {object} dashboard.Snapshot
// @Router /api/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	snap := h.Refresher.Snapshot()
	phase, err := h.Store.ActivePhase(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load active phase", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap, "active_phase": phase})
}

// @Summary Force a dashboard recomputation
// @Tags analytics
// @Produce json
// @Success 200 {object} dashboard.Snapshot
// @Router /api/dashboard/refresh [post]
func (h *Handler) DashboardRefresh(c *gin.Context) {
	snap, err := h.Refresher.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to refresh dashboard", err.Error())
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Chart aggregates over a filtered record set
// @Tags analytics
// @Produce json
// @Success 200 {object} stats.Overview
// @Router /api/analytics/overview [get]
func (h *Handler) AnalyticsOverview(c *gin.Context) {
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
	c.JSON(http.StatusOK, stats.BuildOverview(h.Bucketer, records))
}

// @Summary AI summary over the filtered record set
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 429 {object} map[string]any
// @Failure 402 {object} map[string]any
// @Router /api/analytics/summary [post]
func (h *Handler) AISummary(c *gin.Context) {
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

	block := stats.PromptStats(h.Bucketer, records)
	analysis, err := h.AI.Analyze(c.Request.Context(), block)
	if err != nil {
		status, code, message := aiErrorResponse(err)
		h.Logger.Warn().Err(err).Str("code", code).Msg("ai analysis failed")
		writeError(c, status, code, message, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis, "stats": block})
}

// aiErrorResponse maps the summarizer error taxonomy onto the wire. The
// messages are surfaced to operators verbatim.
func aiErrorResponse(err error) (int, string, string) {
	var rl ai.RateLimitError
	if errors.As(err, &rl) {
		return http.StatusTooManyRequests, "RATE_LIMITED", "محدودیت تعداد درخواست. لطفاً کمی صبر کنید."
	}
	var qe ai.QuotaError
	if errors.As(err, &qe) {
		return http.StatusPaymentRequired, "QUOTA_EXCEEDED", "اعتبار ناکافی. لطفاً اعتبار خود را شارژ کنید."
	}
	return http.StatusBadGateway, "AI_ERROR", "خطا در تولید تحلیل"
}
