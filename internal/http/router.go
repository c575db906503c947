package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/supporthub/backend/internal/ai"
	"github.com/supporthub/backend/internal/auth"
	"github.com/supporthub/backend/internal/config"
	"github.com/supporthub/backend/internal/dashboard"
	"github.com/supporthub/backend/internal/db"
	"github.com/supporthub/backend/internal/http/handlers"
	"github.com/supporthub/backend/internal/http/middleware"
	"github.com/supporthub/backend/internal/realtime"
	"github.com/supporthub/backend/internal/service"
	"github.com/supporthub/backend/internal/stats"

	_ "github.com/supporthub/backend/docs"
)

func Router(cfg config.Config, store *db.Store, authSvc *auth.Service, summarizer ai.Summarizer,
	refresher *dashboard.Refresher, bus *realtime.Bus, bucketer stats.Bucketer, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Auth:      authSvc,
		AI:        summarizer,
		Intake:    &service.IntakeService{Phases: store, Store: store, Bus: bus, Logger: logger},
		Refresher: refresher,
		Bus:       bus,
		Bucketer:  bucketer,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/login", h.SignIn)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(authSvc))
	{
		authed.POST("/auth/logout", h.SignOut)
		authed.GET("/auth/me", h.Me)
		authed.POST("/feedbacks", h.SubmitFeedback)
		authed.GET("/phases/active", h.ActivePhase)
		authed.GET("/issue-types", h.IssueTypes)
		authed.GET("/dashboard", h.Dashboard)
	}

	lead := authed.Group("")
	lead.Use(middleware.RequireShiftLead())
	{
		lead.GET("/feedbacks", h.FeedbacksList)
		lead.GET("/feedbacks/export", h.ExportFeedbacks)
		lead.GET("/stream", h.Stream)
		lead.GET("/analytics/overview", h.AnalyticsOverview)
		lead.POST("/analytics/summary", h.AISummary)
		lead.POST("/dashboard/refresh", h.DashboardRefresh)
		lead.GET("/phases", h.PhasesList)
		lead.POST("/phases", h.CreatePhase)
		lead.POST("/phases/:id/close", h.ClosePhase)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
