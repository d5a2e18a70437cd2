package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/smpconsole/subscription-tracker/internal/domain/ports"
	"github.com/smpconsole/subscription-tracker/internal/middleware"
	"github.com/smpconsole/subscription-tracker/pkg/observability"
)

// NewRouter assembles the gin engine with the full API surface under
// /api/v1 behind principal resolution.
func NewRouter(
	subscriptions *SubscriptionHandler,
	catalog *CatalogHandler,
	reporting *ReportingHandler,
	logger ports.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(observability.RequestMetrics())

	api := router.Group("/api/v1")
	api.Use(middleware.Principal())

	subs := api.Group("/subscriptions")
	{
		subs.POST("", subscriptions.Create)
		subs.GET("", subscriptions.List)
		subs.GET("/:id", subscriptions.Get)
		subs.PATCH("/:id", subscriptions.Update)
		subs.DELETE("/:id", subscriptions.Delete)
		subs.POST("/:id/pause", subscriptions.Pause)
		subs.POST("/:id/resume", subscriptions.Resume)
		subs.POST("/:id/cancel", subscriptions.Cancel)
		subs.GET("/:id/history", subscriptions.History)
	}

	rules := api.Group("/notification-rules")
	{
		rules.POST("", subscriptions.CreateRule)
		rules.GET("", subscriptions.ListRules)
		rules.GET("/:id", subscriptions.GetRule)
		rules.PATCH("/:id", subscriptions.UpdateRule)
		rules.DELETE("/:id", subscriptions.DeleteRule)
	}

	events := api.Group("/renewal-events")
	{
		events.POST("", subscriptions.CreateEvent)
		events.GET("", subscriptions.ListEvents)
		events.GET("/:id", subscriptions.GetEvent)
		events.PATCH("/:id", subscriptions.UpdateEvent)
		events.POST("/:id/process", subscriptions.MarkEventProcessed)
		events.DELETE("/:id", subscriptions.DeleteEvent)
	}

	providers := api.Group("/providers")
	{
		providers.POST("", catalog.CreateProvider)
		providers.GET("", catalog.ListProviders)
		providers.GET("/:id", catalog.GetProvider)
		providers.PATCH("/:id", catalog.UpdateProvider)
		providers.DELETE("/:id", catalog.DeleteProvider)
	}

	cycles := api.Group("/billing-cycles")
	{
		cycles.POST("", catalog.CreateCycle)
		cycles.GET("", catalog.ListCycles)
		cycles.GET("/:id", catalog.GetCycle)
		cycles.DELETE("/:id", catalog.DeleteCycle)
	}

	api.GET("/dashboard", reporting.Dashboard)
	api.GET("/renewals/upcoming", reporting.UpcomingRenewals)

	return router
}
