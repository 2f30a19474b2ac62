package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "github.com/ndy40/racing-pointsheet/internal/api/context"
	"github.com/ndy40/racing-pointsheet/internal/api/handlers"
	"github.com/ndy40/racing-pointsheet/internal/api/middleware"
)

type Dependencies struct {
	WebhookHandler *handlers.WebhookHandler
	HealthHandler  *handlers.HealthHandler
	MetricsHandler *handlers.MetricsHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	authMid := deps.AuthMiddleware
	apiRead := middleware.RateLimit("api_read")
	apiWrite := middleware.RateLimit("api_write")

	// Webhook management
	router.POST("/api/v1/webhooks",
		chain(deps.WebhookHandler.Create, authMid.Handle, apiWrite))
	router.GET("/api/v1/webhooks",
		chain(deps.WebhookHandler.List, authMid.Handle, apiRead))
	router.GET("/api/v1/webhook-event-types",
		chain(deps.WebhookHandler.EventTypes, authMid.Handle, apiRead))
	router.GET("/api/v1/webhook-platforms",
		chain(deps.WebhookHandler.Platforms, authMid.Handle, apiRead))
	router.GET("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Get, authMid.Handle, apiRead))
	router.PATCH("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Update, authMid.Handle, apiWrite))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Delete, authMid.Handle, apiWrite))
	router.POST("/api/v1/webhooks/:webhook_id/toggle",
		chain(deps.WebhookHandler.Toggle, authMid.Handle, apiWrite))

	// Subscription management
	router.POST("/api/v1/webhook-subscriptions",
		chain(deps.WebhookHandler.CreateSubscription, authMid.Handle, apiWrite))
	router.GET("/api/v1/webhooks/:webhook_id/subscriptions",
		chain(deps.WebhookHandler.ListSubscriptions, authMid.Handle, apiRead))
	router.DELETE("/api/v1/webhook-subscriptions/:subscription_id",
		chain(deps.WebhookHandler.DeleteSubscription, authMid.Handle, apiWrite))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
