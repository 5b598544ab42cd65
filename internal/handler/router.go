package handler

import (
	"database/sql"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"loan4farm-api/internal/metrics"
	"loan4farm-api/internal/service"
)

// Services - everything the HTTP layer calls into
type Services struct {
	DB            *sql.DB
	Auth          *service.AuthService
	Profiles      *service.ProfileService
	Notifications *service.NotificationService
	Analysis      *service.AnalysisService
	Assistant     *service.AssistantService
	Workflows     *service.LoanWorkflowService
	Catalog       *service.CatalogService
}

// NewRouter wires all routes
func NewRouter(s Services, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(metrics.Middleware, LoggingMiddleware(logger))

	router.HandleFunc("/healthz", NewHealthHandler(s.DB).Healthz).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// 1. OTP login
	authRouter := router.PathPrefix("/auth").Subrouter()
	NewAuthHandler(s.Auth, logger).RegisterRoutes(authRouter)

	// 2. Farmer routes, JWT required
	meRouter := router.PathPrefix("/api/v1/me").Subrouter()
	meRouter.Use(AuthMiddleware(s.Auth, logger))
	NewProfileHandler(s.Profiles, s.Auth, logger).RegisterRoutes(meRouter)
	NewNotificationHandler(s.Notifications).RegisterRoutes(meRouter.PathPrefix("/notifications").Subrouter())
	NewWorkflowHandler(s.Workflows, logger).RegisterRoutes(meRouter.PathPrefix("/workflows").Subrouter())

	// 3. Public API
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	NewCatalogHandler(s.Catalog).RegisterRoutes(apiRouter)
	NewAnalysisHandler(s.Analysis, s.Assistant, logger).RegisterRoutes(apiRouter)

	return router
}
