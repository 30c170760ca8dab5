package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KAsare1/Gymhub-server/cmd/utils"
	"github.com/KAsare1/Gymhub-server/config"
	"github.com/KAsare1/Gymhub-server/logger"
	"github.com/KAsare1/Gymhub-server/metrics"
	"github.com/KAsare1/Gymhub-server/service/admin"
	"github.com/KAsare1/Gymhub-server/service/client"
	"github.com/KAsare1/Gymhub-server/service/consent"
	"github.com/KAsare1/Gymhub-server/service/notifications"
	"github.com/KAsare1/Gymhub-server/service/receipt"
	"github.com/KAsare1/Gymhub-server/service/subscription"
	"github.com/KAsare1/Gymhub-server/service/user"
	"github.com/KAsare1/Gymhub-server/service/worker"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type APIServer struct {
	cfg      *config.Config
	services *Services
	logger   *zap.Logger
	registry *prometheus.Registry
}

func NewApiServer(cfg *config.Config, services *Services, logger *zap.Logger) *APIServer {
	return &APIServer{
		cfg:      cfg,
		services: services,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
}

// Handler builds the full HTTP handler: /health, /metrics and the /api/v1 routes.
func (s *APIServer) Handler() http.Handler {
	svc := s.services
	httpMetrics := metrics.NewHTTPMetrics(s.cfg.ServiceName, s.registry)

	router := mux.NewRouter()
	router.Use(logger.Middleware(s.logger), httpMetrics.Middleware)

	router.HandleFunc("/health", s.health(svc.Store)).Methods("GET")
	router.Handle("/metrics", metrics.Handler(s.registry)).Methods("GET")

	subrouter := router.PathPrefix("/api/v1").Subrouter()

	// Unauthenticated: signup, logins and the consent page.
	public := subrouter.NewRoute().Subrouter()

	// Platform administrators: bearer token only, no tenant.
	platform := subrouter.NewRoute().Subrouter()
	platform.Use(utils.AuthMiddleware(svc.Tokens))

	// Gym owners and workers: bearer token resolved to a tenant scope.
	gym := subrouter.NewRoute().Subrouter()
	gym.Use(utils.AuthMiddleware(svc.Tokens), svc.Resolver.Middleware)

	consent.NewConsentHandler(svc.Consent).RegisterRoutes(public)
	admin.NewAdminHandler(svc.Admin).RegisterRoutes(public, platform)
	user.NewHandler(svc.Accounts).RegisterRoutes(public, gym)

	client.NewClientHandler(svc.Clients).RegisterRoutes(gym)
	receipt.NewReceiptHandler(svc.Store, svc.Issuer).RegisterRoutes(gym)
	subscription.NewSubscriptionHandler(svc.Gate).RegisterRoutes(gym)
	worker.NewWorkerHandler(svc.Store, s.cfg.Auth.BcryptCost, s.logger).RegisterRoutes(gym)
	notification.NewNotificationHandler(svc.Store).RegisterRoutes(gym)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", logger.RequestIDHeader}),
		handlers.ExposedHeaders([]string{logger.RequestIDHeader}),
	)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(s.cfg.Server.Env != "production"))(cors(router))
}

func (s *APIServer) health(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
			utils.RespondWithMessage(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.Envelope{"status": "ok"})
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *APIServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Server running", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
