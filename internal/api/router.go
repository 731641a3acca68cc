package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"washops/internal/api/handlers/http/admin"
	"washops/internal/api/handlers/http/public"
	"washops/internal/api/handlers/http/requests"
	"washops/internal/api/handlers/http/system"
	"washops/internal/config"
	"washops/internal/domain"
	"washops/internal/middleware"
	"washops/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

// Deps are the non-service collaborators the router needs.
type Deps struct {
	Actors middleware.ActorLoader
	Checks map[string]system.Pinger
	Queue  system.QueueStats
}

type Handlers struct {
	Requests *requests.Handler
	Admin    *admin.Handler
	Public   *public.Handler
	System   *system.Handler
}

func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, svc *service.Service, deps Deps) *Server {
	handlers := Handlers{
		Requests: requests.NewHandler(logger, svc.Requests, svc.Assignment),
		Admin:    admin.NewHandler(logger, svc.Matcher, svc.Users, svc.Areas, svc.Stats),
		Public:   public.NewHandler(logger, svc.Locations),
		System:   system.NewHandler(logger, deps.Checks, deps.Queue),
	}

	r := InitRouter(ctx, cfg, handlers, deps.Actors, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(ctx context.Context, cfg *config.Config, h Handlers, actors middleware.ActorLoader, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Http.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Limit(ctx, cfg.Http.RateLimitRPS, cfg.Http.RateLimitBurst, 10*time.Minute, logger))

	supervisors := middleware.RequireRole(domain.RoleAdmin, domain.RoleSubAdmin, domain.RoleHR)
	areaAdmins := middleware.RequireRole(domain.RoleAdmin, domain.RoleSubAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/health", h.System.SystemHealth)

		api.Group(func(pr chi.Router) {
			pr.Use(middleware.Actor([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, actors, logger))

			pr.Route("/requests", func(rr chi.Router) {
				rr.With(
					middleware.RequireRole(domain.RoleCustomer),
					middleware.BindJSON[domain.CreateEmergencyRequest](),
				).Post("/", h.Requests.RequestCreate)
				rr.Get("/", h.Requests.RequestList)

				rr.Route("/{id}", func(ir chi.Router) {
					ir.Get("/", h.Requests.RequestGet)
					ir.With(middleware.BindJSON[domain.UpdateRequestBody]()).Put("/", h.Requests.RequestUpdate)
					ir.With(supervisors, middleware.BindJSON[domain.AssignRequestBody]()).Post("/assign", h.Requests.RequestAssign)
					ir.With(supervisors).Get("/candidates", h.Requests.RequestCandidates)
					ir.With(middleware.BindJSON[domain.StartRequestBody]()).Post("/start", h.Requests.RequestStart)
					ir.With(middleware.BindJSON[domain.CompleteRequestBody]()).Post("/complete", h.Requests.RequestComplete)
					ir.With(supervisors).Post("/cancel", h.Requests.RequestCancel)
				})
			})

			pr.With(middleware.RequireRole(domain.RoleEmployee)).Get("/washer/requests", h.Requests.WasherQueue)
			pr.With(supervisors).Get("/washers/match-customer-city/{area}", h.Admin.MatchWashers)

			pr.With(middleware.RequireRole(
				domain.RoleAdmin, domain.RoleSubAdmin, domain.RoleHR, domain.RoleSalesperson,
			)).Get("/users", h.Admin.UserList)

			pr.Route("/areas/{employeeId}", func(ar chi.Router) {
				ar.Use(areaAdmins)
				ar.Get("/", h.Admin.AreaGet)
				ar.With(middleware.BindJSON[domain.UpdateAreasRequest]()).Put("/", h.Admin.AreaUpdate)
			})

			pr.Get("/locations", h.Public.LocationList)
			pr.With(supervisors).Get("/stats", h.Admin.AdminStats)
		})
	})

	return r
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
