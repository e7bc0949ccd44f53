package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"elearning-platform/internal/config"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/adapter"
	"elearning-platform/internal/domain/ports/repository"
	"elearning-platform/internal/infra/metrics"
	red "elearning-platform/internal/infra/redis"
	"elearning-platform/internal/usecase"
)

// Deps bundles everything the HTTP layer needs. The server owns no
// business logic; every route delegates to a use case.
type Deps struct {
	Users     usecase.UserUseCase
	Catalog   usecase.CatalogUseCase
	Promos    usecase.PromotionUseCase
	Payments  usecase.PaymentUseCase
	Access    usecase.AccessUseCase
	UserRepo  repository.UserRepository
	AuditRepo repository.AuditRepository
	Gateway   adapter.PaymentGateway
	Limiter   *red.RateLimiter
}

type Server struct {
	httpServer *http.Server
	log        *zerolog.Logger
}

func NewServer(cfg config.HTTPConfig, sec config.SecurityConfig, deps Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	auth := NewAuthManager(sec.JWTSecret, sec.TokenTTL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface.
		r.Post("/auth/register", registerHandler(deps.Users))
		r.Post("/auth/login", loginHandler(deps.UserRepo, auth))
		r.Get("/courses", coursesPublishedHandler(deps.Catalog))
		r.Get("/courses/{id}", coursesGetHandler(deps.Catalog))
		r.Get("/packages", packagesListHandler(deps.Catalog))
		r.Get("/packages/{id}", packagesGetHandler(deps.Catalog))
		r.Get("/packages/{id}/courses", packageExpandHandler(deps.Catalog))

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(auth))

			r.Get("/me/courses", myCoursesHandler(deps.Access))
			r.Get("/me/payments", paymentsMineHandler(deps.Payments))
			r.Get("/payments/{id}", paymentsGetHandler(deps.Payments))
			r.With(rateLimit(deps.Limiter, "payments_create", 10, time.Minute)).
				Post("/payments", paymentsCreateHandler(deps.Payments, deps.Catalog, deps.Gateway))
		})

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(auth), requireAdmin)

			r.Get("/users", usersListHandler(deps.Users))
			r.Get("/users/count", usersCountHandler(deps.Users))
			r.Get("/users/{id}", usersGetHandler(deps.Users))
			r.Put("/users/{id}/role", usersSetRoleHandler(deps.Users))
			r.Put("/users/{id}/active", usersSetActiveHandler(deps.Users))
			r.Get("/users/{id}/courses", userCoursesHandler(deps.Access))

			r.Post("/courses", coursesCreateHandler(deps.Catalog))
			r.Get("/admin/courses", coursesListHandler(deps.Catalog))
			r.Patch("/courses/{id}", coursesUpdateHandler(deps.Catalog))
			r.Delete("/courses/{id}", coursesDeleteHandler(deps.Catalog))

			r.Post("/packages", packagesCreateHandler(deps.Catalog))
			r.Delete("/packages/{id}", packagesDeleteHandler(deps.Catalog))
			r.Post("/packages/{id}/courses/{courseID}", packageLinkHandler(deps.Catalog))
			r.Delete("/packages/{id}/courses/{courseID}", packageUnlinkHandler(deps.Catalog))

			r.Post("/promotions", promotionsCreateHandler(deps.Promos))
			r.Get("/promotions", promotionsListHandler(deps.Promos))
			r.Get("/promotions/{id}", promotionsGetHandler(deps.Promos))
			r.Patch("/promotions/{id}", promotionsUpdateHandler(deps.Promos))
			r.Delete("/promotions/{id}", promotionsDeactivateHandler(deps.Promos))

			r.Post("/payments/{id}/complete", paymentsCompleteHandler(deps.Payments))
			r.Post("/payments/{id}/fail", paymentsTransitionHandler(deps.Payments.Fail))
			r.Post("/payments/{id}/cancel", paymentsTransitionHandler(deps.Payments.Cancel))
			r.Post("/payments/{id}/refund", paymentsTransitionHandler(deps.Payments.Refund))

			r.Post("/access/grants", accessGrantHandler(deps.Access))
			r.Post("/access/revocations", accessRevokeHandler(deps.Access))
			r.Get("/access/check", accessCheckHandler(deps.Access))

			r.Get("/audit/{entityType}/{entityID}", auditListHandler(deps.AuditRepo))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: &l,
	}
}

// Start blocks until the listener fails or ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// ===== Middleware =====

func authMiddleware(auth *AuthManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.ParseFromRequest(r)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := withIdentity(r.Context(), Identity{
				UserID: claims.Subject,
				Role:   model.UserRole(claims.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit applies a fixed-window per-user cap. A nil limiter (tests,
// degraded Redis) disables the cap rather than blocking traffic.
func rateLimit(limiter *red.RateLimiter, route string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			id, ok := IdentityFrom(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			allowed, err := limiter.Allow(r.Context(), red.UserRouteKey(id.UserID, route), limit, window)
			if err == nil && !allowed {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.ObserveHTTPRequest(route, r.Method, rec.status, float64(time.Since(start).Milliseconds()))
	})
}
