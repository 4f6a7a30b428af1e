package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"academy-payments/internal/config"
	"academy-payments/internal/domain"
	red "academy-payments/internal/infra/redis"
	"academy-payments/internal/usecase"
)

// Server wires the REST surface the course front end consumes: payment
// processing and verification, the course catalog, and session endpoints.
type Server struct {
	payUC    usecase.PaymentUseCase
	courseUC usecase.CourseUseCase
	userUC   usecase.UserUseCase
	auth     *AuthManager
	limiter  *red.RateLimiter
	rlCfg    config.RateLimitConfig
	log      *zerolog.Logger
}

func NewServer(
	payUC usecase.PaymentUseCase,
	courseUC usecase.CourseUseCase,
	userUC usecase.UserUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	rlCfg config.RateLimitConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		payUC:    payUC,
		courseUC: courseUC,
		userUC:   userUC,
		auth:     auth,
		limiter:  limiter,
		rlCfg:    rlCfg,
		log:      logger,
	}
}

// Router assembles the chi router with the shared middleware stack.
func (s *Server) Router(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Get("/courses", s.handleCourseList)
		r.Get("/courses/{id}", s.handleCourseGet)

		r.Get("/payment/verify/{referenceId}", s.handlePaymentVerify)

		// Session required beyond this point.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/user", s.handleCurrentUser)
			r.With(s.rateLimit("payment_process")).Post("/payment/process", s.handlePaymentProcess)
		})

		// Admin only.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession, s.requireAdmin, s.rateLimit("course_mutation"))
			r.Post("/courses", s.handleCourseCreate)
			r.Put("/courses/{id}", s.handleCourseUpdate)
			r.Get("/admin/revenue", s.handleRevenueStats)
		})
	})

	return r
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), claims)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := sessionFrom(r.Context())
		if claims == nil || claims.Role != "admin" {
			writeMessage(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit applies a fixed-window limit keyed by session subject (or IP
// for anonymous calls).
func (s *Server) rateLimit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := r.RemoteAddr
			if claims := sessionFrom(r.Context()); claims != nil {
				subject = claims.Subject
			}
			ok, err := s.limiter.Allow(r.Context(), red.RequestKey(scope, subject), s.rlCfg.Limit, s.rlCfg.Window)
			if err != nil {
				// Redis trouble must not take payments down.
				s.log.Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
			} else if !ok {
				writeError(w, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ListenAddr formats the bind address for the configured port.
func ListenAddr(port int) string { return fmt.Sprintf(":%d", port) }
