// @title TenantNotes API
// @version 1.0.0
// @description Multi-tenant notes service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opentrusty/tenantnotes/internal/audit"
	"github.com/opentrusty/tenantnotes/internal/identity"
	"github.com/opentrusty/tenantnotes/internal/note"
	"github.com/opentrusty/tenantnotes/internal/observability/logger"
	"github.com/opentrusty/tenantnotes/internal/quota"
	"github.com/opentrusty/tenantnotes/internal/session"
	"github.com/opentrusty/tenantnotes/internal/tenant"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 1 << 20

// Error messages returned to clients
const (
	msgInvalidBody      = "Invalid request body"
	msgInternal         = "Internal server error"
	msgNoToken          = "No token provided"
	msgInvalidToken     = "Invalid token"
	msgInvalidCreds     = "Invalid credentials"
	msgInvalidEmail     = "Invalid email address"
	msgPasswordRequired = "Password is required"
	msgUserNotFound     = "User not found"
	msgNoteNotFound     = "Note not found"
	msgTenantNotFound   = "Tenant not found"
	msgTitleRequired    = "Title is required"
	msgTitleTooLong     = "Title must be at most 200 characters"
	msgQuotaExceeded    = "Free plan limit reached. Upgrade to Pro for unlimited notes."
	msgOnlyAdmins       = "Only admins can upgrade tenants"
	msgInvalidPlan      = "Invalid plan"
	msgForbidden        = "Forbidden"
	msgRateLimited      = "Too many requests"
	msgLoginRateLimited = "Too many login attempts. Please try again later."
	msgNoteDeleted      = "Note deleted successfully"
	msgTenantUpgraded   = "Tenant upgraded successfully"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	sessionService  *session.Service
	tenantService   *tenant.Service
	noteService     *note.Service
	auditLogger     audit.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	sessionService *session.Service,
	tenantService *tenant.Service,
	noteService *note.Service,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		identityService: identityService,
		sessionService:  sessionService,
		tenantService:   tenantService,
		noteService:     noteService,
		auditLogger:     auditLogger,
	}
}

// RouterConfig holds router-level settings
type RouterConfig struct {
	AllowedOrigin  string
	LoginPerMinute int
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(CORSMiddleware(cfg.AllowedOrigin))
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.With(LoginRateLimit(cfg.LoginPerMinute)).Post("/auth/login", h.Login)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/auth/me", h.GetCurrentUser)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", h.ListNotes)
			r.Post("/", h.CreateNote)
			r.Get("/{id}", h.GetNote)
			r.Put("/{id}", h.UpdateNote)
			r.Delete("/{id}", h.DeleteNote)
		})

		r.Post("/tenants/{slug}/upgrade", h.UpgradeTenant)
	})

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON reads a JSON body of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// writeServiceError maps a domain error to its HTTP status and client message.
// Anything unrecognized is logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, msgInvalidEmail)
	case errors.Is(err, identity.ErrPasswordRequired):
		respondError(w, http.StatusBadRequest, msgPasswordRequired)
	case errors.Is(err, identity.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, msgInvalidCreds)
	case errors.Is(err, identity.ErrUserNotFound):
		respondError(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, note.ErrTitleRequired):
		respondError(w, http.StatusBadRequest, msgTitleRequired)
	case errors.Is(err, note.ErrTitleTooLong):
		respondError(w, http.StatusBadRequest, msgTitleTooLong)
	case errors.Is(err, note.ErrNotFound):
		respondError(w, http.StatusNotFound, msgNoteNotFound)
	case errors.Is(err, note.ErrForbidden):
		respondError(w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, quota.ErrQuotaExceeded):
		respondError(w, http.StatusForbidden, msgQuotaExceeded)
	case errors.Is(err, tenant.ErrTenantNotFound):
		respondError(w, http.StatusNotFound, msgTenantNotFound)
	case errors.Is(err, tenant.ErrForbidden):
		respondError(w, http.StatusForbidden, msgOnlyAdmins)
	case errors.Is(err, tenant.ErrInvalidPlan):
		respondError(w, http.StatusBadRequest, msgInvalidPlan)
	default:
		slog.ErrorContext(r.Context(), "request failed",
			logger.RequestID(middleware.GetReqID(r.Context())),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, msgInternal)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return firstHop(xff)
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
