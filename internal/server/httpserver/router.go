package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/snapkeep/internal/core/service"
	"github.com/yndnr/snapkeep/internal/server/httpserver/handler"
	"github.com/yndnr/snapkeep/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// BackupService handles backup operations.
	BackupService *service.BackupService

	// Metrics serves /metrics and records request metrics. Optional.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// AdminAllowList is the IP/CIDR allowlist for admin API (empty = no restriction).
	AdminAllowList []string

	// RateLimit is the rate limit per IP (requests/second). Zero disables it.
	RateLimit float64

	// RateBurst is the per-IP burst size.
	RateBurst int

	// EnableAudit enables audit logging for all requests.
	EnableAudit bool
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(cfg.BackupService, cfg.Metrics, log)

	// Order: RequestID -> Recover -> Audit -> [ACL] -> [RateLimit] -> Handler
	base := []Middleware{RequestID(), Recover(log)}
	if cfg.EnableAudit {
		base = append(base, Audit(log, cfg.Metrics))
	}

	// Probes and scrapes are not rate limited.
	probeHandler := Chain(h, base...)

	admin := append([]Middleware{}, base...)
	if len(cfg.AdminAllowList) > 0 {
		admin = append(admin, NetworkACL(&NetworkACLConfig{
			AllowList: cfg.AdminAllowList,
			Logger:    log,
		}))
	}
	if cfg.RateLimit > 0 {
		admin = append(admin, RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	adminHandler := Chain(h, admin...)

	mux := http.NewServeMux()

	// Health endpoints
	mux.Handle("GET /health", probeHandler)
	mux.Handle("GET /ready", probeHandler)
	mux.Handle("GET /metrics", probeHandler)

	// Backup endpoints
	mux.Handle("POST /admin/v1/backups", adminHandler)
	mux.Handle("GET /admin/v1/backups", adminHandler)
	mux.Handle("GET /admin/v1/backups/stats", adminHandler)
	mux.Handle("GET /admin/v1/backups/stale", adminHandler)
	mux.Handle("POST /admin/v1/backups/prune", adminHandler)
	mux.Handle("GET /admin/v1/backups/{id}", adminHandler)
	mux.Handle("GET /admin/v1/backups/{id}/content", adminHandler)
	mux.Handle("DELETE /admin/v1/backups/{id}", adminHandler)

	return mux
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		RateLimit:   20,
		RateBurst:   40,
		EnableAudit: true,
	}
}
