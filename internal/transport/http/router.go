// Package httptransport is the thin HTTP layer. Handlers decode requests,
// delegate to the domain services, and translate domain errors; business
// logic stays out of this package.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gemreg/internal/access"
	"gemreg/internal/compliance"
	"gemreg/internal/lifecycle"
	"gemreg/internal/platform/metrics"
	"gemreg/internal/platform/middleware"
	"gemreg/internal/registry/models"
	"gemreg/pkg/domain"
)

// Lifecycle is the record lifecycle surface the transport exposes.
type Lifecycle interface {
	Mint(ctx context.Context, to domain.Address) (domain.RecordID, error)
	MintWithAttributes(ctx context.Context, to domain.Address, attrs models.Attributes) (domain.RecordID, error)
	BatchMint(ctx context.Context, recipients []domain.Address) ([]domain.RecordID, error)
	SetAttributes(ctx context.Context, id domain.RecordID, attrs models.Attributes) error
	Transfer(ctx context.Context, from, to domain.Address, id domain.RecordID) error
	Burn(ctx context.Context, id domain.RecordID) error
	Pause(ctx context.Context) error
	Unpause(ctx context.Context) error
	Paused() bool
	Record(ctx context.Context, id domain.RecordID) (*lifecycle.RecordView, error)
}

// Access is the role administration surface.
type Access interface {
	Grant(ctx context.Context, role access.Role, addr domain.Address) error
	Revoke(ctx context.Context, role access.Role, addr domain.Address) error
	Members(ctx context.Context, role access.Role) ([]domain.Address, error)
}

// Compliance is the gate configuration surface.
type Compliance interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	Active() bool
	SetOracle(ctx context.Context, oracle compliance.Oracle, name string) error
}

// OracleFactory builds a replacement oracle from backend set keys. Wired only
// when a swappable backend (Redis) is configured.
type OracleFactory func(allowKey, denyKey string) (compliance.Oracle, error)

// Handler holds the wired services behind the HTTP API.
type Handler struct {
	logger     *slog.Logger
	lifecycle  Lifecycle
	access     Access
	compliance Compliance
	oracles    OracleFactory
}

// HandlerOption configures optional handler collaborators.
type HandlerOption func(*Handler)

// WithOracleFactory enables the oracle replacement endpoint.
func WithOracleFactory(f OracleFactory) HandlerOption {
	return func(h *Handler) {
		h.oracles = f
	}
}

func NewHandler(lc Lifecycle, acc Access, comp Compliance, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		logger:     logger,
		lifecycle:  lc,
		access:     acc,
		compliance: comp,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires all endpoints. Liveness and metrics are public; everything
// else requires a bearer token carrying the caller's address.
func NewRouter(h *Handler, validator middleware.TokenValidator, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	if m != nil {
		r.Use(middleware.Latency(m))
	}

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, h.logger))

		r.Post("/records", h.handleMint)
		r.Post("/records/batch", h.handleBatchMint)
		r.Get("/records/{id}", h.handleGetRecord)
		r.Post("/records/{id}/transfer", h.handleTransfer)
		r.Patch("/records/{id}/attributes", h.handleSetAttributes)
		r.Delete("/records/{id}", h.handleBurn)

		r.Post("/system/pause", h.handlePause)
		r.Post("/system/unpause", h.handleUnpause)
		r.Get("/system/status", h.handleStatus)

		r.Post("/roles/grant", h.handleGrantRole)
		r.Post("/roles/revoke", h.handleRevokeRole)
		r.Get("/roles/{role}/members", h.handleRoleMembers)

		r.Post("/compliance/enable", h.handleEnableEnforcement)
		r.Post("/compliance/disable", h.handleDisableEnforcement)
		r.Post("/compliance/oracle", h.handleSetOracle)
	})

	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Paused:      h.lifecycle.Paused(),
		Enforcement: h.compliance.Active(),
	})
}

type statusResponse struct {
	Paused      bool `json:"paused"`
	Enforcement bool `json:"enforcement"`
}
