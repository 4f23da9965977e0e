package access

import (
	"context"
	"log/slog"

	"gemreg/internal/audit"
	"gemreg/pkg/domain"
	"gemreg/pkg/domerr"
	"gemreg/pkg/requestcontext"
)

// AuditPublisher is the slice of the audit pipeline this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service wraps the role store with ADMIN gating and audit emission. Every
// management call authorizes the caller taken from the request context.
type Service struct {
	store  Store
	audit  AuditPublisher
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithAuditPublisher attaches an audit sink to membership changes.
func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) {
		s.audit = pub
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs the role management service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasRole reports membership. Read path; not ADMIN-gated.
func (s *Service) HasRole(ctx context.Context, role Role, addr domain.Address) (bool, error) {
	return s.store.HasRole(ctx, role, addr)
}

// Members lists the holders of a role. ADMIN-gated: membership is an
// administrative view, not public data.
func (s *Service) Members(ctx context.Context, role Role) ([]domain.Address, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.Members(ctx, role)
}

// Grant adds addr to role. ADMIN only.
func (s *Service) Grant(ctx context.Context, role Role, addr domain.Address) error {
	if addr.IsZero() {
		return domerr.New(domerr.CodeInvalidArgument, "grantee address is required")
	}
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.store.Grant(ctx, role, addr); err != nil {
		return domerr.Wrap(err, domerr.CodeInternal, "grant role")
	}
	s.emit(ctx, audit.ActionRoleGranted, role, addr)
	return nil
}

// Revoke removes addr from role. ADMIN only, except an address may always
// renounce its own membership.
func (s *Service) Revoke(ctx context.Context, role Role, addr domain.Address) error {
	if addr.IsZero() {
		return domerr.New(domerr.CodeInvalidArgument, "address is required")
	}
	caller := requestcontext.Caller(ctx)
	if caller != addr {
		if err := s.requireAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.store.Revoke(ctx, role, addr); err != nil {
		return domerr.Wrap(err, domerr.CodeInternal, "revoke role")
	}
	s.emit(ctx, audit.ActionRoleRevoked, role, addr)
	return nil
}

// Bootstrap grants every role to the deploying identity. Called once at
// startup before any request is served, so it bypasses the ADMIN gate. The
// result satisfies the "at least one ADMIN after initialization" invariant;
// an admin revoking the last ADMIN later is an operational hazard the
// registry does not prevent at runtime.
func (s *Service) Bootstrap(ctx context.Context, deployer domain.Address) error {
	if deployer.IsZero() {
		return domerr.New(domerr.CodeInvalidArgument, "deployer address is required")
	}
	for _, role := range AllRoles() {
		if err := s.store.Grant(ctx, role, deployer); err != nil {
			return domerr.Wrap(err, domerr.CodeInternal, "bootstrap roles")
		}
	}
	if s.logger != nil {
		s.logger.Info("roles bootstrapped", "deployer", deployer)
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return domerr.New(domerr.CodeUnauthorized, "caller identity missing")
	}
	ok, err := s.store.HasRole(ctx, RoleAdmin, caller)
	if err != nil {
		return domerr.Wrap(err, domerr.CodeInternal, "check admin role")
	}
	if !ok {
		return domerr.Newf(domerr.CodeUnauthorized, "caller %s lacks %s role", caller, RoleAdmin)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, role Role, addr domain.Address) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Action:  action,
		Actor:   requestcontext.Caller(ctx),
		Subject: addr.String(),
		Detail:  role.String(),
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Error("audit emit failed", "action", action, "error", err)
	}
}
