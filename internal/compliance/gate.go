package compliance

import (
	"context"
	"log/slog"
	"sync"

	"gemreg/internal/access"
	"gemreg/internal/audit"
	"gemreg/pkg/domain"
	"gemreg/pkg/domerr"
	"gemreg/pkg/requestcontext"
)

// AuditPublisher is the slice of the audit pipeline the gate needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Gate produces a single allow/deny decision per address by combining the
// current oracle with the enforcement toggle.
//
// Decision rule: a deny-list hit rejects unconditionally, regardless of the
// toggle, because block-listing is a safety backstop that must hold even when
// allow-list enforcement has been relaxed. The allow-list requirement only
// applies while enforcement is active, so an early-stage deployment can run
// open before compliance onboarding completes.
type Gate struct {
	roles  access.Checker
	audit  AuditPublisher
	logger *slog.Logger

	mu     sync.RWMutex
	oracle Oracle
	active bool
}

// GateOption configures the Gate.
type GateOption func(*Gate)

// WithAuditPublisher attaches an audit sink to configuration changes.
func WithAuditPublisher(pub AuditPublisher) GateOption {
	return func(g *Gate) {
		g.audit = pub
	}
}

// WithLogger sets the gate logger.
func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithEnforcement sets the initial enforcement state. Deployments start with
// enforcement off unless configured otherwise.
func WithEnforcement(active bool) GateOption {
	return func(g *Gate) {
		g.active = active
	}
}

// NewGate constructs a gate over the given oracle. The roles checker gates
// the administrative surface (SetOracle, Enable, Disable).
func NewGate(oracle Oracle, roles access.Checker, opts ...GateOption) *Gate {
	g := &Gate{oracle: oracle, roles: roles}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsAllowed decides whether addr may participate in a transfer-class
// operation. Returns nil on success and a CodeDenied error naming the address
// and reason otherwise. Oracle read failures surface as CodeUnavailable: the
// gate fails closed rather than guessing.
func (g *Gate) IsAllowed(ctx context.Context, addr domain.Address) error {
	g.mu.RLock()
	oracle, active := g.oracle, g.active
	g.mu.RUnlock()

	denied, err := oracle.IsDenyListed(ctx, addr)
	if err != nil {
		return domerr.Wrap(err, domerr.CodeUnavailable, "deny-list lookup failed")
	}
	if denied {
		return domerr.Denied(addr, domerr.ReasonDenyListed)
	}

	if !active {
		return nil
	}
	allowed, err := oracle.IsAllowListed(ctx, addr)
	if err != nil {
		return domerr.Wrap(err, domerr.CodeUnavailable, "allow-list lookup failed")
	}
	if !allowed {
		return domerr.Denied(addr, domerr.ReasonNotAllowListed)
	}
	return nil
}

// CheckTransferParties applies IsAllowed to both parties, from before to.
// The first violation wins.
func (g *Gate) CheckTransferParties(ctx context.Context, from, to domain.Address) error {
	if err := g.IsAllowed(ctx, from); err != nil {
		return err
	}
	return g.IsAllowed(ctx, to)
}

// Active reports whether allow-list enforcement is currently on.
func (g *Gate) Active() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

// SetOracle atomically replaces the oracle reference. ADMIN only. Takes
// effect for all subsequent checks immediately.
func (g *Gate) SetOracle(ctx context.Context, oracle Oracle, name string) error {
	if oracle == nil {
		return domerr.New(domerr.CodeInvalidArgument, "oracle is required")
	}
	if err := g.requireAdmin(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	g.oracle = oracle
	g.mu.Unlock()
	g.emit(ctx, audit.ActionOracleReplaced, name)
	return nil
}

// Enable turns allow-list enforcement on. ADMIN only.
func (g *Gate) Enable(ctx context.Context) error {
	return g.setActive(ctx, true)
}

// Disable turns allow-list enforcement off. ADMIN only. Deny-list checks
// keep applying.
func (g *Gate) Disable(ctx context.Context) error {
	return g.setActive(ctx, false)
}

func (g *Gate) setActive(ctx context.Context, active bool) error {
	if err := g.requireAdmin(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	changed := g.active != active
	g.active = active
	g.mu.Unlock()

	if changed {
		action := audit.ActionEnforcementEnabled
		if !active {
			action = audit.ActionEnforcementDisabled
		}
		g.emit(ctx, action, "")
	}
	return nil
}

func (g *Gate) requireAdmin(ctx context.Context) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return domerr.New(domerr.CodeUnauthorized, "caller identity missing")
	}
	ok, err := g.roles.HasRole(ctx, access.RoleAdmin, caller)
	if err != nil {
		return domerr.Wrap(err, domerr.CodeInternal, "check admin role")
	}
	if !ok {
		return domerr.Newf(domerr.CodeUnauthorized, "caller %s lacks %s role", caller, access.RoleAdmin)
	}
	return nil
}

func (g *Gate) emit(ctx context.Context, action audit.Action, detail string) {
	if g.audit == nil {
		return
	}
	event := audit.Event{
		Action: action,
		Actor:  requestcontext.Caller(ctx),
		Detail: detail,
	}
	if err := g.audit.Emit(ctx, event); err != nil && g.logger != nil {
		g.logger.Error("audit emit failed", "action", action, "error", err)
	}
}
