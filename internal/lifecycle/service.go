// Package lifecycle orchestrates record creation, attribute assignment,
// pausing, transfer, and destruction. It owns the identifier counter and the
// pause flag, and consults the role store and compliance gate before any
// state mutates.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gemreg/internal/access"
	"gemreg/internal/audit"
	"gemreg/internal/ledger"
	"gemreg/internal/lifecycle/metrics"
	"gemreg/internal/registry"
	"gemreg/internal/registry/models"
	"gemreg/pkg/domain"
	"gemreg/pkg/domerr"
	"gemreg/pkg/platform/sentinel"
	"gemreg/pkg/requestcontext"
)

// Gate is the compliance decision surface the service consults for every
// transfer-class operation.
type Gate interface {
	IsAllowed(ctx context.Context, addr domain.Address) error
	CheckTransferParties(ctx context.Context, from, to domain.Address) error
}

// AuditPublisher is the slice of the audit pipeline this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RecordView is the read-model for one record: attributes plus current owner.
type RecordView struct {
	Record models.Record  `json:"record"`
	Owner  domain.Address `json:"owner"`
}

// Service is the lifecycle controller. A single mutex serializes every
// mutating operation, so callers observe the registry as if a global lock
// were held for the duration of each call; batches are atomic across their
// whole element sequence. All-or-nothing failure is achieved by validating
// before mutating and by committing the identifier counter only after every
// mutation of an operation has succeeded.
type Service struct {
	roles   access.Checker
	gate    Gate
	attrs   registry.AttributeStore
	ledger  ledger.Ledger
	audit   AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	mu     sync.Mutex
	paused bool
	lastID uint64
}

// Option configures the Service.
type Option func(*Service)

// WithAuditPublisher attaches an audit sink.
func WithAuditPublisher(pub AuditPublisher) Option {
	return func(s *Service) {
		s.audit = pub
	}
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs the lifecycle controller. Identifiers start at 1 and are
// assigned by pre-increment on every mint path; the counter is never reset.
func New(roles access.Checker, gate Gate, attrs registry.AttributeStore, l ledger.Ledger, opts ...Option) *Service {
	s := &Service{
		roles:  roles,
		gate:   gate,
		attrs:  attrs,
		ledger: l,
		tracer: otel.Tracer("gemreg/lifecycle"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint creates an empty-attributed record owned by to.
func (s *Service) Mint(ctx context.Context, to domain.Address) (domain.RecordID, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.Mint",
		trace.WithAttributes(attribute.String("to", to.String())))
	defer span.End()

	id, err := s.mint(ctx, to, nil)
	if err != nil {
		span.RecordError(err)
	}
	return id, err
}

// MintWithAttributes creates a fully-attributed record owned by to. All ten
// fields are set unconditionally from attrs at creation.
func (s *Service) MintWithAttributes(ctx context.Context, to domain.Address, attrs models.Attributes) (domain.RecordID, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.MintWithAttributes",
		trace.WithAttributes(attribute.String("to", to.String())))
	defer span.End()

	id, err := s.mint(ctx, to, &attrs)
	if err != nil {
		span.RecordError(err)
	}
	return id, err
}

func (s *Service) mint(ctx context.Context, to domain.Address, attrs *models.Attributes) (domain.RecordID, error) {
	if to.IsZero() {
		return 0, domerr.New(domerr.CodeInvalidArgument, "recipient address is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, access.RoleMinter); err != nil {
		return 0, err
	}
	if s.paused {
		return 0, domerr.New(domerr.CodePaused, "registry is paused")
	}
	if err := s.checkAllowed(ctx, to); err != nil {
		return 0, err
	}

	id, err := s.createRecordLocked(ctx, to, attrs)
	if err != nil {
		return 0, err
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionRecordMinted,
		Actor:   requestcontext.Caller(ctx),
		Subject: id.String(),
		Detail:  to.String(),
	})
	if s.metrics != nil {
		s.metrics.MintsTotal.Inc()
	}
	return id, nil
}

// BatchMint applies Mint to each recipient in input order as one atomic
// operation: every element independently enforces pause and compliance, and
// if any element fails nothing is retained, including the counter. No
// reordering, no deduplication.
func (s *Service) BatchMint(ctx context.Context, recipients []domain.Address) ([]domain.RecordID, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.BatchMint",
		trace.WithAttributes(attribute.Int("recipients", len(recipients))))
	defer span.End()

	if len(recipients) == 0 {
		return nil, domerr.New(domerr.CodeInvalidArgument, "batch is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, access.RoleMinter); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Validate every element before mutating anything. The lock is held for
	// the whole batch, so nothing the checks observed can change before the
	// writes below.
	for _, to := range recipients {
		if to.IsZero() {
			return nil, domerr.New(domerr.CodeInvalidArgument, "recipient address is required")
		}
		if s.paused {
			return nil, domerr.New(domerr.CodePaused, "registry is paused")
		}
		if err := s.checkAllowed(ctx, to); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	start := s.lastID
	ids := make([]domain.RecordID, 0, len(recipients))
	for _, to := range recipients {
		id, err := s.createRecordLocked(ctx, to, nil)
		if err != nil {
			// A store failure mid-batch: undo the elements already applied so
			// the batch remains all-or-nothing.
			s.unwindLocked(ctx, ids)
			s.lastID = start
			span.RecordError(err)
			return nil, err
		}
		ids = append(ids, id)
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionBatchMinted,
		Actor:   requestcontext.Caller(ctx),
		Subject: ids[0].String() + "-" + ids[len(ids)-1].String(),
	})
	if s.metrics != nil {
		s.metrics.MintsTotal.Add(float64(len(ids)))
	}
	return ids, nil
}

// SetAttributes fills the still-empty fields of an existing record from
// attrs. Populated fields are never overwritten; certified data cannot be
// administratively rewritten once set.
func (s *Service) SetAttributes(ctx context.Context, id domain.RecordID, attrs models.Attributes) error {
	ctx, span := s.tracer.Start(ctx, "lifecycle.SetAttributes",
		trace.WithAttributes(attribute.String("record", id.String())))
	defer span.End()

	if id.IsZero() {
		return domerr.New(domerr.CodeInvalidArgument, "record id is required")
	}
	if attrs.IsEmpty() {
		return domerr.New(domerr.CodeInvalidArgument, "attribute payload is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, access.RoleAttributor); err != nil {
		return err
	}
	if err := s.attrs.FillIfEmpty(ctx, id, attrs); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerr.Newf(domerr.CodeNotFound, "record %s does not exist", id)
		}
		return domerr.Wrap(err, domerr.CodeInternal, "fill attributes")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionAttributesSet,
		Actor:   requestcontext.Caller(ctx),
		Subject: id.String(),
	})
	return nil
}

// Transfer moves a record from one holder to another. No role is required;
// authorization is ownership (or operator approval) plus the compliance gate
// on both parties.
func (s *Service) Transfer(ctx context.Context, from, to domain.Address, id domain.RecordID) error {
	ctx, span := s.tracer.Start(ctx, "lifecycle.Transfer",
		trace.WithAttributes(
			attribute.String("record", id.String()),
			attribute.String("from", from.String()),
			attribute.String("to", to.String()),
		))
	defer span.End()

	if from.IsZero() || to.IsZero() {
		return domerr.New(domerr.CodeInvalidArgument, "from and to addresses are required")
	}
	if id.IsZero() {
		return domerr.New(domerr.CodeInvalidArgument, "record id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		return domerr.New(domerr.CodePaused, "registry is paused")
	}
	if err := s.gate.CheckTransferParties(ctx, from, to); err != nil {
		s.countDenial(err)
		if detail, ok := domerr.DeniedFrom(err); ok {
			s.emit(ctx, audit.Event{
				Action:  audit.ActionTransferDenied,
				Actor:   requestcontext.Caller(ctx),
				Subject: id.String(),
				Detail:  detail.Error(),
			})
		}
		span.RecordError(err)
		return err
	}

	owner, err := s.ledger.OwnerOf(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerr.Newf(domerr.CodeNotFound, "record %s does not exist", id)
		}
		return domerr.Wrap(err, domerr.CodeInternal, "ownership lookup")
	}
	if owner != from {
		return domerr.Newf(domerr.CodeUnauthorized, "%s does not own record %s", from, id)
	}

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return domerr.New(domerr.CodeUnauthorized, "caller identity missing")
	}
	if caller != from {
		approved, err := s.ledger.IsApproved(ctx, caller, from)
		if err != nil {
			return domerr.Wrap(err, domerr.CodeInternal, "approval lookup")
		}
		if !approved {
			return domerr.Newf(domerr.CodeUnauthorized, "%s is not approved by %s", caller, from)
		}
	}

	if err := s.ledger.TransferOwnership(ctx, from, to, id); err != nil {
		return domerr.Wrap(err, domerr.CodeInternal, "transfer ownership")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionRecordTransferred,
		Actor:   caller,
		Subject: id.String(),
		Detail:  from.String() + "->" + to.String(),
	})
	if s.metrics != nil {
		s.metrics.TransfersTotal.Inc()
	}
	return nil
}

// Burn destroys a record: its attribute payload and its ownership entry.
func (s *Service) Burn(ctx context.Context, id domain.RecordID) error {
	ctx, span := s.tracer.Start(ctx, "lifecycle.Burn",
		trace.WithAttributes(attribute.String("record", id.String())))
	defer span.End()

	if id.IsZero() {
		return domerr.New(domerr.CodeInvalidArgument, "record id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, access.RoleBurner); err != nil {
		return err
	}
	if s.paused {
		return domerr.New(domerr.CodePaused, "registry is paused")
	}

	record, err := s.attrs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domerr.Newf(domerr.CodeNotFound, "record %s does not exist", id)
		}
		return domerr.Wrap(err, domerr.CodeInternal, "record lookup")
	}

	if err := s.attrs.Destroy(ctx, id); err != nil {
		return domerr.Wrap(err, domerr.CodeInternal, "destroy attributes")
	}
	if err := s.ledger.DestroyOwnership(ctx, id); err != nil {
		// Restore the attribute record so a ledger failure leaves no partial
		// destruction behind.
		if restoreErr := s.attrs.CreateFull(ctx, id, record.Attributes); restoreErr != nil && s.logger != nil {
			s.logger.Error("burn rollback failed", "record", id, "error", restoreErr)
		}
		return domerr.Wrap(err, domerr.CodeInternal, "destroy ownership")
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionRecordBurned,
		Actor:   requestcontext.Caller(ctx),
		Subject: id.String(),
	})
	if s.metrics != nil {
		s.metrics.BurnsTotal.Inc()
	}
	return nil
}

// Pause rejects all subsequent transfer/mint/burn-class mutations until
// Unpause. PAUSER only. Repeated pausing is a no-op.
func (s *Service) Pause(ctx context.Context) error {
	return s.setPaused(ctx, true)
}

// Unpause lifts the pause. PAUSER only.
func (s *Service) Unpause(ctx context.Context) error {
	return s.setPaused(ctx, false)
}

// Paused reports the current pause state.
func (s *Service) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Record returns the attribute payload and current owner of a record. Read
// path; not role- or pause-gated.
func (s *Service) Record(ctx context.Context, id domain.RecordID) (*RecordView, error) {
	if id.IsZero() {
		return nil, domerr.New(domerr.CodeInvalidArgument, "record id is required")
	}
	record, err := s.attrs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerr.Newf(domerr.CodeNotFound, "record %s does not exist", id)
		}
		return nil, domerr.Wrap(err, domerr.CodeInternal, "record lookup")
	}
	owner, err := s.ledger.OwnerOf(ctx, id)
	if err != nil {
		return nil, domerr.Wrap(err, domerr.CodeInternal, "ownership lookup")
	}
	return &RecordView{Record: *record, Owner: owner}, nil
}

func (s *Service) setPaused(ctx context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRole(ctx, access.RolePauser); err != nil {
		return err
	}
	changed := s.paused != paused
	s.paused = paused

	if s.metrics != nil {
		if paused {
			s.metrics.PausedState.Set(1)
		} else {
			s.metrics.PausedState.Set(0)
		}
	}
	if changed {
		action := audit.ActionRegistryPaused
		if !paused {
			action = audit.ActionRegistryUnpaused
		}
		s.emit(ctx, audit.Event{Action: action, Actor: requestcontext.Caller(ctx)})
	}
	return nil
}

// createRecordLocked assigns the next identifier and materializes the record.
// The counter only advances once both the attribute store and the ledger have
// accepted the new record, so failures leave it untouched. Callers hold s.mu.
func (s *Service) createRecordLocked(ctx context.Context, to domain.Address, attrs *models.Attributes) (domain.RecordID, error) {
	id := domain.RecordID(s.lastID + 1)

	var err error
	if attrs != nil {
		err = s.attrs.CreateFull(ctx, id, *attrs)
	} else {
		err = s.attrs.CreateEmpty(ctx, id)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return 0, domerr.Newf(domerr.CodeAlreadyExists, "record %s already exists", id)
		}
		return 0, domerr.Wrap(err, domerr.CodeInternal, "create attribute record")
	}

	if err := s.ledger.CreateOwnership(ctx, to, id); err != nil {
		if destroyErr := s.attrs.Destroy(ctx, id); destroyErr != nil && s.logger != nil {
			s.logger.Error("mint rollback failed", "record", id, "error", destroyErr)
		}
		return 0, domerr.Wrap(err, domerr.CodeInternal, "create ownership")
	}

	s.lastID = uint64(id)
	return id, nil
}

// unwindLocked removes records applied by a partially-failed batch, newest
// first. Callers hold s.mu and reset the counter themselves.
func (s *Service) unwindLocked(ctx context.Context, ids []domain.RecordID) {
	for i := len(ids) - 1; i >= 0; i-- {
		if err := s.ledger.DestroyOwnership(ctx, ids[i]); err != nil && s.logger != nil {
			s.logger.Error("batch unwind failed", "record", ids[i], "error", err)
		}
		if err := s.attrs.Destroy(ctx, ids[i]); err != nil && s.logger != nil {
			s.logger.Error("batch unwind failed", "record", ids[i], "error", err)
		}
	}
}

func (s *Service) requireRole(ctx context.Context, role access.Role) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return domerr.New(domerr.CodeUnauthorized, "caller identity missing")
	}
	ok, err := s.roles.HasRole(ctx, role, caller)
	if err != nil {
		return domerr.Wrap(err, domerr.CodeInternal, "role check")
	}
	if !ok {
		return domerr.Newf(domerr.CodeUnauthorized, "caller %s lacks %s role", caller, role)
	}
	return nil
}

func (s *Service) checkAllowed(ctx context.Context, addr domain.Address) error {
	if err := s.gate.IsAllowed(ctx, addr); err != nil {
		s.countDenial(err)
		return err
	}
	return nil
}

func (s *Service) countDenial(err error) {
	if s.metrics != nil && domerr.HasCode(err, domerr.CodeDenied) {
		s.metrics.ComplianceDenials.Inc()
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.Error("audit emit failed", "action", event.Action, "error", err)
	}
}
