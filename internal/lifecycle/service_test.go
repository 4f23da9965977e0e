package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"gemreg/internal/access"
	"gemreg/internal/audit"
	"gemreg/internal/compliance"
	"gemreg/internal/ledger"
	"gemreg/internal/registry/models"
	registrymem "gemreg/internal/registry/store/memory"
	"gemreg/pkg/domain"
	"gemreg/pkg/domerr"
	"gemreg/pkg/requestcontext"
)

const (
	deployer = domain.Address("0xdeployer")
	holder   = domain.Address("0xholder")
	receiver = domain.Address("0xreceiver")
	blocked  = domain.Address("0xblocked")
	onlyBurn = domain.Address("0xonlyburner")
)

func graded() models.Attributes {
	return models.Attributes{
		Lab: "GIA", Certificate: "6204189", Shape: "round", Carat: 103,
		Color: "E", Clarity: "VVS2", Cut: "excellent", Polish: "excellent",
		Symmetry: "very good", Fluorescence: "faint",
	}
}

type ServiceSuite struct {
	suite.Suite
	roles   *access.InMemoryStore
	oracle  *compliance.MemoryOracle
	gate    *compliance.Gate
	attrs   *registrymem.Store
	ledger  *ledger.InMemoryLedger
	auditor *audit.InMemoryStore
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.roles = access.NewInMemoryStore()
	for _, role := range access.AllRoles() {
		s.Require().NoError(s.roles.Grant(s.ctx, role, deployer))
	}
	s.Require().NoError(s.roles.Grant(s.ctx, access.RoleBurner, onlyBurn))

	s.oracle = compliance.NewMemoryOracle()
	s.oracle.Deny(blocked)
	s.gate = compliance.NewGate(s.oracle, s.roles)

	s.attrs = registrymem.New()
	s.ledger = ledger.NewInMemoryLedger()
	s.auditor = audit.NewInMemoryStore()

	s.service = New(s.roles, s.gate, s.attrs, s.ledger,
		WithAuditPublisher(audit.NewPublisher(s.auditor)),
	)
}

func (s *ServiceSuite) as(addr domain.Address) context.Context {
	return requestcontext.WithCaller(s.ctx, addr)
}

func (s *ServiceSuite) TestMint() {
	s.Run("minter mints an empty record", func() {
		id, err := s.service.Mint(s.as(deployer), holder)
		s.Require().NoError(err)
		s.Equal(domain.RecordID(1), id)

		view, err := s.service.Record(s.ctx, id)
		s.Require().NoError(err)
		s.True(view.Record.Attributes.IsEmpty())
		s.Equal(holder, view.Owner)
	})

	s.Run("non-minter is rejected", func() {
		_, err := s.service.Mint(s.as(onlyBurn), holder)
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeUnauthorized))
	})

	s.Run("deny-listed recipient is rejected and counter holds", func() {
		_, err := s.service.Mint(s.as(deployer), blocked)
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeDenied))

		id, err := s.service.Mint(s.as(deployer), holder)
		s.Require().NoError(err)
		s.Equal(domain.RecordID(2), id)
	})

	s.Run("empty recipient is invalid", func() {
		_, err := s.service.Mint(s.as(deployer), "")
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeInvalidArgument))
	})
}

// First-write-wins: fields set at mint (or by an earlier fill) survive every
// later administrative assignment.
func (s *ServiceSuite) TestFirstWriteWins() {
	id, err := s.service.MintWithAttributes(s.as(deployer), holder, graded())
	s.Require().NoError(err)

	rival := graded()
	rival.Lab = "IGI"
	rival.Certificate = "other"
	s.Require().NoError(s.service.SetAttributes(s.as(deployer), id, rival))

	view, err := s.service.Record(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("GIA", view.Record.Attributes.Lab)
	s.Equal("6204189", view.Record.Attributes.Certificate)
}

// A bare mint starts with all ten fields empty; one administrative assignment
// fills every empty field.
func (s *ServiceSuite) TestEmptyFieldFill() {
	id, err := s.service.Mint(s.as(deployer), holder)
	s.Require().NoError(err)

	view, err := s.service.Record(s.ctx, id)
	s.Require().NoError(err)
	s.True(view.Record.Attributes.IsEmpty())

	s.Require().NoError(s.service.SetAttributes(s.as(deployer), id, graded()))

	view, err = s.service.Record(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(graded(), view.Record.Attributes)
}

func (s *ServiceSuite) TestSetAttributes() {
	s.Run("unknown record is not found", func() {
		err := s.service.SetAttributes(s.as(deployer), 404, graded())
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeNotFound))
	})

	s.Run("requires attributor role", func() {
		id, err := s.service.Mint(s.as(deployer), holder)
		s.Require().NoError(err)

		err = s.service.SetAttributes(s.as(onlyBurn), id, graded())
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeUnauthorized))
	})

	s.Run("empty payload is invalid", func() {
		err := s.service.SetAttributes(s.as(deployer), 1, models.Attributes{})
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeInvalidArgument))
	})
}

// Pause rejects every mint/transfer/burn-class operation even when role and
// compliance checks would pass.
func (s *ServiceSuite) TestPausePrecedence() {
	id, err := s.service.Mint(s.as(deployer), holder)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Pause(s.as(deployer)))
	s.True(s.service.Paused())

	_, err = s.service.Mint(s.as(deployer), holder)
	s.True(domerr.HasCode(err, domerr.CodePaused))

	_, err = s.service.MintWithAttributes(s.as(deployer), holder, graded())
	s.True(domerr.HasCode(err, domerr.CodePaused))

	_, err = s.service.BatchMint(s.as(deployer), []domain.Address{holder})
	s.True(domerr.HasCode(err, domerr.CodePaused))

	err = s.service.Transfer(s.as(holder), holder, receiver, id)
	s.True(domerr.HasCode(err, domerr.CodePaused))

	err = s.service.Burn(s.as(deployer), id)
	s.True(domerr.HasCode(err, domerr.CodePaused))

	// Attribute assignment is administrative, not transfer-class.
	s.Require().NoError(s.service.SetAttributes(s.as(deployer), id, graded()))

	s.Run("unpause restores operation", func() {
		s.Require().NoError(s.service.Unpause(s.as(deployer)))
		_, err := s.service.Mint(s.as(deployer), holder)
		s.NoError(err)
	})

	s.Run("pause requires pauser role", func() {
		err := s.service.Pause(s.as(onlyBurn))
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeUnauthorized))
	})
}

// A failing element anywhere in a batch leaves zero new records and an
// unchanged counter.
func (s *ServiceSuite) TestBatchAtomicity() {
	_, err := s.service.BatchMint(s.as(deployer), []domain.Address{holder, blocked, receiver})
	s.Require().Error(err)
	s.True(domerr.HasCode(err, domerr.CodeDenied))
	detail, ok := domerr.DeniedFrom(err)
	s.Require().True(ok)
	s.Equal(blocked, detail.Addr)

	// No element was retained.
	_, err = s.service.Record(s.ctx, 1)
	s.True(domerr.HasCode(err, domerr.CodeNotFound))
	balance, _ := s.ledger.BalanceOf(s.ctx, holder)
	s.Zero(balance)

	// Counter unchanged: the next successful mint takes id 1.
	id, err := s.service.Mint(s.as(deployer), holder)
	s.Require().NoError(err)
	s.Equal(domain.RecordID(1), id)

	s.Run("successful batch mints in input order", func() {
		ids, err := s.service.BatchMint(s.as(deployer), []domain.Address{holder, receiver, holder})
		s.Require().NoError(err)
		s.Equal([]domain.RecordID{2, 3, 4}, ids)

		view, err := s.service.Record(s.ctx, 3)
		s.Require().NoError(err)
		s.Equal(receiver, view.Owner)
	})

	s.Run("empty batch is invalid", func() {
		_, err := s.service.BatchMint(s.as(deployer), nil)
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeInvalidArgument))
	})
}

// Identifiers increase strictly across mints and are never reused, even
// after burns.
func (s *ServiceSuite) TestIdentifierMonotonicity() {
	var ids []domain.RecordID
	for i := 0; i < 3; i++ {
		id, err := s.service.Mint(s.as(deployer), holder)
		s.Require().NoError(err)
		ids = append(ids, id)
	}
	s.Equal([]domain.RecordID{1, 2, 3}, ids)

	s.Require().NoError(s.service.Burn(s.as(deployer), 3))

	id, err := s.service.Mint(s.as(deployer), holder)
	s.Require().NoError(err)
	s.Equal(domain.RecordID(4), id, "burned id must not be reused")
}

// A caller holding only BURNER can burn and nothing else.
func (s *ServiceSuite) TestRoleIsolation() {
	id, err := s.service.Mint(s.as(deployer), holder)
	s.Require().NoError(err)

	_, err = s.service.Mint(s.as(onlyBurn), holder)
	s.True(domerr.HasCode(err, domerr.CodeUnauthorized))

	err = s.service.SetAttributes(s.as(onlyBurn), id, graded())
	s.True(domerr.HasCode(err, domerr.CodeUnauthorized))

	err = s.service.Pause(s.as(onlyBurn))
	s.True(domerr.HasCode(err, domerr.CodeUnauthorized))

	err = s.service.Burn(s.as(onlyBurn), id)
	s.NoError(err)
}

func (s *ServiceSuite) TestTransfer() {
	id, err := s.service.Mint(s.as(deployer), holder)
	s.Require().NoError(err)

	s.Run("owner transfers own record", func() {
		s.Require().NoError(s.service.Transfer(s.as(holder), holder, receiver, id))
		view, err := s.service.Record(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(receiver, view.Owner)
	})

	s.Run("non-owner from is rejected", func() {
		err := s.service.Transfer(s.as(holder), holder, deployer, id)
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeUnauthorized))
	})

	s.Run("unapproved third party cannot move the record", func() {
		err := s.service.Transfer(s.as(holder), receiver, holder, id)
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeUnauthorized))
	})

	s.Run("approved operator can move the record", func() {
		s.Require().NoError(s.ledger.SetApprovalForAll(s.ctx, receiver, holder, true))
		s.Require().NoError(s.service.Transfer(s.as(holder), receiver, holder, id))
		view, err := s.service.Record(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(holder, view.Owner)
	})

	s.Run("deny-listed party blocks the transfer", func() {
		err := s.service.Transfer(s.as(holder), holder, blocked, id)
		s.Require().Error(err)
		detail, ok := domerr.DeniedFrom(err)
		s.Require().True(ok)
		s.Equal(blocked, detail.Addr)
	})

	s.Run("unknown record is not found", func() {
		err := s.service.Transfer(s.as(holder), holder, receiver, 404)
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeNotFound))
	})
}

// Enforcement toggling changes mint outcomes for unlisted recipients; the
// deny list applies either way.
func (s *ServiceSuite) TestEnforcementToggleOnMint() {
	_, err := s.service.Mint(s.as(deployer), holder)
	s.Require().NoError(err, "unlisted recipient passes with enforcement off")

	s.Require().NoError(s.gate.Enable(s.as(deployer)))

	_, err = s.service.Mint(s.as(deployer), holder)
	s.Require().Error(err)
	detail, ok := domerr.DeniedFrom(err)
	s.Require().True(ok)
	s.Equal(domerr.ReasonNotAllowListed, detail.Reason)

	s.oracle.Allow(holder)
	_, err = s.service.Mint(s.as(deployer), holder)
	s.NoError(err, "allow-listed recipient passes under enforcement")
}

func (s *ServiceSuite) TestBurn() {
	id, err := s.service.MintWithAttributes(s.as(deployer), holder, graded())
	s.Require().NoError(err)

	s.Require().NoError(s.service.Burn(s.as(deployer), id))

	_, err = s.service.Record(s.ctx, id)
	s.True(domerr.HasCode(err, domerr.CodeNotFound))

	_, err = s.ledger.OwnerOf(s.ctx, id)
	s.Error(err, "ownership and enumeration entries are gone")

	s.Run("burning a burned record is not found", func() {
		err := s.service.Burn(s.as(deployer), id)
		s.Require().Error(err)
		s.True(domerr.HasCode(err, domerr.CodeNotFound))
	})
}

func (s *ServiceSuite) TestLifecycleIsAudited() {
	id, err := s.service.Mint(s.as(deployer), holder)
	s.Require().NoError(err)
	s.Require().NoError(s.service.Transfer(s.as(holder), holder, receiver, id))
	s.Require().NoError(s.service.Burn(s.as(deployer), id))

	events, err := s.auditor.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(audit.ActionRecordMinted, events[0].Action)
	s.Equal(audit.ActionRecordTransferred, events[1].Action)
	s.Equal(audit.ActionRecordBurned, events[2].Action)
	s.Equal(id.String(), events[0].Subject)
}
