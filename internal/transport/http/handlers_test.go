package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gemreg/internal/access"
	"gemreg/internal/compliance"
	"gemreg/internal/jwt"
	"gemreg/internal/ledger"
	"gemreg/internal/lifecycle"
	"gemreg/internal/platform/logger"
	registrymem "gemreg/internal/registry/store/memory"
	"gemreg/pkg/domain"
)

const (
	adminAddr   = domain.Address("0xadmin")
	holderAddr  = domain.Address("0xholder")
	otherAddr   = domain.Address("0xother")
	blockedAddr = domain.Address("0xblocked")
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	tokens *jwt.Service
	oracle  *compliance.MemoryOracle
	swapped *compliance.MemoryOracle
	gate    *compliance.Gate
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	log := logger.New()

	roles := access.NewInMemoryStore()
	accessSvc := access.NewService(roles)
	s.Require().NoError(accessSvc.Bootstrap(ctx, adminAddr))

	s.oracle = compliance.NewMemoryOracle()
	s.oracle.Deny(blockedAddr)
	s.gate = compliance.NewGate(s.oracle, roles)

	lifecycleSvc := lifecycle.New(roles, s.gate, registrymem.New(), ledger.NewInMemoryLedger())

	s.tokens = jwt.NewService("test-key", "gemreg", "gemreg-api")
	s.swapped = compliance.NewMemoryOracle()
	handler := NewHandler(lifecycleSvc, accessSvc, s.gate, log,
		WithOracleFactory(func(allowKey, denyKey string) (compliance.Oracle, error) {
			return s.swapped, nil
		}))
	s.router = NewRouter(handler, s.tokens, nil)
}

func (s *HandlerSuite) request(method, path string, body any, as domain.Address) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if !as.IsZero() {
		token, err := s.tokens.Issue(as, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decodeError(rec *httptest.ResponseRecorder) errorResponse {
	var resp errorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) TestMintAndGet() {
	rec := s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, adminAddr)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var minted mintResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &minted))
	s.Equal(domain.RecordID(1), minted.ID)

	rec = s.request(http.MethodGet, "/records/1", nil, adminAddr)
	s.Require().Equal(http.StatusOK, rec.Code)

	var view lifecycle.RecordView
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &view))
	s.Equal(holderAddr, view.Owner)
	s.True(view.Record.Attributes.IsEmpty())
}

func (s *HandlerSuite) TestAuth() {
	s.Run("missing token is 401", func() {
		rec := s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("garbage token is 401", func() {
		req := httptest.NewRequest(http.MethodGet, "/records/1", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("healthz is public", func() {
		rec := s.request(http.MethodGet, "/healthz", nil, "")
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *HandlerSuite) TestMintAuthorization() {
	s.Run("non-minter is 403", func() {
		rec := s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, otherAddr)
		s.Equal(http.StatusForbidden, rec.Code)
		s.Equal("unauthorized", s.decodeError(rec).Error)
	})

	s.Run("deny-listed recipient is 403 with reason", func() {
		rec := s.request(http.MethodPost, "/records", mintRequest{To: blockedAddr.String()}, adminAddr)
		s.Equal(http.StatusForbidden, rec.Code)
		resp := s.decodeError(rec)
		s.Equal("denied", resp.Error)
		s.Equal(blockedAddr.String(), resp.Address)
		s.Equal("deny_listed", resp.Reason)
	})

	s.Run("bad body is 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewBufferString("{"))
		token, err := s.tokens.Issue(adminAddr, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestBatchMintAtomicity() {
	rec := s.request(http.MethodPost, "/records/batch", batchMintRequest{
		Recipients: []string{holderAddr.String(), blockedAddr.String()},
	}, adminAddr)
	s.Require().Equal(http.StatusForbidden, rec.Code)

	rec = s.request(http.MethodGet, "/records/1", nil, adminAddr)
	s.Equal(http.StatusNotFound, rec.Code, "denied batch must retain nothing")

	rec = s.request(http.MethodPost, "/records/batch", batchMintRequest{
		Recipients: []string{holderAddr.String(), otherAddr.String()},
	}, adminAddr)
	s.Require().Equal(http.StatusCreated, rec.Code)

	var resp batchMintResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal([]domain.RecordID{1, 2}, resp.IDs)
}

func (s *HandlerSuite) TestTransferAndBurn() {
	rec := s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, adminAddr)
	s.Require().Equal(http.StatusCreated, rec.Code)

	s.Run("owner transfers", func() {
		rec := s.request(http.MethodPost, "/records/1/transfer",
			transferRequest{From: holderAddr.String(), To: otherAddr.String()}, holderAddr)
		s.Equal(http.StatusNoContent, rec.Code, rec.Body.String())
	})

	s.Run("non-owner cannot transfer", func() {
		rec := s.request(http.MethodPost, "/records/1/transfer",
			transferRequest{From: otherAddr.String(), To: holderAddr.String()}, holderAddr)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("burn then 404", func() {
		rec := s.request(http.MethodDelete, "/records/1", nil, adminAddr)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.request(http.MethodGet, "/records/1", nil, adminAddr)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestPauseLocksMutations() {
	rec := s.request(http.MethodPost, "/system/pause", nil, adminAddr)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, adminAddr)
	s.Equal(http.StatusLocked, rec.Code)
	s.Equal("paused", s.decodeError(rec).Error)

	rec = s.request(http.MethodGet, "/system/status", nil, adminAddr)
	s.Require().Equal(http.StatusOK, rec.Code)
	var status statusResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &status))
	s.True(status.Paused)

	rec = s.request(http.MethodPost, "/system/unpause", nil, adminAddr)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, adminAddr)
	s.Equal(http.StatusCreated, rec.Code)
}

func (s *HandlerSuite) TestRoleAdministration() {
	s.Run("admin grants minter", func() {
		rec := s.request(http.MethodPost, "/roles/grant",
			roleRequest{Role: "minter", Address: otherAddr.String()}, adminAddr)
		s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

		rec = s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, otherAddr)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("non-admin cannot grant", func() {
		rec := s.request(http.MethodPost, "/roles/grant",
			roleRequest{Role: "pauser", Address: otherAddr.String()}, otherAddr)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("members lists the role", func() {
		rec := s.request(http.MethodGet, "/roles/minter/members", nil, adminAddr)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp membersResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Contains(resp.Members, adminAddr)
	})

	s.Run("unknown role is 400", func() {
		rec := s.request(http.MethodGet, "/roles/owner/members", nil, adminAddr)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestEnforcementToggle() {
	rec := s.request(http.MethodPost, "/compliance/enable", nil, adminAddr)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, adminAddr)
	s.Require().Equal(http.StatusForbidden, rec.Code)
	s.Equal("not_allow_listed", s.decodeError(rec).Reason)

	s.oracle.Allow(holderAddr)
	rec = s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, adminAddr)
	s.Equal(http.StatusCreated, rec.Code)

	rec = s.request(http.MethodPost, "/compliance/disable", nil, otherAddr)
	s.Equal(http.StatusForbidden, rec.Code, "enforcement toggle is admin-only")
}

func (s *HandlerSuite) TestOracleSwap() {
	s.Run("admin swaps the oracle and the deny list changes", func() {
		s.swapped.Deny(holderAddr)
		rec := s.request(http.MethodPost, "/compliance/oracle",
			oracleRequest{AllowKey: "alt:allow", DenyKey: "alt:deny"}, adminAddr)
		s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

		rec = s.request(http.MethodPost, "/records", mintRequest{To: holderAddr.String()}, adminAddr)
		s.Equal(http.StatusForbidden, rec.Code)

		rec = s.request(http.MethodPost, "/records", mintRequest{To: blockedAddr.String()}, adminAddr)
		s.Equal(http.StatusCreated, rec.Code, "old oracle's deny list no longer applies")
	})

	s.Run("non-admin cannot swap", func() {
		rec := s.request(http.MethodPost, "/compliance/oracle",
			oracleRequest{AllowKey: "alt:allow", DenyKey: "alt:deny"}, otherAddr)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("missing keys are 400", func() {
		rec := s.request(http.MethodPost, "/compliance/oracle", oracleRequest{}, adminAddr)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
