package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gemreg/internal/registry/models"
	"gemreg/pkg/platform/sentinel"
	"gemreg/pkg/requestcontext"
)

type AttributeStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestAttributeStoreSuite(t *testing.T) {
	suite.Run(t, new(AttributeStoreSuite))
}

func (s *AttributeStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *AttributeStoreSuite) graded() models.Attributes {
	return models.Attributes{
		Lab: "GIA", Certificate: "6204189", Shape: "round", Carat: 103,
		Color: "E", Clarity: "VVS2", Cut: "excellent", Polish: "excellent",
		Symmetry: "very good", Fluorescence: "faint",
	}
}

func (s *AttributeStoreSuite) TestCreateEmpty() {
	s.Run("creates empty record", func() {
		s.Require().NoError(s.store.CreateEmpty(s.ctx, 1))
		record, err := s.store.Get(s.ctx, 1)
		s.Require().NoError(err)
		s.True(record.Attributes.IsEmpty())
	})

	s.Run("double create conflicts", func() {
		err := s.store.CreateEmpty(s.ctx, 1)
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("stamps mint time from context", func() {
		minted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(s.ctx, minted)
		s.Require().NoError(s.store.CreateEmpty(ctx, 2))
		record, err := s.store.Get(s.ctx, 2)
		s.Require().NoError(err)
		s.Equal(minted, record.MintedAt)
	})
}

func (s *AttributeStoreSuite) TestCreateFull() {
	s.Run("stores all fields as given", func() {
		s.Require().NoError(s.store.CreateFull(s.ctx, 1, s.graded()))
		record, err := s.store.Get(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(s.graded(), record.Attributes)
	})

	s.Run("empty values are stored, not treated as unset", func() {
		attrs := s.graded()
		attrs.Fluorescence = ""
		attrs.Carat = 0
		s.Require().NoError(s.store.CreateFull(s.ctx, 2, attrs))
		record, err := s.store.Get(s.ctx, 2)
		s.Require().NoError(err)
		s.Equal(attrs, record.Attributes)
	})

	s.Run("double create conflicts", func() {
		err := s.store.CreateFull(s.ctx, 1, s.graded())
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *AttributeStoreSuite) TestFillIfEmpty() {
	s.Run("populates every empty field", func() {
		s.Require().NoError(s.store.CreateEmpty(s.ctx, 1))
		s.Require().NoError(s.store.FillIfEmpty(s.ctx, 1, s.graded()))
		record, err := s.store.Get(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal(s.graded(), record.Attributes)
	})

	s.Run("never overwrites populated fields", func() {
		rival := s.graded()
		rival.Lab = "IGI"
		rival.Certificate = "other-cert"
		s.Require().NoError(s.store.FillIfEmpty(s.ctx, 1, rival))

		record, err := s.store.Get(s.ctx, 1)
		s.Require().NoError(err)
		s.Equal("GIA", record.Attributes.Lab)
		s.Equal("6204189", record.Attributes.Certificate)
	})

	s.Run("missing record reports not found", func() {
		err := s.store.FillIfEmpty(s.ctx, 999, s.graded())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *AttributeStoreSuite) TestDestroy() {
	s.Require().NoError(s.store.CreateEmpty(s.ctx, 1))
	s.Require().NoError(s.store.Destroy(s.ctx, 1))

	_, err := s.store.Get(s.ctx, 1)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Destroy(s.ctx, 1), sentinel.ErrNotFound)
}

func (s *AttributeStoreSuite) TestGetReturnsCopy() {
	s.Require().NoError(s.store.CreateFull(s.ctx, 1, s.graded()))

	record, err := s.store.Get(s.ctx, 1)
	s.Require().NoError(err)
	record.Attributes.Lab = "tampered"

	fresh, err := s.store.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("GIA", fresh.Attributes.Lab)
}
