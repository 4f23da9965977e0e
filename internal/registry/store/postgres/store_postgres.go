package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gemreg/internal/registry/models"
	"gemreg/pkg/domain"
	"gemreg/pkg/platform/sentinel"
	"gemreg/pkg/requestcontext"
)

// Store persists attribute records in PostgreSQL. First-write-wins is
// enforced in SQL so two processes sharing the database cannot race an
// administrative fill past an already-set field.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed attribute store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema is the DDL for the attribute table. Applied by the deployment's
// migration step; exposed here so integration tests can create the table.
const Schema = `
CREATE TABLE IF NOT EXISTS asset_attributes (
	record_id    BIGINT PRIMARY KEY,
	lab          TEXT NOT NULL DEFAULT '',
	certificate  TEXT NOT NULL DEFAULT '',
	shape        TEXT NOT NULL DEFAULT '',
	carat        BIGINT NOT NULL DEFAULT 0,
	color        TEXT NOT NULL DEFAULT '',
	clarity      TEXT NOT NULL DEFAULT '',
	cut          TEXT NOT NULL DEFAULT '',
	polish       TEXT NOT NULL DEFAULT '',
	symmetry     TEXT NOT NULL DEFAULT '',
	fluorescence TEXT NOT NULL DEFAULT '',
	minted_at    TIMESTAMPTZ NOT NULL
)`

const uniqueViolation = "23505"

func (s *Store) CreateEmpty(ctx context.Context, id domain.RecordID) error {
	return s.create(ctx, id, models.Attributes{})
}

func (s *Store) CreateFull(ctx context.Context, id domain.RecordID, attrs models.Attributes) error {
	return s.create(ctx, id, attrs)
}

func (s *Store) create(ctx context.Context, id domain.RecordID, attrs models.Attributes) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO asset_attributes
			(record_id, lab, certificate, shape, carat, color, clarity, cut, polish, symmetry, fluorescence, minted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		int64(id), attrs.Lab, attrs.Certificate, attrs.Shape, int64(attrs.Carat),
		attrs.Color, attrs.Clarity, attrs.Cut, attrs.Polish, attrs.Symmetry,
		attrs.Fluorescence, requestcontext.Now(ctx),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("record %s already exists: %w", id, sentinel.ErrConflict)
		}
		return fmt.Errorf("create record %s: %w", id, err)
	}
	return nil
}

// FillIfEmpty updates each field only where its stored value is still
// empty/zero. One statement, so the per-field checks and writes are atomic.
func (s *Store) FillIfEmpty(ctx context.Context, id domain.RecordID, attrs models.Attributes) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE asset_attributes SET
			lab          = CASE WHEN lab = ''          THEN $2  ELSE lab          END,
			certificate  = CASE WHEN certificate = ''  THEN $3  ELSE certificate  END,
			shape        = CASE WHEN shape = ''        THEN $4  ELSE shape        END,
			carat        = CASE WHEN carat = 0         THEN $5  ELSE carat        END,
			color        = CASE WHEN color = ''        THEN $6  ELSE color        END,
			clarity      = CASE WHEN clarity = ''      THEN $7  ELSE clarity      END,
			cut          = CASE WHEN cut = ''          THEN $8  ELSE cut          END,
			polish       = CASE WHEN polish = ''       THEN $9  ELSE polish       END,
			symmetry     = CASE WHEN symmetry = ''     THEN $10 ELSE symmetry     END,
			fluorescence = CASE WHEN fluorescence = '' THEN $11 ELSE fluorescence END
		WHERE record_id = $1`,
		int64(id), attrs.Lab, attrs.Certificate, attrs.Shape, int64(attrs.Carat),
		attrs.Color, attrs.Clarity, attrs.Cut, attrs.Polish, attrs.Symmetry,
		attrs.Fluorescence,
	)
	if err != nil {
		return fmt.Errorf("fill record %s: %w", id, err)
	}
	return requireRow(result, id)
}

func (s *Store) Destroy(ctx context.Context, id domain.RecordID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM asset_attributes WHERE record_id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("destroy record %s: %w", id, err)
	}
	return requireRow(result, id)
}

func (s *Store) Get(ctx context.Context, id domain.RecordID) (*models.Record, error) {
	record := models.Record{ID: id}
	var carat int64
	err := s.db.QueryRowContext(ctx, `
		SELECT lab, certificate, shape, carat, color, clarity, cut, polish, symmetry, fluorescence, minted_at
		FROM asset_attributes WHERE record_id = $1`, int64(id),
	).Scan(
		&record.Attributes.Lab, &record.Attributes.Certificate,
		&record.Attributes.Shape, &carat, &record.Attributes.Color,
		&record.Attributes.Clarity, &record.Attributes.Cut,
		&record.Attributes.Polish, &record.Attributes.Symmetry,
		&record.Attributes.Fluorescence, &record.MintedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	record.Attributes.Carat = uint64(carat)
	return &record, nil
}

func requireRow(result sql.Result, id domain.RecordID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for record %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}
