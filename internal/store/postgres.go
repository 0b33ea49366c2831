package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS zipfit_localities (
	zip_code   TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	attributes JSONB NOT NULL DEFAULT '{}',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS zipfit_overrides (
	zip_code   TEXT PRIMARY KEY,
	attributes JSONB NOT NULL DEFAULT '{}',
	source     TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS zipfit_rankings (
	ranking_id     UUID PRIMARY KEY,
	client_id      TEXT NOT NULL DEFAULT '',
	preferences    JSONB NOT NULL DEFAULT '{}',
	tier           TEXT NOT NULL,
	total_compared INTEGER NOT NULL DEFAULT 0,
	shown          TEXT[] NOT NULL DEFAULT '{}',
	insight_types  TEXT[] NOT NULL DEFAULT '{}',
	used_overrides BOOLEAN NOT NULL DEFAULT false,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_zipfit_rankings_created ON zipfit_rankings(created_at DESC);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping reports whether the pool can reach the database.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Localities ---

func (s *PostgresStore) ListLocalities(ctx context.Context) ([]*Locality, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT zip_code, name, attributes, updated_at
		FROM zipfit_localities ORDER BY zip_code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Locality
	for rows.Next() {
		l, err := scanLocality(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetLocality(ctx context.Context, zip string) (*Locality, error) {
	l, err := scanLocality(s.pool.QueryRow(ctx, `
		SELECT zip_code, name, attributes, updated_at
		FROM zipfit_localities WHERE zip_code = $1`, zip))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *PostgresStore) UpsertLocality(ctx context.Context, l *Locality) error {
	attrs, err := json.Marshal(l.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO zipfit_localities (zip_code, name, attributes, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (zip_code) DO UPDATE SET
			name = EXCLUDED.name,
			attributes = EXCLUDED.attributes,
			updated_at = now()
		RETURNING updated_at`,
		l.ZipCode, l.Name, attrs,
	).Scan(&l.UpdatedAt)
}

func (s *PostgresStore) DeleteLocality(ctx context.Context, zip string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM zipfit_localities WHERE zip_code = $1`, zip)
	return err
}

// --- Overrides ---

func (s *PostgresStore) ListOverrides(ctx context.Context) ([]*Override, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT zip_code, attributes, source, updated_at
		FROM zipfit_overrides ORDER BY zip_code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Override
	for rows.Next() {
		o := &Override{}
		var attrs []byte
		if err := rows.Scan(&o.ZipCode, &attrs, &o.Source, &o.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(attrs, &o.Attributes); err != nil {
			return nil, fmt.Errorf("decode override %s: %w", o.ZipCode, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertOverride(ctx context.Context, o *Override) error {
	attrs, err := json.Marshal(o.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO zipfit_overrides (zip_code, attributes, source, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (zip_code) DO UPDATE SET
			attributes = EXCLUDED.attributes,
			source = EXCLUDED.source,
			updated_at = now()
		RETURNING updated_at`,
		o.ZipCode, attrs, o.Source,
	).Scan(&o.UpdatedAt)
}

func (s *PostgresStore) DeleteOverride(ctx context.Context, zip string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM zipfit_overrides WHERE zip_code = $1`, zip)
	return err
}

// --- Rankings ---

func (s *PostgresStore) CreateRanking(ctx context.Context, r *RankingRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	prefsJSON, _ := json.Marshal(r.Preferences)
	return s.pool.QueryRow(ctx, `
		INSERT INTO zipfit_rankings (ranking_id, client_id, preferences, tier,
			total_compared, shown, insight_types, used_overrides)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		r.ID, r.ClientID, prefsJSON, r.Tier,
		r.TotalCompared, nonNil(r.Shown), nonNil(r.InsightTypes), r.UsedOverrides,
	).Scan(&r.CreatedAt)
}

func (s *PostgresStore) GetRanking(ctx context.Context, id uuid.UUID) (*RankingRecord, error) {
	r := &RankingRecord{}
	var prefsJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT ranking_id, client_id, preferences, tier, total_compared,
			shown, insight_types, used_overrides, created_at
		FROM zipfit_rankings WHERE ranking_id = $1`, id,
	).Scan(
		&r.ID, &r.ClientID, &prefsJSON, &r.Tier, &r.TotalCompared,
		&r.Shown, &r.InsightTypes, &r.UsedOverrides, &r.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if prefsJSON != nil {
		_ = json.Unmarshal(prefsJSON, &r.Preferences)
	}
	return r, nil
}

func scanLocality(row pgx.Row) (*Locality, error) {
	l := &Locality{}
	var attrs []byte
	var updatedAt time.Time
	if err := row.Scan(&l.ZipCode, &l.Name, &attrs, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attrs, &l.Attributes); err != nil {
		return nil, fmt.Errorf("decode locality %s: %w", l.ZipCode, err)
	}
	l.UpdatedAt = updatedAt
	return l, nil
}
