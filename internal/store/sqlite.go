package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS localities (
	zip_code   TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	attributes TEXT NOT NULL DEFAULT '{}',
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS overrides (
	zip_code   TEXT PRIMARY KEY,
	attributes TEXT NOT NULL DEFAULT '{}',
	source     TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rankings (
	ranking_id     TEXT PRIMARY KEY,
	client_id      TEXT NOT NULL DEFAULT '',
	preferences    TEXT NOT NULL DEFAULT '{}',
	tier           TEXT NOT NULL,
	total_compared INTEGER NOT NULL DEFAULT 0,
	shown          TEXT NOT NULL DEFAULT '[]',
	insight_types  TEXT NOT NULL DEFAULT '[]',
	used_overrides INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rankings_created ON rankings(created_at DESC);
`

// SQLiteStore is a single-file Store for local runs and the CLI. Timestamps
// are stored as RFC 3339 text.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema. Use ":memory:" for a throwaway store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) ListLocalities(ctx context.Context) ([]*Locality, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT zip_code, name, attributes, updated_at
		FROM localities ORDER BY zip_code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Locality
	for rows.Next() {
		l, err := scanSQLiteLocality(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetLocality(ctx context.Context, zip string) (*Locality, error) {
	l, err := scanSQLiteLocality(s.db.QueryRowContext(ctx, `
		SELECT zip_code, name, attributes, updated_at
		FROM localities WHERE zip_code = ?`, zip))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *SQLiteStore) UpsertLocality(ctx context.Context, l *Locality) error {
	attrs, err := json.Marshal(l.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO localities (zip_code, name, attributes, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (zip_code) DO UPDATE SET
			name = excluded.name,
			attributes = excluded.attributes,
			updated_at = excluded.updated_at`,
		l.ZipCode, l.Name, string(attrs), now.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	l.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) DeleteLocality(ctx context.Context, zip string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM localities WHERE zip_code = ?`, zip)
	return err
}

func (s *SQLiteStore) ListOverrides(ctx context.Context) ([]*Override, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT zip_code, attributes, source, updated_at
		FROM overrides ORDER BY zip_code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Override
	for rows.Next() {
		o := &Override{}
		var attrs, updatedAt string
		if err := rows.Scan(&o.ZipCode, &attrs, &o.Source, &updatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(attrs), &o.Attributes); err != nil {
			return nil, fmt.Errorf("decode override %s: %w", o.ZipCode, err)
		}
		o.UpdatedAt = parseTime(updatedAt)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertOverride(ctx context.Context, o *Override) error {
	attrs, err := json.Marshal(o.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO overrides (zip_code, attributes, source, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (zip_code) DO UPDATE SET
			attributes = excluded.attributes,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		o.ZipCode, string(attrs), o.Source, now.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	o.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) DeleteOverride(ctx context.Context, zip string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM overrides WHERE zip_code = ?`, zip)
	return err
}

func (s *SQLiteStore) CreateRanking(ctx context.Context, r *RankingRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	prefsJSON, _ := json.Marshal(r.Preferences)
	shownJSON, _ := json.Marshal(nonNil(r.Shown))
	typesJSON, _ := json.Marshal(nonNil(r.InsightTypes))
	now := s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rankings (ranking_id, client_id, preferences, tier, total_compared,
			shown, insight_types, used_overrides, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.ClientID, string(prefsJSON), r.Tier, r.TotalCompared,
		string(shownJSON), string(typesJSON), r.UsedOverrides, now.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	r.CreatedAt = now
	return nil
}

func (s *SQLiteStore) GetRanking(ctx context.Context, id uuid.UUID) (*RankingRecord, error) {
	r := &RankingRecord{}
	var rawID, prefsJSON, shownJSON, typesJSON, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT ranking_id, client_id, preferences, tier, total_compared,
			shown, insight_types, used_overrides, created_at
		FROM rankings WHERE ranking_id = ?`, id.String(),
	).Scan(&rawID, &r.ClientID, &prefsJSON, &r.Tier, &r.TotalCompared,
		&shownJSON, &typesJSON, &r.UsedOverrides, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse ranking id: %w", err)
	}
	_ = json.Unmarshal([]byte(prefsJSON), &r.Preferences)
	_ = json.Unmarshal([]byte(shownJSON), &r.Shown)
	_ = json.Unmarshal([]byte(typesJSON), &r.InsightTypes)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLocality(row rowScanner) (*Locality, error) {
	l := &Locality{}
	var attrs, updatedAt string
	if err := row.Scan(&l.ZipCode, &l.Name, &attrs, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(attrs), &l.Attributes); err != nil {
		return nil, fmt.Errorf("decode locality %s: %w", l.ZipCode, err)
	}
	l.UpdatedAt = parseTime(updatedAt)
	return l, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
