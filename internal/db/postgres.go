package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type PostgresStore struct {
	db *sqlx.DB
}

func OpenPostgres(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store.dsn is required for the postgres driver")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL,
		tab_id BIGINT,
		visited_at TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'extension',
		kind TEXT NOT NULL,
		success BOOLEAN NOT NULL DEFAULT FALSE,
		title TEXT NOT NULL DEFAULT '',
		text_preview TEXT NOT NULL DEFAULT '',
		full_text TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		key_points TEXT NOT NULL DEFAULT '[]',
		concepts TEXT NOT NULL DEFAULT '[]',
		summary TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_records_url ON records(url);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, rec *Record) error {
	query := `
	INSERT INTO records (url, tab_id, visited_at, source, kind, success, title, text_preview, full_text, language, key_points, concepts, summary, error)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING id
	`

	return s.db.QueryRowxContext(ctx, query,
		rec.URL, rec.TabID, rec.VisitedAt, rec.Source, rec.Kind, rec.Success,
		rec.Title, rec.TextPreview, rec.FullText, rec.Language,
		marshalList(rec.KeyPoints), marshalList(rec.Concepts), rec.Summary, rec.Error,
	).Scan(&rec.ID)
}

type pgRecord struct {
	ID          int64         `db:"id"`
	URL         string        `db:"url"`
	TabID       sql.NullInt64 `db:"tab_id"`
	VisitedAt   string        `db:"visited_at"`
	Source      string        `db:"source"`
	Kind        string        `db:"kind"`
	Success     bool          `db:"success"`
	Title       string        `db:"title"`
	TextPreview string        `db:"text_preview"`
	FullText    string        `db:"full_text"`
	Language    string        `db:"language"`
	KeyPoints   string        `db:"key_points"`
	Concepts    string        `db:"concepts"`
	Summary     string        `db:"summary"`
	Error       string        `db:"error"`
	CreatedAt   time.Time     `db:"created_at"`
}

func (r *pgRecord) toRecord() Record {
	rec := Record{
		ID:          r.ID,
		URL:         r.URL,
		VisitedAt:   r.VisitedAt,
		Source:      r.Source,
		Kind:        r.Kind,
		Success:     r.Success,
		Title:       r.Title,
		TextPreview: r.TextPreview,
		FullText:    r.FullText,
		Language:    r.Language,
		KeyPoints:   unmarshalList(r.KeyPoints),
		Concepts:    unmarshalList(r.Concepts),
		Summary:     r.Summary,
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
	}
	if r.TabID.Valid {
		tabID := r.TabID.Int64
		rec.TabID = &tabID
	}
	return rec
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	query := `
	SELECT id, url, tab_id, visited_at, source, kind, success, title, text_preview, full_text, language, key_points, concepts, summary, error, created_at
	FROM records ORDER BY id DESC LIMIT $1
	`

	var rows []pgRecord
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM records`)
	return count, err
}
