package db

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		tab_id INTEGER,
		visited_at TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'extension',
		kind TEXT NOT NULL,
		success INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL DEFAULT '',
		text_preview TEXT NOT NULL DEFAULT '',
		full_text TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		key_points TEXT NOT NULL DEFAULT '[]',
		concepts TEXT NOT NULL DEFAULT '[]',
		summary TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_url ON records(url);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, rec *Record) error {
	query := `
	INSERT INTO records (url, tab_id, visited_at, source, kind, success, title, text_preview, full_text, language, key_points, concepts, summary, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		rec.URL, rec.TabID, rec.VisitedAt, rec.Source, rec.Kind, rec.Success,
		rec.Title, rec.TextPreview, rec.FullText, rec.Language,
		marshalList(rec.KeyPoints), marshalList(rec.Concepts), rec.Summary, rec.Error,
	)
	if err != nil {
		return err
	}

	rec.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	query := `
	SELECT id, url, tab_id, visited_at, source, kind, success, title, text_preview, full_text, language, key_points, concepts, summary, error, created_at
	FROM records ORDER BY id DESC LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var tabID sql.NullInt64
		var keyPoints, concepts string
		if err := rows.Scan(
			&rec.ID, &rec.URL, &tabID, &rec.VisitedAt, &rec.Source, &rec.Kind, &rec.Success,
			&rec.Title, &rec.TextPreview, &rec.FullText, &rec.Language,
			&keyPoints, &concepts, &rec.Summary, &rec.Error, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if tabID.Valid {
			rec.TabID = &tabID.Int64
		}
		rec.KeyPoints = unmarshalList(keyPoints)
		rec.Concepts = unmarshalList(concepts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&count)
	return count, err
}
