package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/san-kum/mgxs/internal/sample"
)

// SQLiteStore keeps run metadata as JSON and rows in a table of their own.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "mgxs.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS xs_rows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		material TEXT NOT NULL,
		grp INTEGER NOT NULL,
		samples INTEGER NOT NULL,
		total REAL NOT NULL,
		absorption REAL NOT NULL,
		nu_fission REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`); err != nil {
		return fmt.Errorf("create rows table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(meta RunMetadata, rows []sample.Row) (id string, retErr error) {
	stamp(&meta)
	payload, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(`INSERT INTO runs (id, created_at, payload) VALUES (?, ?, ?)`,
		meta.ID, meta.Timestamp.Format("2006-01-02T15:04:05.000000000Z07:00"), payload); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	for i, r := range rows {
		if _, err := tx.Exec(`INSERT INTO xs_rows (run_id, seq, material, grp, samples, total, absorption, nu_fission)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			meta.ID, i, r.Material, r.Group, r.Samples, r.Total, r.Absorption, r.NuFission); err != nil {
			return "", fmt.Errorf("insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *SQLiteStore) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(`SELECT payload FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var meta RunMetadata
		if err := json.Unmarshal(payload, &meta); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(runID string) (*RunMetadata, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM runs WHERE id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}
	var meta RunMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &meta, nil
}

func (s *SQLiteStore) LoadRows(runID string) ([]sample.Row, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT material, grp, samples, total, absorption, nu_fission
		FROM xs_rows WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]sample.Row, 0)
	for rows.Next() {
		var r sample.Row
		if err := rows.Scan(&r.Material, &r.Group, &r.Samples, &r.Total, &r.Absorption, &r.NuFission); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
