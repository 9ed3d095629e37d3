// Package store is a local sqlite mirror of the session's documents and
// page texts. The backend remains the system of record; the mirror sits
// behind the autosave path so edits survive a restart of the workbench
// even when the backend save fails.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrClosed is returned when operating on a closed store.
var ErrClosed = errors.New("store: closed")

// Document is a row of the documents table.
type Document struct {
	ID        string `json:"doc_id"`
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Page is a row of the pages table.
type Page struct {
	DocID      string  `json:"doc_id"`
	Num        int     `json:"num"`
	ImageRef   string  `json:"image_ref"`
	Text       *string `json:"text"`
	DurationMS int64   `json:"duration_ms"`
	Status     string  `json:"status"`
	UpdatedAt  string  `json:"updated_at"`
}

// Store wraps the sqlite connection. Safe for concurrent use: the
// autosave path saves from timer goroutines while the session may be
// shutting down.
type Store struct {
	db *sql.DB

	mu     sync.RWMutex
	closed bool
}

// Open opens (and creates if needed) the mirror database at path and
// applies the schema and pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer; the mirror is touched from timers and flush calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating: %w", err)
	}
	return s, nil
}

// Close shuts the store down.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// UpsertDocument records a document the session discovered.
func (s *Store) UpsertDocument(ctx context.Context, docID, filename string) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (doc_id, filename) VALUES (?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET
			filename = excluded.filename,
			updated_at = CURRENT_TIMESTAMP
	`, docID, filename)
	return err
}

// UpsertPage records a page with its current OCR state.
func (s *Store) UpsertPage(ctx context.Context, p Page) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (doc_id, num, image_ref, text, duration_ms, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id, num) DO UPDATE SET
			image_ref = excluded.image_ref,
			text = excluded.text,
			duration_ms = excluded.duration_ms,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, p.DocID, p.Num, p.ImageRef, p.Text, p.DurationMS, p.Status)
	return err
}

// SavePageText updates just the text column, creating the page row if
// the mirror has not seen it yet. Satisfies autosave.Persister.
func (s *Store) SavePageText(ctx context.Context, docID string, pageNum int, text string) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (doc_id, num, text, status)
		VALUES (?, ?, ?, 'done')
		ON CONFLICT(doc_id, num) DO UPDATE SET
			text = excluded.text,
			updated_at = CURRENT_TIMESTAMP
	`, docID, pageNum, text)
	return err
}

// GetPage returns one mirrored page.
func (s *Store) GetPage(ctx context.Context, docID string, pageNum int) (*Page, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	var p Page
	err := s.db.QueryRowContext(ctx, `
		SELECT doc_id, num, image_ref, text, duration_ms, status, updated_at
		FROM pages WHERE doc_id = ? AND num = ?
	`, docID, pageNum).Scan(&p.DocID, &p.Num, &p.ImageRef, &p.Text, &p.DurationMS, &p.Status, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListDocuments returns all mirrored documents with their page counts.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.doc_id, d.filename,
		       (SELECT COUNT(*) FROM pages p WHERE p.doc_id = d.doc_id),
		       d.created_at, d.updated_at
		FROM documents d ORDER BY d.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.PageCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and its pages from the mirror.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc_id = ?`, docID)
	return err
}
