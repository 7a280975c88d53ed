package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"flowtrigger/internal/model"

	_ "modernc.org/sqlite"
)

const (
	dbFile = "flowtrigger.db"

	// DataDirEnv overrides the default ~/.flowtrigger data directory
	DataDirEnv = "FLOW_DATA_DIR"

	historyLimit = 100

	// Owner-only, since history can hold webhook signatures in URLs
	secureFileMode = 0600
	secureDirMode  = 0700
)

// SQLiteStorage keeps trigger history and saved flows in one SQLite file
type SQLiteStorage struct {
	db *sql.DB
}

// DefaultDataDir returns $FLOW_DATA_DIR, or ~/.flowtrigger when unset
func DefaultDataDir() (string, error) {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flowtrigger"), nil
}

// NewStorage opens the store in the default data directory
func NewStorage() (*SQLiteStorage, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// Open opens the store inside dataDir, creating the directory, the
// database file and the schema as needed
func Open(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, secureDirMode); err != nil {
		return nil, err
	}

	path := filepath.Join(dataDir, dbFile)
	if err := ensureSecureFile(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStorage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// ensureSecureFile creates path with owner-only permissions before the
// driver opens it, or tightens the mode of an existing file
func ensureSecureFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, secureFileMode)
		if err != nil {
			return fmt.Errorf("creating database file: %w", err)
		}
		return f.Close()
	}
	if err != nil {
		return fmt.Errorf("checking database file: %w", err)
	}

	if info.Mode().Perm() != secureFileMode {
		if err := os.Chmod(path, secureFileMode); err != nil {
			return fmt.Errorf("restricting database file permissions: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS triggers (
		id               TEXT PRIMARY KEY,
		sent_at          DATETIME NOT NULL,
		method           TEXT NOT NULL,
		url              TEXT NOT NULL,
		headers          TEXT NOT NULL DEFAULT '{}',
		payload          TEXT NOT NULL DEFAULT '',
		status_code      INTEGER,
		status           TEXT,
		response_headers TEXT,
		response_body    TEXT,
		duration_ms      INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_triggers_sent_at ON triggers(sent_at DESC);

	CREATE TABLE IF NOT EXISTS flows (
		name TEXT PRIMARY KEY,
		url  TEXT NOT NULL
	);`)
	return err
}

// =============================================================================
// Trigger history
// =============================================================================

const triggerColumns = `id, sent_at, method, url, headers, payload,
	status_code, status, response_headers, response_body, duration_ms`

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanTrigger(row scanner) (model.Request, error) {
	var (
		req         model.Request
		headers     string
		statusCode  sql.NullInt64
		durationMs  sql.NullInt64
		status      sql.NullString
		respHeaders sql.NullString
		respBody    sql.NullString
	)

	err := row.Scan(&req.ID, &req.Timestamp, &req.Method, &req.URL, &headers, &req.Body,
		&statusCode, &status, &respHeaders, &respBody, &durationMs)
	if err != nil {
		return req, err
	}

	// Unreadable header JSON shows as no headers rather than failing the listing
	req.Headers, _ = decodeHeaders(headers)

	if statusCode.Valid {
		req.Response = &model.Response{
			StatusCode: int(statusCode.Int64),
			Status:     status.String,
			Body:       respBody.String,
			DurationMs: durationMs.Int64,
		}
		req.Response.Headers, _ = decodeHeaders(respHeaders.String)
	}
	return req, nil
}

// decodeHeaders never returns a nil map
func decodeHeaders(raw string) (map[string]string, error) {
	headers := map[string]string{}
	if raw == "" {
		return headers, nil
	}
	if err := json.Unmarshal([]byte(raw), &headers); err != nil {
		return map[string]string{}, fmt.Errorf("decoding stored headers: %w", err)
	}
	if headers == nil {
		headers = map[string]string{}
	}
	return headers, nil
}

// LoadHistory returns the recorded triggers, newest first
func (s *SQLiteStorage) LoadHistory() (*model.History, error) {
	rows, err := s.db.Query(`SELECT `+triggerColumns+` FROM triggers ORDER BY sent_at DESC LIMIT ?`, historyLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := &model.History{Requests: []model.Request{}}
	for rows.Next() {
		req, err := scanTrigger(rows)
		if err != nil {
			return nil, err
		}
		history.Requests = append(history.Requests, req)
	}
	return history, rows.Err()
}

// AddToHistory records a sent trigger and drops the oldest entries past
// the history limit
func (s *SQLiteStorage) AddToHistory(req model.Request) error {
	headers, err := json.Marshal(req.Headers)
	if err != nil {
		return err
	}

	var (
		statusCode  sql.NullInt64
		durationMs  sql.NullInt64
		status      sql.NullString
		respHeaders sql.NullString
		respBody    sql.NullString
	)
	if resp := req.Response; resp != nil {
		encoded, err := json.Marshal(resp.Headers)
		if err != nil {
			return err
		}
		statusCode = sql.NullInt64{Int64: int64(resp.StatusCode), Valid: true}
		durationMs = sql.NullInt64{Int64: resp.DurationMs, Valid: true}
		status = sql.NullString{String: resp.Status, Valid: true}
		respHeaders = sql.NullString{String: string(encoded), Valid: true}
		respBody = sql.NullString{String: resp.Body, Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO triggers (`+triggerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.Timestamp, req.Method, req.URL, string(headers), req.Body,
		statusCode, status, respHeaders, respBody, durationMs,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM triggers WHERE id NOT IN (
		SELECT id FROM triggers ORDER BY sent_at DESC LIMIT ?)`, historyLimit); err != nil {
		return err
	}

	return tx.Commit()
}

// ClearHistory deletes every recorded trigger
func (s *SQLiteStorage) ClearHistory() error {
	_, err := s.db.Exec(`DELETE FROM triggers`)
	return err
}

// GetHistoryRequest returns the trigger with the given id, or nil when
// there is none
func (s *SQLiteStorage) GetHistoryRequest(id string) (*model.Request, error) {
	req, err := scanTrigger(s.db.QueryRow(`SELECT `+triggerColumns+` FROM triggers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// =============================================================================
// Saved flows
// =============================================================================

// LoadFlows returns every saved flow
func (s *SQLiteStorage) LoadFlows() (*model.Flows, error) {
	rows, err := s.db.Query(`SELECT name, url FROM flows`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flows := &model.Flows{Flows: map[string]string{}}
	for rows.Next() {
		var name, target string
		if err := rows.Scan(&name, &target); err != nil {
			return nil, err
		}
		flows.Flows[name] = target
	}
	return flows, rows.Err()
}

// SaveFlow creates or replaces a saved flow
func (s *SQLiteStorage) SaveFlow(name, target string) error {
	_, err := s.db.Exec(`INSERT INTO flows (name, url) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET url = excluded.url`, name, target)
	return err
}

// DeleteFlow deletes a saved flow and reports whether it existed
func (s *SQLiteStorage) DeleteFlow(name string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM flows WHERE name = ?`, name)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// GetFlow returns the trigger URL saved under name
func (s *SQLiteStorage) GetFlow(name string) (string, bool, error) {
	var target string
	err := s.db.QueryRow(`SELECT url FROM flows WHERE name = ?`, name).Scan(&target)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return target, true, nil
}
