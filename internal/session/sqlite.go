package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore persists each session as a JSON blob keyed by session id,
// so an in-flight stack survives process restarts.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	query := `CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(query); err != nil {
		return nil, err
	}

	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Get(sessionID string) (State, error) {
	var raw string
	err := s.DB.QueryRow(`SELECT state FROM sessions WHERE session_id = ?`, sessionID).Scan(&raw)
	if err == sql.ErrNoRows {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, fmt.Errorf("corrupt session state for %s: %v", sessionID, err)
	}
	return st, nil
}

func (s *SQLiteStore) Merge(sessionID string, patch Patch) error {
	st, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now()
	}
	applyPatch(&st, patch)

	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}

	query := `INSERT INTO sessions (session_id, state, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(session_id) DO UPDATE SET state = excluded.state, updated_at = datetime('now')`
	_, err = s.DB.Exec(query, sessionID, string(raw))
	return err
}

// PurgeExpired deletes sessions not touched within ttl. An expired
// session's stack is simply discarded, never actively aborted.
func (s *SQLiteStore) PurgeExpired(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl).UTC().Format("2006-01-02 15:04:05")
	res, err := s.DB.Exec(`DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}
