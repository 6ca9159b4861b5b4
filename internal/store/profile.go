package store

import (
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// ProfileStore is the assistant's long-term memory: investment criteria
// per user, their holdings, and summaries of past operation results.
// Session state lives elsewhere and expires; this does not.
type ProfileStore struct {
	DB *sql.DB
}

func NewProfileStore(dbPath string) (*ProfileStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			goal TEXT,
			duration_years INTEGER,
			risk_level TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS holdings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT,
			symbol TEXT,
			quantity REAL,
			avg_price REAL
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT,
			operation TEXT,
			summary TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		_, err = db.Exec(q)
		if err != nil {
			return nil, err
		}
	}

	return &ProfileStore{DB: db}, nil
}

// SaveCriteria upserts the user's investment criteria.
func (p *ProfileStore) SaveCriteria(userID string, goal string, durationYears int, riskLevel string) error {
	query := `INSERT INTO profiles (user_id, goal, duration_years, risk_level, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(user_id) DO UPDATE SET
			goal = excluded.goal,
			duration_years = excluded.duration_years,
			risk_level = excluded.risk_level,
			updated_at = datetime('now')`
	_, err := p.DB.Exec(query, userID, goal, durationYears, riskLevel)
	return err
}

// GetProfile returns the stored criteria, or ok=false for a new user.
func (p *ProfileStore) GetProfile(userID string) (map[string]any, bool, error) {
	var goal, risk string
	var duration int
	err := p.DB.QueryRow(
		`SELECT goal, duration_years, risk_level FROM profiles WHERE user_id = ?`, userID,
	).Scan(&goal, &duration, &risk)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return map[string]any{
		"goal":       goal,
		"duration":   duration,
		"risk_level": risk,
	}, true, nil
}

func (p *ProfileStore) AddHolding(userID string, symbol string, quantity, avgPrice float64) error {
	query := `INSERT INTO holdings (user_id, symbol, quantity, avg_price) VALUES (?, ?, ?, ?)`
	_, err := p.DB.Exec(query, userID, symbol, quantity, avgPrice)
	return err
}

func (p *ProfileStore) GetHoldings(userID string) ([]map[string]any, error) {
	rows, err := p.DB.Query(
		`SELECT symbol, quantity, avg_price FROM holdings WHERE user_id = ? ORDER BY symbol`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []map[string]any
	for rows.Next() {
		var symbol string
		var quantity, avgPrice float64
		if err := rows.Scan(&symbol, &quantity, &avgPrice); err != nil {
			return nil, err
		}
		holdings = append(holdings, map[string]any{
			"symbol":    symbol,
			"quantity":  quantity,
			"avg_price": avgPrice,
		})
	}
	return holdings, rows.Err()
}

// SaveResult records a completed operation's summary. Implements the
// engine's result sink.
func (p *ProfileStore) SaveResult(userID string, operation string, summary string) error {
	query := `INSERT INTO results (user_id, operation, summary) VALUES (?, ?, ?)`
	_, err := p.DB.Exec(query, userID, operation, summary)
	return err
}

// LatestResult returns the most recent stored summary for an operation.
func (p *ProfileStore) LatestResult(userID string, operation string) (string, error) {
	var summary string
	err := p.DB.QueryRow(
		`SELECT summary FROM results WHERE user_id = ? AND operation = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, operation,
	).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no stored result for %s", operation)
	}
	if err != nil {
		return "", err
	}
	return summary, nil
}

func (p *ProfileStore) Close() error {
	return p.DB.Close()
}
