package timelog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS time_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stopped_at TEXT NOT NULL,
		length INTEGER NOT NULL,
		elapsed INTEGER NOT NULL,
		outcome TEXT NOT NULL
	)
	`
	_, err := r.db.Exec(query)
	return err
}

func (r *Repository) CreateLog(log *TimeLog) error {
	result, err := r.db.Exec(
		"INSERT INTO time_logs (stopped_at, length, elapsed, outcome) VALUES (?, ?, ?, ?)",
		log.StoppedAt.UTC().Format(time.RFC3339),
		int64(log.Length),
		int64(log.Elapsed),
		string(log.Outcome),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = id
	return nil
}

// GetLogs returns up to limit entries, newest first. limit <= 0 returns all.
func (r *Repository) GetLogs(limit int) ([]TimeLog, error) {
	query := "SELECT id, stopped_at, length, elapsed, outcome FROM time_logs ORDER BY stopped_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []TimeLog
	for rows.Next() {
		var l TimeLog
		var stoppedAt, outcome string
		var length, elapsed int64
		if err := rows.Scan(&l.ID, &stoppedAt, &length, &elapsed, &outcome); err != nil {
			return nil, err
		}
		l.StoppedAt, _ = time.Parse(time.RFC3339, stoppedAt)
		l.Length = time.Duration(length)
		l.Elapsed = time.Duration(elapsed)
		l.Outcome = Outcome(outcome)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}
