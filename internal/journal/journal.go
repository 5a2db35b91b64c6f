// Package journal keeps a local sqlite log of review decisions and setting
// changes made from this console.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jask/scholaradmin/internal/status"
)

const (
	KindReview  = "review"
	KindSetting = "setting"
)

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// ReviewEntry is a confirmed status change.
type ReviewEntry struct {
	ApplicationID int64
	Applicant     string
	Status        status.Status
	Remarks       string
}

// SettingEntry is one attempted setting change. OK is false when the
// backend rejected it.
type SettingEntry struct {
	Key      string
	Previous string
	Value    string
	OK       bool
}

// Entry is a row of either kind, flattened for listing.
type Entry struct {
	Kind    string
	Subject string
	Detail  string
	OK      bool
	At      time.Time
}

// Open migrates and opens the journal at path, creating parent directories.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: mkdir: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	return &Journal{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) RecordReview(ctx context.Context, e ReviewEntry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO review_decisions (id, application_id, applicant, status, remarks, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), e.ApplicationID, e.Applicant, string(e.Status), e.Remarks, j.timestamp())
	if err != nil {
		return fmt.Errorf("journal: record review: %w", err)
	}
	return nil
}

func (j *Journal) RecordSetting(ctx context.Context, e SettingEntry) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO setting_changes (id, setting_key, previous, value, ok, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), e.Key, e.Previous, e.Value, e.OK, j.timestamp())
	if err != nil {
		return fmt.Errorf("journal: record setting: %w", err)
	}
	return nil
}

// Recent lists up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, subject, detail, ok, created_at FROM (
			SELECT 'review' AS kind,
			       '#' || application_id || ' ' || applicant AS subject,
			       status || CASE WHEN remarks <> '' THEN ': ' || remarks ELSE '' END AS detail,
			       1 AS ok,
			       created_at
			FROM review_decisions
			UNION ALL
			SELECT 'setting', setting_key, previous || ' -> ' || value, ok, created_at
			FROM setting_changes
		)
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		if err := rows.Scan(&e.Kind, &e.Subject, &e.Detail, &e.OK, &ts); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// timestamps are fixed-width so lexical order matches time order
func (j *Journal) timestamp() string {
	return j.now().UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
