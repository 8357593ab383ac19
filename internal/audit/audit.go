// Package audit provides an append-only SQLite log of entity mutations.
//
// The document store holds current state only; the audit log answers "who
// changed what, when". Writes here are best-effort from the services' point
// of view: a failed audit insert is logged and never fails the mutation it
// describes.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Action identifies the kind of mutation recorded.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one recorded mutation.
type Entry struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`    // Collection name: "user", "product", ...
	EntityID  string    `json:"entity_id"` // Document ID within the collection.
	Action    Action    `json:"action"`
	Actor     string    `json:"actor,omitempty"` // User ID performing the change, if known.
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is a SQLite-backed audit trail.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the audit log at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Log{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record inserts one audit entry. ID and CreatedAt are assigned here.
func (l *Log) Record(ctx context.Context, entry Entry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, entity, entity_id, action, actor, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Entity,
		entry.EntityID,
		string(entry.Action),
		nullString(entry.Actor),
		nullString(entry.Detail),
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// TryRecord records an entry, logging instead of returning on failure.
// Services use this so audit problems never fail the mutation itself.
func (l *Log) TryRecord(ctx context.Context, entry Entry) {
	if err := l.Record(ctx, entry); err != nil && l.logger != nil {
		l.logger.Warn("audit record failed",
			"entity", entry.Entity,
			"entity_id", entry.EntityID,
			"action", string(entry.Action),
			"error", err)
	}
}

// auditColumns is the ordered list of columns selected in audit queries.
// Must match the scan order in scanEntry.
const auditColumns = `id, entity, entity_id, action, actor, detail, created_at`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		e         Entry
		action    string
		actor     sql.NullString
		detail    sql.NullString
		createdAt string
	)

	if err := scanner.Scan(&e.ID, &e.Entity, &e.EntityID, &action, &actor, &detail, &createdAt); err != nil {
		return nil, err
	}

	e.Action = Action(action)
	if actor.Valid {
		e.Actor = actor.String
	}
	if detail.Valid {
		e.Detail = detail.String
	}

	var err error
	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ForEntity returns the entries for one document, newest first.
func (l *Log) ForEntity(ctx context.Context, entity, entityID string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT `+auditColumns+`
		FROM audit_entries
		WHERE entity = ? AND entity_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		entity, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// Recent returns the newest entries across all entities.
func (l *Log) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT `+auditColumns+`
		FROM audit_entries
		ORDER BY created_at DESC
		LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString returns a sql.NullString, empty strings mapping to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
