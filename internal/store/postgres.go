package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres persists conversation artifacts to PostgreSQL.
type Postgres struct {
	db DB
}

// NewPostgres builds a Postgres-backed store.
func NewPostgres(db DB) *Postgres {
	if db == nil {
		panic("store: db cannot be nil")
	}
	return &Postgres{db: db}
}

// NewPostgresPool builds a store over a pgx connection pool.
func NewPostgresPool(pool *pgxpool.Pool) *Postgres {
	return NewPostgres(pool)
}

var _ Store = (*Postgres)(nil)

// InsertAppointment creates a booking row. The status defaults to pending.
func (s *Postgres) InsertAppointment(ctx context.Context, a Appointment) error {
	status := a.Status
	if status == "" {
		status = StatusPending
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO appointments (user_id, service_type, date, time, details, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, nullString(a.UserID), a.ServiceType, a.Date, a.Time, a.Details, status)
	if err != nil {
		return fmt.Errorf("store: failed to insert appointment: %w", err)
	}
	return nil
}

// InsertDiagnostic records a reported problem, unresolved by default.
func (s *Postgres) InsertDiagnostic(ctx context.Context, d Diagnostic) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO diagnostics (user_id, problem_reported, resolved)
		VALUES ($1, $2, $3)
	`, nullString(d.UserID), d.ProblemReported, d.Resolved)
	if err != nil {
		return fmt.Errorf("store: failed to insert diagnostic: %w", err)
	}
	return nil
}

// InsertChatLog mirrors one chat turn for an authenticated session.
func (s *Postgres) InsertChatLog(ctx context.Context, l ChatLog) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO chat_logs (user_id, message_text, message_type)
		VALUES ($1, $2, $3)
	`, nullString(l.UserID), l.MessageText, l.MessageType)
	if err != nil {
		return fmt.Errorf("store: failed to insert chat log: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
