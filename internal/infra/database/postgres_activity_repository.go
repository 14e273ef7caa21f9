package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"nurturing_engine/internal/domain/activity"
)

const uniqueViolation = "23505"

type PostgresActivityRepository struct {
	db          *sql.DB
	dedupWindow time.Duration
}

// NewPostgresActivityRepository returns the activity log. dedupWindow sizes the buckets
// backing the unique index on nurturing entries and must match the engine's window.
func NewPostgresActivityRepository(db *sql.DB, dedupWindow time.Duration) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db, dedupWindow: dedupWindow}
}

func (r *PostgresActivityRepository) Append(ctx context.Context, e *activity.Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `INSERT INTO activities (id, contact_id, kind, rule_id, subject, description, outcome,
	              next_action, performed_by, scheduled_at, dedup_bucket, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.ContactID, string(e.Kind), e.RuleID, e.Subject, e.Description, e.Outcome,
		e.NextAction, e.PerformedBy, e.ScheduledAt, r.bucket(e), e.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return activity.ErrDuplicate
		}
		return fmt.Errorf("error appending activity: %w", err)
	}
	return nil
}

// bucket numbers consecutive dedup windows since the epoch. Only nurturing entries carry
// one, so the partial unique index ignores everything else.
func (r *PostgresActivityRepository) bucket(e *activity.Entry) sql.NullInt64 {
	if e.Kind != activity.KindNurturing || r.dedupWindow <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: e.CreatedAt.UnixNano() / int64(r.dedupWindow), Valid: true}
}

func (r *PostgresActivityRepository) HasRecent(ctx context.Context, contactID uuid.UUID, ruleID string, kind activity.Kind, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
	              SELECT 1 FROM activities
	              WHERE contact_id = $1 AND rule_id = $2 AND kind = $3 AND created_at >= $4)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, contactID, ruleID, string(kind), since).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking recent activity: %w", err)
	}
	return exists, nil
}

func (r *PostgresActivityRepository) ListByContact(ctx context.Context, contactID uuid.UUID, limit int) ([]*activity.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, contact_id, kind, rule_id, subject, description, outcome, next_action,
	              performed_by, scheduled_at, created_at
	          FROM activities WHERE contact_id = $1
	          ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, contactID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing activities: %w", err)
	}
	defer rows.Close()

	entries := make([]*activity.Entry, 0)
	for rows.Next() {
		var (
			e           activity.Entry
			kind        string
			scheduledAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.ContactID, &kind, &e.RuleID, &e.Subject, &e.Description,
			&e.Outcome, &e.NextAction, &e.PerformedBy, &scheduledAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning activity: %w", err)
		}
		e.Kind = activity.Kind(kind)
		if scheduledAt.Valid {
			t := scheduledAt.Time
			e.ScheduledAt = &t
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return entries, nil
}
