package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"nurturing_engine/internal/domain/contact"
)

const contactColumns = `id, name, phone, email, lead_type, priority, score, tags, source,
	interest_property_id, interest_property_name, status, flags, profile, created_at, updated_at`

type PostgresContactRepository struct {
	db *sql.DB
}

func NewPostgresContactRepository(db *sql.DB) *PostgresContactRepository {
	return &PostgresContactRepository{db: db}
}

// Create inserts a contact. Ingestion owns contact creation; the engine itself never calls it.
func (r *PostgresContactRepository) Create(ctx context.Context, c *contact.Contact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	profile, err := json.Marshal(c.Profile)
	if err != nil {
		return fmt.Errorf("error encoding contact profile: %w", err)
	}

	query := `INSERT INTO contacts (id, name, phone, email, lead_type, priority, score, tags, source,
	              interest_property_id, interest_property_name, status, flags, profile, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
	              COALESCE($15, NOW()), COALESCE($16, NOW()))
	          RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Phone, c.Email, string(c.Type), string(c.Priority), c.Score,
		pq.Array(nonNil(c.Tags)), c.Source, nullUUID(c.InterestPropertyID), c.InterestPropertyName,
		string(c.Status), pq.Array(flagStrings(c.Flags)), profile,
		nullTime(c.CreatedAt), nullTime(c.UpdatedAt),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating contact: %w", err)
	}
	return nil
}

func (r *PostgresContactRepository) Find(ctx context.Context, q contact.Query) ([]*contact.Contact, error) {
	where, args := buildContactFilter(q)
	query := `SELECT ` + contactColumns + ` FROM contacts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at, id`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*contact.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

func (r *PostgresContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*contact.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	c, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contact.ErrNotFound
		}
		return nil, fmt.Errorf("error getting contact by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresContactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status contact.Status) error {
	query := `UPDATE contacts SET status = $1, updated_at = NOW() WHERE id = $2`
	return r.execOne(ctx, query, "updating contact status", string(status), id)
}

// UpdateScoreAndTags leaves updated_at alone: recomputing a score is not contact with the
// customer and must not reset the no-response timers.
func (r *PostgresContactRepository) UpdateScoreAndTags(ctx context.Context, id uuid.UUID, score int, tags []string) error {
	query := `UPDATE contacts SET score = $1, tags = $2 WHERE id = $3`
	return r.execOne(ctx, query, "updating contact score", score, pq.Array(nonNil(tags)), id)
}

func (r *PostgresContactRepository) execOne(ctx context.Context, query, op string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error %s: %w", op, err)
	}
	if n == 0 {
		return contact.ErrNotFound
	}
	return nil
}

// buildContactFilter translates a query into SQL predicates joined with AND.
func buildContactFilter(q contact.Query) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(pred string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(pred, len(args)))
	}

	if len(q.Types) > 0 {
		types := make([]string, len(q.Types))
		for i, t := range q.Types {
			types[i] = string(t)
		}
		add(`lead_type = ANY($%d)`, pq.Array(types))
	}
	if len(q.Sources) > 0 {
		add(`source = ANY($%d)`, pq.Array(q.Sources))
	}
	if len(q.Priorities) > 0 {
		prios := make([]string, len(q.Priorities))
		for i, p := range q.Priorities {
			prios[i] = string(p)
		}
		add(`priority = ANY($%d)`, pq.Array(prios))
	}
	if q.MinScore != nil {
		add(`score >= $%d`, *q.MinScore)
	}
	if q.MaxScore != nil {
		add(`score < $%d`, *q.MaxScore)
	}
	if q.CreatedSince != nil {
		add(`created_at >= $%d`, *q.CreatedSince)
	}
	if q.UpdatedBefore != nil {
		add(`updated_at < $%d`, *q.UpdatedBefore)
	}
	if q.Status != "" {
		add(`status = $%d`, string(q.Status))
	}
	if q.Flag != "" {
		add(`$%d = ANY(flags)`, string(q.Flag))
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*contact.Contact, error) {
	var (
		c          contact.Contact
		leadType   string
		priority   string
		status     string
		flags      []string
		profile    []byte
		interestID uuid.NullUUID
	)
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &leadType, &priority, &c.Score,
		pq.Array(&c.Tags), &c.Source, &interestID, &c.InterestPropertyName, &status,
		pq.Array(&flags), &profile, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Type = contact.Type(leadType)
	c.Priority = contact.Priority(priority)
	c.Status = contact.Status(status)
	for _, f := range flags {
		c.Flags = append(c.Flags, contact.Flag(f))
	}
	if interestID.Valid {
		id := interestID.UUID
		c.InterestPropertyID = &id
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &c.Profile); err != nil {
			return nil, fmt.Errorf("decoding profile of contact %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func flagStrings(flags []contact.Flag) []string {
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = string(f)
	}
	return out
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
