package contact

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no contact has the requested id.
var ErrNotFound = errors.New("contact not found")

// Repository is the slice of the CRM contact store the nurturing engine consumes.
// The engine only reads and performs targeted field updates; it never creates or deletes.
type Repository interface {
	Find(ctx context.Context, q Query) ([]*Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	// UpdateStatus sets the status and touches updated_at.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	UpdateScoreAndTags(ctx context.Context, id uuid.UUID, score int, tags []string) error
}
