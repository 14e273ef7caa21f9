package activity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate is returned by Append when the store already holds a nurturing entry for the
// same contact and rule inside the current dedup bucket.
var ErrDuplicate = errors.New("duplicate nurturing activity for contact and rule")

// Repository is the activity log: an append-only writer plus filtered reads.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	// HasRecent reports whether an entry of the given kind exists for (contactID, ruleID)
	// created at or after since.
	HasRecent(ctx context.Context, contactID uuid.UUID, ruleID string, kind Kind, since time.Time) (bool, error)
	ListByContact(ctx context.Context, contactID uuid.UUID, limit int) ([]*Entry, error)
}
