package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nurturing_engine/internal/domain/activity"
)

// AlreadyHandled reports whether the contact received this rule's action inside the dedup
// window. It reads the structured rule id on the activity log, not free text.
func (e *Engine) AlreadyHandled(ctx context.Context, ruleID string, contactID uuid.UUID) (bool, error) {
	qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
	defer cancel()

	since := e.now().Add(-e.opts.DedupWindow)
	found, err := e.activities.HasRecent(qctx, contactID, ruleID, activity.KindNurturing, since)
	if err != nil {
		return false, fmt.Errorf("checking prior nurturing activity for rule %s, contact %s: %w", ruleID, contactID, err)
	}
	return found, nil
}
