// internal/domain/activity/activity.go
package activity

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the fixed activity taxonomy shared with the CRM.
type Kind string

const (
	KindCall      Kind = "call"
	KindEmail     Kind = "email"
	KindMeeting   Kind = "meeting"
	KindSiteVisit Kind = "site_visit"
	KindNote      Kind = "note"
	KindFollowUp  Kind = "follow_up"
	KindNurturing Kind = "nurturing" // Written once per dispatched rule/contact pair
)

// Entry is an append-only activity log record.
// Corresponds to the 'activities' table.
type Entry struct {
	ID          uuid.UUID
	ContactID   uuid.UUID
	Kind        Kind
	RuleID      string // Empty for activities not produced by a nurturing rule
	Subject     string
	Description string
	Outcome     string
	NextAction  string
	PerformedBy string
	ScheduledAt *time.Time // Set on follow-up tasks
	CreatedAt   time.Time
}
