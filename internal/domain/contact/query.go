package contact

import (
	"slices"
	"time"
)

// Query describes a filtered range read over the contact store.
// Zero-valued fields impose no constraint; all set fields are ANDed.
type Query struct {
	Types      []Type
	Sources    []string
	Priorities []Priority
	MinScore   *int // score >= MinScore
	MaxScore   *int // score < MaxScore

	CreatedSince  *time.Time // created_at >= CreatedSince
	UpdatedBefore *time.Time // updated_at < UpdatedBefore
	Status        Status
	Flag          Flag

	Limit int
}

// Matches applies the query to a single contact in memory. Stores use it to evaluate
// ad-hoc checks (behaviour events) with exactly the semantics of their SQL translation.
func (q Query) Matches(c *Contact) bool {
	if len(q.Types) > 0 && !slices.Contains(q.Types, c.Type) {
		return false
	}
	if len(q.Sources) > 0 && !slices.Contains(q.Sources, c.Source) {
		return false
	}
	if len(q.Priorities) > 0 && !slices.Contains(q.Priorities, c.Priority) {
		return false
	}
	if q.MinScore != nil && c.Score < *q.MinScore {
		return false
	}
	if q.MaxScore != nil && c.Score >= *q.MaxScore {
		return false
	}
	if q.CreatedSince != nil && c.CreatedAt.Before(*q.CreatedSince) {
		return false
	}
	if q.UpdatedBefore != nil && !c.UpdatedAt.Before(*q.UpdatedBefore) {
		return false
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if q.Flag != "" && !c.HasFlag(q.Flag) {
		return false
	}
	return true
}
