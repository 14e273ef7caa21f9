package nurturing

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies what happened to one (rule, contact) pair.
type Outcome string

const (
	OutcomeSent             Outcome = "sent" // message delivered to the gateway
	OutcomeTaskCreated      Outcome = "task_created"
	OutcomeStatusUpdated    Outcome = "status_updated"
	OutcomeSkippedNoPhone   Outcome = "skipped_no_phone"
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
	OutcomeNoop             Outcome = "noop" // unknown action kind
	OutcomeNotEligible      Outcome = "not_eligible"
	OutcomeFailed           Outcome = "failed"
)

// Result is returned by the dispatcher for one contact.
type Result struct {
	RuleID    string
	ContactID uuid.UUID
	Outcome   Outcome
	Detail    string
	Err       error
}

// Failed reports whether the dispatch counts as a failure in the cycle summary.
func (r Result) Failed() bool {
	return r.Outcome == OutcomeFailed
}

// RuleSummary is the per-rule slice of a cycle run.
type RuleSummary struct {
	RuleID           string
	Eligible         int
	Dispatched       int
	SkippedDuplicate int
	SkippedNoPhone   int
	Failed           int
	Err              error // Query failure for the rule, if any
}

// CycleSummary is produced by one orchestration pass and is not persisted.
type CycleSummary struct {
	StartedAt        time.Time
	Duration         time.Duration
	RulesProcessed   int
	EligibleFound    int
	Dispatched       int
	SkippedDuplicate int
	SkippedNoPhone   int
	Failed           int
	Rules            []RuleSummary
}

// Add folds a rule summary into the cycle totals.
func (s *CycleSummary) Add(rs RuleSummary) {
	s.RulesProcessed++
	s.EligibleFound += rs.Eligible
	s.Dispatched += rs.Dispatched
	s.SkippedDuplicate += rs.SkippedDuplicate
	s.SkippedNoPhone += rs.SkippedNoPhone
	s.Failed += rs.Failed
	s.Rules = append(s.Rules, rs)
}

// Record counts a dispatch result against the rule summary.
func (rs *RuleSummary) Record(r Result) {
	switch r.Outcome {
	case OutcomeSkippedDuplicate:
		rs.SkippedDuplicate++
	case OutcomeSkippedNoPhone:
		rs.SkippedNoPhone++
	case OutcomeFailed:
		rs.Failed++
	case OutcomeNotEligible:
	default:
		rs.Dispatched++
	}
}
