package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"nurturing_engine/internal/domain/contact"
	"nurturing_engine/internal/domain/nurturing"
)

// FindEligible returns the contacts matching the rule's filters and trigger. No matches is
// an empty slice, not an error. A trigger the engine does not understand matches nothing.
func (e *Engine) FindEligible(ctx context.Context, rule nurturing.Rule) ([]*contact.Contact, error) {
	q, ok := BuildQuery(rule, e.now())
	if !ok {
		e.logger.WithFields(logrus.Fields{
			"rule_id":   rule.ID,
			"trigger":   rule.Trigger.Kind,
			"condition": rule.Trigger.Condition,
		}).Warn("Unknown or incomplete trigger, rule matches no contacts")
		return []*contact.Contact{}, nil
	}

	qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
	defer cancel()

	contacts, err := e.contacts.Find(qctx, q)
	if err != nil {
		return nil, fmt.Errorf("finding eligible contacts for rule %s: %w", rule.ID, err)
	}
	if contacts == nil {
		contacts = []*contact.Contact{}
	}
	return contacts, nil
}

// BuildQuery translates a rule into a contact store query evaluated at now.
// The boolean is false when the trigger cannot be translated.
func BuildQuery(rule nurturing.Rule, now time.Time) (contact.Query, bool) {
	t := rule.Trigger
	if !t.KnownTrigger() {
		return contact.Query{}, false
	}

	q := rule.Filters.Query()
	switch t.Kind {
	case nurturing.TriggerTimeBased:
		switch t.Condition {
		case nurturing.ConditionCreatedSinceMinutes:
			since := now.Add(-time.Duration(t.Value) * time.Minute)
			q.CreatedSince = &since
		case nurturing.ConditionNoResponseHours:
			before := now.Add(-time.Duration(t.Value) * time.Hour)
			q.UpdatedBefore = &before
		case nurturing.ConditionLastContactDays:
			before := now.Add(-time.Duration(t.Value) * 24 * time.Hour)
			q.UpdatedBefore = &before
		}
	case nurturing.TriggerStatusBased:
		q.Status = contact.Status(t.Equals)
	case nurturing.TriggerBehaviorBased:
		q.Flag = contact.Flag(t.Condition)
	}
	return q, true
}
