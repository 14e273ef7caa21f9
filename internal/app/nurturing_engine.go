// internal/app/nurturing_engine.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"nurturing_engine/internal/domain/activity"
	"nurturing_engine/internal/domain/contact"
	"nurturing_engine/internal/domain/messaging"
	"nurturing_engine/internal/domain/nurturing"
)

// NurturingService defines the operations exposed to schedulers and operators.
type NurturingService interface {
	// RunCycle evaluates the whole rule catalog once. It never fails; every error is
	// absorbed and reflected in the returned summary.
	RunCycle(ctx context.Context) nurturing.CycleSummary
	// TriggerBehaviorEvent fires a behavior_based rule for one contact outside the cycle.
	TriggerBehaviorEvent(ctx context.Context, ruleID string, contactID uuid.UUID) (nurturing.Result, error)
	Rules() nurturing.Catalog
}

const (
	DefaultDedupWindow   = 24 * time.Hour
	DefaultActionTimeout = 15 * time.Second
	DefaultQueryTimeout  = 10 * time.Second
	DefaultConcurrency   = 4
	SystemPerformer      = "system-nurturing"
)

// EngineOptions tunes the engine. Zero values fall back to the defaults above.
type EngineOptions struct {
	DedupWindow   time.Duration
	ActionTimeout time.Duration
	QueryTimeout  time.Duration
	Concurrency   int // contacts dispatched in parallel per rule; 1 means serial
	Now           func() time.Time
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.DedupWindow <= 0 {
		o.DedupWindow = DefaultDedupWindow
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = DefaultActionTimeout
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = DefaultQueryTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Engine implements NurturingService. It holds no state between cycles; contacts and the
// activity log are the only memory.
type Engine struct {
	contacts   contact.Repository
	activities activity.Repository
	gateway    messaging.Gateway
	rules      nurturing.Catalog
	logger     *logrus.Entry
	opts       EngineOptions
}

func NewEngine(
	cr contact.Repository,
	ar activity.Repository,
	gw messaging.Gateway,
	rules nurturing.Catalog,
	logger *logrus.Entry,
	opts EngineOptions,
) *Engine {
	return &Engine{
		contacts:   cr,
		activities: ar,
		gateway:    gw,
		rules:      rules,
		logger:     logger.WithField("component", "nurturing_engine"),
		opts:       opts.withDefaults(),
	}
}

func (e *Engine) Rules() nurturing.Catalog {
	return e.rules
}

func (e *Engine) now() time.Time {
	return e.opts.Now()
}

// RunCycle walks the catalog in order. Rules run one after another so later rules observe
// the activity entries written by earlier ones in the same pass.
func (e *Engine) RunCycle(ctx context.Context) nurturing.CycleSummary {
	summary := nurturing.CycleSummary{StartedAt: e.now()}
	e.logger.WithField("rules", len(e.rules)).Info("Starting nurturing cycle")

	for _, rule := range e.rules {
		if err := ctx.Err(); err != nil {
			e.logger.WithError(err).Warn("Nurturing cycle cancelled, remaining rules skipped")
			break
		}
		if rule.Trigger.Kind == nurturing.TriggerBehaviorBased {
			// Behaviour rules only fire through TriggerBehaviorEvent.
			continue
		}
		summary.Add(e.processRule(ctx, rule))
	}

	summary.Duration = e.now().Sub(summary.StartedAt)
	e.logger.WithFields(logrus.Fields{
		"rules_processed":   summary.RulesProcessed,
		"eligible":          summary.EligibleFound,
		"dispatched":        summary.Dispatched,
		"skipped_duplicate": summary.SkippedDuplicate,
		"skipped_no_phone":  summary.SkippedNoPhone,
		"failed":            summary.Failed,
		"duration":          summary.Duration.String(),
	}).Info("Nurturing cycle finished")
	return summary
}

func (e *Engine) processRule(ctx context.Context, rule nurturing.Rule) nurturing.RuleSummary {
	rs := nurturing.RuleSummary{RuleID: rule.ID}
	ruleLogger := e.logger.WithField("rule_id", rule.ID)

	contacts, err := e.FindEligible(ctx, rule)
	if err != nil {
		ruleLogger.WithError(err).Error("Eligibility query failed, rule contributes no contacts this cycle")
		rs.Err = err
		return rs
	}
	rs.Eligible = len(contacts)
	if len(contacts) == 0 {
		ruleLogger.Debug("No eligible contacts")
		return rs
	}
	ruleLogger.WithField("eligible", len(contacts)).Info("Eligible contacts found")

	results := make([]nurturing.Result, len(contacts))
	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for i, c := range contacts {
		g.Go(func() error {
			results[i] = e.processContact(ctx, rule, c)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; outcomes live in results

	for _, r := range results {
		rs.Record(r)
	}
	return rs
}

// processContact runs guard then dispatch for one contact. A panic in either is converted
// into a failed result so the rest of the cycle keeps going.
func (e *Engine) processContact(ctx context.Context, rule nurturing.Rule, c *contact.Contact) (res nurturing.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = nurturing.Result{
				RuleID:    rule.ID,
				ContactID: c.ID,
				Outcome:   nurturing.OutcomeFailed,
				Err:       fmt.Errorf("panic while processing contact: %v", p),
			}
			e.logger.WithFields(logrus.Fields{"rule_id": rule.ID, "contact_id": c.ID}).WithError(res.Err).Error("Recovered from panic")
		}
	}()

	handled, err := e.AlreadyHandled(ctx, rule.ID, c.ID)
	if err != nil {
		e.logger.WithFields(logrus.Fields{"rule_id": rule.ID, "contact_id": c.ID}).WithError(err).Error("Dedup lookup failed, contact not dispatched")
		return nurturing.Result{RuleID: rule.ID, ContactID: c.ID, Outcome: nurturing.OutcomeFailed, Err: err}
	}
	if handled {
		return nurturing.Result{
			RuleID:    rule.ID,
			ContactID: c.ID,
			Outcome:   nurturing.OutcomeSkippedDuplicate,
			Detail:    "already handled inside dedup window",
		}
	}
	return e.Dispatch(ctx, rule, c)
}

// TriggerBehaviorEvent is the entry point for externally raised events such as a price
// change on a contact's interest property. The rule's filters still apply, and so does the
// dedup window.
func (e *Engine) TriggerBehaviorEvent(ctx context.Context, ruleID string, contactID uuid.UUID) (nurturing.Result, error) {
	rule, err := e.rules.Find(ruleID)
	if err != nil {
		return nurturing.Result{}, err
	}
	if rule.Trigger.Kind != nurturing.TriggerBehaviorBased {
		return nurturing.Result{}, fmt.Errorf("%w: %s", nurturing.ErrNotBehaviorRule, ruleID)
	}

	qctx, cancel := context.WithTimeout(ctx, e.opts.QueryTimeout)
	c, err := e.contacts.GetByID(qctx, contactID)
	cancel()
	if err != nil {
		return nurturing.Result{}, fmt.Errorf("loading contact %s for rule %s: %w", contactID, ruleID, err)
	}

	if !rule.Filters.Query().Matches(c) {
		e.logger.WithFields(logrus.Fields{"rule_id": ruleID, "contact_id": contactID}).Info("Behavior event ignored, contact outside rule filters")
		return nurturing.Result{
			RuleID:    ruleID,
			ContactID: contactID,
			Outcome:   nurturing.OutcomeNotEligible,
			Detail:    "contact does not match rule filters",
		}, nil
	}

	return e.processContact(ctx, rule, c), nil
}
