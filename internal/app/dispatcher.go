package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nurturing_engine/internal/domain/activity"
	"nurturing_engine/internal/domain/contact"
	"nurturing_engine/internal/domain/nurturing"
	"nurturing_engine/internal/render"
)

const followUpNextAction = "Contact customer and assess current interest level"

// Dispatch executes the rule's action for one eligible, non-duplicate contact and then
// appends exactly one nurturing activity, whatever the action's outcome.
func (e *Engine) Dispatch(ctx context.Context, rule nurturing.Rule, c *contact.Contact) nurturing.Result {
	dispatchLogger := e.logger.WithFields(logrus.Fields{
		"rule_id":    rule.ID,
		"contact_id": c.ID,
		"action":     rule.Action.Kind,
	})

	actx, cancel := context.WithTimeout(ctx, e.opts.ActionTimeout)
	defer cancel()

	res := nurturing.Result{RuleID: rule.ID, ContactID: c.ID}
	switch rule.Action.Kind {
	case nurturing.ActionMessage:
		res.Outcome, res.Detail, res.Err = e.sendMessage(actx, rule, c)
	case nurturing.ActionTask:
		res.Outcome, res.Detail, res.Err = e.createFollowUpTask(actx, rule, c)
	case nurturing.ActionStatusUpdate:
		res.Outcome, res.Detail, res.Err = e.transitionStatus(actx, c)
	default:
		res.Outcome = nurturing.OutcomeNoop
		res.Detail = fmt.Sprintf("unknown action kind %q", rule.Action.Kind)
		dispatchLogger.Warn("Unknown action kind, treated as no-op")
	}

	switch {
	case res.Err != nil:
		dispatchLogger.WithError(res.Err).Error("Nurturing action failed")
	case res.Outcome == nurturing.OutcomeSkippedNoPhone:
		dispatchLogger.Warn("Contact has no phone number, message skipped")
	default:
		dispatchLogger.WithField("outcome", res.Outcome).Info("Nurturing action completed")
	}

	// The log entry is what the dedup guard reads, so it is written even when the action
	// timed out. It gets its own deadline derived from the caller's values.
	lctx, lcancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.QueryTimeout)
	defer lcancel()
	if err := e.activities.Append(lctx, e.nurturingEntry(rule, c, res)); err != nil {
		if errors.Is(err, activity.ErrDuplicate) {
			dispatchLogger.Warn("Another run already logged this rule for the contact in the current window")
			res.Outcome = nurturing.OutcomeSkippedDuplicate
			res.Detail = "action ran; activity log rejected as duplicate"
			res.Err = nil
			return res
		}
		dispatchLogger.WithError(err).Error("Failed to append nurturing activity")
		res.Outcome = nurturing.OutcomeFailed
		res.Err = errors.Join(res.Err, fmt.Errorf("appending nurturing activity: %w", err))
		return res
	}

	if res.Err != nil {
		res.Outcome = nurturing.OutcomeFailed
	}
	return res
}

func (e *Engine) sendMessage(ctx context.Context, rule nurturing.Rule, c *contact.Contact) (nurturing.Outcome, string, error) {
	phone := strings.TrimSpace(c.Phone)
	if phone == "" {
		return nurturing.OutcomeSkippedNoPhone, "no phone number on record", nil
	}

	text := render.Render(rule.Action.TemplateID, c, e.now())
	result, err := e.gateway.Send(ctx, phone, text)
	if err != nil {
		return nurturing.OutcomeFailed, "", fmt.Errorf("sending %s message: %w", rule.Action.TemplateID, err)
	}
	if !result.Success {
		return nurturing.OutcomeFailed, "", fmt.Errorf("gateway rejected %s message: %s", rule.Action.TemplateID, result.Error)
	}

	detail := fmt.Sprintf("message %s sent", rule.Action.TemplateID)
	if result.MessageID != "" {
		detail += " (gateway id " + result.MessageID + ")"
	}
	return nurturing.OutcomeSent, detail, nil
}

func (e *Engine) createFollowUpTask(ctx context.Context, rule nurturing.Rule, c *contact.Contact) (nurturing.Outcome, string, error) {
	now := e.now()
	scheduledAt := now.Add(time.Duration(rule.Action.DelaySeconds) * time.Second)
	task := &activity.Entry{
		ID:          uuid.New(),
		ContactID:   c.ID,
		Kind:        activity.KindFollowUp,
		RuleID:      rule.ID,
		Subject:     fmt.Sprintf("Follow-up: %s", rule.Name),
		Description: fmt.Sprintf("Automated follow-up created by nurturing rule %s", rule.ID),
		Outcome:     "pending",
		NextAction:  followUpNextAction,
		PerformedBy: SystemPerformer,
		ScheduledAt: &scheduledAt,
		CreatedAt:   now,
	}
	if err := e.activities.Append(ctx, task); err != nil {
		return nurturing.OutcomeFailed, "", fmt.Errorf("creating follow-up task: %w", err)
	}
	return nurturing.OutcomeTaskCreated, fmt.Sprintf("follow-up scheduled for %s", scheduledAt.Format(time.RFC3339)), nil
}

func (e *Engine) transitionStatus(ctx context.Context, c *contact.Contact) (nurturing.Outcome, string, error) {
	if err := e.contacts.UpdateStatus(ctx, c.ID, contact.StatusNurturing); err != nil {
		return nurturing.OutcomeFailed, "", fmt.Errorf("updating contact status: %w", err)
	}
	return nurturing.OutcomeStatusUpdated, fmt.Sprintf("status %s -> %s", c.Status, contact.StatusNurturing), nil
}

// nurturingEntry builds the log record the dedup guard later reads. The rule id is kept in
// its own column and also spelled out in the description for humans reading the timeline.
func (e *Engine) nurturingEntry(rule nurturing.Rule, c *contact.Contact, res nurturing.Result) *activity.Entry {
	outcome := string(res.Outcome)
	if res.Err != nil {
		outcome = fmt.Sprintf("%s: %v", nurturing.OutcomeFailed, res.Err)
	}
	description := fmt.Sprintf("Nurturing rule %s (%s) fired", rule.ID, rule.Action.Kind)
	if res.Detail != "" {
		description += ": " + res.Detail
	}
	return &activity.Entry{
		ID:          uuid.New(),
		ContactID:   c.ID,
		Kind:        activity.KindNurturing,
		RuleID:      rule.ID,
		Subject:     fmt.Sprintf("Automated nurturing: %s", rule.Name),
		Description: description,
		Outcome:     outcome,
		PerformedBy: SystemPerformer,
		CreatedAt:   e.now(),
	}
}
