package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nurturing_engine/internal/app"
	"nurturing_engine/internal/domain/activity"
	"nurturing_engine/internal/domain/contact"
	"nurturing_engine/internal/domain/nurturing"
)

const historyLimit = 10

// CycleRunner starts an on-demand cycle through the same guard the cron job uses.
type CycleRunner interface {
	RunNow(ctx context.Context) (nurturing.CycleSummary, bool, error)
}

type Rescorer interface {
	Rescore(ctx context.Context, contactID uuid.UUID) (int, []string, error)
}

// OpsCommands implements the operator commands. Every method returns the reply text so
// the handlers stay a thin layer over telebot.
type OpsCommands struct {
	cycles     CycleRunner
	service    app.NurturingService
	scoring    Rescorer
	activities activity.Repository
	logger     *logrus.Entry
}

func NewOpsCommands(cycles CycleRunner, service app.NurturingService, scoring Rescorer, activities activity.Repository, logger *logrus.Entry) *OpsCommands {
	return &OpsCommands{
		cycles:     cycles,
		service:    service,
		scoring:    scoring,
		activities: activities,
		logger:     logger,
	}
}

func (o *OpsCommands) RunCycle(ctx context.Context) string {
	summary, joined, err := o.cycles.RunNow(ctx)
	if err != nil {
		o.logger.WithError(err).Error("On-demand cycle failed")
		return fmt.Sprintf("Cycle did not complete: %v", err)
	}
	var b strings.Builder
	if joined {
		b.WriteString("A cycle was already running; here is its result.\n\n")
	}
	b.WriteString(FormatSummary(summary))
	return b.String()
}

func (o *OpsCommands) Trigger(ctx context.Context, args []string) string {
	if len(args) != 2 {
		return "Usage: /trigger <rule_id> <contact_id>"
	}
	contactID, err := uuid.Parse(args[1])
	if err != nil {
		return "Error: contact_id must be a UUID."
	}

	res, err := o.service.TriggerBehaviorEvent(ctx, args[0], contactID)
	switch {
	case errors.Is(err, nurturing.ErrRuleNotFound):
		return fmt.Sprintf("Rule %s does not exist. Use /rules to list them.", args[0])
	case errors.Is(err, nurturing.ErrNotBehaviorRule):
		return fmt.Sprintf("Rule %s is not behavior based and only runs in the cycle.", args[0])
	case errors.Is(err, contact.ErrNotFound):
		return fmt.Sprintf("Contact %s was not found.", contactID)
	case err != nil:
		o.logger.WithError(err).WithField("rule_id", args[0]).Error("Behavior trigger failed")
		return fmt.Sprintf("Trigger failed: %v", err)
	}

	reply := fmt.Sprintf("Rule %s for contact %s: %s", res.RuleID, res.ContactID, res.Outcome)
	if res.Detail != "" {
		reply += " (" + res.Detail + ")"
	}
	if res.Err != nil {
		reply += "\nError: " + res.Err.Error()
	}
	return reply
}

func (o *OpsCommands) Rules() string {
	catalog := o.service.Rules()
	if len(catalog) == 0 {
		return "No rules loaded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d rules, evaluated in this order:\n", len(catalog))
	for i, r := range catalog {
		fmt.Fprintf(&b, "\n%d. %s [%s/%s -> %s]", i+1, r.ID, r.Trigger.Kind, r.Trigger.Condition, r.Action.Kind)
		if r.Name != "" {
			fmt.Fprintf(&b, "\n   %s", r.Name)
		}
	}
	return b.String()
}

func (o *OpsCommands) Rescore(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: /rescore <contact_id>"
	}
	contactID, err := uuid.Parse(args[0])
	if err != nil {
		return "Error: contact_id must be a UUID."
	}

	score, tags, err := o.scoring.Rescore(ctx, contactID)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			return fmt.Sprintf("Contact %s was not found.", contactID)
		}
		o.logger.WithError(err).WithField("contact_id", contactID).Error("Rescore failed")
		return fmt.Sprintf("Rescore failed: %v", err)
	}
	tagText := "none"
	if len(tags) > 0 {
		tagText = strings.Join(tags, ", ")
	}
	return fmt.Sprintf("Contact %s scored %d/100.\nTags: %s", contactID, score, tagText)
}

func (o *OpsCommands) History(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: /history <contact_id>"
	}
	contactID, err := uuid.Parse(args[0])
	if err != nil {
		return "Error: contact_id must be a UUID."
	}

	entries, err := o.activities.ListByContact(ctx, contactID, historyLimit)
	if err != nil {
		o.logger.WithError(err).WithField("contact_id", contactID).Error("Loading history failed")
		return fmt.Sprintf("Could not load history: %v", err)
	}
	if len(entries) == 0 {
		return fmt.Sprintf("No activity recorded for contact %s.", contactID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Latest activity for %s:\n", contactID)
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s  %s", e.CreatedAt.Format("2006-01-02 15:04"), e.Kind)
		if e.RuleID != "" {
			fmt.Fprintf(&b, " [%s]", e.RuleID)
		}
		if e.Outcome != "" {
			fmt.Fprintf(&b, " %s", e.Outcome)
		}
	}
	return b.String()
}

// FormatSummary renders a cycle summary for chat and terminal output.
func FormatSummary(s nurturing.CycleSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cycle started %s, took %s\n", s.StartedAt.Format(time.RFC3339), s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Rules: %d  Eligible: %d  Dispatched: %d\n", s.RulesProcessed, s.EligibleFound, s.Dispatched)
	fmt.Fprintf(&b, "Skipped (duplicate): %d  Skipped (no phone): %d  Failed: %d", s.SkippedDuplicate, s.SkippedNoPhone, s.Failed)
	for _, rs := range s.Rules {
		if rs.Err != nil {
			fmt.Fprintf(&b, "\n%s: query failed: %v", rs.RuleID, rs.Err)
			continue
		}
		if rs.Eligible > 0 {
			fmt.Fprintf(&b, "\n%s: %d eligible, %d dispatched", rs.RuleID, rs.Eligible, rs.Dispatched)
		}
	}
	return b.String()
}
