package nurturing

import (
	"fmt"

	"nurturing_engine/internal/domain/contact"
)

// Catalog is the ordered rule list evaluated top to bottom every cycle.
type Catalog []Rule

// NewCatalog validates every rule and rejects duplicate ids.
func NewCatalog(rules []Rule) (Catalog, error) {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRuleID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	out := make(Catalog, len(rules))
	copy(out, rules)
	return out, nil
}

// Find returns the rule with the given id.
func (c Catalog) Find(id string) (Rule, error) {
	for _, r := range c {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}

func intPtr(v int) *int { return &v }

// DefaultCatalog is used when no rules file is configured.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:          "immediate_followup",
			Name:        "Immediate follow-up for hot leads",
			Description: "Welcome message to hot, high-scoring leads within minutes of enquiry",
			Trigger:     Trigger{Kind: TriggerTimeBased, Condition: ConditionCreatedSinceMinutes, Value: 15},
			Action:      Action{Kind: ActionMessage, TemplateID: "welcome_hot_lead"},
			Filters:     Filters{LeadTypes: []contact.Type{contact.TypeHot}, MinScore: intPtr(70)},
		},
		{
			ID:          "new_lead_welcome",
			Name:        "Welcome new leads",
			Description: "Introductory message to every other fresh enquiry",
			Trigger:     Trigger{Kind: TriggerTimeBased, Condition: ConditionCreatedSinceMinutes, Value: 15},
			Action:      Action{Kind: ActionMessage, TemplateID: "welcome_new_lead"},
			Filters:     Filters{LeadTypes: []contact.Type{contact.TypeWarm, contact.TypeCold}},
		},
		{
			ID:          "24_hour_followup",
			Name:        "24 hour follow-up task",
			Description: "Create an advisor task for high priority leads silent for a day",
			Trigger:     Trigger{Kind: TriggerTimeBased, Condition: ConditionNoResponseHours, Value: 24},
			Action:      Action{Kind: ActionTask, DelaySeconds: 3600},
			Filters:     Filters{Priorities: []contact.Priority{contact.PriorityHigh, contact.PriorityUrgent}},
		},
		{
			ID:          "stalled_high_intent",
			Name:        "Move stalled high-intent leads into nurturing",
			Description: "Leads scoring 60+ with no activity for three days enter the nurturing track",
			Trigger:     Trigger{Kind: TriggerTimeBased, Condition: ConditionNoResponseHours, Value: 72},
			Action:      Action{Kind: ActionStatusUpdate},
			Filters:     Filters{MinScore: intPtr(60)},
		},
		{
			ID:      "weekly_warm_nurture",
			Name:    "Weekly market update for warm leads",
			Trigger: Trigger{Kind: TriggerTimeBased, Condition: ConditionLastContactDays, Value: 7},
			Action:  Action{Kind: ActionMessage, TemplateID: "weekly_market_update"},
			Filters: Filters{LeadTypes: []contact.Type{contact.TypeWarm}},
		},
		{
			ID:          "cold_lead_reactivation",
			Name:        "Cold lead reactivation",
			Description: "Reach out to low-scoring cold leads untouched for a month",
			Trigger:     Trigger{Kind: TriggerTimeBased, Condition: ConditionLastContactDays, Value: 30},
			Action:      Action{Kind: ActionMessage, TemplateID: "reactivation"},
			Filters:     Filters{LeadTypes: []contact.Type{contact.TypeCold}, MaxScore: intPtr(40)},
		},
		{
			ID:      "site_visit_reminder",
			Name:    "Site visit reminder",
			Trigger: Trigger{Kind: TriggerStatusBased, Condition: ConditionStatusEquals, Equals: string(contact.StatusSiteVisitScheduled)},
			Action:  Action{Kind: ActionMessage, TemplateID: "site_visit_reminder"},
		},
		{
			ID:          "price_drop_alert",
			Name:        "Price change alert",
			Description: "Raised externally when the interest property changes price",
			Trigger:     Trigger{Kind: TriggerBehaviorBased, Condition: ConditionPriceChanged},
			Action:      Action{Kind: ActionMessage, TemplateID: "price_drop_alert"},
			Filters:     Filters{LeadTypes: []contact.Type{contact.TypeHot, contact.TypeWarm}},
		},
	}
}
