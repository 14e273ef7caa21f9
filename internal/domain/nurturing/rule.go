// internal/domain/nurturing/rule.go
package nurturing

import (
	"errors"
	"fmt"

	"nurturing_engine/internal/domain/contact"
)

var (
	ErrRuleNotFound     = errors.New("nurturing rule not found")
	ErrNotBehaviorRule  = errors.New("nurturing rule is not behavior based")
	ErrDuplicateRuleID  = errors.New("duplicate nurturing rule id")
	ErrRuleMissingField = errors.New("nurturing rule is missing a required field")
)

// TriggerKind selects which family of condition a trigger evaluates.
type TriggerKind string

const (
	TriggerTimeBased     TriggerKind = "time_based"
	TriggerBehaviorBased TriggerKind = "behavior_based"
	TriggerStatusBased   TriggerKind = "status_based"
)

// Trigger conditions understood by the evaluator.
const (
	ConditionCreatedSinceMinutes = "created_since_minutes"
	ConditionNoResponseHours     = "no_response_hours"
	ConditionLastContactDays     = "last_contact_days"
	ConditionStatusEquals        = "status_equals"
	ConditionPriceChanged        = "price_changed"
)

// ActionKind selects what the dispatcher does for an eligible contact.
type ActionKind string

const (
	ActionMessage      ActionKind = "message"
	ActionTask         ActionKind = "task"
	ActionStatusUpdate ActionKind = "status_update"
)

// Trigger is a tagged variant: Kind + Condition pick the evaluator, Value carries the
// numeric window for time based conditions and Equals the target for status based ones.
type Trigger struct {
	Kind      TriggerKind `koanf:"kind" yaml:"kind"`
	Condition string      `koanf:"condition" yaml:"condition"`
	Value     int         `koanf:"value" yaml:"value,omitempty"`
	Equals    string      `koanf:"equals" yaml:"equals,omitempty"`
}

type Action struct {
	Kind         ActionKind `koanf:"kind" yaml:"kind"`
	TemplateID   string     `koanf:"template_id" yaml:"template_id,omitempty"`
	DelaySeconds int        `koanf:"delay_seconds" yaml:"delay_seconds,omitempty"`
}

// Filters narrows the contacts a rule applies to. Unset fields do not constrain.
type Filters struct {
	LeadTypes  []contact.Type     `koanf:"lead_types" yaml:"lead_types,omitempty"`
	Sources    []string           `koanf:"sources" yaml:"sources,omitempty"`
	Priorities []contact.Priority `koanf:"priorities" yaml:"priorities,omitempty"`
	MinScore   *int               `koanf:"min_score" yaml:"min_score,omitempty"`
	MaxScore   *int               `koanf:"max_score" yaml:"max_score,omitempty"`
}

// Rule is an immutable catalog entry. Rules are built once at process start.
type Rule struct {
	ID          string  `koanf:"id" yaml:"id"`
	Name        string  `koanf:"name" yaml:"name"`
	Description string  `koanf:"description" yaml:"description,omitempty"`
	Trigger     Trigger `koanf:"trigger" yaml:"trigger"`
	Action      Action  `koanf:"action" yaml:"action"`
	Filters     Filters `koanf:"filters" yaml:"filters,omitempty"`
}

// Query returns the filter part of the rule as a contact query, without any trigger
// predicate.
func (f Filters) Query() contact.Query {
	return contact.Query{
		Types:      f.LeadTypes,
		Sources:    f.Sources,
		Priorities: f.Priorities,
		MinScore:   f.MinScore,
		MaxScore:   f.MaxScore,
	}
}

// KnownTrigger reports whether the evaluator understands the trigger.
func (t Trigger) KnownTrigger() bool {
	switch t.Kind {
	case TriggerTimeBased:
		switch t.Condition {
		case ConditionCreatedSinceMinutes, ConditionNoResponseHours, ConditionLastContactDays:
			return t.Value > 0
		}
	case TriggerStatusBased:
		return t.Condition == ConditionStatusEquals && t.Equals != ""
	case TriggerBehaviorBased:
		return t.Condition != ""
	}
	return false
}

// KnownAction reports whether the dispatcher has an implementation for the action kind.
func (a Action) KnownAction() bool {
	switch a.Kind {
	case ActionMessage, ActionTask, ActionStatusUpdate:
		return true
	}
	return false
}

// Validate checks the structural fields only. Unknown trigger or action kinds are not
// rejected here; they evaluate to "no match" and "no-op" at run time.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id", ErrRuleMissingField)
	}
	if r.Trigger.Kind == "" {
		return fmt.Errorf("rule %s: %w: trigger.kind", r.ID, ErrRuleMissingField)
	}
	if r.Action.Kind == "" {
		return fmt.Errorf("rule %s: %w: action.kind", r.ID, ErrRuleMissingField)
	}
	if r.Action.Kind == ActionMessage && r.Action.TemplateID == "" {
		return fmt.Errorf("rule %s: %w: action.template_id", r.ID, ErrRuleMissingField)
	}
	return nil
}
