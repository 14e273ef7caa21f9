package contact

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Type is the lifecycle temperature of a lead.
type Type string

const (
	TypeHot  Type = "hot"
	TypeWarm Type = "warm"
	TypeCold Type = "cold"
)

// Priority is the advisor-assigned handling priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status is the contact's position in the advisory pipeline.
type Status string

const (
	StatusNew                Status = "new"
	StatusContacted          Status = "contacted"
	StatusNurturing          Status = "nurturing" // Set by the status_update action
	StatusSiteVisitScheduled Status = "site_visit_scheduled"
	StatusNegotiation        Status = "negotiation"
	StatusConverted          Status = "converted"
	StatusLost               Status = "lost"
)

// Flag is an externally raised behaviour signal on a contact (e.g. a price change on the
// property the contact is interested in).
type Flag string

const (
	FlagPriceChanged Flag = "price_changed"
)

// Urgency values captured on the enquiry form.
const (
	UrgencyImmediate   = "immediate"
	Urgency3To6Months  = "3-6-months"
	Urgency6To12Months = "6-12-months"
	UrgencyExploratory = "exploratory"
)

// Persona values captured on the enquiry form.
const (
	PersonaEndUserFamily    = "end-user-family"
	PersonaNRIInvestor      = "nri-investor"
	PersonaResearchOriented = "research-oriented"
	PersonaWorkingCouple    = "working-couple"
	PersonaFirstTimeBuyer   = "first-time-buyer"
	PersonaSeniorBuyer      = "senior-buyer"
)

// Profile holds the raw enquiry attributes the scoring function consumes.
// Stored as a JSON document next to the contact row.
type Profile struct {
	Urgency              string   `json:"urgency,omitempty"`
	BudgetMin            float64  `json:"budget_min,omitempty"` // Lower bound of stated range, in lakhs
	Persona              string   `json:"persona,omitempty"`
	HasPreApproval       bool     `json:"has_pre_approval,omitempty"`
	OwnFunds             bool     `json:"own_funds,omitempty"`
	BankLoan             bool     `json:"bank_loan,omitempty"`
	PreferredContactTime string   `json:"preferred_contact_time,omitempty"`
	PreferredAreas       []string `json:"preferred_areas,omitempty"`
	BHK                  string   `json:"bhk,omitempty"`
	PropertyType         string   `json:"property_type,omitempty"`
	WantsLegalSupport    bool     `json:"wants_legal_support,omitempty"`
	InterestedReports    []string `json:"interested_reports,omitempty"`
}

// Contact represents a prospective customer as stored by the CRM.
type Contact struct {
	ID                   uuid.UUID
	Name                 string
	Phone                string // Empty when not captured
	Email                string // Empty when not captured
	Type                 Type
	Priority             Priority
	Score                int
	Tags                 []string
	Source               string
	InterestPropertyID   *uuid.UUID
	InterestPropertyName string
	Status               Status
	Flags                []Flag
	Profile              Profile
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasFlag reports whether the behaviour flag is currently raised on the contact.
func (c *Contact) HasFlag(f Flag) bool {
	return slices.Contains(c.Flags, f)
}
