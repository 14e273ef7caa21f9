// Package scoring converts raw enquiry attributes into a priority score and descriptive tags.
// Everything here is pure: no I/O, no clock, no randomness.
package scoring

import "nurturing_engine/internal/domain/contact"

// MaxScore is the ceiling every score is clamped to.
const MaxScore = 100

var urgencyPoints = map[string]int{
	contact.UrgencyImmediate:   25,
	contact.Urgency3To6Months:  20,
	contact.Urgency6To12Months: 15,
	contact.UrgencyExploratory: 5,
}

var personaPoints = map[string]int{
	contact.PersonaEndUserFamily:    15,
	contact.PersonaNRIInvestor:      12,
	contact.PersonaResearchOriented: 10,
	contact.PersonaWorkingCouple:    8,
	contact.PersonaFirstTimeBuyer:   6,
	contact.PersonaSeniorBuyer:      5,
}

// Score returns the contact's priority score in [0, 100].
func Score(c *contact.Contact) int {
	p := c.Profile
	total := urgencyPoints[p.Urgency] + personaPoints[p.Persona]
	total += budgetPoints(p.BudgetMin)
	total += financingPoints(p)

	if p.PreferredContactTime != "" {
		total += 5
	}
	if c.Phone != "" && c.Email != "" {
		total += 5
	}

	if len(p.PreferredAreas) > 0 {
		total += 5
	}
	if p.BHK != "" {
		total += 3
	}
	if p.PropertyType != "" {
		total += 2
	}

	if p.WantsLegalSupport {
		total += 5
	}
	if len(p.InterestedReports) > 0 {
		total += 5
	}

	return min(total, MaxScore)
}

// budgetPoints scores the lower bound of the stated budget range (in lakhs).
func budgetPoints(budgetMin float64) int {
	switch {
	case budgetMin > 200:
		return 20
	case budgetMin > 100:
		return 15
	case budgetMin > 50:
		return 10
	default:
		return 5
	}
}

// financingPoints awards only the strongest financing signal present.
func financingPoints(p contact.Profile) int {
	switch {
	case p.HasPreApproval:
		return 10
	case p.OwnFunds:
		return 8
	case p.BankLoan:
		return 6
	default:
		return 0
	}
}

// ScoreAndTag is the entry point used by contact ingestion: it computes both outputs
// without touching any store.
func ScoreAndTag(c *contact.Contact) (int, []string) {
	return Score(c), Tags(c)
}
