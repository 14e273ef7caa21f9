package scoring

import (
	"sort"

	"nurturing_engine/internal/domain/contact"
)

// Tag values emitted by Tags.
const (
	TagHotLead          = "hot-lead"
	TagUrgent           = "urgent"
	TagWarmLead         = "warm-lead"
	TagLongTermNurture  = "long-term-nurture"
	TagFirstTimeBuyer   = "first-time-buyer"
	TagNeedsGuidance    = "needs-guidance"
	TagNRI              = "nri"
	TagInvestor         = "investor"
	TagFamilyBuyer      = "family-buyer"
	TagSeniorBuyer      = "senior-buyer"
	TagReadyToBuy       = "ready-to-buy"
	TagReadyToVisit     = "ready-to-visit"
	TagPremiumBudget    = "premium-budget"
	TagLegalSupport     = "legal-support"
	TagReportInterested = "report-interested"
)

// Tags derives the descriptive tag set for a contact. Each rule contributes independently;
// the result is sorted and duplicate free so equal inputs always yield equal slices.
func Tags(c *contact.Contact) []string {
	p := c.Profile
	set := make(map[string]struct{})
	add := func(tags ...string) {
		for _, t := range tags {
			set[t] = struct{}{}
		}
	}

	switch p.Urgency {
	case contact.UrgencyImmediate:
		add(TagHotLead, TagUrgent)
		if len(p.PreferredAreas) > 0 {
			add(TagReadyToVisit)
		}
	case contact.Urgency3To6Months:
		add(TagWarmLead)
	case contact.Urgency6To12Months, contact.UrgencyExploratory:
		add(TagLongTermNurture)
	}

	switch p.Persona {
	case contact.PersonaFirstTimeBuyer:
		add(TagFirstTimeBuyer, TagNeedsGuidance)
	case contact.PersonaNRIInvestor:
		add(TagNRI, TagInvestor)
	case contact.PersonaEndUserFamily:
		add(TagFamilyBuyer)
	case contact.PersonaSeniorBuyer:
		add(TagSeniorBuyer)
	}

	if p.HasPreApproval || p.OwnFunds {
		add(TagReadyToBuy)
	}
	if p.BudgetMin > 200 {
		add(TagPremiumBudget)
	}
	if p.WantsLegalSupport {
		add(TagLegalSupport)
	}
	if len(p.InterestedReports) > 0 {
		add(TagReportInterested)
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
