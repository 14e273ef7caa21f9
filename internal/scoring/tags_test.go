package scoring

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nurturing_engine/internal/domain/contact"
)

func TestTags_Rules(t *testing.T) {
	tests := []struct {
		name    string
		profile contact.Profile
		want    []string
	}{
		{"none", contact.Profile{}, []string{}},
		{"immediate", contact.Profile{Urgency: contact.UrgencyImmediate}, []string{TagHotLead, TagUrgent}},
		{"immediate with areas", contact.Profile{Urgency: contact.UrgencyImmediate, PreferredAreas: []string{"Baner"}}, []string{TagHotLead, TagReadyToVisit, TagUrgent}},
		{"areas without urgency", contact.Profile{PreferredAreas: []string{"Baner"}}, []string{}},
		{"three to six months", contact.Profile{Urgency: contact.Urgency3To6Months}, []string{TagWarmLead}},
		{"exploratory", contact.Profile{Urgency: contact.UrgencyExploratory}, []string{TagLongTermNurture}},
		{"first time buyer", contact.Profile{Persona: contact.PersonaFirstTimeBuyer}, []string{TagFirstTimeBuyer, TagNeedsGuidance}},
		{"pre-approval", contact.Profile{HasPreApproval: true}, []string{TagReadyToBuy}},
		{"own funds", contact.Profile{OwnFunds: true}, []string{TagReadyToBuy}},
		{"bank loan alone", contact.Profile{BankLoan: true}, []string{}},
		{"legal and reports", contact.Profile{WantsLegalSupport: true, InterestedReports: []string{"title"}}, []string{TagLegalSupport, TagReportInterested}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tags(&contact.Contact{Profile: tt.profile})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTags_SetSemantics(t *testing.T) {
	c := fullProfileContact()
	c.Profile.Persona = contact.PersonaFirstTimeBuyer
	// ready-to-buy is reachable from two inputs; it must appear once.
	c.Profile.OwnFunds = true

	first := Tags(c)
	second := Tags(c)

	require.Equal(t, first, second)
	assert.True(t, sort.StringsAreSorted(first))

	seen := make(map[string]bool)
	for _, tag := range first {
		assert.False(t, seen[tag], "duplicate tag %q", tag)
		seen[tag] = true
	}
	assert.True(t, seen[TagReadyToBuy])
	assert.True(t, seen[TagNeedsGuidance])
}

func TestTags_IndependentOfAreaOrder(t *testing.T) {
	a := &contact.Contact{Profile: contact.Profile{Urgency: contact.UrgencyImmediate, PreferredAreas: []string{"Baner", "Aundh"}}}
	b := &contact.Contact{Profile: contact.Profile{Urgency: contact.UrgencyImmediate, PreferredAreas: []string{"Aundh", "Baner"}}}

	assert.Equal(t, Tags(a), Tags(b))
}
