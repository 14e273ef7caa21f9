package rules

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nurturing_engine/internal/domain/contact"
	"nurturing_engine/internal/domain/nurturing"
)

func testLogger(buf *bytes.Buffer) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(buf)
	return logrus.NewEntry(l)
}

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_EmptyPathUsesBuiltInCatalog(t *testing.T) {
	var buf bytes.Buffer

	got, err := Load("", testLogger(&buf))

	require.NoError(t, err)
	assert.Equal(t, nurturing.DefaultCatalog(), got)
}

func TestLoad_ParsesRuleFile(t *testing.T) {
	path := writeRules(t, `
rules:
  - id: cold_lead_reactivation
    name: Cold lead reactivation
    trigger:
      kind: time_based
      condition: last_contact_days
      value: 30
    action:
      kind: message
      template_id: reactivation
    filters:
      lead_types: [cold]
      max_score: 40
  - id: callback
    name: Callback task
    trigger:
      kind: time_based
      condition: no_response_hours
      value: 24
    action:
      kind: task
      delay_seconds: 3600
    filters:
      priorities: [high, urgent]
`)
	var buf bytes.Buffer

	got, err := Load(path, testLogger(&buf))

	require.NoError(t, err)
	require.Len(t, got, 2)

	cold := got[0]
	assert.Equal(t, "cold_lead_reactivation", cold.ID)
	assert.Equal(t, nurturing.TriggerTimeBased, cold.Trigger.Kind)
	assert.Equal(t, 30, cold.Trigger.Value)
	assert.Equal(t, "reactivation", cold.Action.TemplateID)
	assert.Equal(t, []contact.Type{contact.TypeCold}, cold.Filters.LeadTypes)
	require.NotNil(t, cold.Filters.MaxScore)
	assert.Equal(t, 40, *cold.Filters.MaxScore)
	assert.Nil(t, cold.Filters.MinScore)

	assert.Equal(t, 3600, got[1].Action.DelaySeconds)
	assert.Equal(t, []contact.Priority{contact.PriorityHigh, contact.PriorityUrgent}, got[1].Filters.Priorities)
}

func TestLoad_WarnsOnUnknownKinds(t *testing.T) {
	path := writeRules(t, `
rules:
  - id: moon
    name: Full moon
    trigger: {kind: lunar, condition: full}
    action: {kind: fax}
`)
	var buf bytes.Buffer

	got, err := Load(path, testLogger(&buf))

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, buf.String(), "will match no contacts")
	assert.Contains(t, buf.String(), "will be a no-op")
}

func TestLoad_WarnsOnUnknownTemplate(t *testing.T) {
	path := writeRules(t, `
rules:
  - id: festive
    name: Festive greeting
    trigger: {kind: time_based, condition: last_contact_days, value: 3}
    action: {kind: message, template_id: diwali_offer}
`)
	var buf bytes.Buffer

	got, err := Load(path, testLogger(&buf))

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, buf.String(), "unknown template")
	assert.Contains(t, buf.String(), "diwali_offer")
}

func TestLoad_BuiltInTemplatesAreKnown(t *testing.T) {
	var buf bytes.Buffer
	data, err := Marshal(nurturing.DefaultCatalog())
	require.NoError(t, err)

	_, err = Load(writeRules(t, string(data)), testLogger(&buf))

	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "unknown template")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"no rules", "rules: []\n", ErrEmptyCatalog},
		{"duplicate id", `
rules:
  - {id: a, trigger: {kind: status_based, condition: status_equals, equals: new}, action: {kind: task}}
  - {id: a, trigger: {kind: status_based, condition: status_equals, equals: new}, action: {kind: task}}
`, nurturing.ErrDuplicateRuleID},
		{"message without template", `
rules:
  - {id: a, trigger: {kind: status_based, condition: status_equals, equals: new}, action: {kind: message}}
`, nurturing.ErrRuleMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := Load(writeRules(t, tt.body), testLogger(&buf))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), testLogger(&buf))
	assert.Error(t, err)
}

func TestMarshal_RoundTripsThroughLoad(t *testing.T) {
	out, err := Marshal(nurturing.DefaultCatalog())
	require.NoError(t, err)

	var buf bytes.Buffer
	got, err := Load(writeRules(t, string(out)), testLogger(&buf))

	require.NoError(t, err)
	assert.Equal(t, nurturing.DefaultCatalog(), got)
}
