package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nurturing_engine/internal/domain/nurturing"
)

func TestRulesCommandPrintsBuiltInCatalog(t *testing.T) {
	t.Setenv("RULES_FILE", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"rules"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "id: cold_lead_reactivation")
	assert.Contains(t, out.String(), "template_id: welcome_hot_lead")
}

func TestSummaryViewJSON(t *testing.T) {
	s := nurturing.CycleSummary{
		StartedAt:      time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC),
		Duration:       1500 * time.Millisecond,
		RulesProcessed: 2,
		Dispatched:     1,
		Rules: []nurturing.RuleSummary{
			{RuleID: "cold_lead_reactivation", Eligible: 1, Dispatched: 1},
			{RuleID: "new_lead_welcome", Err: errors.New("timeout")},
		},
	}

	out, err := json.Marshal(newSummaryView(s))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, 1500.0, got["duration_ms"])
	rules := got["rules"].([]any)
	require.Len(t, rules, 2)
	assert.Equal(t, "timeout", rules[1].(map[string]any)["error"])
	assert.NotContains(t, rules[0].(map[string]any), "error")
}

func TestBotHTTPTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, botHTTPTimeout(30*time.Second))
	assert.Equal(t, botPollTimeout+5*time.Second, botHTTPTimeout(5*time.Second))
	assert.Greater(t, botHTTPTimeout(botPollTimeout), botPollTimeout)
}
