package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nurturing_engine/internal/domain/nurturing"
	"nurturing_engine/internal/infra/telegram"
)

var cycleJSON bool

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one nurturing cycle and print its summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		summary := svc.engine.RunCycle(cmd.Context())
		if cycleJSON {
			out, err := json.MarshalIndent(newSummaryView(summary), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), telegram.FormatSummary(summary))
		return nil
	},
}

func init() {
	cycleCmd.Flags().BoolVar(&cycleJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(cycleCmd)
}

type ruleSummaryView struct {
	RuleID           string `json:"rule_id"`
	Eligible         int    `json:"eligible"`
	Dispatched       int    `json:"dispatched"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
	SkippedNoPhone   int    `json:"skipped_no_phone"`
	Failed           int    `json:"failed"`
	Error            string `json:"error,omitempty"`
}

type summaryView struct {
	StartedAt        time.Time         `json:"started_at"`
	DurationMS       int64             `json:"duration_ms"`
	RulesProcessed   int               `json:"rules_processed"`
	EligibleFound    int               `json:"eligible_found"`
	Dispatched       int               `json:"dispatched"`
	SkippedDuplicate int               `json:"skipped_duplicate"`
	SkippedNoPhone   int               `json:"skipped_no_phone"`
	Failed           int               `json:"failed"`
	Rules            []ruleSummaryView `json:"rules"`
}

func newSummaryView(s nurturing.CycleSummary) summaryView {
	v := summaryView{
		StartedAt:        s.StartedAt,
		DurationMS:       s.Duration.Milliseconds(),
		RulesProcessed:   s.RulesProcessed,
		EligibleFound:    s.EligibleFound,
		Dispatched:       s.Dispatched,
		SkippedDuplicate: s.SkippedDuplicate,
		SkippedNoPhone:   s.SkippedNoPhone,
		Failed:           s.Failed,
		Rules:            make([]ruleSummaryView, 0, len(s.Rules)),
	}
	for _, rs := range s.Rules {
		rv := ruleSummaryView{
			RuleID:           rs.RuleID,
			Eligible:         rs.Eligible,
			Dispatched:       rs.Dispatched,
			SkippedDuplicate: rs.SkippedDuplicate,
			SkippedNoPhone:   rs.SkippedNoPhone,
			Failed:           rs.Failed,
		}
		if rs.Err != nil {
			rv.Error = rs.Err.Error()
		}
		v.Rules = append(v.Rules, rv)
	}
	return v
}
