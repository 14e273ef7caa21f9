package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger <rule-id> <contact-id>",
	Short: "Fire a behavior based rule for one contact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		contactID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid contact id %q: %w", args[1], err)
		}

		svc, err := newServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		res, err := svc.engine.TriggerBehaviorEvent(cmd.Context(), args[0], contactID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s %s\n", res.RuleID, res.ContactID, res.Outcome, res.Detail)
		if res.Err != nil {
			return res.Err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}
