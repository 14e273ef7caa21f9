package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var rescoreCmd = &cobra.Command{
	Use:   "rescore <contact-id>",
	Short: "Recompute and store a contact's score and tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contactID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid contact id %q: %w", args[0], err)
		}

		svc, err := newServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		score, tags, err := svc.scoring.Rescore(cmd.Context(), contactID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s score=%d tags=%v\n", contactID, score, tags)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rescoreCmd)
}
