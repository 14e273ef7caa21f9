package main

import (
	"github.com/spf13/cobra"

	"nurturing_engine/internal/infra/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the loaded rule catalog as YAML",
	Long: `Prints the catalog the engine would run, in the same format RULES_FILE accepts.
With no rule file configured this is the built-in catalog, a starting point for a custom one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		out, err := rules.Marshal(catalog)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
