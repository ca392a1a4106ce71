package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spectrace/spectrace/internal/session"
)

func impactCmd(opts *globalOpts) *cobra.Command {
	var specName string

	cmd := &cobra.Command{
		Use:   "impact RULE_ID",
		Short: "List every source location referencing a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID := args[0]

			proj, err := loadProject(opts)
			if err != nil {
				return err
			}
			specs, err := proj.specsToRun(specName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			found := false
			for _, spec := range specs {
				result, _, err := session.Build(proj.root, spec)
				if err != nil {
					return fmt.Errorf("build %s: %w", spec.Name, err)
				}
				if !result.Manifest.HasRule(ruleID) {
					continue
				}
				found = true

				refs := result.Impact(ruleID)
				fmt.Fprintf(out, "%s: %d references to %s\n", spec.Name, len(refs), ruleID)
				for _, ref := range refs {
					fmt.Fprintf(out, "  %s:%d [%s]\n", ref.File, ref.Line, ref.Verb)
				}
			}

			if !found {
				return fmt.Errorf("rule not found in any spec: %s", ruleID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specName, "spec", "", "Search a single spec (default: all)")
	return cmd
}
