package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/scanner"
	"github.com/spectrace/spectrace/internal/session"
)

func reportCmd(opts *globalOpts) *cobra.Command {
	var (
		specName string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a coverage report for configured specs",
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(opts)
			if err != nil {
				return err
			}
			specs, err := proj.specsToRun(specName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, spec := range specs {
				if i > 0 {
					fmt.Fprintln(out)
				}
				result, warnings, err := session.Build(proj.root, spec)
				if err != nil {
					return fmt.Errorf("build %s: %w", spec.Name, err)
				}
				renderReport(out, result, warnings, verbose)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specName, "spec", "", "Report on a single spec (default: all)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List references per rule")
	return cmd
}

func renderReport(out io.Writer, result *coverage.Result, warnings []string, verbose bool) {
	report := result.Report

	fmt.Fprintf(out, "spec: %s\n", report.SpecName)
	fmt.Fprintf(out, "  coverage: %.1f%% (%d/%d rules covered, %d verified)\n",
		report.Percent(), len(report.Covered), report.TotalRules, len(report.Verified))

	fmt.Fprint(out, "  references:")
	for _, verb := range scanner.Verbs {
		fmt.Fprintf(out, " %s=%d", verb, report.CountsByVerb[verb])
	}
	fmt.Fprintln(out)

	if uncovered := uncoveredRules(result); len(uncovered) > 0 {
		fmt.Fprintf(out, "  uncovered rules (%d):\n", len(uncovered))
		for _, id := range uncovered {
			fmt.Fprintf(out, "    %s\n", id)
		}
	}

	if len(report.Invalid) > 0 {
		fmt.Fprintf(out, "  invalid references (%d):\n", len(report.Invalid))
		for _, ref := range report.Invalid {
			fmt.Fprintf(out, "    %s:%d [%s %s] (no such rule)\n", ref.File, ref.Line, ref.Verb, ref.RuleID)
		}
	}

	for _, diag := range report.Diagnostics {
		fmt.Fprintf(out, "  note: %s: %s\n", diag.RuleID, diag.Message)
	}

	for _, w := range warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}

	if verbose {
		renderRuleDetail(out, result)
	}
}

// uncoveredRules lists every rule without an impl reference, in ID order.
// Wider than Orphaned: a rule referenced only by verify or depends still
// counts against coverage.
func uncoveredRules(result *coverage.Result) []string {
	var ids []string
	for _, entry := range result.Matrix.Entries {
		if !entry.Covered {
			ids = append(ids, entry.Rule.ID)
		}
	}
	return ids
}

func renderRuleDetail(out io.Writer, result *coverage.Result) {
	covered := make(map[string]bool, len(result.Report.Covered))
	for _, id := range result.Report.Covered {
		covered[id] = true
	}

	for _, entry := range result.Matrix.Entries {
		marker := " "
		if covered[entry.Rule.ID] {
			marker = "+"
		}
		fmt.Fprintf(out, "  [%s] %s\n", marker, entry.Rule.ID)
		for _, ref := range entry.References {
			fmt.Fprintf(out, "      %s:%d [%s]\n", ref.File, ref.Line, ref.Verb)
		}
	}
}
