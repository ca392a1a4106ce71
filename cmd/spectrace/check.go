package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/session"
)

func checkCmd(opts *globalOpts) *cobra.Command {
	var (
		specName  string
		threshold float64
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail if coverage is below the threshold or invalid references exist",
		Long: `Check builds each spec and exits non-zero when any spec has invalid
references or coverage below the threshold. Intended for CI.`,
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
			var failed []string
			for _, spec := range specs {
				result, warnings, err := session.Build(proj.root, spec)
				if err != nil {
					return fmt.Errorf("build %s: %w", spec.Name, err)
				}

				report := result.Report
				pass := coverage.Passes(report, threshold)
				if !pass {
					failed = append(failed, spec.Name)
				}
				if quiet && pass {
					continue
				}

				status := "ok"
				if !pass {
					status = "FAIL"
				}
				fmt.Fprintf(out, "%s: %s (%.1f%% covered, threshold %.1f%%, %d invalid refs)\n",
					spec.Name, status, report.Percent(), threshold, len(report.Invalid))
				if !quiet {
					for _, w := range warnings {
						fmt.Fprintf(out, "  warning: %s\n", w)
					}
				}
			}

			if len(failed) > 0 {
				return fmt.Errorf("coverage check failed: %v", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specName, "spec", "", "Check a single spec (default: all)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum coverage percent (0: fail only on invalid references)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print failing specs")
	return cmd
}
