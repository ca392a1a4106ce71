package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spectrace/spectrace/internal/session"
)

func atCmd(opts *globalOpts) *cobra.Command {
	var specName string

	cmd := &cobra.Command{
		Use:   "at FILE:LINE[-END]",
		Short: "Show the rules referenced at a source location",
		Long: `At resolves a file position (or line range) back to the rules whose
references overlap it. Paths are relative to the project root. Examples:

    spectrace at internal/auth/token.go:42
    spectrace at internal/auth/token.go:40-60`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, start, end, err := parseLocation(args[0])
			if err != nil {
				return err
			}

			proj, err := loadProject(opts)
			if err != nil {
				return err
			}
			specs, err := proj.specsToRun(specName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			total := 0
			for _, spec := range specs {
				result, _, err := session.Build(proj.root, spec)
				if err != nil {
					return fmt.Errorf("build %s: %w", spec.Name, err)
				}

				rules := result.RulesAt(file, start, end)
				total += len(rules)
				for _, rule := range rules {
					fmt.Fprintf(out, "%s (%s)\n", rule.ID, spec.Name)
					if rule.Body != "" {
						fmt.Fprintf(out, "  %s\n", firstLine(rule.Body))
					}
					for _, ref := range result.ReferencesAt(file, start, end) {
						if ref.RuleID == rule.ID {
							fmt.Fprintf(out, "  %s:%d [%s]\n", ref.File, ref.Line, ref.Verb)
						}
					}
				}
			}

			if total == 0 {
				fmt.Fprintf(out, "no rule references at %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&specName, "spec", "", "Search a single spec (default: all)")
	return cmd
}

// parseLocation splits "path:line" or "path:start-end". The colon split is
// from the right so Windows drive letters survive.
func parseLocation(arg string) (file string, start, end int, err error) {
	i := strings.LastIndex(arg, ":")
	if i <= 0 || i == len(arg)-1 {
		return "", 0, 0, fmt.Errorf("expected FILE:LINE or FILE:START-END, got %q", arg)
	}
	file = arg[:i]
	rangePart := arg[i+1:]

	if j := strings.Index(rangePart, "-"); j >= 0 {
		start, err = strconv.Atoi(rangePart[:j])
		if err == nil {
			end, err = strconv.Atoi(rangePart[j+1:])
		}
	} else {
		start, err = strconv.Atoi(rangePart)
		end = start
	}
	if err != nil {
		return "", 0, 0, fmt.Errorf("bad line range %q: %w", rangePart, err)
	}
	if start < 1 || end < start {
		return "", 0, 0, fmt.Errorf("bad line range %q", rangePart)
	}
	return file, start, end, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
