package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spectrace/spectrace/internal/manifest"
	"github.com/spectrace/spectrace/internal/session"
)

func exportCmd(opts *globalOpts) *cobra.Command {
	var (
		specName string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a spec's rule manifest as JSON interchange",
		Long: `Export writes the extracted rule manifest in the JSON interchange
format, suitable for publishing so that downstream projects can load it
with rules_file or rules_url instead of re-extracting from prose.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(opts)
			if err != nil {
				return err
			}
			specs, err := proj.specsToRun(specName)
			if err != nil {
				return err
			}
			if len(specs) != 1 {
				return fmt.Errorf("export requires exactly one spec, use --spec")
			}

			m, warnings, err := session.LoadManifest(proj.root, specs[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", specs[0].Name, err)
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}

			data, err := manifest.Export(m)
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}

	cmd.Flags().StringVar(&specName, "spec", "", "Spec to export (required when several are configured)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
