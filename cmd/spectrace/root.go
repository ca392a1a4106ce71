package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spectrace/spectrace/internal/config"
	"github.com/spectrace/spectrace/internal/logger"
)

const version = "0.1.0"

type globalOpts struct {
	configPath string
	logLevel   string
	logFormat  string
}

func rootCmd() *cobra.Command {
	opts := &globalOpts{}

	cmd := &cobra.Command{
		Use:   "spectrace",
		Short: "Trace specification rules to source code",
		Long: `Spectrace extracts rule definitions from prose specifications, scans
source trees for comment markers referencing those rules, and reports
which rules are implemented, verified, or orphaned.

Rules are declared in prose with markers like:

    r[auth.token.expiry status=stable level=must]

and referenced from source comments with markers like:

    // [impl auth.token.expiry]
    // [verify auth.token.expiry]`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logger.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			cfg := logger.DefaultConfig()
			cfg.Level = level
			cfg.Format = opts.logFormat
			logger.Init(cfg)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (default: nearest spectrace.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(
		reportCmd(opts),
		checkCmd(opts),
		exportCmd(opts),
		impactCmd(opts),
		atCmd(opts),
		serveCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("spectrace version %s\n", version)
			},
		},
	)

	return cmd
}

// project is a loaded workspace: the directory the config was found in
// and the parsed config itself. All paths in spec configs are resolved
// relative to root.
type project struct {
	root string
	cfg  *config.Config
}

func loadProject(opts *globalOpts) (*project, error) {
	if opts.configPath != "" {
		abs, err := filepath.Abs(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg, err := config.LoadFromFile(abs)
		if err != nil {
			return nil, err
		}
		return &project{root: filepath.Dir(abs), cfg: cfg}, nil
	}

	root, configPath, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return nil, fmt.Errorf("no %s found in %s or any parent directory", config.ConfigFile, root)
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}
	return &project{root: root, cfg: cfg}, nil
}

// specsToRun resolves a --spec flag value: empty selects every
// configured spec.
func (p *project) specsToRun(name string) ([]config.SpecConfig, error) {
	if name == "" {
		return p.cfg.Specs, nil
	}
	spec, ok := p.cfg.Spec(name)
	if !ok {
		return nil, fmt.Errorf("unknown spec: %s", name)
	}
	return []config.SpecConfig{spec}, nil
}
