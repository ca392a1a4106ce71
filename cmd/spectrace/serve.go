package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spectrace/spectrace/internal/logger"
	"github.com/spectrace/spectrace/internal/rpc"
	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/internal/store"
	"github.com/spectrace/spectrace/internal/tools"
	"github.com/spectrace/spectrace/internal/tools/trace"
	"github.com/spectrace/spectrace/internal/watcher"
)

func serveCmd(opts *globalOpts) *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the live rebuild daemon",
		Long: `Serve builds every configured spec, watches the project for changes,
and rebuilds affected specs on each change batch. Results are queryable
over a JSON-RPC unix socket and persisted across restarts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(opts)
			if err != nil {
				return err
			}
			return runDaemon(proj, noWatch)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable file watching, rebuild only on trace/rebuild")
	return cmd
}

func runDaemon(proj *project, noWatch bool) error {
	log := logger.ForComponent("daemon")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sess := session.New(proj.root, proj.cfg.Specs)

	// Persistence is best effort: a broken store leaves the daemon fully
	// functional, just without snapshots across restarts. Subscribing
	// before Run so the initial generation of every spec is persisted.
	st, err := store.Open(proj.cfg.ResolveStorePath(proj.root))
	if err != nil {
		log.Warn("store unavailable, snapshots disabled", "error", err)
	} else {
		defer st.Close()
		events, unsubscribe := sess.Subscribe()
		defer unsubscribe()
		go persistSnapshots(ctx, sess, st, events)
	}

	var w *watcher.Watcher
	var batches <-chan []watcher.FileEvent
	if proj.cfg.Watch.Enabled && !noWatch {
		w, err = watcher.New(proj.cfg.Watch)
		if err != nil {
			return err
		}
		if err := w.AddRoot(proj.root); err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		batches = w.Batches()
	}

	sess.Run(ctx, batches)

	registry := tools.NewRegistry()
	for _, tool := range trace.GetTools(sess) {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	server := rpc.NewServer(proj.cfg.ResolveSocketPath(proj.root), registry, sess)
	log.Info("daemon starting", "root", proj.root, "specs", len(proj.cfg.Specs), "watching", batches != nil)

	err = server.Serve(ctx)

	cancel()
	if w != nil {
		w.Stop()
	}
	sess.Wait()
	return err
}

// persistSnapshots writes each successful generation to the store. Failed
// rebuilds are not persisted: the stored snapshot stays at the last good
// generation, matching what readers of the session see.
func persistSnapshots(ctx context.Context, sess *session.Session, st *store.Store, events <-chan session.Event) {
	log := logger.ForComponent("daemon")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind != session.EventRebuilt {
				continue
			}

			gen, err := sess.Current(ev.Spec)
			if err != nil || gen.Number != ev.Generation {
				// A newer generation landed before we got here; it
				// carries its own event.
				continue
			}
			if err := st.SaveGeneration(ev.Spec, gen.Number, gen.Result.Report, gen.Result.References, gen.BuiltAt, gen.Duration); err != nil {
				log.Warn("snapshot persist failed", "spec", ev.Spec, "error", err)
			}
		}
	}
}
