package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spectrace/spectrace/internal/config"
	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/internal/store"
)

// Mirrors the daemon wiring: subscribing before Run means the very first
// generation of each spec reaches the store.
func TestPersistSnapshotsCapturesInitialGeneration(t *testing.T) {
	root := testProject(t)
	specs := []config.SpecConfig{{
		Name:      "demo",
		RulesGlob: "spec/*.md",
		Include:   []string{"src/**"},
	}}
	sess := session.New(root, specs)

	st, err := store.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()
	go persistSnapshots(ctx, sess, st, events)

	sess.Run(ctx, nil)
	defer func() {
		cancel()
		sess.Wait()
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		snap, err := st.GetSnapshot("demo")
		if err != nil {
			t.Fatal(err)
		}
		if snap != nil {
			if snap.Generation != 1 {
				t.Errorf("generation = %d, want 1", snap.Generation)
			}
			if snap.TotalRules != 2 || snap.CoveredRules != 1 {
				t.Errorf("snapshot = %d/%d rules covered, want 1/2", snap.CoveredRules, snap.TotalRules)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("initial generation was never persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
