// Package session keeps per-spec coverage state current under file-system
// change. At most one rebuild runs per spec at a time, with at most one
// pending request behind it; readers always see a complete generation.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/spectrace/spectrace/internal/config"
	"github.com/spectrace/spectrace/internal/coverage"
	"github.com/spectrace/spectrace/internal/logger"
	"github.com/spectrace/spectrace/internal/watcher"
)

var log = logger.ForComponent("session")

// Generation is one complete build of a spec's state. It is immutable;
// rebuilds publish a new Generation rather than mutating the old one.
type Generation struct {
	Number   uint64
	Result   *coverage.Result
	Warnings []string
	BuiltAt  time.Time
	Duration time.Duration
}

// EventKind classifies session events.
type EventKind string

const (
	// EventRebuilt announces a new generation.
	EventRebuilt EventKind = "rebuilt"
	// EventFailed reports a rebuild failure. The previous generation
	// stays in place for readers.
	EventFailed EventKind = "failed"
)

// Event is delivered to observers after each rebuild attempt.
type Event struct {
	Spec       string
	Kind       EventKind
	Generation uint64
	Report     *coverage.Report
	Duration   time.Duration
	Err        error
}

// specState is the live state of one configured spec.
type specState struct {
	spec config.SpecConfig

	// current holds the latest good generation; nil before the first
	// successful build. Readers load it atomically so a rebuild swap is
	// all-or-nothing.
	current atomic.Pointer[Generation]

	// requests carries rebuild triggers. Capacity 1: one rebuild may run
	// while at most one more is pending; further triggers collapse into
	// the pending one.
	requests chan struct{}

	// buildMu serializes the coordinator loop with explicit Rebuild calls.
	buildMu sync.Mutex

	generation atomic.Uint64
	lastErr    atomic.Pointer[string]
}

// Session owns the live state of every configured spec. It is an explicit
// object owned by the front end that starts it, never ambient process
// state.
type Session struct {
	root   string
	states map[string]*specState

	obsMu     sync.Mutex
	observers map[int]chan Event
	nextObs   int

	wg sync.WaitGroup
}

// New creates a session for the given specs rooted at root. Run must be
// called to start the coordinators.
func New(root string, specs []config.SpecConfig) *Session {
	s := &Session{
		root:      root,
		states:    make(map[string]*specState, len(specs)),
		observers: make(map[int]chan Event),
	}
	for _, spec := range specs {
		s.states[spec.Name] = &specState{
			spec:     spec,
			requests: make(chan struct{}, 1),
		}
	}
	return s
}

// Run starts one rebuild coordinator per spec, performs the initial
// rebuilds, and consumes watcher batches until ctx is done. The batches
// channel may be nil for a session without file watching.
func (s *Session) Run(ctx context.Context, batches <-chan []watcher.FileEvent) {
	for name, st := range s.states {
		s.wg.Add(1)
		go s.coordinate(ctx, name, st)
		st.trigger()
	}

	if batches != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batch, ok := <-batches:
					if !ok {
						return
					}
					s.dispatch(batch)
				}
			}
		}()
	}
}

// Wait blocks until all coordinators have exited.
func (s *Session) Wait() {
	s.wg.Wait()
}

// coordinate is the single-writer rebuild loop for one spec.
func (s *Session) coordinate(ctx context.Context, name string, st *specState) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-st.requests:
			s.rebuildOnce(name, st)
		}
	}
}

// dispatch routes a change batch to the specs whose source set or rule
// source it touches. A batch affecting one spec never rebuilds another.
func (s *Session) dispatch(batch []watcher.FileEvent) {
	for name, st := range s.states {
		if s.batchAffects(st.spec, batch) {
			log.Debug("change batch triggers rebuild", "spec", name, "events", len(batch))
			st.trigger()
		}
	}
}

func (s *Session) batchAffects(spec config.SpecConfig, batch []watcher.FileEvent) bool {
	for _, ev := range batch {
		rel, err := filepath.Rel(s.root, ev.Path)
		if err != nil {
			return true
		}
		rel = filepath.ToSlash(rel)

		if spec.RulesGlob != "" {
			if ok, _ := doublestar.Match(spec.RulesGlob, rel); ok {
				return true
			}
		}
		if spec.RulesFile != "" && rel == filepath.ToSlash(spec.RulesFile) {
			return true
		}
		if inScanSet(spec, rel) {
			return true
		}
	}
	return false
}

func inScanSet(spec config.SpecConfig, rel string) bool {
	for _, p := range spec.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(spec.Include) == 0 {
		return true
	}
	for _, p := range spec.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// trigger requests a rebuild. If one is already pending the request
// collapses into it.
func (st *specState) trigger() {
	select {
	case st.requests <- struct{}{}:
	default:
	}
}

func (s *Session) rebuildOnce(name string, st *specState) {
	st.buildMu.Lock()
	defer st.buildMu.Unlock()

	start := time.Now()
	result, warnings, err := Build(s.root, st.spec)
	elapsed := time.Since(start)

	if err != nil {
		// Keep the previous good generation; surface the failure as a
		// diagnostic event instead of tearing the session down.
		msg := err.Error()
		st.lastErr.Store(&msg)
		log.Error("rebuild failed", "spec", name, "error", err)
		s.publish(Event{
			Spec:       name,
			Kind:       EventFailed,
			Generation: st.generation.Load(),
			Duration:   elapsed,
			Err:        err,
		})
		return
	}

	gen := &Generation{
		Number:   st.generation.Add(1),
		Result:   result,
		Warnings: warnings,
		BuiltAt:  time.Now(),
		Duration: elapsed,
	}
	st.current.Store(gen)
	st.lastErr.Store(nil)

	log.Info("rebuild complete",
		"spec", name,
		"generation", gen.Number,
		"rules", result.Report.TotalRules,
		"references", len(result.References),
		"duration", elapsed,
	)

	s.publish(Event{
		Spec:       name,
		Kind:       EventRebuilt,
		Generation: gen.Number,
		Report:     result.Report,
		Duration:   elapsed,
	})
}

// Rebuild forces a synchronous rebuild of one spec and returns its new
// generation, or the build error with the previous generation left intact.
func (s *Session) Rebuild(name string) (*Generation, error) {
	st, ok := s.states[name]
	if !ok {
		return nil, fmt.Errorf("unknown spec: %s", name)
	}

	s.rebuildOnce(name, st)

	if msg := st.lastErr.Load(); msg != nil {
		return st.current.Load(), fmt.Errorf("%s", *msg)
	}
	return st.current.Load(), nil
}

// Current returns the latest good generation for a spec, or nil when no
// build has succeeded yet.
func (s *Session) Current(name string) (*Generation, error) {
	st, ok := s.states[name]
	if !ok {
		return nil, fmt.Errorf("unknown spec: %s", name)
	}
	return st.current.Load(), nil
}

// SpecNames lists configured specs in sorted order.
func (s *Session) SpecNames() []string {
	names := make([]string, 0, len(s.states))
	for name := range s.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status summarizes one spec's live state.
type Status struct {
	Spec       string    `json:"spec"`
	Generation uint64    `json:"generation"`
	TotalRules int       `json:"total_rules"`
	References int       `json:"references"`
	Percent    float64   `json:"coverage_percent"`
	BuiltAt    time.Time `json:"built_at,omitzero"`
	DurationMS int64     `json:"duration_ms"`
	LastError  string    `json:"last_error,omitempty"`
}

// StatusAll reports the state of every configured spec.
func (s *Session) StatusAll() []Status {
	var out []Status
	for _, name := range s.SpecNames() {
		st := s.states[name]
		status := Status{Spec: name, Generation: st.generation.Load()}
		if gen := st.current.Load(); gen != nil {
			status.TotalRules = gen.Result.Report.TotalRules
			status.References = len(gen.Result.References)
			status.Percent = gen.Result.Report.Percent()
			status.BuiltAt = gen.BuiltAt
			status.DurationMS = gen.Duration.Milliseconds()
		}
		if msg := st.lastErr.Load(); msg != nil {
			status.LastError = *msg
		}
		out = append(out, status)
	}
	return out
}

// Subscribe registers an observer. Events are dropped, not blocked on, if
// the observer falls behind. The returned func unsubscribes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObs
	s.nextObs++
	ch := make(chan Event, 16)
	s.observers[id] = ch

	return ch, func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		if c, ok := s.observers[id]; ok {
			delete(s.observers, id)
			close(c)
		}
	}
}

func (s *Session) publish(ev Event) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for _, ch := range s.observers {
		select {
		case ch <- ev:
		default:
		}
	}
}
