// Package reconcile keeps a terminal store in line with the backend: one bulk load
// at startup, then a full refetch of each family whose update notification arrives.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/georgemunganga/tablepos/internal/logger"
	"github.com/georgemunganga/tablepos/internal/store"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

// ErrBackendUnavailable means the health probe failed and nothing was loaded.
var ErrBackendUnavailable = errors.New("cannot connect to backend")

// FetchState is the in-flight tag of one family.
type FetchState int32

const (
	Idle FetchState = iota
	Fetching
)

func (s FetchState) String() string {
	if s == Fetching {
		return "fetching"
	}
	return "idle"
}

// worker serialises fetches of one family. kick has capacity one, so any number of
// requests that arrive while a fetch is queued collapse into a single refetch.
type worker struct {
	family Family
	kick   chan struct{}
	mu     sync.Mutex
	state  atomic.Int32
}

// Reconciler owns the load latch and the per-family refetch workers.
type Reconciler struct {
	src     Source
	st      *store.Store
	log     *logger.Logger
	workers map[Family]*worker

	loaded atomic.Bool
	loadMu sync.Mutex

	reportMu sync.RWMutex
	report   LoadReport
}

func New(src Source, st *store.Store, log *logger.Logger) *Reconciler {
	r := &Reconciler{
		src:     src,
		st:      st,
		log:     log.WithComponent("reconcile"),
		workers: make(map[Family]*worker, len(Families)),
	}
	for _, f := range Families {
		r.workers[f] = &worker{family: f, kick: make(chan struct{}, 1)}
	}
	return r
}

// Start runs one worker goroutine per family until ctx is done.
func (r *Reconciler) Start(ctx context.Context) {
	for _, w := range r.workers {
		go r.run(ctx, w)
	}
}

func (r *Reconciler) run(ctx context.Context, w *worker) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.kick:
			n, err := r.fetch(ctx, w)
			if err != nil {
				r.log.Warn("refetch failed", "family", w.family, "error", err)
				continue
			}
			r.log.Debug("refetched", "family", w.family, "count", n)
		}
	}
}

func (r *Reconciler) fetch(ctx context.Context, w *worker) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Store(int32(Fetching))
	defer w.state.Store(int32(Idle))
	return apply(ctx, r.src, r.st, w.family)
}

// Request queues a refetch of f. It never blocks.
func (r *Reconciler) Request(f Family) {
	w, ok := r.workers[f]
	if !ok {
		return
	}
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// RefreshAll queues a refetch of every family.
func (r *Reconciler) RefreshAll() {
	for _, f := range Families {
		r.Request(f)
	}
}

// State reports whether f is being fetched right now.
func (r *Reconciler) State(f Family) FetchState {
	if w, ok := r.workers[f]; ok {
		return FetchState(w.state.Load())
	}
	return Idle
}

// Loaded reports whether the initial load has completed.
func (r *Reconciler) Loaded() bool { return r.loaded.Load() }

// Report returns the most recent load report.
func (r *Reconciler) Report() LoadReport {
	r.reportMu.RLock()
	defer r.reportMu.RUnlock()
	return r.report
}

// Attach subscribes the reconciler to bus. Family notifications queue refetches; a
// reconnect refreshes everything, but only once the initial load has completed.
func (r *Reconciler) Attach(bus *syncchan.Bus) (detach func()) {
	var subs []func()
	for _, name := range syncchan.UpdateEvents {
		families := FamiliesFor(name)
		subs = append(subs, bus.On(name, func(syncchan.Event) {
			for _, f := range families {
				r.Request(f)
			}
		}))
	}
	subs = append(subs, bus.On(syncchan.EventConnection, func(ev syncchan.Event) {
		if ev.Status != syncchan.StatusConnected || !r.loaded.Load() {
			return
		}
		r.log.Info("reconnected, refreshing all families")
		r.RefreshAll()
	}))
	return func() {
		for _, unsub := range subs {
			unsub()
		}
	}
}

// InitialLoad probes the backend, then fetches every family concurrently. A failed
// family keeps whatever the store already held. Calling it again after success
// returns the stored report without fetching.
func (r *Reconciler) InitialLoad(ctx context.Context) (LoadReport, error) {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	if r.loaded.Load() {
		return r.Report(), nil
	}

	rep := LoadReport{StartedAt: time.Now()}
	if err := r.src.CheckHealth(ctx); err != nil {
		rep.Err = fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		rep.FinishedAt = time.Now()
		r.setReport(rep)
		r.log.Error("backend health check failed", "error", err)
		return rep, rep.Err
	}

	rep.Results = make([]FamilyResult, len(Families))
	var wg sync.WaitGroup
	for i, f := range Families {
		wg.Add(1)
		go func(i int, f Family) {
			defer wg.Done()
			n, err := r.fetch(ctx, r.workers[f])
			rep.Results[i] = FamilyResult{Family: f, Count: n, Err: err}
		}(i, f)
	}
	wg.Wait()
	rep.FinishedAt = time.Now()

	for _, res := range rep.Results {
		if res.Err != nil {
			r.log.Warn("family failed to load", "family", res.Family, "error", res.Err)
		}
	}
	r.setReport(rep)
	r.loaded.Store(true)
	r.log.Info("initial load complete", "failed", len(rep.Failed()), "took", rep.FinishedAt.Sub(rep.StartedAt))
	return rep, nil
}

// Retry clears the latch and runs the initial load again.
func (r *Reconciler) Retry(ctx context.Context) (LoadReport, error) {
	r.loadMu.Lock()
	r.loaded.Store(false)
	r.loadMu.Unlock()
	return r.InitialLoad(ctx)
}

func (r *Reconciler) setReport(rep LoadReport) {
	r.reportMu.Lock()
	r.report = rep
	r.reportMu.Unlock()
}
