package service

import (
	"cmp"
	"context"
	"time"

	"github.com/bundle-tools/bundle-control-plane/internal/bundler"
	"github.com/bundle-tools/bundle-control-plane/internal/config"
	"github.com/bundle-tools/bundle-control-plane/internal/errcodes"
	"github.com/bundle-tools/bundle-control-plane/internal/logging"
	"github.com/bundle-tools/bundle-control-plane/internal/metrics"
	"github.com/bundle-tools/bundle-control-plane/internal/progress"
)

var (
	defaultInterval = 30 * time.Second
	errorInterval   = 30 * time.Second
)

// BuildState classifies where a plan build iteration ended up.
type BuildState int

const (
	BuildStateSuccess BuildState = iota
	BuildStateScanFailed
	BuildStateBundleFailed
	BuildStateInternalError
)

func (s BuildState) String() string {
	switch s {
	case BuildStateSuccess:
		return "success"
	case BuildStateScanFailed:
		return "scan_failed"
	case BuildStateBundleFailed:
		return "bundle_failed"
	}
	return "internal_error"
}

// Status is the worker's last observed build outcome.
type Status struct {
	State   BuildState
	Message string
}

// PlanWorker builds the plans for one configured bundle: it scans the
// bundle's source trees, resolves the policy tables for every variant, and
// hands the finished plans to the bundler collaborator.
type PlanWorker struct {
	root          *config.Root
	bundleConfig  *config.Bundle
	sourceConfigs config.Sources
	registry      *errcodes.Registry
	bundler       bundler.Bundler
	changed       chan struct{}
	done          chan struct{}
	singleShot    bool
	log           *logging.Logger
	bar           *progress.Bar
	status        Status
	interval      time.Duration
}

func NewPlanWorker(root *config.Root, b *config.Bundle, sources []*config.Source, logger *logging.Logger, bar *progress.Bar) *PlanWorker {
	return &PlanWorker{
		root:          root,
		bundleConfig:  b,
		sourceConfigs: sources,
		log:           logger,
		bar:           bar,
		changed:       make(chan struct{}), done: make(chan struct{}),
		interval: defaultInterval,
	}
}

func (w *PlanWorker) WithBundler(b bundler.Bundler) *PlanWorker {
	w.bundler = b
	return w
}

func (w *PlanWorker) WithRegistry(registry *errcodes.Registry) *PlanWorker {
	w.registry = registry
	return w
}

func (w *PlanWorker) WithSingleShot(singleShot bool) *PlanWorker {
	w.singleShot = singleShot
	return w
}

func (w *PlanWorker) WithInterval(d config.Duration) *PlanWorker {
	w.interval = cmp.Or(time.Duration(d), defaultInterval)
	return w
}

func (w *PlanWorker) Done() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func (w *PlanWorker) Status() Status {
	return w.status
}

// UpdateConfig signals the worker to retire when its configuration changed;
// the service replaces it with a fresh worker on the next iteration. It only
// signals, it never writes worker fields: the pool may be running Execute
// concurrently.
func (w *PlanWorker) UpdateConfig(root *config.Root, b *config.Bundle, sources []*config.Source) {
	if b == nil || !w.bundleConfig.Equal(b) || !w.sourceConfigs.Equal(sources) ||
		!w.root.Locations.Equal(root.Locations) {
		w.changeConfiguration()
	}
}

// Execute runs one plan build iteration: resolve every variant of the bundle
// and hand each plan to the bundler.
func (w *PlanWorker) Execute(ctx context.Context) time.Time {
	startTime := time.Now() // Used for timing metric

	defer w.bar.Add(1)

	// A configuration change retires this worker; the pool drops it once it
	// returns a zero deadline.
	if w.configurationChanged() {
		return w.die()
	}

	variants, err := w.bundleConfig.Variants()
	if err != nil {
		w.log.Warnf("invalid variants for bundle %q: %v", w.bundleConfig.Name, err)
		return w.report(BuildStateInternalError, startTime, err)
	}

	for _, v := range variants {
		plan, err := ComputePlan(w.root, w.bundleConfig, v, w.registry)
		if err != nil {
			w.log.Warnf("failed to resolve %v for bundle %q: %v", v, w.bundleConfig.Name, err)
			return w.report(BuildStateScanFailed, startTime, err)
		}

		if err := w.bundler.Bundle(ctx, plan); err != nil {
			w.log.Warnf("failed to bundle %v for bundle %q: %v", v, w.bundleConfig.Name, err)
			return w.report(BuildStateBundleFailed, startTime, err)
		}
	}

	if w.registry != nil {
		if err := w.registry.Flush(); err != nil {
			w.log.Warnf("failed to flush error code registry for bundle %q: %v", w.bundleConfig.Name, err)
			return w.report(BuildStateInternalError, startTime, err)
		}
	}

	w.log.Debugf("Bundle %q plans built.", w.bundleConfig.Name)
	return w.report(BuildStateSuccess, startTime, nil)
}

func (w *PlanWorker) report(state BuildState, startTime time.Time, err error) time.Time {
	interval := w.interval
	w.status.State = state
	if err != nil {
		interval = errorInterval // faster retry on error
		w.status.Message = err.Error()
	} else {
		w.status.Message = ""
	}

	if state == BuildStateSuccess {
		metrics.PlanBuildSucceeded(w.bundleConfig.Name, startTime)
	} else {
		metrics.PlanBuildFailed(w.bundleConfig.Name, state.String())
	}

	if w.singleShot {
		return w.die()
	}

	return time.Now().Add(interval)
}

func (w *PlanWorker) changeConfiguration() {
	select {
	case <-w.changed:
	default:
		close(w.changed)
	}
}

func (w *PlanWorker) configurationChanged() bool {
	select {
	case <-w.changed:
		return true
	default:
		return false
	}
}

func (w *PlanWorker) die() time.Time {
	close(w.done)

	var zero time.Time
	return zero
}
