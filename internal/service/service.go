package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/bundle-tools/bundle-control-plane/internal/bundler"
	"github.com/bundle-tools/bundle-control-plane/internal/config"
	"github.com/bundle-tools/bundle-control-plane/internal/errcodes"
	"github.com/bundle-tools/bundle-control-plane/internal/logging"
	"github.com/bundle-tools/bundle-control-plane/internal/pool"
	"github.com/bundle-tools/bundle-control-plane/internal/progress"
)

const (
	defaultWorkers    = 4
	reconcileInterval = 10 * time.Second
)

// Service runs a plan worker per configured bundle. In single shot mode it
// builds every bundle's plans once and returns; otherwise it keeps workers
// scheduled on their rebuild intervals and reconciles them against the
// configuration files as those change.
type Service struct {
	configFiles []string
	bundler     bundler.Bundler
	log         *logging.Logger
	singleShot  bool
	quiet       bool
	workers     map[string]*PlanWorker
}

func New() *Service {
	return &Service{
		log:     logging.NewDefault(),
		workers: map[string]*PlanWorker{},
	}
}

func (s *Service) WithConfigFiles(files []string) *Service {
	s.configFiles = files
	return s
}

func (s *Service) WithBundler(b bundler.Bundler) *Service {
	s.bundler = b
	return s
}

func (s *Service) WithLogger(log *logging.Logger) *Service {
	s.log = log
	return s
}

func (s *Service) WithSingleShot(singleShot bool) *Service {
	s.singleShot = singleShot
	return s
}

func (s *Service) WithQuiet(quiet bool) *Service {
	s.quiet = quiet
	return s
}

func (s *Service) Run(ctx context.Context) error {
	root, err := config.Load(s.configFiles)
	if err != nil {
		return err
	}

	var registry *errcodes.Registry
	if root.ErrorCodes != nil && root.ErrorCodes.Extract {
		registry, err = errcodes.Open(root.ErrorCodes.Registry)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	if root.Service != nil && root.Service.MetricsAddr != "" {
		srv := &http.Server{Addr: root.Service.MetricsAddr, Handler: promhttp.Handler()}
		group.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
	}

	workers := defaultWorkers
	if root.Service != nil && root.Service.Workers > 0 {
		workers = root.Service.Workers
	}

	bar := progress.New(len(root.Bundles), "Building bundle plans", s.quiet)
	p := pool.New(ctx, workers)

	s.launch(p, root, registry, bar)

	group.Go(func() error {
		defer cancel()
		if s.singleShot {
			return s.waitForWorkers(ctx)
		}
		return s.reconcile(ctx, p, registry, bar)
	})

	return group.Wait()
}

func (s *Service) launch(p *pool.Pool, root *config.Root, registry *errcodes.Registry, bar *progress.Bar) {
	for _, b := range root.SortedBundles() {
		if _, ok := s.workers[b.Name]; ok {
			continue
		}

		srcs, err := root.BundleSources(b)
		if err != nil {
			s.log.Errorf("skipping bundle %q: %v", b.Name, err)
			continue
		}

		w := NewPlanWorker(root, b, srcs, s.log.WithName(b.Name), bar).
			WithBundler(s.bundler).
			WithRegistry(registry).
			WithSingleShot(s.singleShot).
			WithInterval(b.Interval)

		s.workers[b.Name] = w
		p.Add(b.Name, w.Execute)
	}
}

// waitForWorkers blocks until every single shot worker retired.
func (s *Service) waitForWorkers(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		done := true
		for name, w := range s.workers {
			if !w.Done() {
				done = false
				continue
			}
			if st := w.Status(); st.State != BuildStateSuccess {
				return errors.New("bundle " + name + ": " + st.Message)
			}
		}
		if done {
			return nil
		}
	}
}

// reconcile reloads the configuration periodically, retiring workers whose
// bundle changed and launching replacements from the fresh configuration.
func (s *Service) reconcile(ctx context.Context, p *pool.Pool, registry *errcodes.Registry, bar *progress.Bar) error {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		root, err := config.Load(s.configFiles)
		if err != nil {
			s.log.Warnf("failed to reload configuration: %v", err)
			continue
		}

		for name, w := range s.workers {
			if w.Done() {
				delete(s.workers, name)
				continue
			}
			b := root.Bundles[name]
			var srcs config.Sources
			if b != nil {
				srcs, _ = root.BundleSources(b)
			}
			w.UpdateConfig(root, b, srcs)
		}

		s.launch(p, root, registry, bar)
	}
}
