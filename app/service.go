package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/bessim/api/runs"
	"github.com/kilianp07/bessim/app/plugins"
	"github.com/kilianp07/bessim/config"
	"github.com/kilianp07/bessim/core/battery"
	"github.com/kilianp07/bessim/core/events"
	coremetrics "github.com/kilianp07/bessim/core/metrics"
	"github.com/kilianp07/bessim/core/runlog"
	"github.com/kilianp07/bessim/core/runner"
	"github.com/kilianp07/bessim/core/sweep"
	"github.com/kilianp07/bessim/core/validation"
	"github.com/kilianp07/bessim/infra/logger"
	"github.com/kilianp07/bessim/infra/metrics"
	"github.com/kilianp07/bessim/infra/mqtt"
	"github.com/kilianp07/bessim/internal/eventbus"
	"github.com/kilianp07/bessim/pkg/export"
)

// Service wires configuration into an executor, a sweeper and the
// observability outputs.
type Service struct {
	Executor *runner.Executor
	Sweeper  *sweep.Sweeper

	cfg       *config.Config
	sink      coremetrics.MetricsSink
	runs      *eventbus.Bus[events.RunEvent]
	sweeps    *eventbus.Bus[events.SweepEvent]
	store     runlog.Store
	publisher mqtt.Publisher
	closer    func()
	log       logger.Logger
	promAddr  string
	done      []<-chan struct{}
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	opts := logger.Options{Level: cfg.Log.Level, Console: cfg.Log.Console}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := plugins.NewLogStore(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}

	svc := &Service{
		cfg:    cfg,
		sink:   sink,
		runs:   eventbus.New[events.RunEvent](eventbus.DefaultBuffer),
		sweeps: eventbus.New[events.SweepEvent](eventbus.DefaultBuffer),
		store:  store,
		log:    logger.NewWithOptions("service", opts),
	}
	if cfg.Metrics.Has("prometheus") {
		svc.promAddr = cfg.Metrics.PrometheusAddr
	}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.publisher = client
		svc.closer = client.Disconnect
	}

	svc.Executor = runner.NewExecutor(sink, svc.runs, logger.NewWithOptions("runner", opts))
	svc.Executor.SetLogStore(store)
	svc.Executor.SetTolerance(cfg.Simulation.Tolerance)
	svc.Sweeper = sweep.NewSweeper(svc.Executor, cfg.Sweep.Workers, svc.sweeps, logger.NewWithOptions("sweep", opts))
	return svc, nil
}

// SetPublisher replaces the run summary publisher. It must be called
// before Start.
func (s *Service) SetPublisher(p mqtt.Publisher) { s.publisher = p }

// Start launches the background forwarders and, when a Prometheus sink is
// configured, the metrics endpoint. They stop with ctx.
func (s *Service) Start(ctx context.Context) {
	s.done = append(s.done, metrics.StartSweepCollector(ctx, s.sweeps, s.sink))
	if s.publisher != nil {
		s.done = append(s.done, mqtt.Forward(ctx, s.runs, s.publisher, s.log))
	}
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Simulate executes the configured run and exports it when an output
// directory is set.
func (s *Service) Simulate(ctx context.Context) (*runner.Report, error) {
	strategy, err := s.cfg.Strategy.Build()
	if err != nil {
		return nil, err
	}
	series, err := s.cfg.Simulation.Solar(ctx)
	if err != nil {
		return nil, fmt.Errorf("solar input: %w", err)
	}
	b, err := battery.New(s.cfg.Battery)
	if err != nil {
		return nil, err
	}
	rep, err := s.Executor.Run(ctx, b, strategy, series, s.cfg.Simulation.DtHours)
	if err != nil {
		return nil, err
	}
	s.log.Infof("run %s %s on %s: efficiency %.2f%%, valid=%t",
		rep.RunID, rep.Strategy, rep.Battery, 100*rep.Validation.Efficiency, rep.Valid())
	if err := s.Export(rep); err != nil {
		return rep, err
	}
	return rep, nil
}

// Export writes the report to the configured output directory.
func (s *Service) Export(rep *runner.Report) error {
	dir := s.cfg.Simulation.OutputDir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	format := s.cfg.Simulation.Format
	if format == "csv" || format == "both" {
		if err := writeFile(filepath.Join(dir, rep.RunID+"_result.csv"), func(f *os.File) error {
			return export.WriteResultCSV(f, rep.Result)
		}); err != nil {
			return err
		}
	}
	if format == "json" || format == "both" {
		if err := writeFile(filepath.Join(dir, rep.RunID+"_report.json"), func(f *os.File) error {
			return export.WriteJSON(f, rep)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Size runs the configured sizing grid with the configured strategy.
func (s *Service) Size(ctx context.Context) ([]sweep.Outcome, error) {
	strategy, err := s.cfg.Strategy.Build()
	if err != nil {
		return nil, err
	}
	series, err := s.cfg.Simulation.Solar(ctx)
	if err != nil {
		return nil, fmt.Errorf("solar input: %w", err)
	}
	g := s.cfg.Sweep.Grid
	if len(g.PowersMW) == 0 || len(g.DurationsHours) == 0 {
		return nil, errors.New("sweep.grid needs at least one power and one duration")
	}
	return s.Sweeper.Sizing(ctx, g, strategy, series, s.cfg.Simulation.DtHours)
}

// MonteCarlo runs the configured battery and strategy on perturbed solar.
func (s *Service) MonteCarlo(ctx context.Context) (sweep.MonteCarloResult, error) {
	strategy, err := s.cfg.Strategy.Build()
	if err != nil {
		return sweep.MonteCarloResult{}, err
	}
	series, err := s.cfg.Simulation.Solar(ctx)
	if err != nil {
		return sweep.MonteCarloResult{}, fmt.Errorf("solar input: %w", err)
	}
	return s.Sweeper.MonteCarlo(ctx, s.cfg.Battery, strategy, series, s.cfg.Simulation.DtHours, s.cfg.Sweep.MonteCarlo)
}

// SuggestSizing sizes a battery that turns the solar series into a flat
// delivery of flatMW. A non-positive flatMW uses the mean solar power.
func (s *Service) SuggestSizing(ctx context.Context, flatMW float64) (validation.Sizing, error) {
	series, err := s.cfg.Simulation.Solar(ctx)
	if err != nil {
		return validation.Sizing{}, fmt.Errorf("solar input: %w", err)
	}
	if flatMW <= 0 && len(series) > 0 {
		flatMW = floats.Sum(series) / float64(len(series))
	}
	ref := make([]float64, len(series))
	for i := range ref {
		ref[i] = flatMW
	}
	return validation.SuggestSizing(series, ref, s.cfg.Simulation.DtHours, s.cfg.Battery.Technology)
}

// History returns run log records matching q.
func (s *Service) History(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	return s.store.Query(ctx, q)
}

// Handler serves the run log under /api/runs and Prometheus metrics under
// /metrics.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/runs", runs.NewHandler(s.store, s.cfg.API.Token))
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes Handler on the configured API address until ctx is
// canceled.
func (s *Service) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("serving run log on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service. Background forwarders
// are drained before the store is closed.
func (s *Service) Close() error {
	s.runs.Close()
	s.sweeps.Close()
	for _, d := range s.done {
		<-d
	}
	if s.closer != nil {
		s.closer()
	}
	return s.store.Close()
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
