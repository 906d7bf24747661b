package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/mineguard/api/fleetapi"
	"github.com/kilianp07/mineguard/config"
	"github.com/kilianp07/mineguard/core/fleet"
	coremetrics "github.com/kilianp07/mineguard/core/metrics"
	"github.com/kilianp07/mineguard/infra/ingest"
	"github.com/kilianp07/mineguard/infra/logger"
	"github.com/kilianp07/mineguard/infra/metrics"
	"github.com/kilianp07/mineguard/infra/mqtt"
	"github.com/kilianp07/mineguard/internal/eventbus"
)

// Service wires the fleet store to the ingest listener, the read API,
// the metrics sinks and the optional MQTT publisher.
type Service struct {
	Store *fleet.Store

	cfg       *config.Config
	bus       *eventbus.Bus[fleet.Event]
	sink      coremetrics.MetricsSink
	collector prometheus.Collector
	ingest    *ingest.Server
	api       http.Handler
	apiLog    logger.Logger
	publisher *mqtt.AlertPublisher
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	bus := eventbus.New[fleet.Event]()
	store := fleet.NewStore(
		fleet.WithOfflineAfter(cfg.Fleet.OfflineAfter()),
		fleet.WithEvents(bus),
	)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	collector := metrics.NewFleetCollector(store, metrics.WithEventDrops(bus.Dropped))
	if err := prometheus.Register(collector); err != nil {
		closeSink(sink)
		bus.Close()
		return nil, fmt.Errorf("register fleet collector: %w", err)
	}

	svc := &Service{
		Store:     store,
		cfg:       cfg,
		bus:       bus,
		sink:      sink,
		collector: collector,
		log:       log,
	}
	svc.ingest = ingest.NewServer(cfg.Ingest.Address, store,
		ingest.WithLogger(logger.New("ingest")),
		ingest.WithMetrics(sink),
		ingest.WithIdleTimeout(cfg.Ingest.IdleTimeout()),
	)
	svc.apiLog = logger.New("api")
	svc.api = fleetapi.Handler(store, fleetapi.Options{
		StaticDir: cfg.API.StaticDir,
		Logger:    svc.apiLog,
	})

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewAlertPublisher(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Handler returns the read API handler.
func (s *Service) Handler() http.Handler { return s.api }

// IngestAddr returns the bound producer address once Run is listening.
func (s *Service) IngestAddr() net.Addr { return s.ingest.Addr() }

// Run starts every component and blocks until ctx is canceled or one of
// them fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	done := metrics.StartEventCollector(ctx, s.bus, s.sink)

	g.Go(func() error { return s.ingest.Serve(ctx) })
	if !s.cfg.API.Disabled {
		g.Go(func() error {
			return fleetapi.Serve(ctx, s.cfg.API.Address, s.api, s.apiLog)
		})
	} else {
		s.log.Infof("read api disabled")
	}
	if addr := s.cfg.Metrics.PrometheusAddress; addr != "" {
		g.Go(func() error { return metrics.StartPromServer(ctx, addr, prometheus.DefaultGatherer) })
	}
	if s.publisher != nil {
		g.Go(func() error { return s.publisher.Run(ctx, s.bus) })
	}

	err := g.Wait()
	<-done
	if err != nil {
		s.log.Errorf("service stopped: %v", err)
	}
	return err
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	prometheus.Unregister(s.collector)
	s.bus.Close()
	return closeSink(s.sink)
}

func closeSink(sink coremetrics.MetricsSink) error {
	c, ok := sink.(interface{ Close() error })
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("close metrics sinks: %w", err)
	}
	return nil
}
