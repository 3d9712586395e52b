// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/buzzstream/internal/api"
	"github.com/tomtom215/buzzstream/internal/config"
	"github.com/tomtom215/buzzstream/internal/detection"
	"github.com/tomtom215/buzzstream/internal/eventbus"
	"github.com/tomtom215/buzzstream/internal/generator"
	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/store"
	"github.com/tomtom215/buzzstream/internal/stream"
	"github.com/tomtom215/buzzstream/internal/supervisor"
	"github.com/tomtom215/buzzstream/internal/supervisor/services"
	"github.com/tomtom215/buzzstream/internal/trending"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Int("max_clients", cfg.Stream.MaxClients).
		Int("tweets_per_second", cfg.Stream.TweetsPerSecond).
		Int("backpressure_threshold", cfg.Stream.BackpressureThreshold).
		Msg("Starting Buzzstream with supervisor tree")

	tweetStore, err := store.Open(store.Config{
		Path:       cfg.Store.Path,
		TweetTTL:   cfg.Store.TweetTTL,
		GCInterval: cfg.Store.GCInterval,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open tweet store")
	}
	defer func() {
		if err := tweetStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing tweet store")
		}
	}()

	bus, err := eventbus.Open(eventbus.Config{
		NATSEnabled:  cfg.Bus.NATSEnabled,
		URL:          cfg.Bus.URL,
		Embedded:     cfg.Bus.Embedded,
		EmbeddedHost: cfg.Bus.EmbeddedHost,
		EmbeddedPort: cfg.Bus.EmbeddedPort,
		QueueGroup:   cfg.Bus.QueueGroup,
		PublishTopic: cfg.Bus.PublishTopic,
		IngestTopic:  cfg.Bus.IngestTopic,
		Source:       cfg.Bus.Source,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	tracker := trending.NewTracker(trending.Config{
		WindowSize:     cfg.Trending.WindowSize,
		WindowTTL:      cfg.Trending.WindowTTL,
		MinClusterSize: cfg.Trending.MinClusterSize,
	})

	queue := stream.NewQueue(cfg.Stream.BackpressureThreshold)
	registry := stream.NewRegistry()
	dispatcher := stream.NewDispatcher(queue, registry, stream.DispatcherConfig{
		Interval:     cfg.Stream.DispatchInterval,
		MaxBatchSize: cfg.Stream.MaxBatchSize,
		WriteTimeout: cfg.Stream.WriteTimeout,
	})
	sweeper := stream.NewSweeper(registry, cfg.Stream.SweepInterval, cfg.Stream.StaleWindow)

	opts := []stream.ServiceOption{
		stream.WithClassifier(detection.Heuristic{}),
		stream.WithRecorders(tweetStore, tracker, eventbus.NewMirror(bus.Publisher, cfg.Bus.PublishTopic, cfg.Bus.Source)),
		stream.WithTrending(tracker),
		stream.WithLatencySource(dispatcher),
	}
	var gen *generator.Generator
	if cfg.Generator.Enabled {
		gen = generator.New(generator.WithBuzzerRate(cfg.Generator.BuzzerRate))
		opts = append(opts, stream.WithGenerator(gen))
		logging.Info().Float64("buzzer_rate", cfg.Generator.BuzzerRate).Msg("Mock tweet generator enabled")
	} else {
		logging.Info().Msg("Mock tweet generator disabled, tweets arrive through the bus only")
	}

	producer := stream.NewService(queue, registry, stream.ServiceConfig{
		EventsPerSecond:  cfg.Stream.TweetsPerSecond,
		MetricsInterval:  cfg.Stream.MetricsInterval,
		TrendingInterval: cfg.Trending.Interval,
		TrendingTopN:     cfg.Trending.TopN,
		ActiveWindow:     cfg.Stream.ActiveWindow,
	}, opts...)

	deps := api.Deps{
		Service:  producer,
		Registry: registry,
		Store:    tweetStore,
		Trending: tracker,
	}
	// Interface fields stay untyped nil when a component is off.
	if gen != nil {
		deps.Buzzers = gen
	}
	if cfg.AI.Enabled {
		deps.Detector = detection.NewClient(detection.ClientConfig{
			BaseURL:        cfg.AI.URL,
			Timeout:        cfg.AI.Timeout,
			BreakerTimeout: cfg.AI.BreakerTimeout,
		})
		logging.Info().Str("url", cfg.AI.URL).Msg("AI detection service enabled")
	}

	router := api.NewRouter(api.Config{
		Version:           version,
		MaxSubscribers:    cfg.Stream.MaxClients,
		KeepaliveInterval: cfg.Stream.KeepaliveInterval,
		WriteTimeout:      cfg.Stream.WriteTimeout,
		TrendingTopN:      cfg.Trending.TopN,
		TrendingCacheTTL:  cfg.Trending.CacheTTL,
		CORSOrigins:       cfg.Security.CORSOrigins,
		RateLimitRequests: cfg.Security.RateLimitReqs,
		RateLimitWindow:   cfg.Security.RateLimitWindow,
		RateLimitDisabled: cfg.Security.RateLimitDisabled,
	}, deps)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}
	if cfg.IsProduction() && len(cfg.Security.CORSOrigins) == 1 && cfg.Security.CORSOrigins[0] == "*" {
		logging.Warn().Msg("CORS allows any origin in production, set CORS_ORIGINS to restrict it")
	}

	// No WriteTimeout: stream responses are long-lived and bound each write instead.
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(tweetStore)
	tree.AddDataService(router.TrendingCache())

	tree.AddMessagingService(dispatcher)
	tree.AddMessagingService(sweeper)
	tree.AddMessagingService(eventbus.NewIngestor(bus.Subscriber, cfg.Bus.IngestTopic, producer))
	tree.AddMessagingService(services.NewProducerService(producer, cfg.Stream.AutoStart))

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().
		Str("addr", server.Addr).
		Str("bus_backend", bus.Backend).
		Bool("store_in_memory", tweetStore.InMemory()).
		Bool("auto_start", cfg.Stream.AutoStart).
		Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
		cancel()
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Unstopped service")
		}
	}

	logging.Info().Msg("Server stopped")
}
