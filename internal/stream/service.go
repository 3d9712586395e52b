// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package stream

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/metrics"
	"github.com/tomtom215/buzzstream/internal/models"
)

// Producer defaults.
const (
	DefaultEventsPerSecond  = 10
	DefaultMetricsInterval  = 5 * time.Second
	DefaultTrendingInterval = 30 * time.Second
	DefaultTrendingTopN     = 3
)

// Generator produces domain payloads for the producer loop.
type Generator interface {
	Generate() models.Tweet
}

// Classifier flags suspicious payloads. It must be cheap: it runs inline
// on every producer tick.
type Classifier interface {
	Classify(t models.Tweet, now time.Time) (models.Detection, bool)
}

// Recorder observes every produced payload (cache, counters, trending
// window, bus mirror). Errors are logged and never stall the producer.
type Recorder interface {
	RecordTweet(ctx context.Context, t models.Tweet) error
}

// TrendingSource supplies the topics published on each trending tick.
type TrendingSource interface {
	Top(n int) []models.TrendingTopic
}

// LatencySource reports the average subscriber write latency.
type LatencySource interface {
	AvgLatency() time.Duration
}

// ServiceConfig holds producer loop tuning.
type ServiceConfig struct {
	EventsPerSecond  int
	MetricsInterval  time.Duration
	TrendingInterval time.Duration
	TrendingTopN     int
	ActiveWindow     time.Duration
}

// DefaultServiceConfig returns the production producer settings.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		EventsPerSecond:  DefaultEventsPerSecond,
		MetricsInterval:  DefaultMetricsInterval,
		TrendingInterval: DefaultTrendingInterval,
		TrendingTopN:     DefaultTrendingTopN,
		ActiveWindow:     DefaultActiveWindow,
	}
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithGenerator sets the payload source. Without one only the metrics and
// trending loops run, and events arrive through Ingest.
func WithGenerator(g Generator) ServiceOption {
	return func(s *Service) { s.generator = g }
}

// WithClassifier sets the inline classifier used to raise alerts.
func WithClassifier(c Classifier) ServiceOption {
	return func(s *Service) { s.classifier = c }
}

// WithRecorders appends payload observers.
func WithRecorders(r ...Recorder) ServiceOption {
	return func(s *Service) { s.recorders = append(s.recorders, r...) }
}

// WithTrending sets the trending topic source.
func WithTrending(t TrendingSource) ServiceOption {
	return func(s *Service) { s.trending = t }
}

// WithLatencySource sets where avg_latency_ms is read from.
func WithLatencySource(l LatencySource) ServiceOption {
	return func(s *Service) { s.latency = l }
}

// WithServiceClock replaces time.Now. Used by tests.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// Service owns the producer, metrics, and trending loops that feed the queue.
// Start and Stop are idempotent and may be called from any goroutine.
type Service struct {
	queue    *Queue
	registry *Registry
	cfg      ServiceConfig

	generator  Generator
	classifier Classifier
	recorders  []Recorder
	trending   TrendingSource
	latency    LatencySource
	now        func() time.Time

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	running         atomic.Bool
	startedAt       atomic.Int64 // unix nanos
	stoppedAt       atomic.Int64 // unix nanos, 0 while running
	eventsPerSecond atomic.Int64

	produced    atomic.Uint64
	runProduced atomic.Uint64
	flagged     atomic.Uint64
}

// NewService creates a stopped service feeding queue.
func NewService(queue *Queue, registry *Registry, cfg ServiceConfig, opts ...ServiceOption) *Service {
	def := DefaultServiceConfig()
	if cfg.EventsPerSecond <= 0 {
		cfg.EventsPerSecond = def.EventsPerSecond
	}
	if cfg.MetricsInterval <= 0 {
		cfg.MetricsInterval = def.MetricsInterval
	}
	if cfg.TrendingInterval <= 0 {
		cfg.TrendingInterval = def.TrendingInterval
	}
	if cfg.TrendingTopN <= 0 {
		cfg.TrendingTopN = def.TrendingTopN
	}
	if cfg.ActiveWindow <= 0 {
		cfg.ActiveWindow = def.ActiveWindow
	}

	s := &Service{
		queue:    queue,
		registry: registry,
		cfg:      cfg,
		now:      time.Now,
	}
	s.eventsPerSecond.Store(int64(cfg.EventsPerSecond))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventsPerSecond changes the producer rate. It applies on the next Start.
func (s *Service) SetEventsPerSecond(n int) error {
	if n <= 0 {
		return fmt.Errorf("events per second must be positive, got %d", n)
	}
	s.eventsPerSecond.Store(int64(n))
	return nil
}

// EventsPerSecond returns the configured producer rate.
func (s *Service) EventsPerSecond() int {
	return int(s.eventsPerSecond.Load())
}

// Start launches the loops. It returns false if the service was already running.
func (s *Service) Start() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.running.Load() {
		logging.Warn().Msg("Stream already running")
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.startedAt.Store(s.now().UnixNano())
	s.stoppedAt.Store(0)
	s.runProduced.Store(0)
	s.running.Store(true)
	metrics.StreamRunning.Set(1)

	rate := s.EventsPerSecond()
	if s.generator != nil {
		s.spawn(ctx, time.Second/time.Duration(rate), s.produce)
	}
	s.spawn(ctx, s.cfg.MetricsInterval, s.publishMetrics)
	if s.trending != nil {
		s.spawn(ctx, s.cfg.TrendingInterval, s.publishTrending)
	}

	logging.Info().
		Int("events_per_second", rate).
		Bool("generator", s.generator != nil).
		Msg("Stream started")
	return true
}

// Stop cancels the loops and waits for them to exit. It returns false if
// the service was not running.
func (s *Service) Stop() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	s.wg.Wait()
	s.cancel = nil
	s.stoppedAt.Store(s.now().UnixNano())
	s.running.Store(false)
	metrics.StreamRunning.Set(0)

	logging.Info().Uint64("total_tweets", s.produced.Load()).Msg("Stream stopped")
	return true
}

// IsRunning reports whether the loops are active.
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

func (s *Service) spawn(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

func (s *Service) produce(ctx context.Context) {
	s.process(ctx, s.generator.Generate())
	metrics.StreamProducerTicks.Inc()
}

// Ingest feeds an externally sourced payload through the same
// record, enqueue, and classify path as the producer.
//
//nolint:gocritic // models.Tweet is passed by value across the producer
func (s *Service) Ingest(ctx context.Context, t models.Tweet) {
	s.process(ctx, t)
}

//nolint:gocritic // models.Tweet is passed by value across the producer
func (s *Service) process(ctx context.Context, t models.Tweet) {
	now := s.now()
	s.produced.Add(1)
	s.runProduced.Add(1)

	for _, r := range s.recorders {
		if err := r.RecordTweet(ctx, t); err != nil {
			logging.Warn().Err(err).Str("tweet_id", t.ID).Msgf("Recorder %T failed", r)
		}
	}

	s.queue.Enqueue(NewDomainEvent(t, now))

	if s.classifier == nil {
		return
	}
	if detection, flagged := s.classifier.Classify(t, now); flagged {
		s.flagged.Add(1)
		metrics.StreamAlertsRaised.Inc()
		s.queue.Enqueue(NewAlertEvent(detection, now))
	}
}

func (s *Service) publishMetrics(_ context.Context) {
	s.queue.Enqueue(NewMetricsEvent(s.SystemMetrics(), s.now()))
}

func (s *Service) publishTrending(_ context.Context) {
	now := s.now()
	for _, topic := range s.trending.Top(s.cfg.TrendingTopN) {
		s.queue.Enqueue(NewTrendingEvent(topic, now))
	}
}

// SystemMetrics returns the payload of a metrics event.
func (s *Service) SystemMetrics() models.SystemMetrics {
	now := s.now()
	m := models.SystemMetrics{
		TweetsPerSecond:     s.tweetsPerSecond(now),
		BuzzerDetectionRate: s.detectionRate(),
		ActiveClients:       s.registry.ActiveCount(s.cfg.ActiveWindow, now),
		QueueSize:           s.queue.Size(),
	}
	if s.latency != nil {
		m.AvgLatencyMs = round(float64(s.latency.AvgLatency())/float64(time.Millisecond), 2)
	}
	return m
}

// Status returns a read-only view of the producer and the backpressure layer.
func (s *Service) Status() Status {
	now := s.now()
	return Status{
		IsRunning:           s.running.Load(),
		TotalTweets:         s.produced.Load(),
		TotalAlerts:         s.flagged.Load(),
		RuntimeSeconds:      int64(s.runtime(now).Seconds()),
		TweetsPerSecond:     s.tweetsPerSecond(now),
		ConfiguredRate:      s.EventsPerSecond(),
		BackpressureMetrics: Snapshot(s.queue, s.registry, s.cfg.ActiveWindow, now),
	}
}

// runtime is the length of the current run, or of the last run once stopped.
func (s *Service) runtime(now time.Time) time.Duration {
	started := s.startedAt.Load()
	if started == 0 {
		return 0
	}
	end := now.UnixNano()
	if stopped := s.stoppedAt.Load(); stopped != 0 {
		end = stopped
	}
	return time.Duration(end - started)
}

func (s *Service) tweetsPerSecond(now time.Time) float64 {
	elapsed := s.runtime(now).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return round(float64(s.runProduced.Load())/elapsed, 2)
}

func (s *Service) detectionRate() float64 {
	produced := s.produced.Load()
	if produced == 0 {
		return 0
	}
	return round(float64(s.flagged.Load())/float64(produced), 4)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
