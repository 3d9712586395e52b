// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/models"
	"github.com/tomtom215/buzzstream/internal/store"
	"github.com/tomtom215/buzzstream/internal/stream"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
	os.Exit(m.Run())
}

type fakeService struct {
	mu      sync.Mutex
	running bool
	rate    int
	starts  int
}

func (f *fakeService) Start() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.running {
		return false
	}
	f.running = true
	return true
}

func (f *fakeService) Stop() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.running
	f.running = false
	return was
}

func (f *fakeService) SetEventsPerSecond(n int) error {
	if n < 1 || n > 1000 {
		return errors.New("events_per_second out of range")
	}
	f.mu.Lock()
	f.rate = n
	f.mu.Unlock()
	return nil
}

func (f *fakeService) Status() stream.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return stream.Status{IsRunning: f.running, ConfiguredRate: f.rate}
}

type fakeStore struct {
	tweets   map[string]models.Tweet
	hashtags []models.HashtagCount
	err      error
	limits   []int
}

func (f *fakeStore) Tweet(_ context.Context, id string) (models.Tweet, error) {
	if f.err != nil {
		return models.Tweet{}, f.err
	}
	t, ok := f.tweets[id]
	if !ok {
		return models.Tweet{}, store.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) TopHashtags(_ context.Context, limit int) ([]models.HashtagCount, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.hashtags) {
		return f.hashtags[:limit], nil
	}
	return f.hashtags, nil
}

type fakeDetector struct {
	verdict models.Detection
	err     error
	calls   int
}

func (f *fakeDetector) Detect(_ context.Context, t models.Tweet) (models.Detection, error) {
	f.calls++
	v := f.verdict
	v.TweetID = t.ID
	return v, f.err
}

type fakeTrending struct {
	mu     sync.Mutex
	topics []models.TrendingTopic
	calls  int
}

func (f *fakeTrending) Top(n int) []models.TrendingTopic {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if n < len(f.topics) {
		return f.topics[:n]
	}
	return f.topics
}

type fakeBuzzers struct{}

func (fakeBuzzers) BuzzerAccountStats() []models.BuzzerAccountStats {
	return []models.BuzzerAccountStats{{Username: "politikupdate_x", PostCount: 3, AccountAgeDay: 12}}
}

// nopTransport satisfies stream.Transport for registry fixtures.
type nopTransport struct{}

func (nopTransport) Write(context.Context, []byte) error { return nil }
func (nopTransport) Close() error                        { return nil }
func (nopTransport) Kind() string                        { return "sse" }

type testEnv struct {
	cfg      Config
	service  *fakeService
	registry *stream.Registry
	store    *fakeStore
	detector *fakeDetector
	trending *fakeTrending
	handler  http.Handler
}

// newTestEnv builds a router over fakes. mutate may adjust the config and
// deps before the router is built.
func newTestEnv(t *testing.T, mutate func(*Config, *Deps)) *testEnv {
	t.Helper()

	env := &testEnv{
		cfg:      DefaultConfig(),
		service:  &fakeService{rate: 10},
		registry: stream.NewRegistry(),
		store: &fakeStore{
			tweets: map[string]models.Tweet{
				"t1": {ID: "t1", Text: "Subsidi BBM #SubsidiBBM", Entities: models.Entities{Hashtags: []string{"SubsidiBBM"}}},
			},
			hashtags: []models.HashtagCount{
				{Hashtag: "SubsidiBBM", Count: 9},
				{Hashtag: "KPK", Count: 4},
				{Hashtag: "IKN", Count: 1},
			},
		},
		detector: &fakeDetector{verdict: models.Detection{BuzzerScore: 0.8, IsBuzzer: true, Confidence: 0.9}},
		trending: &fakeTrending{topics: []models.TrendingTopic{
			{Topic: "SubsidiBBM", TweetCount: 12},
			{Topic: "KPK", TweetCount: 7},
			{Topic: "IKN", TweetCount: 5},
			{Topic: "Pilpres2024", TweetCount: 5},
		}},
	}
	env.cfg.KeepaliveInterval = time.Hour
	env.cfg.WriteTimeout = time.Second
	env.cfg.RateLimitDisabled = true

	deps := Deps{
		Service:  env.service,
		Registry: env.registry,
		Store:    env.store,
		Detector: env.detector,
		Trending: env.trending,
		Buzzers:  fakeBuzzers{},
	}
	if mutate != nil {
		mutate(&env.cfg, &deps)
	}
	env.handler = NewRouter(env.cfg, deps).Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// testResponse mirrors Response with Data left raw for per-test decoding.
type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Status  *stream.Status  `json:"status"`
	Error   *APIError       `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func decodeData(t *testing.T, resp testResponse, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", resp.Data, err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
