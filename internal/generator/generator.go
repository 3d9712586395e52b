// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package generator produces synthetic Indonesian political tweets for the
// stream producer. A configurable share of tweets comes from a fixed pool
// of buzzer accounts with coordinated-campaign characteristics: young
// accounts, following far more than followed, and hashtag-heavy text.
package generator

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/tomtom215/buzzstream/internal/models"
)

const (
	// DefaultBuzzerRate is the probability a tweet comes from a buzzer account.
	DefaultBuzzerRate = 0.3

	buzzerAccountCount = 20
	buzzerMaxAgeDays   = 90
	normalMaxAgeDays   = 365 * 3
	day                = 24 * time.Hour
)

type buzzerAccount struct {
	author    models.Author
	postCount int
}

// Generator produces tweets. It is safe for concurrent use.
type Generator struct {
	mu         sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
	buzzerRate float64
	counter    uint64
	buzzers    []*buzzerAccount
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source. Tests pass a seeded source for
// reproducible output.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithBuzzerRate sets the buzzer share in [0,1]. Out of range values are clamped.
func WithBuzzerRate(rate float64) Option {
	return func(g *Generator) {
		g.buzzerRate = clamp(rate, 0, 1)
	}
}

// New creates a generator and its pool of buzzer accounts.
func New(opts ...Option) *Generator {
	g := &Generator{
		//nolint:gosec // G404: synthetic data does not need a cryptographic source
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
		buzzerRate: DefaultBuzzerRate,
	}
	for _, opt := range opts {
		opt(g)
	}

	now := g.now()
	g.buzzers = make([]*buzzerAccount, 0, buzzerAccountCount)
	for i := 0; i < buzzerAccountCount; i++ {
		username := buzzerPrefixes[i%len(buzzerPrefixes)] + g.randomID()
		g.buzzers = append(g.buzzers, &buzzerAccount{
			author: models.Author{
				ID:          g.randomID(),
				Username:    username,
				DisplayName: strings.ToUpper(strings.Replace(username, "_", " ", 1)),
				Followers:   g.intRange(800, 2000),
				Following:   g.intRange(1800, 3500),
				Verified:    false,
				CreatedAt:   g.recentDate(now, buzzerMaxAgeDays),
			},
		})
	}
	return g
}

// Generate returns the next tweet. A tweet comes from a buzzer account
// with the configured probability.
func (g *Generator) Generate() models.Tweet {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generate(g.rng.Float64() < g.buzzerRate)
}

// GenerateBuzzer returns a tweet that always comes from a buzzer account.
func (g *Generator) GenerateBuzzer() models.Tweet {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generate(true)
}

// generate must be called with mu held.
func (g *Generator) generate(isBuzzer bool) models.Tweet {
	now := g.now()
	tp := topics[g.rng.Intn(len(topics))]

	var author models.Author
	if isBuzzer {
		acc := g.buzzers[g.rng.Intn(len(g.buzzers))]
		acc.postCount++
		author = acc.author
	} else {
		u := normalUsers[g.rng.Intn(len(normalUsers))]
		author = models.Author{
			ID:          g.randomID(),
			Username:    u.username,
			DisplayName: u.name,
			Followers:   u.followers,
			Following:   u.following,
			Verified:    g.rng.Float64() > 0.9,
			CreatedAt:   g.recentDate(now, normalMaxAgeDays),
		}
	}

	text := g.text(tp, isBuzzer)
	hashtags := g.selectHashtags(tp.hashtags, isBuzzer)

	urls := []string{}
	if g.rng.Float64() > 0.7 {
		urls = []string{articleURL}
	}

	id := strconv.FormatInt(now.UnixMilli(), 10) + "_" + strconv.FormatUint(g.counter, 10)
	g.counter++

	return models.Tweet{
		ID:        id,
		Text:      text + " " + strings.Join(lo.Map(hashtags, func(h string, _ int) string { return "#" + h }), " "),
		Author:    author,
		CreatedAt: now,
		Metrics:   g.metrics(isBuzzer),
		Entities: models.Entities{
			Hashtags: hashtags,
			Mentions: []string{},
			URLs:     urls,
		},
	}
}

func (g *Generator) text(tp topic, isBuzzer bool) string {
	keyword := tp.keywords[g.rng.Intn(len(tp.keywords))]
	if isBuzzer {
		prefix := buzzerPhrases[g.rng.Intn(len(buzzerPhrases))]
		emoji := buzzerEmojis[g.rng.Intn(len(buzzerEmojis))]
		return buzzerTemplates[g.rng.Intn(len(buzzerTemplates))](prefix, keyword, emoji)
	}
	return normalTemplates[g.rng.Intn(len(normalTemplates))](keyword)
}

// selectHashtags takes a leading slice of the topic hashtags: 3 to 5
// (capped by the topic) for buzzers, 1 or 2 otherwise.
func (g *Generator) selectHashtags(hashtags []string, isBuzzer bool) []string {
	var count int
	if isBuzzer {
		count = g.intRange(3, min(5, len(hashtags)))
	} else {
		count = g.intRange(1, 2)
	}
	count = min(count, len(hashtags))
	return append([]string(nil), hashtags[:count]...)
}

func (g *Generator) metrics(isBuzzer bool) models.TweetMetrics {
	if isBuzzer {
		return models.TweetMetrics{
			Likes:    g.intRange(10, 150),
			Retweets: g.intRange(20, 300),
			Replies:  g.intRange(0, 50),
			Views:    g.intRange(500, 5000),
		}
	}
	return models.TweetMetrics{
		Likes:    g.intRange(1, 50),
		Retweets: g.intRange(2, 80),
		Replies:  g.intRange(0, 20),
		Views:    g.intRange(100, 1000),
	}
}

// BuzzerAccountStats returns post counts and account ages for every buzzer account.
func (g *Generator) BuzzerAccountStats() []models.BuzzerAccountStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	return lo.Map(g.buzzers, func(acc *buzzerAccount, _ int) models.BuzzerAccountStats {
		return models.BuzzerAccountStats{
			Username:      acc.author.Username,
			PostCount:     acc.postCount,
			AccountAgeDay: int(acc.author.AccountAge(now) / day),
		}
	})
}

// intRange returns a uniform int in [minV, maxV].
func (g *Generator) intRange(minV, maxV int) int {
	if maxV <= minV {
		return minV
	}
	return minV + g.rng.Intn(maxV-minV+1)
}

func (g *Generator) randomID() string {
	return strconv.FormatInt(g.rng.Int63(), 36)
}

func (g *Generator) recentDate(now time.Time, maxDaysAgo int) time.Time {
	return now.Add(-time.Duration(g.intRange(0, maxDaysAgo)) * day)
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
