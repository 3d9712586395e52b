// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package trending

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/tomtom215/buzzstream/internal/detection"
	"github.com/tomtom215/buzzstream/internal/models"
)

// DefaultMinClusterSize is the smallest hashtag group reported as a topic.
const DefaultMinClusterSize = 5

const (
	topHashtagLimit  = 5
	sentimentFactor  = 1.5
	clusterGap       = 5 * time.Minute
	maxBuzzerWeight  = 0.5
	diversityWeight  = 0.25
	clusteringWeight = 0.25
)

var positiveWords = []string{
	"bagus", "hebat", "sukses", "berhasil", "mantap",
	"luar biasa", "positif", "setuju", "mendukung",
}

var negativeWords = []string{
	"gagal", "buruk", "salah", "korupsi", "hoax",
	"bohong", "negatif", "tolak", "menolak", "protes",
}

// Analyze groups tweets by primary hashtag and scores every group with at
// least minClusterSize tweets. Topics are ordered by tweet count, largest
// first, then by name.
func Analyze(tweets []models.Tweet, minClusterSize int, now time.Time) []models.TrendingTopic {
	if minClusterSize < 1 {
		minClusterSize = 1
	}

	var order []string
	groups := make(map[string][]models.Tweet)
	for i := range tweets {
		if len(tweets[i].Entities.Hashtags) == 0 {
			continue
		}
		primary := tweets[i].Entities.Hashtags[0]
		if _, ok := groups[primary]; !ok {
			order = append(order, primary)
		}
		groups[primary] = append(groups[primary], tweets[i])
	}

	topics := make([]models.TrendingTopic, 0, len(order))
	for _, tag := range order {
		group := groups[tag]
		if len(group) < minClusterSize {
			continue
		}

		buzzers := lo.CountBy(group, func(t models.Tweet) bool {
			return detection.QuickCheck(t, now)
		})
		buzzerPct := float64(buzzers) / float64(len(group)) * 100

		topics = append(topics, models.TrendingTopic{
			Topic:            tag,
			TweetCount:       len(group),
			BuzzerPercentage: round(buzzerPct, 2),
			TopHashtags:      topHashtags(group, topHashtagLimit),
			Sentiment:        sentiment(group),
			SuspiciousScore:  round(suspiciousScore(group, buzzerPct), 3),
		})
	}

	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].TweetCount != topics[j].TweetCount {
			return topics[i].TweetCount > topics[j].TweetCount
		}
		return topics[i].Topic < topics[j].Topic
	})
	return topics
}

// sentiment counts, per tweet, which keywords appear at least once.
func sentiment(group []models.Tweet) models.Sentiment {
	positive, negative := 0, 0
	for i := range group {
		text := strings.ToLower(group[i].Text)
		positive += lo.CountBy(positiveWords, func(w string) bool { return strings.Contains(text, w) })
		negative += lo.CountBy(negativeWords, func(w string) bool { return strings.Contains(text, w) })
	}

	switch {
	case float64(positive) > float64(negative)*sentimentFactor:
		return models.SentimentPositive
	case float64(negative) > float64(positive)*sentimentFactor:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// suspiciousScore combines buzzer share, author concentration, and timing
// into a score in [0,1].
func suspiciousScore(group []models.Tweet, buzzerPct float64) float64 {
	score := math.Min(buzzerPct/100, maxBuzzerWeight)

	authors := lo.UniqBy(group, func(t models.Tweet) string { return t.Author.Username })
	diversity := float64(len(authors)) / float64(len(group))
	score += (1 - diversity) * diversityWeight

	score += timeClustering(group) * clusteringWeight
	return math.Min(score, 1)
}

// timeClustering is the share of consecutive gaps shorter than five minutes.
func timeClustering(group []models.Tweet) float64 {
	if len(group) < 3 {
		return 0
	}
	stamps := lo.Map(group, func(t models.Tweet, _ int) time.Time { return t.CreatedAt })
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	short := 0
	for i := 1; i < len(stamps); i++ {
		if stamps[i].Sub(stamps[i-1]) < clusterGap {
			short++
		}
	}
	return float64(short) / float64(len(stamps)-1)
}

// topHashtags returns the most used hashtags. Ties keep first-seen order.
func topHashtags(group []models.Tweet, limit int) []string {
	all := lo.FlatMap(group, func(t models.Tweet, _ int) []string { return t.Entities.Hashtags })
	counts := lo.CountValues(all)
	tags := lo.Uniq(all)
	sort.SliceStable(tags, func(i, j int) bool { return counts[tags[i]] > counts[tags[j]] })
	if len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
