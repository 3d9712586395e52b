// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package models

import "time"

// Detection is the result of classifying one tweet as buzzer activity.
// It is the payload of alert events.
type Detection struct {
	TweetID     string    `json:"tweet_id"`
	BuzzerScore float64   `json:"buzzer_score"`
	IsBuzzer    bool      `json:"is_buzzer"`
	Reasons     []string  `json:"reasons"`
	ClusterID   *string   `json:"cluster_id"` // Always encoded, null when unclustered
	Confidence  float64   `json:"confidence"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// Sentiment is the coarse polarity of a trending topic.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// TrendingTopic is one hashtag cluster found in the recent tweet window.
type TrendingTopic struct {
	Topic            string    `json:"topic"`
	TweetCount       int       `json:"tweet_count"`
	BuzzerPercentage float64   `json:"buzzer_percentage"` // 0-100
	TopHashtags      []string  `json:"top_hashtags"`
	Sentiment        Sentiment `json:"sentiment"`
	SuspiciousScore  float64   `json:"suspicious_score"` // 0-1
}

// SystemMetrics is the payload of periodic metrics events.
type SystemMetrics struct {
	TweetsPerSecond     float64 `json:"tweets_per_second"`
	BuzzerDetectionRate float64 `json:"buzzer_detection_rate"`
	ActiveClients       int     `json:"active_clients"`
	QueueSize           int     `json:"queue_size"`
	AvgLatencyMs        float64 `json:"avg_latency_ms"`
}

// HashtagCount is a stored hashtag occurrence counter.
type HashtagCount struct {
	Hashtag string `json:"hashtag"`
	Count   uint64 `json:"count"`
}
