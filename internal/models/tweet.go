// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package models defines the payload types carried by stream events and
// returned by the HTTP API.
package models

import "time"

// Tweet is one social post flowing through the stream as a domain event.
type Tweet struct {
	ID        string       `json:"id" validate:"required"`
	Text      string       `json:"text"`
	Author    Author       `json:"author" validate:"required"`
	CreatedAt time.Time    `json:"created_at"`
	Metrics   TweetMetrics `json:"metrics"`
	Entities  Entities     `json:"entities"`
}

// Author is the account that posted a tweet.
type Author struct {
	ID          string    `json:"id"`
	Username    string    `json:"username" validate:"required"`
	DisplayName string    `json:"display_name"`
	Followers   int       `json:"followers" validate:"gte=0"`
	Following   int       `json:"following" validate:"gte=0"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"` // Account creation time, drives the account-age heuristic
}

// AccountAge returns how long the author's account has existed at now.
func (a Author) AccountAge(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}

// TweetMetrics holds engagement counters.
type TweetMetrics struct {
	Likes    int `json:"likes"`
	Retweets int `json:"retweets"`
	Replies  int `json:"replies"`
	Views    int `json:"views"`
}

// Entities holds the parsed hashtags, mentions and URLs of a tweet.
type Entities struct {
	Hashtags []string `json:"hashtags"` // Without the leading '#'; the first is the primary topic
	Mentions []string `json:"mentions"`
	URLs     []string `json:"urls"`
}

// BuzzerAccountStats summarizes the activity of one synthetic buzzer account.
type BuzzerAccountStats struct {
	Username      string `json:"username"`
	PostCount     int    `json:"post_count"`
	AccountAgeDay int    `json:"account_age_days"`
}
