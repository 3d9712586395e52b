// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/buzzstream/internal/detection"
	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/models"
	"github.com/tomtom215/buzzstream/internal/store"
)

const (
	defaultHashtagLimit = 10
	maxHashtagLimit     = 100
	maxTrendingLimit    = 50
)

// parseLimit reads ?limit in [1, maxV], falling back to def when absent.
func parseLimit(r *http.Request, def, maxV int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxV {
		return 0, errors.New("limit must be an integer between 1 and " + strconv.Itoa(maxV))
	}
	return n, nil
}

// Trending returns the current trending topics.
//
// @Summary Trending topics
// @Description Hashtag clusters in the recent tweet window, ordered by size. Cached briefly.
// @Tags Data
// @Produce json
// @Param limit query int false "Number of topics (1-50)"
// @Success 200 {object} Response{data=[]models.TrendingTopic}
// @Failure 400 {object} Response "Invalid limit"
// @Failure 503 {object} Response "Trending disabled"
// @Router /api/trending [get]
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	if h.trending == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Trending analysis is disabled")
		return
	}
	n, err := parseLimit(r, h.cfg.TrendingTopN, maxTrendingLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	topics, err := h.topics.GetOrLoad("trending:"+strconv.Itoa(n), func() ([]models.TrendingTopic, error) {
		return h.trending.Top(n), nil
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to compute trending topics")
		return
	}
	if topics == nil {
		topics = []models.TrendingTopic{}
	}
	respondData(w, topics)
}

// Hashtags returns the most used hashtags.
//
// @Summary Top hashtags
// @Description Hashtag counters from the tweet store, highest first
// @Tags Data
// @Produce json
// @Param limit query int false "Number of hashtags (1-100)"
// @Success 200 {object} Response{data=[]models.HashtagCount}
// @Failure 400 {object} Response "Invalid limit"
// @Failure 503 {object} Response "Store unavailable"
// @Router /api/hashtags [get]
func (h *Handler) Hashtags(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Tweet store unavailable")
		return
	}
	limit, err := parseLimit(r, defaultHashtagLimit, maxHashtagLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	counts, err := h.store.TopHashtags(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to read hashtag counters")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to read hashtags")
		return
	}
	if counts == nil {
		counts = []models.HashtagCount{}
	}
	respondData(w, counts)
}

// lookupTweet writes the error response and returns false when the tweet
// cannot be served.
func (h *Handler) lookupTweet(w http.ResponseWriter, r *http.Request) (models.Tweet, bool) {
	if h.store == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Tweet store unavailable")
		return models.Tweet{}, false
	}
	id := chi.URLParam(r, "id")
	t, err := h.store.Tweet(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Tweet not found or expired")
		return models.Tweet{}, false
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Str("tweet_id", id).Msg("Failed to read tweet")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to read tweet")
		return models.Tweet{}, false
	}
	return t, true
}

// Tweet returns one cached tweet.
//
// @Summary Get a tweet
// @Description Returns a recently produced tweet while it is still cached
// @Tags Data
// @Produce json
// @Param id path string true "Tweet ID"
// @Success 200 {object} Response{data=models.Tweet}
// @Failure 404 {object} Response "Not found or expired"
// @Router /api/tweets/{id} [get]
func (h *Handler) Tweet(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookupTweet(w, r)
	if !ok {
		return
	}
	respondData(w, t)
}

// DetectTweet runs AI-service detection on a cached tweet.
//
// @Summary Detect buzzer activity
// @Description Classifies a cached tweet through the AI service. When the service is unreachable or its circuit is open, the neutral fallback verdict is returned with a message.
// @Tags Data
// @Produce json
// @Param id path string true "Tweet ID"
// @Success 200 {object} Response{data=models.Detection}
// @Failure 404 {object} Response "Not found or expired"
// @Failure 503 {object} Response "AI service disabled"
// @Router /api/tweets/{id}/detect [post]
func (h *Handler) DetectTweet(w http.ResponseWriter, r *http.Request) {
	if h.detector == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "AI service is disabled")
		return
	}
	t, ok := h.lookupTweet(w, r)
	if !ok {
		return
	}

	verdict, err := h.detector.Detect(r.Context(), t)
	if err != nil {
		if !errors.Is(err, detection.ErrServiceUnavailable) {
			respondError(w, r, http.StatusBadGateway, ErrCodeExternalServiceFail, "AI service failed")
			return
		}
		respondJSON(w, http.StatusOK, &Response{
			Success: true,
			Message: "AI service unavailable, fallback verdict",
			Data:    verdict,
		})
		return
	}
	respondData(w, verdict)
}

// Buzzers returns per-account stats for the generator's buzzer pool.
//
// @Summary Buzzer accounts
// @Tags Data
// @Produce json
// @Success 200 {object} Response{data=[]models.BuzzerAccountStats}
// @Router /api/buzzers [get]
func (h *Handler) Buzzers(w http.ResponseWriter, _ *http.Request) {
	stats := []models.BuzzerAccountStats{}
	if h.buzzers != nil {
		stats = h.buzzers.BuzzerAccountStats()
	}
	respondData(w, stats)
}
