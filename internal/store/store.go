// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package store keeps recently produced tweets and running hashtag counters
// in BadgerDB. Tweets expire after a TTL; counters live for the lifetime of
// the database. With no path configured the database is purely in memory.
package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/metrics"
	"github.com/tomtom215/buzzstream/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	tweetKeyPrefix   = "tweet:"
	hashtagKeyPrefix = "hashtag:"
)

const (
	// DefaultTweetTTL is how long a recorded tweet stays readable.
	DefaultTweetTTL = time.Hour

	// DefaultGCInterval is the value log GC cadence for on-disk stores.
	DefaultGCInterval = 10 * time.Minute

	gcDiscardRatio     = 0.5
	maxConflictRetries = 64
)

var (
	// ErrNotFound is returned when a tweet is missing or expired.
	ErrNotFound = errors.New("tweet not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// Config configures the tweet store.
type Config struct {
	// Path is the BadgerDB directory. Empty runs in memory.
	Path       string
	TweetTTL   time.Duration
	GCInterval time.Duration
}

// Store is a BadgerDB-backed tweet cache and hashtag counter.
type Store struct {
	db        *badger.DB
	cfg       Config
	inMemory  bool
	closeOnce sync.Once
}

// Open opens (or creates) the store.
func Open(cfg Config) (*Store, error) {
	if cfg.TweetTTL <= 0 {
		cfg.TweetTTL = DefaultTweetTTL
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = DefaultGCInterval
	}

	var opts badger.Options
	inMemory := cfg.Path == ""
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", inMemory).
		Dur("tweet_ttl", cfg.TweetTTL).
		Msg("Tweet store opened")

	return &Store{db: db, cfg: cfg, inMemory: inMemory}, nil
}

// RecordTweet stores t under its id with the configured TTL and increments
// the counter of each of its hashtags.
//
//nolint:gocritic // models.Tweet is passed by value across the producer
func (s *Store) RecordTweet(ctx context.Context, t models.Tweet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tweet: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(tweetKeyPrefix+t.ID), data).WithTTL(s.cfg.TweetTTL)
		return txn.SetEntry(e)
	})
	if err != nil {
		metrics.RecordStoreOperation("record_tweet", "error")
		return fmt.Errorf("set tweet %s: %w", t.ID, s.wrap(err))
	}

	for _, tag := range t.Entities.Hashtags {
		if err := s.incrementHashtag(tag); err != nil {
			metrics.RecordStoreOperation("record_tweet", "error")
			return err
		}
	}

	metrics.RecordStoreOperation("record_tweet", "ok")
	return nil
}

// incrementHashtag is a read-modify-write retried on transaction conflicts.
func (s *Store) incrementHashtag(tag string) error {
	key := []byte(hashtagKeyPrefix + tag)

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			var count uint64
			item, err := txn.Get(key)
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
			case err != nil:
				return err
			default:
				if err := item.Value(func(val []byte) error {
					if len(val) != 8 {
						return fmt.Errorf("corrupt counter for %s", tag)
					}
					count = binary.BigEndian.Uint64(val)
					return nil
				}); err != nil {
					return err
				}
			}

			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, count+1)
			return txn.Set(key, buf)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("increment hashtag %s: %w", tag, s.wrap(err))
	}
	return nil
}

// Tweet returns the stored tweet with id.
func (s *Store) Tweet(ctx context.Context, id string) (models.Tweet, error) {
	var t models.Tweet
	if err := ctx.Err(); err != nil {
		return t, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tweetKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get tweet: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.RecordStoreOperation("get_tweet", "miss")
		return t, ErrNotFound
	case err != nil:
		metrics.RecordStoreOperation("get_tweet", "error")
		return t, s.wrap(err)
	}
	metrics.RecordStoreOperation("get_tweet", "ok")
	return t, nil
}

// TopHashtags returns up to limit hashtag counters, highest first.
// Equal counts are ordered by hashtag.
func (s *Store) TopHashtags(ctx context.Context, limit int) ([]models.HashtagCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var counts []models.HashtagCount
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(hashtagKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			tag := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				if len(val) == 8 {
					counts = append(counts, models.HashtagCount{Hashtag: tag, Count: binary.BigEndian.Uint64(val)})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordStoreOperation("top_hashtags", "error")
		return nil, fmt.Errorf("scan hashtags: %w", s.wrap(err))
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Hashtag < counts[j].Hashtag
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	metrics.RecordStoreOperation("top_hashtags", "ok")
	return counts, nil
}

// RunGC reclaims value log space until there is nothing left to rewrite.
// It is a no-op for in-memory stores.
func (s *Store) RunGC() error {
	if s.inMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", s.wrap(err))
		}
	}
}

// Serve runs RunGC on the configured interval. Implements suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Tweet store GC failed")
			}
		}
	}
}

func (s *Store) String() string {
	return "tweet-store-gc"
}

// InMemory reports whether the store has no backing directory.
func (s *Store) InMemory() bool {
	return s.inMemory
}

// Close closes the database. Safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}

func (s *Store) wrap(err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}
