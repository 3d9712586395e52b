// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package stream

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/metrics"
)

// DefaultQueueCapacity is the backpressure threshold used when none is configured.
const DefaultQueueCapacity = 50

// Queue is the bounded, priority-aware FIFO shared by the producer and the
// dispatcher.
//
// Admission never fails: when the queue is full the head element is evicted
// (whatever its priority) before the new event is inserted. High priority
// events are inserted at the head, everything else at the tail. Storage is a
// fixed ring so every operation is O(1) per element.
type Queue struct {
	mu       sync.Mutex
	buf      []Event
	head     int
	size     int
	enqueued uint64
	dropped  uint64

	// dropWarn throttles the backpressure warning to one in every ten drops.
	dropWarn rate.Sometimes
}

// NewQueue creates a queue holding at most capacity events.
// A capacity below 1 is raised to 1.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		buf:      make([]Event, capacity),
		dropWarn: rate.Sometimes{Every: 10},
	}
}

// Enqueue admits e, evicting the head first if the queue is full.
func (q *Queue) Enqueue(e Event) {
	q.mu.Lock()
	evicted := false
	if q.size == len(q.buf) {
		q.buf[q.head] = Event{}
		q.head = q.advance(q.head)
		q.size--
		q.dropped++
		evicted = true
	}

	if e.priority == PriorityHigh {
		q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
		q.buf[q.head] = e
	} else {
		q.buf[(q.head+q.size)%len(q.buf)] = e
	}
	q.size++
	q.enqueued++

	size := q.size
	dropped := q.dropped
	q.mu.Unlock()

	metrics.RecordEnqueue(string(e.kind), size, evicted)
	if evicted {
		q.dropWarn.Do(func() {
			logging.Warn().
				Uint64("dropped_events", dropped).
				Int("queue_size", size).
				Msg("backpressure active, evicting oldest events")
		})
	}
}

// Drain removes and returns up to max events from the head, head first.
// It returns nil when the queue is empty or max is not positive.
func (q *Queue) Drain(max int) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := max
	if q.size < n {
		n = q.size
	}
	if n <= 0 {
		return nil
	}

	out := make([]Event, n)
	for i := range out {
		out[i] = q.buf[q.head]
		q.buf[q.head] = Event{}
		q.head = q.advance(q.head)
	}
	q.size -= n
	metrics.StreamQueueDepth.Set(float64(q.size))
	return out
}

// Size returns the current number of queued events.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Capacity returns the backpressure threshold.
func (q *Queue) Capacity() int {
	return len(q.buf)
}

// TotalEnqueued returns the number of events ever admitted.
func (q *Queue) TotalEnqueued() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enqueued
}

// TotalDropped returns the number of events ever evicted.
func (q *Queue) TotalDropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// QueueStats is a consistent view of the queue counters.
type QueueStats struct {
	Size          int
	Capacity      int
	TotalEnqueued uint64
	TotalDropped  uint64
}

// Stats returns size and counters read under a single lock.
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Size:          q.size,
		Capacity:      len(q.buf),
		TotalEnqueued: q.enqueued,
		TotalDropped:  q.dropped,
	}
}

// DropRate is dropped/enqueued, or 0 before anything was enqueued.
func (s QueueStats) DropRate() float64 {
	if s.TotalEnqueued == 0 {
		return 0
	}
	return float64(s.TotalDropped) / float64(s.TotalEnqueued)
}

func (q *Queue) advance(i int) int {
	return (i + 1) % len(q.buf)
}
