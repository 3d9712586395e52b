// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

//go:build nats

package eventbus

import (
	"context"
	"testing"
	"time"
)

// publishUntilReceived republishes until the sink sees a tweet. Core NATS
// drops messages sent before the subscription reaches the server.
func publishUntilReceived(t *testing.T, m *Mirror, sink *recordingSink) {
	t.Helper()
	ctx := context.Background()
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := m.RecordTweet(ctx, sampleTweet("nats-1")); err != nil {
			t.Fatalf("RecordTweet() error = %v", err)
		}
		select {
		case <-sink.got:
			return
		case <-deadline:
			t.Fatal("no tweet received over NATS")
		case <-ticker.C:
		}
	}
}

func TestOpen_EmbeddedNATS(t *testing.T) {
	b, err := Open(Config{
		NATSEnabled:  true,
		Embedded:     true,
		EmbeddedPort: -1,
		PublishTopic: "buzzstream.test.out",
		IngestTopic:  "buzzstream.test.in",
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if b.Backend != BackendNATS {
		t.Errorf("Backend = %s, want %s", b.Backend, BackendNATS)
	}

	sink := newRecordingSink()
	ing := NewIngestor(b.Subscriber, "buzzstream.test.in", sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ing.Serve(ctx) }()
	<-ing.Ready()

	publishUntilReceived(t, NewMirror(b.Publisher, "buzzstream.test.in", ""), sink)

	if ids := sink.ids(); len(ids) == 0 || ids[0] != "nats-1" {
		t.Errorf("ingested ids = %v, want nats-1 first", ids)
	}
}

func TestStartEmbeddedServer(t *testing.T) {
	ns, err := StartEmbeddedServer("", -1)
	if err != nil {
		t.Fatalf("StartEmbeddedServer() error = %v", err)
	}
	defer ns.Shutdown()

	if !ns.Running() {
		t.Error("Running() = false, want true")
	}
	if ns.ClientURL() == "" {
		t.Error("ClientURL() is empty")
	}
}
