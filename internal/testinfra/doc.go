// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package testinfra starts Docker containers for integration tests using
// testcontainers-go. Everything except this file is built only with the
// integration tag.
//
// # NATS Container
//
//	func TestBus(t *testing.T) {
//	    testinfra.RequireDocker(t)
//	    ctx := context.Background()
//	    natsC, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.TerminateOnCleanup(t, natsC)
//
//	    bus, err := eventbus.Open(eventbus.Config{NATSEnabled: true, URL: natsC.URL})
//	    // ...
//	}
//
// Tests are skipped when Docker is unavailable. The first run pulls the
// image.
package testinfra
