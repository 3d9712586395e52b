// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

//go:build integration

package testinfra

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// dockerAvailable probes the daemon once per test binary.
var dockerAvailable = sync.OnceValue(func() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
})

// RequireDocker skips t unless a Docker daemon answers.
func RequireDocker(t *testing.T) {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("Docker not available, skipping container test")
	}
}

// TerminateOnCleanup stops c when t finishes. Failures are logged only.
func TerminateOnCleanup(t *testing.T, c testcontainers.Container) {
	t.Helper()
	if c == nil {
		return
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})
}
