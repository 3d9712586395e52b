// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

//go:build !nats

package eventbus

import "github.com/ThreeDotsLabs/watermill"

//nolint:gocritic // Config is small and copied once at startup
func openNATS(_ Config, _ watermill.LoggerAdapter) (*Bus, error) {
	return nil, ErrNATSNotEnabled
}
