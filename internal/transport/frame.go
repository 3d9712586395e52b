// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package transport

import (
	"fmt"

	"github.com/goccy/go-json"
)

type connectedFrame struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

// ConnectedFrame encodes the greeting sent to a subscriber before any event.
func ConnectedFrame(clientID string) ([]byte, error) {
	frame, err := json.Marshal(connectedFrame{Type: "connected", ClientID: clientID})
	if err != nil {
		return nil, fmt.Errorf("encode connected frame: %w", err)
	}
	return frame, nil
}
