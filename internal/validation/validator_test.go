// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package validation

import (
	"errors"
	"testing"

	"github.com/tomtom215/buzzstream/internal/models"
)

type startRequest struct {
	EventsPerSecond int    `json:"events_per_second" validate:"min=1,max=1000"`
	Mode            string `json:"mode,omitempty" validate:"omitempty,oneof=mock live"`
	Label           string `validate:"omitempty,min=3"`
}

func TestGet_Singleton(t *testing.T) {
	if Get() != Get() {
		t.Error("Get() returned different instances")
	}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     startRequest
		wantField string
		wantMsg   string
	}{
		{name: "valid", input: startRequest{EventsPerSecond: 10}},
		{name: "upper bound", input: startRequest{EventsPerSecond: 1000, Mode: "live"}},
		{
			name:      "too low",
			input:     startRequest{EventsPerSecond: 0},
			wantField: "events_per_second",
			wantMsg:   "events_per_second must be at least 1",
		},
		{
			name:      "too high",
			input:     startRequest{EventsPerSecond: 1001},
			wantField: "events_per_second",
			wantMsg:   "events_per_second must be at most 1000",
		},
		{
			name:      "oneof",
			input:     startRequest{EventsPerSecond: 5, Mode: "replay"},
			wantField: "mode",
			wantMsg:   "mode must be one of: mock live",
		},
		{
			name:      "no json tag",
			input:     startRequest{EventsPerSecond: 5, Label: "ab"},
			wantField: "Label",
			wantMsg:   "Label must be at least 3 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Struct() error = %v, want nil", err)
				}
				return
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() error = %v, want *Error", err)
			}
			if len(verr.Fields) != 1 {
				t.Fatalf("Fields = %v, want 1 entry", verr.Fields)
			}
			if verr.Fields[0].Field != tt.wantField {
				t.Errorf("Field = %s, want %s", verr.Fields[0].Field, tt.wantField)
			}
			if verr.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", verr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestStruct_MultipleErrors(t *testing.T) {
	err := Struct(&startRequest{EventsPerSecond: -1, Mode: "x"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Struct() error = %v, want *Error", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("Fields = %v, want 2 entries", verr.Fields)
	}
	want := "events_per_second must be at least 1; mode must be one of: mock live"
	if verr.Error() != want {
		t.Errorf("Error() = %q, want %q", verr.Error(), want)
	}
}

func TestStruct_Tweet(t *testing.T) {
	tests := []struct {
		name    string
		tweet   models.Tweet
		wantErr bool
	}{
		{
			name:  "valid",
			tweet: models.Tweet{ID: "1", Author: models.Author{Username: "budi_jakarta", Followers: 10}},
		},
		{
			name:    "missing id",
			tweet:   models.Tweet{Author: models.Author{Username: "budi_jakarta"}},
			wantErr: true,
		},
		{
			name:    "missing author",
			tweet:   models.Tweet{ID: "1"},
			wantErr: true,
		},
		{
			name:    "negative followers",
			tweet:   models.Tweet{ID: "1", Author: models.Author{Username: "x", Followers: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.tweet)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
