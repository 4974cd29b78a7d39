// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	ev := NewEvent(Left, 4, "apds9960", at)

	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"gesture":"left","seq":4,"time":"2026-03-01T12:30:00Z","source":"apds9960"}`
	if string(payload) != want {
		t.Errorf("got %s, want %s", payload, want)
	}
}
