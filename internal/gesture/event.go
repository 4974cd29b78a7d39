// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import "time"

// Event is a recognized gesture as published on MQTT and streamed to web
// clients.
type Event struct {
	Gesture string `json:"gesture"` // "up", "down", "left", "right"
	Seq     uint64 `json:"seq"`     // per-producer counter, starts at 1
	Time    string `json:"time"`    // RFC3339
	Source  string `json:"source"`  // "apds9960" or "mock"
}

// NewEvent builds the event for gesture number seq.
func NewEvent(d Direction, seq uint64, source string, t time.Time) Event {
	return Event{
		Gesture: d.String(),
		Seq:     seq,
		Time:    t.Format(time.RFC3339),
		Source:  source,
	}
}
