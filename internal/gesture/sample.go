// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import "fmt"

// SampleSize is the number of bytes one FIFO dataset occupies.
const SampleSize = 4

// Sample is one gesture FIFO dataset: the four photodiode magnitudes in
// the order the sensor delivers them.
type Sample struct {
	Up    uint8 `json:"up"`
	Down  uint8 `json:"down"`
	Left  uint8 `json:"left"`
	Right uint8 `json:"right"`
}

// SampleFromBytes builds a Sample from a 4-byte dataset (U, D, L, R).
func SampleFromBytes(b []byte) Sample {
	_ = b[3]
	return Sample{Up: b[0], Down: b[1], Left: b[2], Right: b[3]}
}

// Exceeds reports whether any channel is strictly above threshold.
func (s Sample) Exceeds(threshold uint8) bool {
	return s.Up > threshold || s.Down > threshold || s.Left > threshold || s.Right > threshold
}

func (s Sample) String() string {
	return fmt.Sprintf("U:%3d D:%3d L:%3d R:%3d", s.Up, s.Down, s.Left, s.Right)
}
