// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

// Engine tracks a motion sample by sample and classifies it once the
// motion is finished. G is the gesture vocabulary of the implementation.
//
// Advance never fails. Finish always ends tracking, whether or not a
// gesture was recognized; ok is false when the motion is ambiguous.
type Engine[G any] interface {
	Advance(s Sample)
	Finish() (g G, ok bool)
}
