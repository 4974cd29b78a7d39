// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import "math"

// maxCombined is the largest possible sum of two channel magnitudes.
const maxCombined = 2 * math.MaxUint8

// Position converts two opposing channel magnitudes into a signed axis
// value.
//
// The combined magnitude is shifted so that a saturated pair sits at zero,
// then scaled by how unbalanced the pair is:
//
//	a > b: (a+b-510) * (1 - b/a)
//	a < b: (a+b-510) * (a/b - 1)
//	a = b: 0
//
// Comparable readings on both channels (ambient light) are damped towards
// zero. Position(a, b) == -Position(b, a) for every input.
func Position(a, b uint8) float32 {
	raw := float32(int16(a) + int16(b) - maxCombined)
	switch {
	case a > b:
		return raw * (1 - float32(b)/float32(a))
	case a < b:
		return raw * (float32(a)/float32(b) - 1)
	default:
		return 0
	}
}
