// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"fmt"
	"math"
)

// Direction is a gesture recognized by SimpleEngine.
type Direction uint8

const (
	Up Direction = iota + 1
	Down
	Left
	Right
)

var directionNames = map[Direction]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// SimpleEngine recognizes upward, downward, leftward and rightward swipes
// from the net displacement accumulated over a motion.
//
// The zero value is ready to use.
type SimpleEngine struct {
	active bool
	prevX  float32
	prevY  float32
	moveX  float32
	moveY  float32
}

var _ Engine[Direction] = (*SimpleEngine)(nil)

// NewSimpleEngine returns an idle engine.
func NewSimpleEngine() *SimpleEngine {
	return &SimpleEngine{}
}

// Advance adds one sample to the current motion. The first sample after
// Finish (or construction) only sets the baseline position.
func (e *SimpleEngine) Advance(s Sample) {
	y := Position(s.Up, s.Down)
	x := Position(s.Left, s.Right)
	if e.active {
		e.moveX += e.prevX - x
		e.moveY += e.prevY - y
	} else {
		e.active = true
		e.moveX = 0
		e.moveY = 0
	}
	e.prevX = x
	e.prevY = y
}

// Finish ends the current motion and classifies it by its dominant axis.
// Equal displacement on both axes, including no motion at all, yields no
// gesture.
func (e *SimpleEngine) Finish() (Direction, bool) {
	wasActive := e.active
	e.active = false
	if !wasActive {
		return 0, false
	}
	absX := math.Abs(float64(e.moveX))
	absY := math.Abs(float64(e.moveY))
	switch {
	case absY > absX:
		if e.moveY > 0 {
			return Up, true
		}
		return Down, true
	case absX > absY:
		if e.moveX > 0 {
			return Left, true
		}
		return Right, true
	default:
		return 0, false
	}
}
