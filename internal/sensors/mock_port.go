// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"sync"
	"time"

	"github.com/relabs-tech/gesture_computer/internal/apds9960"
	"github.com/relabs-tech/gesture_computer/internal/gesture"
)

// fifoDepth is the size of the APDS-9960 gesture FIFO in datasets.
const fifoDepth = 32

// swipeSteps is the number of tracked datasets in a synthetic swipe.
const swipeSteps = 8

// MockPort is an apds9960.Port backed by a register file and a FIFO that
// fills with synthetic swipes, cycling up, right, down, left.
type MockPort struct {
	mu     sync.Mutex
	regs   map[byte]byte
	fifo   []gesture.Sample
	period time.Duration
	last   time.Time
	next   int
}

var mockCycle = []gesture.Direction{gesture.Up, gesture.Right, gesture.Down, gesture.Left}

// NewMockPort returns a simulated sensor that queues a new swipe every
// period. A period of 0 only produces swipes queued with QueueSwipe.
func NewMockPort(period time.Duration) *MockPort {
	return &MockPort{
		regs:   map[byte]byte{apds9960.RegID: apds9960.DeviceID, apds9960.RegConfig2: 0x01},
		period: period,
		last:   time.Now(),
	}
}

// QueueSwipe appends the datasets of one swipe followed by a quiet dataset.
func (p *MockPort) QueueSwipe(d gesture.Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue(SwipeSamples(d)...)
}

func (p *MockPort) queue(samples ...gesture.Sample) {
	p.fifo = append(p.fifo, samples...)
	if len(p.fifo) > fifoDepth {
		p.fifo = p.fifo[:fifoDepth]
	}
}

func (p *MockPort) ReadReg(reg byte) (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if reg == apds9960.RegGFLvl {
		if p.period > 0 && time.Since(p.last) >= p.period {
			p.last = time.Now()
			p.queue(SwipeSamples(mockCycle[p.next%len(mockCycle)])...)
			p.next++
		}
		return byte(len(p.fifo)), nil
	}
	return p.regs[reg], nil
}

func (p *MockPort) WriteReg(reg, value byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if reg == apds9960.RegGConf4 && value&0x04 != 0 {
		p.fifo = nil
		value &^= 0x04
	}
	p.regs[reg] = value
	return nil
}

func (p *MockPort) ReadBlock(reg byte, buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if reg != apds9960.RegGFIFOU {
		return errors.New("mock: block read only supported from GFIFO_U")
	}
	n := len(buf) / gesture.SampleSize
	if n > len(p.fifo) {
		n = len(p.fifo)
	}
	for i, s := range p.fifo[:n] {
		o := i * gesture.SampleSize
		buf[o], buf[o+1], buf[o+2], buf[o+3] = s.Up, s.Down, s.Left, s.Right
	}
	p.fifo = p.fifo[n:]
	return nil
}

// SwipeSamples synthesizes the datasets of a swipe in direction d: the
// trailing photodiode pair ramps from one side to the other while the
// other pair stays balanced, then a quiet dataset ends the motion.
func SwipeSamples(d gesture.Direction) []gesture.Sample {
	const balanced = 100
	samples := make([]gesture.Sample, 0, swipeSteps+1)
	for i := 0; i < swipeSteps; i++ {
		a := uint8(255 * i / (swipeSteps - 1))
		b := 255 - a
		var s gesture.Sample
		switch d {
		case gesture.Up:
			s = gesture.Sample{Up: a, Down: b, Left: balanced, Right: balanced}
		case gesture.Down:
			s = gesture.Sample{Up: b, Down: a, Left: balanced, Right: balanced}
		case gesture.Left:
			s = gesture.Sample{Up: balanced, Down: balanced, Left: a, Right: b}
		case gesture.Right:
			s = gesture.Sample{Up: balanced, Down: balanced, Left: b, Right: a}
		}
		samples = append(samples, s)
	}
	return append(samples, gesture.Sample{})
}
