// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package apds9960

import (
	"github.com/relabs-tech/gesture_computer/internal/gesture"
)

// Recommended pulse count and FIFO threshold (GFIFOTH = 2, 8 datasets).
const (
	DefaultPulseCount    = 8
	DefaultFIFOThreshold = 2
)

// Setup is the full device configuration. It is consumed by Init; the
// sensor itself holds the configuration afterwards.
type Setup[G any] struct {
	// Engine classifies tracked motions. Ownership moves to the driver.
	Engine gesture.Engine[G]

	// Gesture offset compensation per photodiode.
	GOffsetUp    int8
	GOffsetDown  int8
	GOffsetLeft  int8
	GOffsetRight int8
	// Proximity offset compensation for the UP/RIGHT and DOWN/LEFT pairs.
	POffsetUR int8
	POffsetDL int8

	LedDrive LedDrive
	LedPulse PulseLength
	Gain     Gain

	// PulseCount is written to both PPULSE and GPULSE (6 bits).
	PulseCount uint8
	// FIFOThreshold is the GFIFOTH code (0..3).
	FIFOThreshold uint8
	// ExitMask and ExitPersistence go to GCONF1 unchanged.
	ExitMask        uint8
	ExitPersistence uint8

	// EntryThreshold is programmed into GPENTH: the level at which the
	// sensor starts filling its FIFO.
	EntryThreshold uint8
	// Threshold is checked in software against every drained dataset. A
	// dataset with any channel above it continues the motion; a dataset
	// with all channels at or below it ends the motion.
	Threshold uint8
}

// DefaultSetup returns a Setup with the manufacturer recommended pulse
// count and FIFO threshold.
func DefaultSetup[G any](engine gesture.Engine[G]) Setup[G] {
	return Setup[G]{
		Engine:         engine,
		LedDrive:       D100,
		LedPulse:       P8,
		Gain:           X4,
		PulseCount:     DefaultPulseCount,
		FIFOThreshold:  DefaultFIFOThreshold,
		EntryThreshold: 40,
		Threshold:      30,
	}
}

type regWrite struct {
	reg   byte
	value byte
}

// writes returns the initialization sequence in the order it must reach
// the device.
func (s *Setup[G]) writes() []regWrite {
	return []regWrite{
		{RegEnable, encodeEnable()},
		{RegPPulse, encodePulse(s.LedPulse, s.PulseCount)},
		{RegControl, encodeControl(s.Gain, s.LedDrive)},
		{RegConfig2, encodeConfig2(s.LedDrive)},
		{RegPOffsetUR, encodeOffset(s.POffsetUR)},
		{RegPOffsetDL, encodeOffset(s.POffsetDL)},
		{RegGPEnTh, s.EntryThreshold},
		{RegGConf1, encodeGConf1(s.FIFOThreshold, s.ExitMask, s.ExitPersistence)},
		{RegGConf2, encodeGConf2(s.Gain, s.LedDrive, 0)},
		{RegGOffsetU, encodeOffset(s.GOffsetUp)},
		{RegGOffsetD, encodeOffset(s.GOffsetDown)},
		{RegGOffsetL, encodeOffset(s.GOffsetLeft)},
		{RegGOffsetR, encodeOffset(s.GOffsetRight)},
		{RegGPulse, encodePulse(s.LedPulse, s.PulseCount)},
		{RegGConf4, gestureEnd},
	}
}

// Gestures drains the sensor's gesture FIFO and feeds an Engine.
//
// A Gestures must not be used from more than one goroutine at a time.
type Gestures[G any] struct {
	port      Port
	engine    gesture.Engine[G]
	threshold uint8
	buf       []byte
}

// Init configures the sensor and returns a driver bound to port.
//
// Any transport error aborts the sequence and is returned as is. Nothing
// is rolled back: the device must be initialized again before reuse.
func Init[G any](port Port, setup Setup[G]) (*Gestures[G], error) {
	for _, w := range setup.writes() {
		if err := port.WriteReg(w.reg, w.value); err != nil {
			return nil, err
		}
	}
	return &Gestures[G]{
		port:      port,
		engine:    setup.Engine,
		threshold: setup.Threshold,
	}, nil
}

// Threshold returns the software gesture threshold.
func (g *Gestures[G]) Threshold() uint8 {
	return g.threshold
}

// Advance reads whatever the sensor has buffered and returns a gesture if
// the motion ended during this call.
//
// Datasets are processed oldest first. The first dataset with no channel
// above the threshold ends the motion: the FIFO is cleared, the gesture
// interrupt re-armed and the engine finished. Datasets after it in the
// same burst are dropped; they have already left the sensor and will not
// be seen again. At most one gesture is returned per call.
func (g *Gestures[G]) Advance() (G, bool, error) {
	var none G
	level, err := g.port.ReadReg(RegGFLvl)
	if err != nil {
		return none, false, err
	}
	if level == 0 {
		return none, false, nil
	}
	n := int(level) * gesture.SampleSize
	if cap(g.buf) < n {
		g.buf = make([]byte, n)
	}
	data := g.buf[:n]
	if err := g.port.ReadBlock(RegGFIFOU, data); err != nil {
		return none, false, err
	}
	for i := 0; i < n; i += gesture.SampleSize {
		s := gesture.SampleFromBytes(data[i : i+gesture.SampleSize])
		if s.Exceeds(g.threshold) {
			g.engine.Advance(s)
			continue
		}
		if err := g.port.WriteReg(RegGConf4, gestureEnd); err != nil {
			return none, false, err
		}
		r, ok := g.engine.Finish()
		return r, ok, nil
	}
	return none, false, nil
}

// ReadID reads the ID register and reports whether it matches DeviceID.
func ReadID(port Port) (byte, bool, error) {
	id, err := port.ReadReg(RegID)
	if err != nil {
		return 0, false, err
	}
	return id, id == DeviceID, nil
}
