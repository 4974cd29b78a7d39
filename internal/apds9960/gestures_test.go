// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package apds9960

import (
	"testing"

	"github.com/relabs-tech/gesture_computer/internal/gesture"
)

func newRecordingDriver(t *testing.T, threshold uint8) (*Gestures[string], *fakePort, *recordingEngine) {
	t.Helper()
	port := newFakePort()
	eng := &recordingEngine{result: "swipe", ok: true}
	setup := DefaultSetup[string](eng)
	setup.Threshold = threshold
	g, err := Init(port, setup)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	port.writes = nil
	port.reads = nil
	return g, port, eng
}

func newSimpleDriver(t *testing.T, threshold uint8) (*Gestures[gesture.Direction], *fakePort) {
	t.Helper()
	port := newFakePort()
	setup := DefaultSetup[gesture.Direction](gesture.NewSimpleEngine())
	setup.Threshold = threshold
	g, err := Init(port, setup)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	port.writes = nil
	return g, port
}

func TestInit_WriteSequence(t *testing.T) {
	port := newFakePort()
	setup := Setup[gesture.Direction]{
		Engine:         gesture.NewSimpleEngine(),
		GOffsetUp:      3,
		GOffsetDown:    -3,
		POffsetUR:      1,
		POffsetDL:      -2,
		LedDrive:       D150,
		LedPulse:       P16,
		Gain:           X4,
		PulseCount:     8,
		FIFOThreshold:  2,
		EntryThreshold: 40,
		Threshold:      30,
	}
	g, err := Init(port, setup)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if g.Threshold() != 30 {
		t.Errorf("expected threshold 30, got %d", g.Threshold())
	}

	expected := []writeOp{
		{RegEnable, 0x45},
		{RegPPulse, 0x88},
		{RegControl, 0x08},
		{RegConfig2, 0x11},
		{RegPOffsetUR, 0x01},
		{RegPOffsetDL, 0x82},
		{RegGPEnTh, 40},
		{RegGConf1, 0x80},
		{RegGConf2, 0x40},
		{RegGOffsetU, 0x03},
		{RegGOffsetD, 0x83},
		{RegGOffsetL, 0x00},
		{RegGOffsetR, 0x00},
		{RegGPulse, 0x88},
		{RegGConf4, 0x06},
	}
	if len(port.writes) != len(expected) {
		t.Fatalf("expected %d writes, got %d: %v", len(expected), len(port.writes), port.writes)
	}
	for i, w := range expected {
		if port.writes[i] != w {
			t.Errorf("write %d: expected reg 0x%02X=0x%02X, got reg 0x%02X=0x%02X",
				i, w.reg, w.value, port.writes[i].reg, port.writes[i].value)
		}
	}
}

func TestInit_AbortsOnFirstFailure(t *testing.T) {
	port := newFakePort()
	port.failWriteAt = 3
	g, err := Init(port, DefaultSetup[gesture.Direction](gesture.NewSimpleEngine()))
	if err != errBus {
		t.Fatalf("expected the transport error unchanged, got %v", err)
	}
	if g != nil {
		t.Error("expected no driver on failure")
	}
	if len(port.writes) != 2 {
		t.Errorf("expected 2 completed writes, got %d", len(port.writes))
	}
	if port.writesAttempt != 3 {
		t.Errorf("expected the sequence to stop at write 3, attempted %d", port.writesAttempt)
	}
}

// Threshold 50: a downward swipe followed by a quiet dataset.
func TestAdvance_VerticalGesture(t *testing.T) {
	g, port := newSimpleDriver(t, 50)
	port.push(
		gesture.Sample{Up: 255, Down: 0, Left: 128, Right: 128},
		gesture.Sample{Up: 0, Down: 255, Left: 128, Right: 128},
		gesture.Sample{},
	)
	d, ok, err := g.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !ok || d != gesture.Down {
		t.Fatalf("expected down, got %v (ok=%v)", d, ok)
	}
	if len(port.writes) != 1 || port.writes[0] != (writeOp{RegGConf4, 0x06}) {
		t.Errorf("expected a single GCONF4 write, got %v", port.writes)
	}
}

func TestAdvance_TieIsNoGesture(t *testing.T) {
	g, port := newSimpleDriver(t, 50)
	port.push(
		gesture.Sample{Up: 255, Left: 255},
		gesture.Sample{Down: 255, Right: 255},
		gesture.Sample{Up: 50, Down: 50, Left: 50, Right: 50},
	)
	d, ok, err := g.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if ok {
		t.Fatalf("expected no gesture, got %v", d)
	}
	if len(port.writes) != 1 {
		t.Errorf("expected the motion to end with one write, got %v", port.writes)
	}
}

func TestAdvance_EmptyFIFO(t *testing.T) {
	g, port, eng := newRecordingDriver(t, 50)
	_, ok, err := g.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if ok {
		t.Fatal("expected no gesture")
	}
	if len(port.writes) != 0 {
		t.Errorf("expected no register writes, got %v", port.writes)
	}
	if len(port.reads) != 1 || port.reads[0] != RegGFLvl {
		t.Errorf("expected only the FIFO level read, got %v", port.reads)
	}
	if len(eng.advanced) != 0 || eng.finished != 0 {
		t.Errorf("engine should be untouched, got %d advances, %d finishes", len(eng.advanced), eng.finished)
	}
}

func TestAdvance_DropsRestOfBurstAfterEnd(t *testing.T) {
	g, port, eng := newRecordingDriver(t, 50)
	s1 := gesture.Sample{Up: 200}
	s2 := gesture.Sample{Down: 200}
	s3 := gesture.Sample{Up: 10, Down: 10, Left: 10, Right: 10}
	s4 := gesture.Sample{Left: 255}
	port.push(s1, s2, s3, s4)

	r, ok, err := g.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !ok || r != "swipe" {
		t.Fatalf("expected the engine result, got %q (ok=%v)", r, ok)
	}
	if len(eng.advanced) != 2 || eng.advanced[0] != s1 || eng.advanced[1] != s2 {
		t.Fatalf("expected only the first two samples to be tracked, got %v", eng.advanced)
	}
	if eng.finished != 1 {
		t.Fatalf("expected one finish, got %d", eng.finished)
	}

	// The fourth dataset left the FIFO with the burst and is gone.
	_, ok, err = g.Advance()
	if err != nil {
		t.Fatalf("second advance: %v", err)
	}
	if ok {
		t.Fatal("expected no gesture from the second call")
	}
	if len(eng.advanced) != 2 {
		t.Errorf("sample 4 must never reach the engine, got %v", eng.advanced)
	}
}

func TestAdvance_MotionSpansCalls(t *testing.T) {
	g, port := newSimpleDriver(t, 50)
	port.push(
		gesture.Sample{Right: 255, Up: 90, Down: 90},
		gesture.Sample{Right: 200, Left: 100, Up: 90, Down: 90},
	)
	if d, ok, err := g.Advance(); err != nil || ok {
		t.Fatalf("expected tracking to continue, got %v, %v, %v", d, ok, err)
	}
	if len(port.writes) != 0 {
		t.Errorf("expected no writes while tracking, got %v", port.writes)
	}

	port.push(gesture.Sample{Left: 255, Up: 90, Down: 90}, gesture.Sample{})
	d, ok, err := g.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !ok || d != gesture.Left {
		t.Fatalf("expected left, got %v (ok=%v)", d, ok)
	}
}

func TestAdvance_ThresholdIsStrict(t *testing.T) {
	g, port, eng := newRecordingDriver(t, 50)
	port.push(gesture.Sample{Up: 51}, gesture.Sample{Up: 50, Down: 50, Left: 50, Right: 50})
	if _, _, err := g.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(eng.advanced) != 1 || eng.finished != 1 {
		t.Errorf("expected 51 to track and 50 to end, got %d advances, %d finishes", len(eng.advanced), eng.finished)
	}
}

func TestAdvance_LevelReadFailure(t *testing.T) {
	g, port, eng := newRecordingDriver(t, 50)
	port.push(gesture.Sample{Up: 200})
	port.failRead = RegGFLvl
	if _, _, err := g.Advance(); err != errBus {
		t.Fatalf("expected the transport error unchanged, got %v", err)
	}
	if len(eng.advanced) != 0 || eng.finished != 0 {
		t.Error("engine must not change when the level read fails")
	}
	if len(port.fifo) != 1 {
		t.Error("FIFO must not be drained when the level read fails")
	}
}

func TestAdvance_DrainFailure(t *testing.T) {
	g, port, eng := newRecordingDriver(t, 50)
	port.push(gesture.Sample{Up: 200}, gesture.Sample{})
	port.failBlock = true
	if _, _, err := g.Advance(); err != errBus {
		t.Fatalf("expected the transport error unchanged, got %v", err)
	}
	if len(eng.advanced) != 0 || eng.finished != 0 {
		t.Error("engine must not change when the drain fails")
	}
}

func TestAdvance_EndWriteFailure(t *testing.T) {
	g, port, eng := newRecordingDriver(t, 50)
	port.push(gesture.Sample{Up: 200}, gesture.Sample{Down: 200}, gesture.Sample{})
	port.failWriteReg = RegGConf4
	if _, _, err := g.Advance(); err != errBus {
		t.Fatalf("expected the transport error unchanged, got %v", err)
	}
	if len(eng.advanced) != 2 {
		t.Errorf("samples in hand before the failure stay tracked, got %v", eng.advanced)
	}
	if eng.finished != 0 {
		t.Error("engine must not be finished when the end write fails")
	}
}

func TestReadID(t *testing.T) {
	port := newFakePort()
	id, ok, err := ReadID(port)
	if err != nil || !ok || id != DeviceID {
		t.Fatalf("ReadID = 0x%02X, %v, %v", id, ok, err)
	}
	port.regs[RegID] = 0x9C
	if _, ok, _ := ReadID(port); ok {
		t.Error("expected mismatch for 0x9C")
	}
}

// Quiet datasets after a gesture end an empty motion: no second gesture
// from the previous swipe's displacement.
func TestAdvance_QuietAfterGestureYieldsNothing(t *testing.T) {
	g, port := newSimpleDriver(t, 50)
	port.push(
		gesture.Sample{Up: 128, Down: 128, Left: 255, Right: 0},
		gesture.Sample{Up: 128, Down: 128, Left: 0, Right: 255},
		gesture.Sample{},
	)
	d, ok, err := g.Advance()
	if err != nil || !ok || d != gesture.Right {
		t.Fatalf("expected right, got %v (ok=%v, err=%v)", d, ok, err)
	}

	for i := 0; i < 2; i++ {
		port.push(gesture.Sample{Up: 10, Down: 10, Left: 10, Right: 10})
		d, ok, err := g.Advance()
		if err != nil {
			t.Fatalf("quiet call %d: %v", i+1, err)
		}
		if ok {
			t.Errorf("quiet call %d: expected no gesture, got %v", i+1, d)
		}
	}
}
