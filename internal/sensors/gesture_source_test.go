// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/gesture_computer/internal/apds9960"
	"github.com/relabs-tech/gesture_computer/internal/config"
	"github.com/relabs-tech/gesture_computer/internal/gesture"
)

func newMockManager(t *testing.T) (*GestureManager, *MockPort) {
	t.Helper()
	cfg := config.Default()
	cfg.MockSensor = true
	port := NewMockPort(0)
	m := &GestureManager{regMap: getAPDS9960RegisterMap()}
	if err := m.InitWithPort(port, "mock", nil, cfg); err != nil {
		t.Fatalf("InitWithPort: %v", err)
	}
	return m, port
}

func TestMockSwipes(t *testing.T) {
	m, port := newMockManager(t)

	for _, want := range []gesture.Direction{gesture.Up, gesture.Right, gesture.Down, gesture.Left} {
		port.QueueSwipe(want)
		got, ok, err := m.Advance()
		if err != nil {
			t.Fatalf("Advance(%s): %v", want, err)
		}
		if !ok || got != want {
			t.Errorf("swipe %s: got %s (ok=%v)", want, got, ok)
		}
	}

	_, ok, err := m.Advance()
	if err != nil || ok {
		t.Errorf("idle Advance: ok=%v err=%v, want no gesture", ok, err)
	}
}

func TestManagerNotInitialized(t *testing.T) {
	m := &GestureManager{regMap: getAPDS9960RegisterMap()}
	if _, _, err := m.Advance(); err != ErrNotInitialized {
		t.Errorf("Advance: got %v, want ErrNotInitialized", err)
	}
	if _, err := m.ReadRegister(apds9960.RegID); err != ErrNotInitialized {
		t.Errorf("ReadRegister: got %v, want ErrNotInitialized", err)
	}
	if err := m.Reinitialize(); err != ErrNotInitialized {
		t.Errorf("Reinitialize: got %v, want ErrNotInitialized", err)
	}
}

func TestManagerRegisters(t *testing.T) {
	m, _ := newMockManager(t)

	id, err := m.ReadRegister(apds9960.RegID)
	if err != nil || id != apds9960.DeviceID {
		t.Errorf("ID: got 0x%02X err=%v", id, err)
	}
	if _, err := m.ReadRegister(apds9960.RegGFIFOU); err == nil {
		t.Errorf("expected FIFO register read to be rejected")
	}

	all, err := m.ReadAllRegisters()
	if err != nil {
		t.Fatalf("ReadAllRegisters: %v", err)
	}
	if all[apds9960.RegEnable] != 0x45 {
		t.Errorf("ENABLE: got 0x%02X, want 0x45", all[apds9960.RegEnable])
	}
	if all[apds9960.RegGConf4] != 0x02 {
		t.Errorf("GCONF4: got 0x%02X, want 0x02 after FIFO clear", all[apds9960.RegGConf4])
	}

	if err := m.WriteRegister(apds9960.RegGPEnTh, 99); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	exported, err := m.ExportRegisterConfig()
	if err != nil {
		t.Fatalf("ExportRegisterConfig: %v", err)
	}
	if exported[apds9960.RegGPEnTh] != 99 {
		t.Errorf("GPENTH: got %d, want 99", exported[apds9960.RegGPEnTh])
	}
	if _, ok := exported[apds9960.RegID]; ok {
		t.Errorf("read-only ID register exported")
	}
}

func TestGestureSetup(t *testing.T) {
	cfg := config.Default()
	cfg.GestureGain = "8"
	cfg.LEDDrive = "37.5"
	cfg.LEDPulse = "32"
	cfg.GOffsetLeft = -5
	cfg.GestureThreshold = 77

	setup, err := GestureSetup(cfg)
	if err != nil {
		t.Fatalf("GestureSetup: %v", err)
	}
	if setup.Gain != apds9960.X8 || setup.LedDrive != apds9960.D37_5 || setup.LedPulse != apds9960.P32 {
		t.Errorf("got gain=%v drive=%v pulse=%v", setup.Gain, setup.LedDrive, setup.LedPulse)
	}
	if setup.GOffsetLeft != -5 || setup.Threshold != 77 {
		t.Errorf("got offset=%d threshold=%d", setup.GOffsetLeft, setup.Threshold)
	}
	if setup.Engine == nil {
		t.Errorf("no engine")
	}

	cfg.LEDDrive = "42"
	if _, err := GestureSetup(cfg); err == nil {
		t.Errorf("expected error for LED drive 42")
	}
}

var errNoAck = errors.New("no ack")

// fakeBus counts Close calls.
type fakeBus struct {
	closed int
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error { return errNoAck }
func (b *fakeBus) SetSpeed(f physic.Frequency) error { return nil }
func (b *fakeBus) String() string                    { return "fake" }
func (b *fakeBus) Close() error {
	b.closed++
	return nil
}

// deadPort fails every transaction.
type deadPort struct{}

func (deadPort) ReadReg(reg byte) (byte, error)       { return 0, errNoAck }
func (deadPort) WriteReg(reg, value byte) error       { return errNoAck }
func (deadPort) ReadBlock(reg byte, buf []byte) error { return errNoAck }

func TestAttachBusClosesOnFailure(t *testing.T) {
	m := &GestureManager{regMap: getAPDS9960RegisterMap()}
	bus := &fakeBus{}

	err := m.attachBus(bus, deadPort{}, nil, config.Default())
	if !errors.Is(err, errNoAck) {
		t.Fatalf("got %v, want wrapped %v", err, errNoAck)
	}
	if bus.closed != 1 {
		t.Errorf("bus closed %d times, want 1", bus.closed)
	}
	if m.IsAvailable() {
		t.Errorf("manager available after failed init")
	}
	if err := m.Close(); err != nil || bus.closed != 1 {
		t.Errorf("Close after failed init: err=%v closed=%d", err, bus.closed)
	}
}

func TestAttachBusKeepsBusOpen(t *testing.T) {
	m := &GestureManager{regMap: getAPDS9960RegisterMap()}
	bus := &fakeBus{}

	if err := m.attachBus(bus, NewMockPort(0), nil, config.Default()); err != nil {
		t.Fatalf("attachBus: %v", err)
	}
	if bus.closed != 0 {
		t.Errorf("bus closed after successful init")
	}
	if err := m.Close(); err != nil || bus.closed != 1 {
		t.Errorf("Close: err=%v closed=%d, want 1", err, bus.closed)
	}
}
