// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gesture_computer/internal/apds9960"
	"github.com/relabs-tech/gesture_computer/internal/config"
	"github.com/relabs-tech/gesture_computer/internal/gesture"
)

// mockSwipePeriod is how often the mock sensor produces a swipe.
const mockSwipePeriod = 2 * time.Second

// ErrNotInitialized is returned by GestureManager methods before Init.
var ErrNotInitialized = errors.New("gesture sensor not initialized")

// GestureManager owns the gesture sensor: the bus, the interrupt line and
// the driver. Every bus access goes through its lock so the sampling loop
// and the register debug tool never interleave transactions.
type GestureManager struct {
	mu      sync.Mutex
	bus     i2c.BusCloser
	port    apds9960.Port
	driver  *apds9960.Gestures[gesture.Direction]
	intPin  gpio.PinIn
	poll    time.Duration
	source  string
	regMap  []RegisterInfo
	started bool
}

var (
	gestureManager *GestureManager
	managerOnce    sync.Once
)

// GetGestureManager returns the process-wide manager.
func GetGestureManager() *GestureManager {
	managerOnce.Do(func() {
		gestureManager = &GestureManager{regMap: getAPDS9960RegisterMap()}
	})
	return gestureManager
}

// GestureSetup translates the configuration into a sensor setup driving a
// four-direction engine.
func GestureSetup(cfg *config.Config) (apds9960.Setup[gesture.Direction], error) {
	setup := apds9960.DefaultSetup[gesture.Direction](gesture.NewSimpleEngine())

	gain, err := apds9960.ParseGain(cfg.GestureGain)
	if err != nil {
		return setup, err
	}
	drive, err := apds9960.ParseLedDrive(cfg.LEDDrive)
	if err != nil {
		return setup, err
	}
	pulse, err := apds9960.ParsePulseLength(cfg.LEDPulse)
	if err != nil {
		return setup, err
	}

	setup.Gain = gain
	setup.LedDrive = drive
	setup.LedPulse = pulse
	setup.PulseCount = cfg.GesturePulseCount
	setup.FIFOThreshold = cfg.GestureFIFOThreshold
	setup.ExitMask = cfg.GestureExitMask
	setup.ExitPersistence = cfg.GestureExitPersist
	setup.GOffsetUp = cfg.GOffsetUp
	setup.GOffsetDown = cfg.GOffsetDown
	setup.GOffsetLeft = cfg.GOffsetLeft
	setup.GOffsetRight = cfg.GOffsetRight
	setup.POffsetUR = cfg.POffsetUR
	setup.POffsetDL = cfg.POffsetDL
	setup.EntryThreshold = cfg.GestureEntryThreshold
	setup.Threshold = cfg.GestureThreshold
	return setup, nil
}

// Init opens the sensor described by the global configuration: a real
// APDS-9960 over I2C, or the mock sensor when MOCK_SENSOR is set.
func (m *GestureManager) Init() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("gesture: config not loaded")
	}

	if cfg.MockSensor {
		log.Printf("gesture: using mock sensor (swipe every %s)", mockSwipePeriod)
		return m.InitWithPort(NewMockPort(mockSwipePeriod), "mock", nil, cfg)
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("gesture: periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("gesture: I2C open (%q): %w", cfg.I2CBus, err)
	}
	port := apds9960.NewI2CPort(bus, cfg.APDS9960Addr)

	id, ok, err := apds9960.ReadID(port)
	if err != nil {
		bus.Close()
		return fmt.Errorf("gesture: read ID at 0x%02X: %w", cfg.APDS9960Addr, err)
	}
	if !ok {
		bus.Close()
		return fmt.Errorf("gesture: unexpected device ID 0x%02X at 0x%02X (want 0x%02X)", id, cfg.APDS9960Addr, apds9960.DeviceID)
	}
	log.Printf("gesture: APDS-9960 found on %s (ID=0x%02X)", port, id)

	var pin gpio.PinIn
	if cfg.APDS9960IntPin != "" {
		p := gpioreg.ByName(cfg.APDS9960IntPin)
		if p == nil {
			bus.Close()
			return fmt.Errorf("gesture: INT pin %q not found", cfg.APDS9960IntPin)
		}
		// INT is open drain, active low.
		if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			bus.Close()
			return fmt.Errorf("gesture: INT pin %s setup: %w", p, err)
		}
		pin = p
		log.Printf("gesture: waiting for falling edges on %s", p)
	} else {
		log.Printf("gesture: no INT pin configured, polling every %dms", cfg.PollInterval)
	}

	return m.attachBus(bus, port, pin, cfg)
}

// attachBus configures the sensor and keeps bus open for Close. The bus is
// closed right away if configuration fails.
func (m *GestureManager) attachBus(bus i2c.BusCloser, port apds9960.Port, pin gpio.PinIn, cfg *config.Config) error {
	if err := m.InitWithPort(port, "apds9960", pin, cfg); err != nil {
		bus.Close()
		return err
	}
	m.mu.Lock()
	m.bus = bus
	m.mu.Unlock()
	return nil
}

// InitWithPort configures the sensor behind port. pin may be nil, in which
// case WaitForData polls.
func (m *GestureManager) InitWithPort(port apds9960.Port, source string, pin gpio.PinIn, cfg *config.Config) error {
	setup, err := GestureSetup(cfg)
	if err != nil {
		return fmt.Errorf("gesture: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	driver, err := apds9960.Init(port, setup)
	if err != nil {
		return fmt.Errorf("gesture: %s initialization: %w", source, err)
	}
	m.port = port
	m.driver = driver
	m.intPin = pin
	m.poll = time.Duration(cfg.PollInterval) * time.Millisecond
	m.source = source
	m.started = true

	log.Printf("gesture: %s initialized (gain=%s drive=%s pulse=%s entry=%d threshold=%d)",
		source, cfg.GestureGain, setup.LedDrive, cfg.LEDPulse, setup.EntryThreshold, setup.Threshold)
	return nil
}

// Reinitialize runs the full configuration sequence again with the current
// global configuration. The tracked motion, if any, is discarded.
func (m *GestureManager) Reinitialize() error {
	m.mu.Lock()
	port, source, pin, started := m.port, m.source, m.intPin, m.started
	m.mu.Unlock()
	if !started {
		return ErrNotInitialized
	}
	return m.InitWithPort(port, source, pin, config.Get())
}

// Source returns "apds9960" or "mock".
func (m *GestureManager) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// IsAvailable reports whether Init succeeded.
func (m *GestureManager) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// WaitForData blocks until the INT line falls or timeout elapses. Without
// an INT pin it sleeps for the poll interval. It returns true if an edge
// was seen.
func (m *GestureManager) WaitForData(timeout time.Duration) bool {
	m.mu.Lock()
	pin, poll := m.intPin, m.poll
	m.mu.Unlock()

	if pin == nil {
		if poll <= 0 || poll > timeout {
			poll = timeout
		}
		time.Sleep(poll)
		return false
	}
	return pin.WaitForEdge(timeout)
}

// Advance drains the sensor FIFO once. See apds9960.Gestures.Advance.
func (m *GestureManager) Advance() (gesture.Direction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return 0, false, ErrNotInitialized
	}
	return m.driver.Advance()
}

// ReadRegister reads one register.
func (m *GestureManager) ReadRegister(addr byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return 0, ErrNotInitialized
	}
	if isFIFORegister(addr) {
		return 0, fmt.Errorf("register 0x%02X is gesture FIFO data", addr)
	}
	return m.port.ReadReg(addr)
}

// WriteRegister writes one register.
func (m *GestureManager) WriteRegister(addr, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotInitialized
	}
	return m.port.WriteReg(addr, value)
}

// ReadAllRegisters reads every register in the register map.
func (m *GestureManager) ReadAllRegisters() (map[byte]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil, ErrNotInitialized
	}
	out := make(map[byte]byte, len(m.regMap))
	for _, r := range m.regMap {
		v, err := m.port.ReadReg(r.addr)
		if err != nil {
			return nil, fmt.Errorf("read %s (0x%02X): %w", r.Name, r.addr, err)
		}
		out[r.addr] = v
	}
	return out, nil
}

// ExportRegisterConfig returns the writable registers and their values.
func (m *GestureManager) ExportRegisterConfig() (map[byte]byte, error) {
	all, err := m.ReadAllRegisters()
	if err != nil {
		return nil, err
	}
	out := make(map[byte]byte)
	for _, r := range m.regMap {
		if r.Access == "RW" {
			out[r.addr] = all[r.addr]
		}
	}
	return out, nil
}

// GetRegisterMap returns the register metadata.
func (m *GestureManager) GetRegisterMap() []RegisterInfo {
	return m.regMap
}

// Close releases the I2C bus, if one was opened.
func (m *GestureManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	if m.bus == nil {
		return nil
	}
	err := m.bus.Close()
	m.bus = nil
	return err
}
