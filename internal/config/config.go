// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/gesture_computer/internal/apds9960"
)

// Config holds all application configuration values.
type Config struct {
	// Sensor Hardware
	I2CBus         string `yaml:"i2c_bus"` // periph bus name, "" for the first bus
	APDS9960Addr   uint16 `yaml:"apds9960_i2c_addr"`
	APDS9960IntPin string `yaml:"apds9960_int_pin"` // GPIO name; empty polls instead
	PollInterval   int    `yaml:"poll_interval"`    // milliseconds, used without INT pin
	MockSensor     bool   `yaml:"mock_sensor"`

	// Gesture Engine Configuration
	GestureGain          string `yaml:"gesture_gain"` // 1, 2, 4, 8
	LEDDrive             string `yaml:"led_drive"`    // mA: 12.5 ... 300
	LEDPulse             string `yaml:"led_pulse"`    // µs: 4, 8, 16, 32
	GesturePulseCount    uint8  `yaml:"gesture_pulse_count"`
	GestureFIFOThreshold uint8  `yaml:"gesture_fifo_threshold"` // GFIFOTH code 0-3
	GestureExitMask      uint8  `yaml:"gesture_exit_mask"`
	GestureExitPersist   uint8  `yaml:"gesture_exit_persistence"`

	// Offsets (signed, -127..127)
	GOffsetUp    int8 `yaml:"goffset_up"`
	GOffsetDown  int8 `yaml:"goffset_down"`
	GOffsetLeft  int8 `yaml:"goffset_left"`
	GOffsetRight int8 `yaml:"goffset_right"`
	POffsetUR    int8 `yaml:"poffset_ur"`
	POffsetDL    int8 `yaml:"poffset_dl"`

	// Thresholds
	GestureEntryThreshold uint8 `yaml:"gesture_entry_threshold"`
	GestureThreshold      uint8 `yaml:"gesture_threshold"`

	// MQTT
	MQTTBroker           string `yaml:"mqtt_broker"`
	MQTTClientIDProducer string `yaml:"mqtt_client_id_producer"`
	MQTTClientIDConsole  string `yaml:"mqtt_client_id_console"`
	MQTTClientIDWeb      string `yaml:"mqtt_client_id_web"`
	MQTTClientIDDisplay  string `yaml:"mqtt_client_id_display"`

	// Topics
	TopicGesture string `yaml:"topic_gesture"`

	// Web Server
	WebServerPort int `yaml:"web_server_port"`

	// Register Debug
	RegisterDebugPort          int    `yaml:"register_debug_port"`
	RegisterDebugAllowedWrites string `yaml:"register_debug_allowed_writes"` // e.g. "0x80-0x9F,0xA0-0xAB"

	// Display
	DisplayUpdateInterval int `yaml:"display_update_interval"` // milliseconds
}

// Package-level singleton: InitGlobal sets it once, Get reads it under a
// read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		APDS9960Addr:          apds9960.DefaultAddr,
		PollInterval:          20,
		GestureGain:           "4",
		LEDDrive:              "100",
		LEDPulse:              "8",
		GesturePulseCount:     apds9960.DefaultPulseCount,
		GestureFIFOThreshold:  apds9960.DefaultFIFOThreshold,
		GestureEntryThreshold: 40,
		GestureThreshold:      30,
		MQTTClientIDProducer:  "gesture-producer",
		MQTTClientIDConsole:   "gesture-console-subscriber",
		MQTTClientIDWeb:       "gesture-web-subscriber",
		MQTTClientIDDisplay:   "gesture-display-subscriber",
		TopicGesture:          "gesture/event",
		WebServerPort:         8080,
		RegisterDebugPort:     8081,
		DisplayUpdateInterval: 200,
	}
}

// Load reads the configuration file and returns a Config struct. Files
// ending in .yaml or .yml are decoded as YAML, anything else as KEY=VALUE
// lines.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(file)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("error decoding YAML config: %w", err)
		}
	default:
		if err := cfg.parseLines(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) parseLines(file *os.File) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := c.setValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Sensor Hardware
	case "I2C_BUS":
		c.I2CBus = value
	case "APDS9960_I2C_ADDR":
		addr, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid APDS9960_I2C_ADDR %q: %w", value, perr)
		}
		c.APDS9960Addr = uint16(addr)
	case "APDS9960_INT_PIN":
		c.APDS9960IntPin = value
	case "POLL_INTERVAL":
		c.PollInterval, err = parseInt(key, value)
	case "MOCK_SENSOR":
		c.MockSensor, err = strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_SENSOR %q: %w", value, err)
		}

	// Gesture Engine Configuration
	case "GESTURE_GAIN":
		c.GestureGain = value
	case "LED_DRIVE":
		c.LEDDrive = value
	case "LED_PULSE":
		c.LEDPulse = value
	case "GESTURE_PULSE_COUNT":
		c.GesturePulseCount, err = parseByte(key, value, 1, 63)
	case "GESTURE_FIFO_THRESHOLD":
		c.GestureFIFOThreshold, err = parseByte(key, value, 0, 3)
	case "GESTURE_EXIT_MASK":
		c.GestureExitMask, err = parseByte(key, value, 0, 15)
	case "GESTURE_EXIT_PERSISTENCE":
		c.GestureExitPersist, err = parseByte(key, value, 0, 3)

	// Offsets
	case "GOFFSET_UP":
		c.GOffsetUp, err = parseOffset(key, value)
	case "GOFFSET_DOWN":
		c.GOffsetDown, err = parseOffset(key, value)
	case "GOFFSET_LEFT":
		c.GOffsetLeft, err = parseOffset(key, value)
	case "GOFFSET_RIGHT":
		c.GOffsetRight, err = parseOffset(key, value)
	case "POFFSET_UR":
		c.POffsetUR, err = parseOffset(key, value)
	case "POFFSET_DL":
		c.POffsetDL, err = parseOffset(key, value)

	// Thresholds
	case "GESTURE_ENTRY_THRESHOLD":
		c.GestureEntryThreshold, err = parseByte(key, value, 0, 255)
	case "GESTURE_THRESHOLD":
		c.GestureThreshold, err = parseByte(key, value, 0, 255)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_GESTURE":
		c.TopicGesture = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseInt(key, value)
	case "REGISTER_DEBUG_PORT":
		c.RegisterDebugPort, err = parseInt(key, value)
	case "REGISTER_DEBUG_ALLOWED_WRITES":
		c.RegisterDebugAllowedWrites = value

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseInt(key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return v, nil
}

func parseByte(key, value string, lo, hi int) (uint8, error) {
	v, err := strconv.ParseInt(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if int(v) < lo || int(v) > hi {
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, v)
	}
	return uint8(v), nil
}

func parseOffset(key, value string) (int8, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v < -127 || v > 127 {
		return 0, fmt.Errorf("%s must be -127..127, got %d", key, v)
	}
	return int8(v), nil
}

// validate checks that all required fields are set and that the sensor
// settings map onto device codes.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicGesture == "" {
		return fmt.Errorf("TOPIC_GESTURE is required")
	}
	if c.APDS9960IntPin == "" && c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL is required when APDS9960_INT_PIN is not set")
	}
	if _, err := apds9960.ParseGain(c.GestureGain); err != nil {
		return fmt.Errorf("GESTURE_GAIN: %w", err)
	}
	if _, err := apds9960.ParseLedDrive(c.LEDDrive); err != nil {
		return fmt.Errorf("LED_DRIVE: %w", err)
	}
	if _, err := apds9960.ParsePulseLength(c.LEDPulse); err != nil {
		return fmt.Errorf("LED_PULSE: %w", err)
	}

	// Register fields are masked when encoded, so out-of-range values from
	// either file format must be rejected here.
	fields := []struct {
		key    string
		v      int
		lo, hi int
	}{
		{"GESTURE_PULSE_COUNT", int(c.GesturePulseCount), 1, 63},
		{"GESTURE_FIFO_THRESHOLD", int(c.GestureFIFOThreshold), 0, 3},
		{"GESTURE_EXIT_MASK", int(c.GestureExitMask), 0, 15},
		{"GESTURE_EXIT_PERSISTENCE", int(c.GestureExitPersist), 0, 3},
		{"GOFFSET_UP", int(c.GOffsetUp), -127, 127},
		{"GOFFSET_DOWN", int(c.GOffsetDown), -127, 127},
		{"GOFFSET_LEFT", int(c.GOffsetLeft), -127, 127},
		{"GOFFSET_RIGHT", int(c.GOffsetRight), -127, 127},
		{"POFFSET_UR", int(c.POffsetUR), -127, 127},
		{"POFFSET_DL", int(c.POffsetDL), -127, 127},
	}
	for _, f := range fields {
		if f.v < f.lo || f.v > f.hi {
			return fmt.Errorf("%s must be %d..%d, got %d", f.key, f.lo, f.hi, f.v)
		}
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
