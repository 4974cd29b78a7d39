// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package apds9960

import (
	"fmt"
	"strconv"
	"strings"
)

// LedDrive is an LED drive current setting. Currents above 100 mA are
// reached with the LED boost.
type LedDrive uint8

const (
	D12_5  LedDrive = iota // 12.5 mA, boost 100%
	D18_75                 // 18.75 mA, boost 150%
	D25                    // 25 mA, boost 100%
	D37_5                  // 37.5 mA, boost 150%
	D50                    // 50 mA, boost 100%
	D75                    // 75 mA, boost 150%
	D100                   // 100 mA, boost 100%
	D150                   // 150 mA, boost 150%
	D200                   // 200 mA, boost 200%
	D300                   // 300 mA, boost 300%
)

var ledDriveNames = []string{"12.5", "18.75", "25", "37.5", "50", "75", "100", "150", "200", "300"}

// Drive returns the 2-bit LDRIVE / GLDRIVE code.
func (d LedDrive) Drive() uint8 {
	switch d {
	case D100, D150, D200, D300:
		return 0
	case D50, D75:
		return 1
	case D25, D37_5:
		return 2
	default: // D12_5, D18_75
		return 3
	}
}

// Boost returns the 2-bit LED_BOOST code.
func (d LedDrive) Boost() uint8 {
	switch d {
	case D100, D50, D25, D12_5:
		return 0
	case D150, D75, D37_5, D18_75:
		return 1
	case D200:
		return 2
	default: // D300
		return 3
	}
}

func (d LedDrive) String() string {
	if int(d) < len(ledDriveNames) {
		return ledDriveNames[d] + "mA"
	}
	return fmt.Sprintf("LedDrive(%d)", uint8(d))
}

// ParseLedDrive accepts a current in milliamps, with or without the "mA"
// suffix ("12.5", "100mA").
func ParseLedDrive(s string) (LedDrive, error) {
	v := strings.TrimSuffix(strings.TrimSpace(s), "mA")
	for i, name := range ledDriveNames {
		if v == name {
			return LedDrive(i), nil
		}
	}
	return 0, fmt.Errorf("invalid LED drive %q (valid: %s mA)", s, strings.Join(ledDriveNames, ", "))
}

// PulseLength is the LED pulse length code shared by proximity and gesture
// engines.
type PulseLength uint8

const (
	P4  PulseLength = iota // 4 µs
	P8                     // 8 µs
	P16                    // 16 µs
	P32                    // 32 µs
)

// ParsePulseLength accepts a length in microseconds ("4", "8us").
func ParsePulseLength(s string) (PulseLength, error) {
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "us"))
	if err != nil {
		return 0, fmt.Errorf("invalid LED pulse length %q: %w", s, err)
	}
	switch v {
	case 4:
		return P4, nil
	case 8:
		return P8, nil
	case 16:
		return P16, nil
	case 32:
		return P32, nil
	}
	return 0, fmt.Errorf("LED pulse length must be 4, 8, 16 or 32 us, got %d", v)
}

// Gain is the photodiode gain code.
type Gain uint8

const (
	X1 Gain = iota
	X2
	X4
	X8
)

// ParseGain accepts a multiplier ("1", "4x").
func ParseGain(s string) (Gain, error) {
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "x"))
	if err != nil {
		return 0, fmt.Errorf("invalid gain %q: %w", s, err)
	}
	switch v {
	case 1:
		return X1, nil
	case 2:
		return X2, nil
	case 4:
		return X4, nil
	case 8:
		return X8, nil
	}
	return 0, fmt.Errorf("gain must be 1, 2, 4 or 8, got %d", v)
}
