// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package apds9960

// DefaultAddr is the fixed I2C address of the APDS-9960.
const DefaultAddr = 0x39

// DeviceID is the expected content of the ID register.
const DeviceID = 0xAB

// Register addresses.
const (
	RegEnable    = 0x80
	RegATime     = 0x81
	RegWTime     = 0x83
	RegPers      = 0x8C
	RegConfig1   = 0x8D
	RegPPulse    = 0x8E
	RegControl   = 0x8F
	RegConfig2   = 0x90
	RegID        = 0x92
	RegStatus    = 0x93
	RegPData     = 0x9C
	RegPOffsetUR = 0x9D
	RegPOffsetDL = 0x9E
	RegConfig3   = 0x9F
	RegGPEnTh    = 0xA0
	RegGExTh     = 0xA1
	RegGConf1    = 0xA2
	RegGConf2    = 0xA3
	RegGOffsetU  = 0xA4
	RegGOffsetD  = 0xA5
	RegGPulse    = 0xA6
	RegGOffsetL  = 0xA7
	RegGOffsetR  = 0xA9
	RegGConf3    = 0xAA
	RegGConf4    = 0xAB
	RegGFLvl     = 0xAE
	RegGStatus   = 0xAF
	RegGFIFOU    = 0xFC
	RegGFIFOD    = 0xFD
	RegGFIFOL    = 0xFE
	RegGFIFOR    = 0xFF
)

// ENABLE bits.
const (
	enablePON = 1 << 0
	enablePEN = 1 << 2
	enableGEN = 1 << 6
)

// GCONF4 bits.
const (
	gconf4GMode    = 1 << 0
	gconf4GIEN     = 1 << 1
	gconf4GFIFOClr = 1 << 2
)

// config2Reserved must stay set when CONFIG2 is written.
const config2Reserved = 1 << 0

// gestureEnd clears the FIFO and interrupt status, arms the gesture
// interrupt and leaves gesture mode (GMODE = 0).
const gestureEnd = gconf4GFIFOClr | gconf4GIEN

func encodeEnable() byte {
	return enablePON | enablePEN | enableGEN
}

// encodePulse packs a pulse length code (bits 7:6) and pulse count
// (bits 5:0), shared by PPULSE and GPULSE.
func encodePulse(length PulseLength, count uint8) byte {
	return byte(length)<<6 | count&0x3F
}

// encodeControl packs the proximity gain (bits 3:2) and LED drive
// strength (bits 7:6).
func encodeControl(gain Gain, drive LedDrive) byte {
	return drive.Drive()<<6 | byte(gain)<<2
}

func encodeConfig2(drive LedDrive) byte {
	return drive.Boost()<<4 | config2Reserved
}

// encodeGConf1 packs the FIFO threshold (bits 7:6), exit mask (5:2) and
// exit persistence (1:0).
func encodeGConf1(fifoThreshold, exitMask, exitPersistence uint8) byte {
	return (fifoThreshold&0x03)<<6 | (exitMask&0x0F)<<2 | exitPersistence&0x03
}

// encodeGConf2 packs gesture gain (6:5), gesture LED drive (4:3) and wait
// time (2:0).
func encodeGConf2(gain Gain, drive LedDrive, waitTime uint8) byte {
	return byte(gain)<<5 | drive.Drive()<<3 | waitTime&0x07
}

// encodeOffset converts a signed calibration value into the sign-magnitude
// byte expected by the offset registers.
func encodeOffset(v int8) byte {
	if v >= 0 {
		return byte(v)
	}
	mag := -int16(v)
	if mag > 0x7F {
		mag = 0x7F
	}
	return 0x80 | byte(mag)
}
