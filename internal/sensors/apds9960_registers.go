// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "github.com/relabs-tech/gesture_computer/internal/apds9960"

// RegisterInfo describes one device register for the debug UI.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
	addr        byte
}

// BitField describes a field inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// getAPDS9960RegisterMap returns metadata for the APDS-9960 registers used
// by the gesture engine.
// The gesture FIFO data registers are left out: reading them consumes data.
func getAPDS9960RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Enable / Timing
		{addr: apds9960.RegEnable, Address: "0x80", Name: "ENABLE", Description: "Enable states and interrupts", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "GEN", Description: "Gesture enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "PIEN", Description: "Proximity interrupt enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4", Name: "AIEN", Description: "ALS interrupt enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "WEN", Description: "Wait enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "2", Name: "PEN", Description: "Proximity detect enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1", Name: "AEN", Description: "ALS enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "PON", Description: "Power on", Values: "0=Off, 1=On"},
			}},
		{addr: apds9960.RegATime, Address: "0x81", Name: "ATIME", Description: "ALS ADC integration time", Access: "RW", Default: "0xFF"},
		{addr: apds9960.RegWTime, Address: "0x83", Name: "WTIME", Description: "Wait time (non-gesture)", Access: "RW", Default: "0xFF"},
		{addr: apds9960.RegPers, Address: "0x8C", Name: "PERS", Description: "Interrupt persistence filters (non-gesture)", Access: "RW", Default: "0x00"},
		{addr: apds9960.RegConfig1, Address: "0x8D", Name: "CONFIG1", Description: "Configuration register one", Access: "RW", Default: "0x40"},

		// Proximity / LED
		{addr: apds9960.RegPPulse, Address: "0x8E", Name: "PPULSE", Description: "Proximity pulse count and length", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7:6", Name: "PPLEN", Description: "Proximity pulse length", Values: "0=4us, 1=8us, 2=16us, 3=32us"},
				{Bits: "5:0", Name: "PPULSE", Description: "Proximity pulse count", Values: "0-63"},
			}},
		{addr: apds9960.RegControl, Address: "0x8F", Name: "CONTROL", Description: "Gain control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "LDRIVE", Description: "LED drive strength", Values: "0=100mA, 1=50mA, 2=25mA, 3=12.5mA"},
				{Bits: "3:2", Name: "PGAIN", Description: "Proximity gain control", Values: "0=1x, 1=2x, 2=4x, 3=8x"},
				{Bits: "1:0", Name: "AGAIN", Description: "ALS and color gain control", Values: "0=1x, 1=4x, 2=16x, 3=64x"},
			}},
		{addr: apds9960.RegConfig2, Address: "0x90", Name: "CONFIG2", Description: "Configuration register two", Access: "RW", Default: "0x01",
			BitFields: []BitField{
				{Bits: "7", Name: "PSIEN", Description: "Proximity saturation interrupt enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "CPSIEN", Description: "Clear photodiode saturation interrupt enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5:4", Name: "LED_BOOST", Description: "Additional LED current", Values: "0=100%, 1=150%, 2=200%, 3=300%"},
				{Bits: "0", Name: "RESERVED", Description: "Reserved, write as 1", Values: "1"},
			}},
		{addr: apds9960.RegID, Address: "0x92", Name: "ID", Description: "Device ID (should be 0xAB)", Access: "R", Default: "0xAB"},
		{addr: apds9960.RegStatus, Address: "0x93", Name: "STATUS", Description: "Device status", Access: "R", Default: "0x00"},
		{addr: apds9960.RegPData, Address: "0x9C", Name: "PDATA", Description: "Proximity data", Access: "R", Default: "0x00"},
		{addr: apds9960.RegPOffsetUR, Address: "0x9D", Name: "POFFSET_UR", Description: "Proximity offset for UP and RIGHT photodiodes", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "SIGN", Description: "Offset sign", Values: "0=Positive, 1=Negative"},
				{Bits: "6:0", Name: "MAGNITUDE", Description: "Offset magnitude", Values: "0-127"},
			}},
		{addr: apds9960.RegPOffsetDL, Address: "0x9E", Name: "POFFSET_DL", Description: "Proximity offset for DOWN and LEFT photodiodes", Access: "RW", Default: "0x00"},
		{addr: apds9960.RegConfig3, Address: "0x9F", Name: "CONFIG3", Description: "Configuration register three", Access: "RW", Default: "0x00"},

		// Gesture
		{addr: apds9960.RegGPEnTh, Address: "0xA0", Name: "GPENTH", Description: "Gesture proximity enter threshold", Access: "RW", Default: "0x00"},
		{addr: apds9960.RegGExTh, Address: "0xA1", Name: "GEXTH", Description: "Gesture exit threshold", Access: "RW", Default: "0x00"},
		{addr: apds9960.RegGConf1, Address: "0xA2", Name: "GCONF1", Description: "Gesture configuration one", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "GFIFOTH", Description: "Gesture FIFO threshold", Values: "0=1, 1=4, 2=8, 3=16 datasets"},
				{Bits: "5:2", Name: "GEXMSK", Description: "Gesture exit mask (U,D,L,R)", Values: "0-15"},
				{Bits: "1:0", Name: "GEXPERS", Description: "Gesture exit persistence", Values: "0=1st, 1=2nd, 2=4th, 3=7th"},
			}},
		{addr: apds9960.RegGConf2, Address: "0xA3", Name: "GCONF2", Description: "Gesture configuration two", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6:5", Name: "GGAIN", Description: "Gesture gain control", Values: "0=1x, 1=2x, 2=4x, 3=8x"},
				{Bits: "4:3", Name: "GLDRIVE", Description: "Gesture LED drive strength", Values: "0=100mA, 1=50mA, 2=25mA, 3=12.5mA"},
				{Bits: "2:0", Name: "GWTIME", Description: "Gesture wait time", Values: "0=0ms ... 7=39.2ms"},
			}},
		{addr: apds9960.RegGOffsetU, Address: "0xA4", Name: "GOFFSET_U", Description: "Gesture UP offset", Access: "RW", Default: "0x00"},
		{addr: apds9960.RegGOffsetD, Address: "0xA5", Name: "GOFFSET_D", Description: "Gesture DOWN offset", Access: "RW", Default: "0x00"},
		{addr: apds9960.RegGPulse, Address: "0xA6", Name: "GPULSE", Description: "Gesture pulse count and length", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7:6", Name: "GPLEN", Description: "Gesture pulse length", Values: "0=4us, 1=8us, 2=16us, 3=32us"},
				{Bits: "5:0", Name: "GPULSE", Description: "Number of gesture pulses", Values: "0-63"},
			}},
		{addr: apds9960.RegGOffsetL, Address: "0xA7", Name: "GOFFSET_L", Description: "Gesture LEFT offset", Access: "RW", Default: "0x00"},
		{addr: apds9960.RegGOffsetR, Address: "0xA9", Name: "GOFFSET_R", Description: "Gesture RIGHT offset", Access: "RW", Default: "0x00"},
		{addr: apds9960.RegGConf3, Address: "0xAA", Name: "GCONF3", Description: "Gesture configuration three", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "1:0", Name: "GDIMS", Description: "Gesture dimension select", Values: "0=All, 1=U/D, 2=L/R, 3=All"},
			}},
		{addr: apds9960.RegGConf4, Address: "0xAB", Name: "GCONF4", Description: "Gesture configuration four", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "2", Name: "GFIFO_CLR", Description: "Clear GFIFO, GINT, GVALID, GFIFO_OV and GFIFO_LVL", Values: "1=Clear"},
				{Bits: "1", Name: "GIEN", Description: "Gesture interrupt enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "GMODE", Description: "Gesture mode", Values: "0=Exit, 1=Enter"},
			}},
		{addr: apds9960.RegGFLvl, Address: "0xAE", Name: "GFLVL", Description: "Gesture FIFO level (datasets)", Access: "R", Default: "0x00"},
		{addr: apds9960.RegGStatus, Address: "0xAF", Name: "GSTATUS", Description: "Gesture status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "1", Name: "GFOV", Description: "Gesture FIFO overflow", Values: ""},
				{Bits: "0", Name: "GVALID", Description: "Gesture FIFO data valid", Values: ""},
			}},
	}
}

// isFIFORegister reports whether reading addr would pop gesture data.
func isFIFORegister(addr byte) bool {
	return addr >= apds9960.RegGFIFOU
}
