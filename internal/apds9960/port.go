// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package apds9960

import (
	"errors"

	"periph.io/x/conn/v3/i2c"
)

// Port is the register transport to the sensor. Errors are passed through
// this package untouched.
type Port interface {
	// ReadReg reads a single register.
	ReadReg(reg byte) (byte, error)
	// WriteReg writes a single register.
	WriteReg(reg, value byte) error
	// ReadBlock reads len(buf) consecutive bytes starting at reg.
	ReadBlock(reg byte, buf []byte) error
}

// I2CPort talks to the sensor over a periph.io I2C bus.
type I2CPort struct {
	dev i2c.Dev
}

var _ Port = (*I2CPort)(nil)

// NewI2CPort binds the sensor at addr on bus. An addr of 0 selects
// DefaultAddr. The bus is borrowed: closing it is up to the caller.
func NewI2CPort(bus i2c.Bus, addr uint16) *I2CPort {
	if addr == 0 {
		addr = DefaultAddr
	}
	return &I2CPort{dev: i2c.Dev{Addr: addr, Bus: bus}}
}

func (p *I2CPort) ReadReg(reg byte) (byte, error) {
	var b [1]byte
	if err := p.dev.Tx([]byte{reg}, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *I2CPort) WriteReg(reg, value byte) error {
	return p.dev.Tx([]byte{reg, value}, nil)
}

func (p *I2CPort) ReadBlock(reg byte, buf []byte) error {
	if len(buf) == 0 {
		return errors.New("apds9960: empty block read")
	}
	return p.dev.Tx([]byte{reg}, buf)
}

// String returns the bus address for logs.
func (p *I2CPort) String() string {
	return p.dev.String()
}
