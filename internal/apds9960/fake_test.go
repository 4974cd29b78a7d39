// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package apds9960

import (
	"errors"

	"github.com/relabs-tech/gesture_computer/internal/gesture"
)

var errBus = errors.New("bus fault")

type writeOp struct {
	reg, value byte
}

// fakePort is an in-memory sensor: a register file plus a gesture FIFO.
type fakePort struct {
	regs   map[byte]byte
	fifo   []gesture.Sample
	writes []writeOp
	reads  []byte

	failRead      byte // register whose read fails, 0 for none
	failBlock     bool
	failWriteAt   int // 1-based index of the failing write, 0 for none
	failWriteReg  byte
	writesAttempt int
}

func newFakePort() *fakePort {
	return &fakePort{regs: map[byte]byte{RegID: DeviceID}}
}

func (p *fakePort) push(samples ...gesture.Sample) {
	p.fifo = append(p.fifo, samples...)
}

func (p *fakePort) ReadReg(reg byte) (byte, error) {
	p.reads = append(p.reads, reg)
	if p.failRead != 0 && reg == p.failRead {
		return 0, errBus
	}
	if reg == RegGFLvl {
		return byte(len(p.fifo)), nil
	}
	return p.regs[reg], nil
}

func (p *fakePort) WriteReg(reg, value byte) error {
	p.writesAttempt++
	if p.failWriteAt != 0 && p.writesAttempt == p.failWriteAt {
		return errBus
	}
	if p.failWriteReg != 0 && reg == p.failWriteReg {
		return errBus
	}
	p.writes = append(p.writes, writeOp{reg, value})
	p.regs[reg] = value
	if reg == RegGConf4 && value&gconf4GFIFOClr != 0 {
		p.fifo = nil
	}
	return nil
}

func (p *fakePort) ReadBlock(reg byte, buf []byte) error {
	if p.failBlock {
		return errBus
	}
	if reg != RegGFIFOU {
		return errors.New("unexpected block read")
	}
	n := len(buf) / gesture.SampleSize
	for i := 0; i < n && i < len(p.fifo); i++ {
		s := p.fifo[i]
		copy(buf[i*gesture.SampleSize:], []byte{s.Up, s.Down, s.Left, s.Right})
	}
	if n > len(p.fifo) {
		n = len(p.fifo)
	}
	p.fifo = p.fifo[n:]
	return nil
}

// recordingEngine remembers every sample it is given.
type recordingEngine struct {
	advanced []gesture.Sample
	finished int
	result   string
	ok       bool
}

func (e *recordingEngine) Advance(s gesture.Sample) {
	e.advanced = append(e.advanced, s)
}

func (e *recordingEngine) Finish() (string, bool) {
	e.finished++
	return e.result, e.ok
}
