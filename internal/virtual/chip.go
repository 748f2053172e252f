// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package virtual

import (
	"errors"
	"fmt"
	"sync"
)

// Register addresses and bits the simulation reacts to
const (
	regCommand    = 0x01
	regComIrq     = 0x04
	regDivIrq     = 0x05
	regError      = 0x06
	regStatus2    = 0x08
	regFIFOData   = 0x09
	regFIFOLevel  = 0x0A
	regControl    = 0x0C
	regBitFraming = 0x0D
	regMode       = 0x11
	regTxControl  = 0x14
	regCRCResultH = 0x21
	regCRCResultL = 0x22
	regVersion    = 0x37

	pcdIdle       = 0x00
	pcdCalcCRC    = 0x03
	pcdTransceive = 0x0C
	pcdMFAuthent  = 0x0E
	pcdSoftReset  = 0x0F

	irqTimer  = 0x01
	irqIdle   = 0x10
	irqRx     = 0x20
	irqCRC    = 0x04
	startSend = 0x80
	crypto1On = 0x08
	antenna   = 0x03

	fifoSize = 64
)

// ErrClosed is returned by every register access after Close
var ErrClosed = errors.New("virtual chip closed")

// Chip is a register level MFRC522 simulation. Commands complete as soon as
// they are started, so interrupt bits are already set on the first poll.
type Chip struct {
	tag        *Tag
	fifo       []byte
	commands   []byte
	regs       [64]byte
	mu         sync.Mutex
	hardResets int
	softResets int
	version    byte
	crypto     bool
	closed     bool
}

// NewChip creates a v2.0 chip with tag in its field. tag may be nil.
func NewChip(tag *Tag) *Chip {
	c := &Chip{
		tag:     tag,
		version: 0x92,
	}
	c.powerOn()
	return c
}

func (c *Chip) powerOn() {
	c.regs = [64]byte{}
	c.regs[regCommand] = 0x20
	c.regs[regComIrq] = 0x14
	c.regs[regMode] = 0x3F
	c.regs[regTxControl] = 0x80
	c.fifo = nil
	c.crypto = false
	if c.tag != nil {
		c.tag.powerCycle()
	}
}

// SetTag places a tag in the field, replacing the previous one
func (c *Chip) SetTag(tag *Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tag = tag
}

// SetVersion changes the content of VersionReg
func (c *Chip) SetVersion(version byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = version
}

// HardReset simulates a pulse on the RST line
func (c *Chip) HardReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hardResets++
	c.powerOn()
}

// Resets returns how many hard and soft resets happened
func (c *Chip) Resets() (hard, soft int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hardResets, c.softResets
}

// Register returns the raw content of a register without side effects
func (c *Chip) Register(reg byte) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[reg&0x3F]
}

// Crypto1 reports whether MFCrypto1On is set
func (c *Chip) Crypto1() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crypto
}

// Commands lists every PCD command written to CommandReg
func (c *Chip) Commands() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.commands...)
}

// Close makes every further register access fail
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called
func (c *Chip) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// WriteRegister writes values to reg one after the other
func (c *Chip) WriteRegister(reg byte, values ...byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if reg >= 0x40 {
		return fmt.Errorf("invalid register 0x%02X", reg)
	}

	if reg == regFIFOData {
		c.fifo = append(c.fifo, values...)
		if len(c.fifo) > fifoSize {
			c.fifo = c.fifo[:fifoSize]
			c.regs[regError] |= 0x10 // BufferOvfl
		}
		return nil
	}

	for _, v := range values {
		c.write(reg, v)
	}
	return nil
}

func (c *Chip) write(reg, v byte) {
	switch reg {
	case regComIrq, regDivIrq:
		// bit 7 selects whether the marked bits are set or cleared
		if v&0x80 != 0 {
			c.regs[reg] |= v & 0x7F
		} else {
			c.regs[reg] &^= v & 0x7F
		}

	case regFIFOLevel:
		if v&0x80 != 0 {
			c.fifo = nil
			c.regs[regError] &^= 0x10
		}

	case regStatus2:
		c.regs[reg] = v &^ crypto1On
		c.crypto = c.crypto && v&crypto1On != 0
		if !c.crypto && c.tag != nil {
			c.tag.stopCrypto()
		}

	case regTxControl:
		c.regs[reg] = v
		if v&antenna == 0 && c.tag != nil {
			c.tag.powerCycle()
		}

	case regCommand:
		c.regs[reg] = v
		c.commands = append(c.commands, v&0x0F)
		c.execute(v & 0x0F)

	case regBitFraming:
		c.regs[reg] = v
		if v&startSend != 0 && c.regs[regCommand]&0x0F == pcdTransceive {
			c.transceive()
		}

	default:
		c.regs[reg] = v
	}
}

func (c *Chip) execute(cmd byte) {
	switch cmd {
	case pcdSoftReset:
		c.softResets++
		c.powerOn()

	case pcdCalcCRC:
		crc := CRCA(c.fifo)
		c.regs[regCRCResultL] = crc[0]
		c.regs[regCRCResultH] = crc[1]
		c.fifo = nil
		c.regs[regDivIrq] |= irqCRC

	case pcdMFAuthent:
		data := append([]byte(nil), c.fifo...)
		c.fifo = nil
		c.regs[regError] = 0
		c.crypto = len(data) == 12 && c.tag != nil && c.antennaOn() &&
			c.tag.authenticate(data[0], data[1], data[2:8], data[8:12])
		if c.crypto {
			c.regs[regComIrq] |= irqIdle
		} else {
			c.regs[regComIrq] |= irqTimer
		}
		c.regs[regCommand] = pcdIdle
	}
}

// transceive sends the FIFO to the tag and loads its answer
func (c *Chip) transceive() {
	c.regs[regBitFraming] &^= startSend
	txLastBits := c.regs[regBitFraming] & 0x07

	data := append([]byte(nil), c.fifo...)
	c.fifo = nil
	c.regs[regError] = 0

	if c.tag == nil || !c.antennaOn() {
		c.regs[regComIrq] |= irqTimer
		return
	}

	resp, lastBits, ok := c.tag.handle(data, txLastBits)
	if !ok {
		c.regs[regComIrq] |= irqTimer
		return
	}

	c.fifo = resp
	c.regs[regControl] = c.regs[regControl]&^0x07 | lastBits
	c.regs[regComIrq] |= irqRx | irqIdle
}

func (c *Chip) antennaOn() bool {
	return c.regs[regTxControl]&antenna == antenna
}

// ReadRegister reads reg. FIFODataReg pops one byte.
func (c *Chip) ReadRegister(reg byte) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	if reg >= 0x40 {
		return 0, fmt.Errorf("invalid register 0x%02X", reg)
	}
	return c.read(reg), nil
}

// ReadRegisters reads reg count times
func (c *Chip) ReadRegisters(reg byte, count int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if reg >= 0x40 {
		return nil, fmt.Errorf("invalid register 0x%02X", reg)
	}

	out := make([]byte, count)
	for i := range out {
		out[i] = c.read(reg)
	}
	return out, nil
}

func (c *Chip) read(reg byte) byte {
	switch reg {
	case regFIFOLevel:
		return byte(len(c.fifo))
	case regFIFOData:
		if len(c.fifo) == 0 {
			return 0
		}
		v := c.fifo[0]
		c.fifo = c.fifo[1:]
		return v
	case regStatus2:
		if c.crypto {
			return c.regs[reg] | crypto1On
		}
		return c.regs[reg]
	case regVersion:
		return c.version
	default:
		return c.regs[reg]
	}
}
