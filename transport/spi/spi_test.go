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

package spi

import (
	"errors"
	"testing"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
)

// fakeConn answers reads from a register file and records every frame
type fakeConn struct {
	err    error
	cs     *recordingPin
	regs   map[byte][]byte
	frames [][]byte
	// csLow records whether chip select was low during each frame
	csLow []bool
}

func (*fakeConn) String() string { return "fake" }

func (*fakeConn) Duplex() conn.Duplex { return conn.Full }

func (*fakeConn) TxPackets([]spi.Packet) error { return errors.New("not supported") }

func (c *fakeConn) Tx(w, r []byte) error {
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, append([]byte(nil), w...))
	if c.cs != nil {
		c.csLow = append(c.csLow, c.cs.L == gpio.Low)
	}
	for i := 0; r != nil && i < len(w)-1; i++ {
		if w[i]&readBit == 0 {
			continue
		}
		reg := (w[i] & 0x7E) >> 1
		if vals := c.regs[reg]; len(vals) > 0 {
			r[i+1] = vals[0]
			c.regs[reg] = vals[1:]
		}
	}
	return nil
}

type recordingPin struct {
	gpiotest.Pin
	levels []gpio.Level
}

func (p *recordingPin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return p.Pin.Out(l)
}

func TestAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		reg  byte
		read bool
		want byte
	}{
		{name: "Write_Command", reg: mfrc522.CommandReg, want: 0x02},
		{name: "Read_Command", reg: mfrc522.CommandReg, read: true, want: 0x82},
		{name: "Write_FIFOData", reg: mfrc522.FIFODataReg, want: 0x12},
		{name: "Read_FIFOData", reg: mfrc522.FIFODataReg, read: true, want: 0x92},
		{name: "Read_Version", reg: mfrc522.VersionReg, read: true, want: 0xEE},
		{name: "Highest_Register", reg: 0x3F, want: 0x7E},
		{name: "Out_Of_Range_Masked", reg: 0x40, want: 0x00},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, address(tt.reg, tt.read))
		})
	}
}

func TestTransport_WriteRegister(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{}
	tr, err := newTransport(fc, nil, nil, "SPI0.0")
	require.NoError(t, err)

	require.NoError(t, tr.WriteRegister(mfrc522.CommandReg, mfrc522.PCDSoftReset))
	require.NoError(t, tr.WriteRegister(mfrc522.FIFODataReg, 0x30, 0x04, 0x26, 0xEE))
	require.NoError(t, tr.WriteRegister(mfrc522.ModeReg))

	assert.Equal(t, [][]byte{
		{0x02, mfrc522.PCDSoftReset},
		{0x12, 0x30, 0x04, 0x26, 0xEE},
	}, fc.frames)
}

func TestTransport_ReadRegister(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{regs: map[byte][]byte{mfrc522.VersionReg: {0x92}}}
	tr, err := newTransport(fc, nil, nil, "SPI0.0")
	require.NoError(t, err)

	v, err := tr.ReadRegister(mfrc522.VersionReg)
	require.NoError(t, err)
	assert.Equal(t, byte(0x92), v)
	assert.Equal(t, [][]byte{{0xEE, 0x00}}, fc.frames)
}

func TestTransport_ReadRegisters(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{regs: map[byte][]byte{mfrc522.FIFODataReg: {0x04, 0x00, 0x11}}}
	tr, err := newTransport(fc, nil, nil, "SPI0.0")
	require.NoError(t, err)

	data, err := tr.ReadRegisters(mfrc522.FIFODataReg, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x00, 0x11}, data)
	assert.Equal(t, [][]byte{{0x92, 0x92, 0x92, 0x00}}, fc.frames)

	data, err = tr.ReadRegisters(mfrc522.FIFODataReg, 0)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Len(t, fc.frames, 1)
}

func TestTransport_BusError(t *testing.T) {
	t.Parallel()

	busErr := errors.New("bus fault")
	tr, err := newTransport(&fakeConn{err: busErr}, nil, nil, "SPI0.0")
	require.NoError(t, err)

	_, err = tr.ReadRegister(mfrc522.VersionReg)
	require.ErrorIs(t, err, busErr)
	assert.Contains(t, err.Error(), "SPI0.0")

	require.ErrorIs(t, tr.WriteRegister(mfrc522.CommandReg, 0), busErr)

	_, err = tr.ReadRegisters(mfrc522.FIFODataReg, 2)
	require.ErrorIs(t, err, busErr)
}

func TestTransport_ChipSelect(t *testing.T) {
	t.Parallel()

	cs := &recordingPin{Pin: gpiotest.Pin{N: "GPIO8"}}
	fc := &fakeConn{cs: cs}
	tr, err := newTransport(fc, nil, cs, "SPI0.0")
	require.NoError(t, err)

	require.NoError(t, tr.WriteRegister(mfrc522.CommandReg, 0))
	_, err = tr.ReadRegister(mfrc522.ComIrqReg)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true}, fc.csLow)
	assert.Equal(t, gpio.High, cs.L)
	// idle high at start, then low/high around each frame
	assert.Equal(t, []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low, gpio.High}, cs.levels)
}

func TestTransport_Reset(t *testing.T) {
	t.Parallel()

	t.Run("Pulses_RST", func(t *testing.T) {
		t.Parallel()

		rst := &recordingPin{Pin: gpiotest.Pin{N: "GPIO25"}}
		tr, err := newTransport(&fakeConn{}, rst, nil, "SPI0.0")
		require.NoError(t, err)

		require.NoError(t, tr.Reset())
		assert.Equal(t, []gpio.Level{gpio.High, gpio.Low, gpio.High}, rst.levels)
	})

	t.Run("Unwired", func(t *testing.T) {
		t.Parallel()

		tr, err := newTransport(&fakeConn{}, nil, nil, "SPI0.0")
		require.NoError(t, err)
		require.ErrorIs(t, tr.Reset(), mfrc522.ErrNoResetPin)
	})
}

func TestTransport_Close(t *testing.T) {
	t.Parallel()

	tr, err := newTransport(&fakeConn{}, nil, nil, "SPI0.0")
	require.NoError(t, err)
	assert.True(t, tr.IsConnected())
	assert.Equal(t, mfrc522.TransportSPI, tr.Type())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.False(t, tr.IsConnected())

	_, err = tr.ReadRegister(mfrc522.VersionReg)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, tr.Reset(), ErrClosed)
}

func TestTransport_SetTimeout(t *testing.T) {
	t.Parallel()

	tr, err := newTransport(&fakeConn{}, nil, nil, "SPI0.0")
	require.NoError(t, err)
	require.NoError(t, tr.SetTimeout(0))
	require.Error(t, tr.SetTimeout(-1))
}

func TestNew_InvalidSpeed(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Bus: "SPI0.0", Speed: MaxSpeed + 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SPI speed")
}
