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

// Package spi provides the SPI transport for the MFRC522, using periph.io
// for the bus and the GPIO lines
package spi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// DefaultSpeed is a safe bus clock for jumper wired modules. The chip
	// accepts up to 10 MHz.
	DefaultSpeed = 4 * physic.MegaHertz

	// MaxSpeed is the fastest SPI clock the MFRC522 supports
	MaxSpeed = 10 * physic.MegaHertz

	// readBit marks a read in the address byte
	readBit = 0x80

	// resetPulse is how long RST is held low; resetSettle covers the
	// oscillator start up once it is released
	resetPulse  = time.Millisecond
	resetSettle = 50 * time.Millisecond
)

// ErrClosed is returned when the transport is used after Close
var ErrClosed = errors.New("spi transport closed")

// Config describes how the MFRC522 is wired
type Config struct {
	// Bus is a periph.io SPI port name such as "SPI0.0" or "/dev/spidev0.0".
	// Empty selects the first available port.
	Bus string
	// ResetPin is the GPIO connected to RST, for example "GPIO25". Empty
	// leaves it unwired and Device.Init falls back to a soft reset.
	ResetPin string
	// CSPin drives the chip select line by hand when SDA is not wired to
	// the CE line of the bus
	CSPin string
	// Speed is the bus clock. Zero uses DefaultSpeed.
	Speed physic.Frequency
}

// Transport implements the mfrc522.Transport interface over SPI
type Transport struct {
	port    spi.PortCloser
	conn    spi.Conn
	reset   gpio.PinOut
	cs      gpio.PinOut
	bus     string
	timeout time.Duration
	mu      sync.Mutex
	closed  bool
}

// New opens the SPI port and the GPIO lines described by cfg
func New(cfg Config) (*Transport, error) {
	if cfg.Speed == 0 {
		cfg.Speed = DefaultSpeed
	}
	if cfg.Speed < 0 || cfg.Speed > MaxSpeed {
		return nil, fmt.Errorf("invalid SPI speed %s, max %s", cfg.Speed, MaxSpeed)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	var reset, cs gpio.PinOut
	if cfg.ResetPin != "" {
		pin := gpioreg.ByName(cfg.ResetPin)
		if pin == nil {
			return nil, fmt.Errorf("unknown reset pin %s", cfg.ResetPin)
		}
		reset = pin
	}
	if cfg.CSPin != "" {
		pin := gpioreg.ByName(cfg.CSPin)
		if pin == nil {
			return nil, fmt.Errorf("unknown chip select pin %s", cfg.CSPin)
		}
		cs = pin
	}

	port, err := spireg.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI bus %s: %w", cfg.Bus, err)
	}

	conn, err := port.Connect(cfg.Speed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure SPI bus %s: %w", cfg.Bus, err)
	}

	t, err := newTransport(conn, reset, cs, cfg.Bus)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	t.port = port
	return t, nil
}

// newTransport wraps an already connected bus. Both pins are optional.
func newTransport(conn spi.Conn, reset, cs gpio.PinOut, bus string) (*Transport, error) {
	// RST low powers the chip down, CS low selects it
	for _, pin := range []gpio.PinOut{reset, cs} {
		if pin == nil {
			continue
		}
		if err := pin.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("failed to drive %s high: %w", pin, err)
		}
	}

	return &Transport{
		conn:    conn,
		reset:   reset,
		cs:      cs,
		bus:     bus,
		timeout: 50 * time.Millisecond,
	}, nil
}

// address returns the first byte of an SPI frame for reg
func address(reg byte, read bool) byte {
	addr := (reg << 1) & 0x7E
	if read {
		addr |= readBit
	}
	return addr
}

// tx runs one chip select framed transfer
func (t *Transport) tx(w, r []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	if t.cs != nil {
		if err := t.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("chip select: %w", err)
		}
		defer func() { _ = t.cs.Out(gpio.High) }()
	}

	if err := t.conn.Tx(w, r); err != nil {
		return fmt.Errorf("SPI transfer on %s failed: %w", t.bus, err)
	}
	return nil
}

// WriteRegister implements mfrc522.Transport. Several values go out in a
// single frame, which is how the FIFO is filled.
func (t *Transport) WriteRegister(reg byte, values ...byte) error {
	if len(values) == 0 {
		return nil
	}
	w := make([]byte, 0, 1+len(values))
	w = append(w, address(reg, false))
	w = append(w, values...)
	return t.tx(w, nil)
}

// ReadRegister implements mfrc522.Transport
func (t *Transport) ReadRegister(reg byte) (byte, error) {
	w := []byte{address(reg, true), 0}
	r := make([]byte, len(w))
	if err := t.tx(w, r); err != nil {
		return 0, err
	}
	return r[1], nil
}

// ReadRegisters implements mfrc522.Transport. The address is repeated for
// every byte and a zero ends the frame; each answer arrives one byte after
// the address that asked for it.
func (t *Transport) ReadRegisters(reg byte, count int) ([]byte, error) {
	if count <= 0 {
		return nil, nil
	}

	w := make([]byte, count+1)
	addr := address(reg, true)
	for i := 0; i < count; i++ {
		w[i] = addr
	}
	r := make([]byte, len(w))
	if err := t.tx(w, r); err != nil {
		return nil, err
	}
	return r[1:], nil
}

// Reset implements mfrc522.Transport by pulsing RST low
func (t *Transport) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.reset == nil {
		return mfrc522.ErrNoResetPin
	}

	if err := t.reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("reset pin low: %w", err)
	}
	time.Sleep(resetPulse)
	if err := t.reset.Out(gpio.High); err != nil {
		return fmt.Errorf("reset pin high: %w", err)
	}
	time.Sleep(resetSettle)
	return nil
}

// SetTimeout implements mfrc522.Transport. SPI transfers are clocked by the
// host and never block on the chip, so the value is only recorded.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout < 0 {
		return fmt.Errorf("invalid timeout %s", timeout)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// Close releases the SPI port. The pins keep their level.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI bus %s: %w", t.bus, err)
	}
	return nil
}

// IsConnected implements mfrc522.Transport
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed && t.conn != nil
}

// Type implements mfrc522.Transport
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportSPI
}

// Ensure Transport implements mfrc522.Transport
var _ mfrc522.Transport = (*Transport)(nil)
