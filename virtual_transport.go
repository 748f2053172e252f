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

package mfrc522

import (
	"sync"
	"time"

	"github.com/ZaparooProject/go-mfrc522/internal/virtual"
)

// VirtualTransport connects a Device to a simulated chip. It is used by the
// tests and by the simulate mode of the command line tool.
type VirtualTransport struct {
	chip     *virtual.Chip
	timeout  time.Duration
	mu       sync.Mutex
	resetPin bool
}

// NewVirtualTransport wraps chip. The RST line starts unwired, so Init
// uses a soft reset until SetResetPin is called.
func NewVirtualTransport(chip *virtual.Chip) *VirtualTransport {
	return &VirtualTransport{
		chip:    chip,
		timeout: 50 * time.Millisecond,
	}
}

// Chip returns the simulated chip
func (v *VirtualTransport) Chip() *virtual.Chip {
	return v.chip
}

// SetResetPin wires or unwires the simulated RST line
func (v *VirtualTransport) SetResetPin(wired bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resetPin = wired
}

// WriteRegister implements Transport
func (v *VirtualTransport) WriteRegister(reg byte, values ...byte) error {
	return v.chip.WriteRegister(reg, values...)
}

// ReadRegister implements Transport
func (v *VirtualTransport) ReadRegister(reg byte) (byte, error) {
	return v.chip.ReadRegister(reg)
}

// ReadRegisters implements Transport
func (v *VirtualTransport) ReadRegisters(reg byte, count int) ([]byte, error) {
	return v.chip.ReadRegisters(reg, count)
}

// Reset pulses the simulated RST line
func (v *VirtualTransport) Reset() error {
	v.mu.Lock()
	wired := v.resetPin
	v.mu.Unlock()

	if !wired {
		return ErrNoResetPin
	}
	v.chip.HardReset()
	return nil
}

// Close implements Transport
func (v *VirtualTransport) Close() error {
	return v.chip.Close()
}

// SetTimeout implements Transport
func (v *VirtualTransport) SetTimeout(timeout time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.timeout = timeout
	return nil
}

// IsConnected reports whether the chip is still open
func (v *VirtualTransport) IsConnected() bool {
	return !v.chip.Closed()
}

// Type returns TransportMock
func (*VirtualTransport) Type() TransportType {
	return TransportMock
}
