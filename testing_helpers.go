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
)

// RegisterWrite records one WriteRegister call
type RegisterWrite struct {
	Values []byte
	Reg    byte
}

// MockTransport is a scripted register file for testing bus failures and
// exact register sequences. Registers hold their last written value unless
// reads were queued with QueueReads. Interrupt request registers follow
// the chip's set/clear convention.
type MockTransport struct {
	readErrs  map[byte]error
	writeErrs map[byte]error
	queued    map[byte][]byte
	resetErr  error
	writes    []RegisterWrite
	timeout   time.Duration
	regs      [64]byte
	mu        sync.Mutex
	resets    int
	closed    bool
}

// NewMockTransport creates a connected mock with every register at zero
// and no reset pin
func NewMockTransport() *MockTransport {
	return &MockTransport{
		readErrs:  make(map[byte]error),
		writeErrs: make(map[byte]error),
		queued:    make(map[byte][]byte),
		resetErr:  ErrNoResetPin,
		timeout:   50 * time.Millisecond,
	}
}

// SetRegister sets the value returned by reads of reg
func (m *MockTransport) SetRegister(reg, value byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[reg&0x3F] = value
}

// QueueReads makes the next reads of reg return values in order before
// falling back to the register content
func (m *MockTransport) QueueReads(reg byte, values ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[reg] = append(m.queued[reg], values...)
}

// SetReadError makes every read of reg fail with err. A nil err clears it.
func (m *MockTransport) SetReadError(reg byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.readErrs, reg)
		return
	}
	m.readErrs[reg] = err
}

// SetWriteError makes every write to reg fail with err. A nil err clears it.
func (m *MockTransport) SetWriteError(reg byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.writeErrs, reg)
		return
	}
	m.writeErrs[reg] = err
}

// SetResetError sets what Reset returns. nil simulates a wired RST line.
func (m *MockTransport) SetResetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetErr = err
}

// Writes returns every successful register write in order
func (m *MockTransport) Writes() []RegisterWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RegisterWrite, len(m.writes))
	copy(out, m.writes)
	return out
}

// WritesTo returns the values written to reg, flattened in order
func (m *MockTransport) WritesTo(reg byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []byte
	for _, w := range m.writes {
		if w.Reg == reg {
			out = append(out, w.Values...)
		}
	}
	return out
}

// Resets returns how many times Reset succeeded
func (m *MockTransport) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

// WriteRegister implements Transport
func (m *MockTransport) WriteRegister(reg byte, values ...byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrNotConnected
	}
	if err := m.writeErrs[reg]; err != nil {
		return err
	}

	m.writes = append(m.writes, RegisterWrite{Reg: reg, Values: append([]byte(nil), values...)})
	for _, v := range values {
		switch reg {
		case FIFODataReg, FIFOLevelReg:
			// FIFO content and level are scripted with SetRegister
		case ComIrqReg, DivIrqReg:
			if v&0x80 != 0 {
				m.regs[reg] |= v & 0x7F
			} else {
				m.regs[reg] &^= v & 0x7F
			}
		default:
			m.regs[reg&0x3F] = v
		}
	}
	return nil
}

// ReadRegister implements Transport
func (m *MockTransport) ReadRegister(reg byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readLocked(reg)
}

// ReadRegisters implements Transport
func (m *MockTransport) ReadRegisters(reg byte, count int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]byte, count)
	for i := range out {
		v, err := m.readLocked(reg)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *MockTransport) readLocked(reg byte) (byte, error) {
	if m.closed {
		return 0, ErrNotConnected
	}
	if err := m.readErrs[reg]; err != nil {
		return 0, err
	}
	if q := m.queued[reg]; len(q) > 0 {
		m.queued[reg] = q[1:]
		return q[0], nil
	}
	return m.regs[reg&0x3F], nil
}

// Reset implements Transport
func (m *MockTransport) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets++
	return nil
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetTimeout implements Transport
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// Timeout returns the last timeout set
func (m *MockTransport) Timeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeout
}

// IsConnected returns false after Close
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}
