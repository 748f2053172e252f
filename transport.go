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
	"errors"
	"time"
)

// ErrNoResetPin is returned by Transport.Reset when the RST line is not wired.
// Device.Init falls back to a soft reset in that case.
var ErrNoResetPin = errors.New("reset pin not configured")

// Transport defines register level access to an MFRC522 chip.
// This can be implemented by SPI, I2C or UART backends.
type Transport interface {
	// WriteRegister writes one or more values to a register. Writing
	// several values to FIFODataReg pushes them all into the FIFO.
	WriteRegister(reg byte, values ...byte) error

	// ReadRegister reads a single register
	ReadRegister(reg byte) (byte, error)

	// ReadRegisters reads count values from the same register, which is
	// how the FIFO is drained
	ReadRegisters(reg byte, count int) ([]byte, error)

	// Reset pulses the hardware reset line
	Reset() error

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the timeout for a single bus transaction
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportMock represents a simulated or mock transport for testing
	TransportMock TransportType = "mock"
)
