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

// Package console prints the human readable progress lines of a sweep,
// either on stdout or on a serial terminal.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// DefaultBaud is the speed of the serial console
const DefaultBaud = 9600

// Formatter writes the bare message followed by LineEnding. Level, time
// and fields are dropped: the console is read by people, not parsed.
type Formatter struct {
	LineEnding string
}

// Format implements logrus.Formatter
func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	ending := f.LineEnding
	if ending == "" {
		ending = "\n"
	}
	out := make([]byte, 0, len(entry.Message)+len(ending))
	out = append(out, entry.Message...)
	return append(out, ending...), nil
}

// New returns a logger printing raw lines on w
func New(w io.Writer, lineEnding string) *logrus.Logger {
	return &logrus.Logger{
		Out:       w,
		Formatter: &Formatter{LineEnding: lineEnding},
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
}

// Config selects where console lines go
type Config struct {
	// Port is a serial device such as /dev/ttyUSB0. Empty means stdout.
	Port string
	Baud int
}

// Console is an open console output
type Console struct {
	*logrus.Logger
	port serial.Port
}

// Open opens the console described by cfg. Serial ports use 8N1 and CRLF
// line endings.
func Open(cfg Config) (*Console, error) {
	if cfg.Port == "" {
		return &Console{Logger: New(os.Stdout, "\n")}, nil
	}

	baud := cfg.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	if baud < 0 {
		return nil, fmt.Errorf("invalid baud rate %d", baud)
	}

	port, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open console port %s: %w", cfg.Port, err)
	}

	return &Console{Logger: New(port, "\r\n"), port: port}, nil
}

// Close closes the serial port, if any
func (c *Console) Close() error {
	if c.port == nil {
		return nil
	}
	if err := c.port.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("failed to close console port: %w", err)
	}
	return nil
}
