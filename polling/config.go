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

package polling

import (
	"errors"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
)

// DefaultPayload is written to every data block when nothing else is
// configured
const DefaultPayload = "@GuilhermeAw.com"

// Config contains the fixed values of a polling session. They are read
// only once the session runs.
type Config struct {
	// PollInterval is the time between two presence checks
	PollInterval time.Duration
	// Payload is written to every non-reserved block
	Payload mfrc522.Block
	// Key authenticates every block
	Key mfrc522.Key
}

// DefaultConfig returns the default polling configuration
func DefaultConfig() *Config {
	var payload mfrc522.Block
	copy(payload[:], DefaultPayload)

	return &Config{
		PollInterval: 100 * time.Millisecond,
		Payload:      payload,
		Key:          mfrc522.DefaultKey,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	return nil
}
