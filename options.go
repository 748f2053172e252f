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

	"github.com/sirupsen/logrus"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithTimeout sets the wait limit for PCD commands
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout <= 0 {
			return errors.New("timeout must be positive")
		}
		d.config.Timeout = timeout
		return nil
	}
}

// WithPollInterval sets the pause between interrupt register reads
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) error {
		if interval < 0 {
			return errors.New("poll interval cannot be negative")
		}
		d.config.PollInterval = interval
		return nil
	}
}

// WithConfig replaces the whole device configuration
func WithConfig(config *DeviceConfig) Option {
	return func(d *Device) error {
		if config == nil {
			return errors.New("config cannot be nil")
		}
		cfg := *config
		d.config = &cfg
		return nil
	}
}

// WithLogger sets the logger used for driver diagnostics.
// The default logger discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Device) error {
		if log == nil {
			return errors.New("logger cannot be nil")
		}
		d.log = log
		return nil
	}
}
