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
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-mfrc522/internal/wait"
	"github.com/sirupsen/logrus"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// Timeout bounds the wait for a PCD command to finish. The chip's own
	// timer fires after 25 ms, so this only matters when the chip hangs.
	Timeout time.Duration
	// CRCTimeout bounds the wait for the CRC coprocessor
	CRCTimeout time.Duration
	// ResetTimeout bounds the wait for the oscillator after a soft reset
	ResetTimeout time.Duration
	// PollInterval is the pause between interrupt register reads
	PollInterval time.Duration
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Timeout:      36 * time.Millisecond,
		CRCTimeout:   89 * time.Millisecond,
		ResetTimeout: 150 * time.Millisecond,
		PollInterval: 0,
	}
}

// FirmwareVersion is the content of VersionReg
type FirmwareVersion byte

// String formats the version the way the chip documentation names it
func (v FirmwareVersion) String() string {
	var name string
	switch v {
	case 0x88:
		name = "(clone)"
	case 0x90:
		name = "v0.0"
	case 0x91:
		name = "v1.0"
	case 0x92:
		name = "v2.0"
	case 0x12:
		name = "counterfeit chip"
	default:
		name = "(unknown)"
	}
	return fmt.Sprintf("0x%02X = %s", byte(v), name)
}

// Valid reports whether the chip answered at all. An unconnected bus reads
// as all zeros or all ones.
func (v FirmwareVersion) Valid() bool {
	return v != 0x00 && v != 0xFF
}

// Device represents an MFRC522 reader chip
//
// Thread Safety: Device is NOT thread-safe. All methods must be called from
// a single goroutine or protected with external synchronization.
type Device struct {
	transport Transport
	config    *DeviceConfig
	log       logrus.FieldLogger
}

// New creates a new MFRC522 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		log:       discard,
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Init resets the chip and configures it for ISO 14443-A at 106 kBd:
// timer auto start with a 25 ms timeout, 100% ASK modulation, CRC preset
// 0x6363 and the antenna switched on.
func (d *Device) Init(ctx context.Context) error {
	if !d.transport.IsConnected() {
		return ErrNotConnected
	}

	if err := d.reset(ctx); err != nil {
		return fmt.Errorf("failed to reset chip: %w", err)
	}

	setup := []struct {
		reg byte
		val byte
	}{
		{TxModeReg, 0x00},
		{RxModeReg, 0x00},
		{ModWidthReg, 0x26},
		{TModeReg, 0x80},      // TAuto, timer starts after every transmission
		{TPrescalerReg, 0xA9}, // 13.56 MHz / (2*169+1) = 40 kHz
		{TReloadRegH, 0x03},   // 1000 ticks of 25 us
		{TReloadRegL, 0xE8},
		{TxASKReg, 0x40},
		{ModeReg, 0x3D},
	}
	for _, s := range setup {
		if err := d.writeRegister(s.reg, s.val); err != nil {
			return fmt.Errorf("failed to configure chip: %w", err)
		}
	}

	if err := d.AntennaOn(); err != nil {
		return fmt.Errorf("failed to enable antenna: %w", err)
	}

	d.log.Debug("MFRC522 initialized")
	return nil
}

// reset uses the RST line when wired and a soft reset otherwise
func (d *Device) reset(ctx context.Context) error {
	err := d.transport.Reset()
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNoResetPin) {
		return transportError("reset", err)
	}

	d.log.Debug("no reset pin, using soft reset")
	if err := d.writeRegister(CommandReg, PCDSoftReset); err != nil {
		return err
	}

	_, err = wait.Until(ctx, d.config.ResetTimeout, time.Millisecond, func() (struct{}, bool, error) {
		v, err := d.readRegister(CommandReg)
		if err != nil {
			return struct{}{}, false, err
		}
		return struct{}{}, v&powerDown != 0, nil
	})
	if errors.Is(err, wait.ErrDeadline) {
		return newOpError("soft reset", StatusTimeout)
	}
	return err
}

// FirmwareVersion reads VersionReg
func (d *Device) FirmwareVersion() (FirmwareVersion, error) {
	v, err := d.readRegister(VersionReg)
	if err != nil {
		return 0, err
	}
	return FirmwareVersion(v), nil
}

// AntennaOn enables both TX1 and TX2 drivers
func (d *Device) AntennaOn() error {
	v, err := d.readRegister(TxControlReg)
	if err != nil {
		return err
	}
	if v&antennaTx == antennaTx {
		return nil
	}
	return d.writeRegister(TxControlReg, v|antennaTx)
}

// AntennaOff disables the RF field
func (d *Device) AntennaOff() error {
	return d.clearBits(TxControlReg, antennaTx)
}

// SetTimeout sets the timeout for PCD commands and for the transport
func (d *Device) SetTimeout(timeout time.Duration) error {
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}
