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

// Package uart lists serial ports that can carry the console output
package uart

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZaparooProject/go-mfrc522/detection"
	"go.bug.st/serial/enumerator"
)

type detector struct {
	list func() ([]*enumerator.PortDetails, error)
}

// New creates a new serial port detector
func New() detection.Detector {
	return &detector{list: enumerator.GetDetailedPortsList}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

// Detect lists the serial ports known to the operating system
func (d *detector) Detect(ctx context.Context, _ *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	devices := make([]detection.DeviceInfo, 0, len(ports))
	for _, port := range ports {
		if err := ctx.Err(); err != nil {
			return devices, err
		}
		devices = append(devices, deviceInfo(port))
	}
	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Path < devices[j].Path })
	return devices, nil
}

func deviceInfo(port *enumerator.PortDetails) detection.DeviceInfo {
	info := detection.DeviceInfo{
		Transport:  "uart",
		Path:       port.Name,
		Name:       port.Name,
		Accessible: true,
		Metadata:   map[string]string{},
	}
	if port.IsUSB {
		info.Metadata["vid_pid"] = fmt.Sprintf("%s:%s", port.VID, port.PID)
		if port.SerialNumber != "" {
			info.Metadata["serial"] = port.SerialNumber
		}
		if port.Product != "" {
			info.Metadata["product"] = port.Product
		}
	}
	return info
}
