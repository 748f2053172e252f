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

// Package spi detects spidev nodes an MFRC522 can be attached to
package spi

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/ZaparooProject/go-mfrc522/detection"
)

type detector struct{}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "spi"
}

// Detect lists the spidev nodes and whether they can be opened
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if runtime.GOOS != "linux" {
		return nil, detection.ErrUnsupportedPlatform
	}
	return detectIn(ctx, opts.Dir())
}

// detectIn scans dir for spidevB.C nodes
func detectIn(ctx context.Context, dir string) ([]detection.DeviceInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "spidev*"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for SPI devices: %w", err)
	}
	sort.Strings(matches)

	devices := make([]detection.DeviceInfo, 0, len(matches))
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return devices, err
		}

		name, bus, cs, ok := BusName(path)
		if !ok {
			continue
		}
		devices = append(devices, detection.DeviceInfo{
			Transport:  "spi",
			Path:       path,
			Name:       name,
			Accessible: accessible(path),
			Metadata: map[string]string{
				"bus":         fmt.Sprintf("%d", bus),
				"chip_select": fmt.Sprintf("%d", cs),
			},
		})
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// BusName converts a spidev node path into the periph.io port name:
// /dev/spidev0.1 is SPI0.1
func BusName(path string) (name string, bus, cs int, ok bool) {
	var tail string
	n, _ := fmt.Sscanf(filepath.Base(path), "spidev%d.%d%s", &bus, &cs, &tail)
	if n != 2 || bus < 0 || cs < 0 {
		return "", 0, 0, false
	}
	return fmt.Sprintf("SPI%d.%d", bus, cs), bus, cs, true
}
