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

// Package detection finds the buses an MFRC522 may be attached to and the
// serial ports usable as a console. Detectors register themselves on
// import; blank import detection/spi and detection/uart to enable them.
package detection

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNoDevicesFound is returned when a detector finds nothing
	ErrNoDevicesFound = errors.New("no devices found")
	// ErrUnsupportedPlatform is returned when a detector cannot run here
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// DeviceInfo describes one detected device node
type DeviceInfo struct {
	// Metadata holds detector specific details
	Metadata map[string]string
	// Transport is "spi" or "uart"
	Transport string
	// Path is the device node, for example /dev/spidev0.0
	Path string
	// Name is the value to pass on the command line, for example SPI0.0
	Name string
	// Accessible is false when the current user cannot open the node
	Accessible bool
}

// Options configures detection
type Options struct {
	// IgnorePaths lists device nodes that are never reported
	IgnorePaths []string
	// DevDir is where device nodes are looked up. Empty means /dev.
	DevDir string
}

// DefaultOptions returns the default detection options
func DefaultOptions() Options {
	return Options{DevDir: "/dev"}
}

// Dir returns the device node directory, /dev when unset. It accepts a
// nil receiver.
func (o *Options) Dir() string {
	if o == nil || o.DevDir == "" {
		return "/dev"
	}
	return o.DevDir
}

// Detector finds devices of one transport
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.Mutex
	registry   = map[string]Detector{}
)

// RegisterDetector makes a detector available to DetectAll. Registering
// the same transport twice replaces the earlier detector.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Detectors returns the registered detectors sorted by transport
func Detectors() []Detector {
	registryMu.Lock()
	defer registryMu.Unlock()

	out := make([]Detector, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Transport() < out[j].Transport() })
	return out
}

// DetectAll runs every registered detector. Detectors that find nothing
// or do not support the platform are skipped; other errors are joined.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	return detectWith(ctx, Detectors(), opts)
}

func detectWith(ctx context.Context, detectors []Detector, opts *Options) ([]DeviceInfo, error) {
	var (
		devices []DeviceInfo
		errs    []error
	)
	for _, d := range detectors {
		if err := ctx.Err(); err != nil {
			return devices, err
		}
		found, err := d.Detect(ctx, opts)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoDevicesFound), errors.Is(err, ErrUnsupportedPlatform):
			continue
		default:
			errs = append(errs, err)
			continue
		}
		for _, dev := range found {
			if IsPathIgnored(dev.Path, ignorePaths(opts)) {
				continue
			}
			devices = append(devices, dev)
		}
	}
	if len(devices) == 0 && len(errs) == 0 {
		return nil, ErrNoDevicesFound
	}
	return devices, errors.Join(errs...)
}

func ignorePaths(opts *Options) []string {
	if opts == nil {
		return nil
	}
	return opts.IgnorePaths
}
