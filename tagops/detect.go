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

package tagops

import (
	"bytes"

	"github.com/ZaparooProject/go-mfrc522"
)

// TagInfo contains what Identify learned about the selected tag
type TagInfo struct {
	// UIDString is the colon separated uppercase hex UID
	UIDString string
	UID       []byte

	Type    mfrc522.PICCType
	Version mfrc522.FirmwareVersion
	SAK     byte

	// Compatible is true for MIFARE Mini, 1K and 4K. Block operations on
	// other tags must not be attempted.
	Compatible bool
}

// Identify prints the UID, the reader firmware version and the tag type of
// the selected tag, and reports whether its blocks can be written
func (o *Operations) Identify() (*TagInfo, error) {
	if o.uid == nil {
		return nil, ErrNoTag
	}

	info := &TagInfo{
		UID:       bytes.Clone(o.uid.Bytes),
		UIDString: o.uid.String(),
		SAK:       o.uid.SAK,
		Type:      o.uid.Type(),
	}
	info.Compatible = info.Type.IsMIFAREClassic()

	o.console.Infof("Identificador (UID) da tag: %s", info.UIDString)

	version, err := o.reader.FirmwareVersion()
	switch {
	case err != nil:
		o.log.WithError(err).Debug("firmware version read failed")
		o.console.Info("WARNING: Communication failure, is the MFRC522 properly connected?")
	case !version.Valid():
		o.console.Infof("Firmware Version: %s", version)
		o.console.Info("WARNING: Communication failure, is the MFRC522 properly connected?")
	default:
		o.console.Infof("Firmware Version: %s", version)
	}
	info.Version = version

	o.console.Infof("PICC type: %s (SAK %d)", info.Type, info.SAK)

	if !info.Compatible {
		o.console.Info("Esta TAG não é compativel com o Leitor.")
	}
	return info, nil
}
