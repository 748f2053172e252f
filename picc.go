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
	"strings"
)

// UID is the identifier and select acknowledge of the selected tag
type UID struct {
	Bytes []byte
	SAK   byte
}

// String formats the UID as colon separated uppercase hex, e.g. 04:A3:2B:9C
func (u *UID) String() string {
	if u == nil {
		return ""
	}
	parts := make([]string, len(u.Bytes))
	for i, b := range u.Bytes {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// Type classifies the tag from its SAK
func (u *UID) Type() PICCType {
	return PICCTypeFromSAK(u.SAK)
}

// PICCType is the tag family derived from the SAK byte
type PICCType int

const (
	PICCTypeUnknown PICCType = iota
	PICCTypeISO14443_4
	PICCTypeISO18092
	PICCTypeMIFAREMini
	PICCTypeMIFARE1K
	PICCTypeMIFARE4K
	PICCTypeMIFAREUL
	PICCTypeMIFAREPlus
	PICCTypeTNP3XXX
	PICCTypeNotComplete
)

// PICCTypeFromSAK maps a SAK to a tag family. Bit 8 of the SAK is ignored
// because some tags set it without meaning.
func PICCTypeFromSAK(sak byte) PICCType {
	switch sak & 0x7F {
	case 0x04:
		return PICCTypeNotComplete
	case 0x09:
		return PICCTypeMIFAREMini
	case 0x08:
		return PICCTypeMIFARE1K
	case 0x18:
		return PICCTypeMIFARE4K
	case 0x00:
		return PICCTypeMIFAREUL
	case 0x10, 0x11:
		return PICCTypeMIFAREPlus
	case 0x01:
		return PICCTypeTNP3XXX
	case 0x20:
		return PICCTypeISO14443_4
	case 0x40:
		return PICCTypeISO18092
	default:
		return PICCTypeUnknown
	}
}

// String returns a human-readable name of the tag family
func (t PICCType) String() string {
	switch t {
	case PICCTypeISO14443_4:
		return "PICC compliant with ISO/IEC 14443-4"
	case PICCTypeISO18092:
		return "PICC compliant with ISO/IEC 18092 (NFC)"
	case PICCTypeMIFAREMini:
		return "MIFARE Mini, 320 bytes"
	case PICCTypeMIFARE1K:
		return "MIFARE 1KB"
	case PICCTypeMIFARE4K:
		return "MIFARE 4KB"
	case PICCTypeMIFAREUL:
		return "MIFARE Ultralight or Ultralight C"
	case PICCTypeMIFAREPlus:
		return "MIFARE Plus"
	case PICCTypeTNP3XXX:
		return "MIFARE TNP3XXX"
	case PICCTypeNotComplete:
		return "SAK indicates UID is not complete."
	case PICCTypeUnknown:
		return "Unknown type"
	default:
		return "Unknown type"
	}
}

// IsMIFAREClassic reports whether the family speaks the MIFARE Classic
// authenticate/read/write command set
func (t PICCType) IsMIFAREClassic() bool {
	return t == PICCTypeMIFAREMini || t == PICCTypeMIFARE1K || t == PICCTypeMIFARE4K
}

// RequestA sends REQA and returns the ATQA. Only tags in IDLE answer.
func (d *Device) RequestA(ctx context.Context) ([2]byte, error) {
	return d.requestOrWakeup(ctx, "REQA", PICCCmdREQA)
}

// WakeupA sends WUPA and returns the ATQA. Tags in IDLE and HALT answer.
func (d *Device) WakeupA(ctx context.Context) ([2]byte, error) {
	return d.requestOrWakeup(ctx, "WUPA", PICCCmdWUPA)
}

func (d *Device) requestOrWakeup(ctx context.Context, op string, cmd byte) ([2]byte, error) {
	var atqa [2]byte

	if err := d.clearBits(CollReg, valuesColl); err != nil {
		return atqa, err
	}

	// short frame, 7 bits
	back, lastBits, err := d.transceive(ctx, op, []byte{cmd}, len(atqa), 7, false)
	if err != nil {
		return atqa, err
	}
	if len(back) != len(atqa) || lastBits != 0 {
		return atqa, newOpError(op, StatusError)
	}

	copy(atqa[:], back)
	return atqa, nil
}

// IsNewCardPresent reports whether a tag in IDLE answers REQA. A collision
// also means at least one tag is present.
func (d *Device) IsNewCardPresent(ctx context.Context) bool {
	for _, s := range []struct{ reg, val byte }{
		{TxModeReg, 0x00},
		{RxModeReg, 0x00},
		{ModWidthReg, 0x26},
	} {
		if err := d.writeRegister(s.reg, s.val); err != nil {
			d.log.Debugf("presence check: %v", err)
			return false
		}
	}

	_, err := d.RequestA(ctx)
	return err == nil || errors.Is(err, ErrCollision)
}

// ReadCardSerial selects the tag that answered the last REQA and returns
// its UID
func (d *Device) ReadCardSerial(ctx context.Context) (*UID, error) {
	return d.Select(ctx)
}

var cascadeLevels = [...]byte{PICCCmdSelCL1, PICCCmdSelCL2, PICCCmdSelCL3}

// Select runs anticollision and SELECT through up to three cascade levels.
// Collisions are reported, not resolved: only one tag may be in the field.
func (d *Device) Select(ctx context.Context) (*UID, error) {
	if err := d.clearBits(CollReg, valuesColl); err != nil {
		return nil, err
	}

	uid := &UID{}
	for _, sel := range cascadeLevels {
		// NVB 0x20: no UID bits known yet
		resp, _, err := d.transceive(ctx, "anticollision", []byte{sel, 0x20}, 5, 0, false)
		if err != nil {
			return nil, err
		}
		if len(resp) != 5 {
			return nil, newOpError("anticollision", StatusError)
		}
		if resp[0]^resp[1]^resp[2]^resp[3] != resp[4] {
			d.log.Debugf("BCC mismatch in cascade level 0x%02X", sel)
			return nil, newOpError("anticollision", StatusError)
		}

		// NVB 0x70: all 40 bits follow
		frame, err := d.appendCRC(ctx, append([]byte{sel, 0x70}, resp...))
		if err != nil {
			return nil, err
		}
		sak, _, err := d.transceive(ctx, "select", frame, 3, 0, true)
		if err != nil {
			return nil, err
		}
		if len(sak) != 3 {
			return nil, newOpError("select", StatusError)
		}

		if sak[0]&0x04 != 0 {
			// UID not complete, first byte is the cascade tag
			if resp[0] != PICCCmdCT {
				return nil, newOpError("select", StatusError)
			}
			uid.Bytes = append(uid.Bytes, resp[1:4]...)
			continue
		}

		uid.Bytes = append(uid.Bytes, resp[:4]...)
		uid.SAK = sak[0]
		d.log.Debugf("selected tag %s (SAK 0x%02X)", uid, uid.SAK)
		return uid, nil
	}

	return nil, newOpError("select", StatusInternalError)
}

// HaltA puts the selected tag in HALT. The tag must stay silent, so a
// timeout is success.
func (d *Device) HaltA(ctx context.Context) error {
	frame, err := d.appendCRC(ctx, []byte{PICCCmdHLTA, 0x00})
	if err != nil {
		return err
	}

	_, _, err = d.transceive(ctx, "HLTA", frame, 0, 0, false)
	if errors.Is(err, ErrTimeout) {
		return nil
	}
	if err != nil {
		return err
	}
	return newOpError("HLTA", StatusError)
}
