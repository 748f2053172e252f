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
	"fmt"
)

// MIFARE memory structure
const (
	BlockSize          = 16 // 16 bytes per block
	TransferBufferSize = 18 // block plus CRC_A
	KeySize            = 6

	manufacturerBlock = 0
)

// Key is a 6 byte MIFARE Classic sector key
type Key [KeySize]byte

// DefaultKey is the factory default transport key, used as key A and key B
// on blank tags
var DefaultKey = Key{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// String formats the key as uppercase hex
func (k Key) String() string {
	return fmt.Sprintf("%X", k[:])
}

// Block is the content of one 16 byte MIFARE block
type Block [BlockSize]byte

// BlockFromString copies s into a block, padding with zeros. Strings longer
// than a block are rejected.
func BlockFromString(s string) (Block, error) {
	var b Block
	if len(s) > BlockSize {
		return b, fmt.Errorf("block data too long: %d bytes, max %d", len(s), BlockSize)
	}
	copy(b[:], s)
	return b, nil
}

// TransferBuffer receives a block read: 16 data bytes followed by the two
// CRC_A bytes sent by the tag
type TransferBuffer [TransferBufferSize]byte

// Data returns the block part of the buffer
func (t *TransferBuffer) Data() Block {
	var b Block
	copy(b[:], t[:BlockSize])
	return b
}

// AuthCommand selects which sector key is used for authentication
type AuthCommand byte

const (
	AuthKeyA AuthCommand = PICCCmdMFAuthA
	AuthKeyB AuthCommand = PICCCmdMFAuthB
)

// String returns "A" or "B"
func (c AuthCommand) String() string {
	switch c {
	case AuthKeyA:
		return "A"
	case AuthKeyB:
		return "B"
	default:
		return fmt.Sprintf("0x%02X", byte(c))
	}
}

// Authenticate runs MFAuthent for the sector holding block. On success the
// chip keeps Crypto1 enabled until StopCrypto1 or the next authentication.
func (d *Device) Authenticate(ctx context.Context, cmd AuthCommand, block byte, key Key, uid *UID) error {
	if uid == nil || len(uid.Bytes) < 4 {
		return &OpError{Op: "authenticate", Code: StatusInvalid, Err: ErrNoTagSelected}
	}
	if cmd != AuthKeyA && cmd != AuthKeyB {
		return newOpError("authenticate", StatusInvalid)
	}

	// command, block, key, last 4 UID bytes
	send := make([]byte, 0, 2+KeySize+4)
	send = append(send, byte(cmd), block)
	send = append(send, key[:]...)
	send = append(send, uid.Bytes[len(uid.Bytes)-4:]...)

	// SECURITY: Zero key copy after use
	defer clear(send)

	_, _, err := d.communicate(ctx, exchange{
		op:      "authenticate",
		command: PCDMFAuthent,
		waitIRq: irqIdle,
		send:    send,
	})
	return err
}

// StopCrypto1 leaves the authenticated state. Required before talking to
// another tag.
func (d *Device) StopCrypto1() error {
	return d.clearBits(Status2Reg, crypto1On)
}

// MIFARERead reads one block into buf. The sector must be authenticated.
func (d *Device) MIFARERead(ctx context.Context, block byte, buf *TransferBuffer) error {
	if buf == nil {
		return newOpError("MIFARE read", StatusNoRoom)
	}

	frame, err := d.appendCRC(ctx, []byte{PICCCmdMFRead, block})
	if err != nil {
		return err
	}

	back, _, err := d.transceive(ctx, "MIFARE read", frame, len(buf), 0, true)
	if err != nil {
		return err
	}
	if len(back) != len(buf) {
		return newOpError("MIFARE read", StatusError)
	}

	copy(buf[:], back)
	return nil
}

// MIFAREWrite writes one block. The tag acknowledges the command and the
// data separately. Block 0 holds the manufacturer data and is refused
// before anything is sent.
func (d *Device) MIFAREWrite(ctx context.Context, block byte, data Block) error {
	if block == manufacturerBlock {
		return &OpError{Op: "MIFARE write", Code: StatusInvalid, Err: ErrManufacturerBlk}
	}
	if err := d.mifareTransceive(ctx, "MIFARE write", []byte{PICCCmdMFWrite, block}); err != nil {
		return err
	}
	return d.mifareTransceive(ctx, "MIFARE write", data[:])
}

// mifareTransceive sends data with CRC_A and expects a 4 bit ACK
func (d *Device) mifareTransceive(ctx context.Context, op string, data []byte) error {
	frame, err := d.appendCRC(ctx, data)
	if err != nil {
		return err
	}

	back, lastBits, err := d.transceive(ctx, op, frame, 1, 0, false)
	if err != nil {
		return err
	}
	if len(back) != 1 || lastBits != 4 {
		return newOpError(op, StatusError)
	}
	if back[0]&0x0F != mifareACK {
		return newOpError(op, StatusMIFARENack)
	}
	return nil
}
