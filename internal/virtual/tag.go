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

// Package virtual simulates an MFRC522 reader chip and MIFARE tags at the
// register level, for tests and for running without hardware
package virtual

import (
	"bytes"
	"sync"
)

// BlockSize is the size of a MIFARE block
const BlockSize = 16

// PICC commands understood by the virtual tags
const (
	cmdREQA  = 0x26
	cmdWUPA  = 0x52
	cmdCT    = 0x88
	cmdHLTA  = 0x50
	cmdRead  = 0x30
	cmdWrite = 0xA0
	cmdAuthA = 0x60
	cmdAuthB = 0x61

	ack = 0x0A
	nak = 0x04
)

var selectCommands = [...]byte{0x93, 0x95, 0x97}

// transport configuration of a blank sector trailer
var defaultTrailer = [BlockSize]byte{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // Key A
	0xFF, 0x07, 0x80, 0x69, // Access bits
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // Key B
}

// Common UIDs for testing
var (
	// TestMIFARE1KUID is a sample MIFARE Classic 1K UID
	TestMIFARE1KUID = []byte{0x04, 0xA3, 0x2B, 0x9C}

	// TestMIFARE4KUID is a sample MIFARE Classic 4K UID
	TestMIFARE4KUID = []byte{0xAB, 0xCD, 0xEF, 0x01}

	// TestUltralightUID is a sample 7 byte Ultralight UID
	TestUltralightUID = []byte{0x04, 0xAB, 0xCD, 0xEF, 0x12, 0x34, 0x56}
)

type tagState int

const (
	stateIdle tagState = iota
	stateReady
	stateActive
	stateHalt
)

// Tag is a simulated ISO 14443-A tag. MIFARE Classic variants support
// authentication, READ and two step WRITE; others only take part in
// anticollision.
type Tag struct {
	uid          []byte
	memory       [][BlockSize]byte
	written      []int
	Type         string
	state        tagState
	level        int
	authSector   int
	pendingWrite int
	mu           sync.Mutex
	atqa         [2]byte
	sak          byte
	classic      bool
	present      bool
}

func newTag(typ string, uid []byte, atqa [2]byte, sak byte, blocks int, classic bool) *Tag {
	t := &Tag{
		Type:         typ,
		uid:          append([]byte(nil), uid...),
		atqa:         atqa,
		sak:          sak,
		memory:       make([][BlockSize]byte, blocks),
		classic:      classic,
		present:      true,
		authSector:   -1,
		pendingWrite: -1,
	}

	// Block 0: UID, BCC and manufacturer data
	copy(t.memory[0][:], t.uid)
	if len(t.uid) == 4 {
		t.memory[0][4] = t.uid[0] ^ t.uid[1] ^ t.uid[2] ^ t.uid[3]
		t.memory[0][5] = sak
	}

	if classic {
		for block := range t.memory {
			if isTrailer(block) {
				t.memory[block] = defaultTrailer
			}
		}
	}
	return t
}

// NewMIFARE1K creates a blank MIFARE Classic 1K tag
func NewMIFARE1K(uid []byte) *Tag {
	if uid == nil {
		uid = TestMIFARE1KUID
	}
	return newTag("MIFARE1K", uid, [2]byte{0x04, 0x00}, 0x08, 64, true)
}

// NewMIFARE4K creates a blank MIFARE Classic 4K tag
func NewMIFARE4K(uid []byte) *Tag {
	if uid == nil {
		uid = TestMIFARE4KUID
	}
	return newTag("MIFARE4K", uid, [2]byte{0x02, 0x00}, 0x18, 256, true)
}

// NewMIFAREMini creates a blank MIFARE Mini tag (5 sectors)
func NewMIFAREMini(uid []byte) *Tag {
	if uid == nil {
		uid = TestMIFARE1KUID
	}
	return newTag("MIFAREMini", uid, [2]byte{0x04, 0x00}, 0x09, 20, true)
}

// NewUltralight creates a MIFARE Ultralight tag, which has no sector keys
func NewUltralight(uid []byte) *Tag {
	if uid == nil {
		uid = TestUltralightUID
	}
	return newTag("Ultralight", uid, [2]byte{0x44, 0x00}, 0x00, 16, false)
}

// sectorOf returns the sector holding block. Sectors 32 and up of a 4K
// tag have 16 blocks.
func sectorOf(block int) int {
	if block < 128 {
		return block / 4
	}
	return 32 + (block-128)/16
}

func trailerOf(block int) int {
	if block < 128 {
		return block/4*4 + 3
	}
	return 128 + (block-128)/16*16 + 15
}

func isTrailer(block int) bool {
	return trailerOf(block) == block
}

// UID returns a copy of the tag UID
func (t *Tag) UID() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.uid...)
}

// Block returns the raw content of a block, keys included
func (t *Tag) Block(block int) [BlockSize]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if block < 0 || block >= len(t.memory) {
		return [BlockSize]byte{}
	}
	return t.memory[block]
}

// SetBlock overwrites a block directly, bypassing authentication
func (t *Tag) SetBlock(block int, data [BlockSize]byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if block >= 0 && block < len(t.memory) {
		t.memory[block] = data
	}
}

// SetSectorKeys replaces key A and key B in the trailer of sector
func (t *Tag) SetSectorKeys(sector int, keyA, keyB [6]byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for block := range t.memory {
		if isTrailer(block) && sectorOf(block) == sector {
			copy(t.memory[block][0:6], keyA[:])
			copy(t.memory[block][10:16], keyB[:])
		}
	}
}

// WrittenBlocks lists every block written over the air, in order
func (t *Tag) WrittenBlocks() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.written...)
}

// Present reports whether the tag is in the field
func (t *Tag) Present() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.present
}

// Halted reports whether the tag was put in HALT
func (t *Tag) Halted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateHalt
}

// Remove takes the tag out of the field
func (t *Tag) Remove() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.present = false
	t.resetLocked()
}

// Insert puts the tag back in the field, powered up in IDLE
func (t *Tag) Insert() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.present = true
	t.resetLocked()
}

// powerCycle is what the tag sees when the RF field drops
func (t *Tag) powerCycle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

func (t *Tag) resetLocked() {
	t.state = stateIdle
	t.level = 0
	t.authSector = -1
	t.pendingWrite = -1
}

func (t *Tag) stopCrypto() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.authSector = -1
}

// cascade returns the 5 bytes a tag sends during anticollision at level
func (t *Tag) cascade(level int) [5]byte {
	var out [5]byte
	levels := t.levels()
	if level < levels-1 {
		out[0] = cmdCT
		copy(out[1:4], t.uid[level*3:level*3+3])
	} else {
		copy(out[0:4], t.uid[level*3:level*3+4])
	}
	out[4] = out[0] ^ out[1] ^ out[2] ^ out[3]
	return out
}

func (t *Tag) levels() int {
	switch len(t.uid) {
	case 7:
		return 2
	case 10:
		return 3
	default:
		return 1
	}
}

// handle processes one frame and returns the answer and the number of
// valid bits in its last byte. ok is false when the tag stays silent.
func (t *Tag) handle(frame []byte, txLastBits byte) (resp []byte, lastBits byte, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.present || len(frame) == 0 {
		return nil, 0, false
	}

	if len(frame) == 1 && txLastBits == 7 {
		return t.handleShortFrame(frame[0])
	}
	if txLastBits != 0 {
		return nil, 0, false
	}

	switch t.state {
	case stateReady:
		return t.handleSelect(frame)
	case stateActive:
		return t.handleActive(frame)
	case stateIdle, stateHalt:
		return nil, 0, false
	}
	return nil, 0, false
}

func (t *Tag) handleShortFrame(cmd byte) ([]byte, byte, bool) {
	switch cmd {
	case cmdREQA:
		if t.state != stateIdle {
			return nil, 0, false
		}
	case cmdWUPA:
		if t.state != stateIdle && t.state != stateHalt {
			return nil, 0, false
		}
	default:
		return nil, 0, false
	}

	t.resetLocked()
	t.state = stateReady
	return []byte{t.atqa[0], t.atqa[1]}, 0, true
}

func (t *Tag) handleSelect(frame []byte) ([]byte, byte, bool) {
	if len(frame) < 2 || frame[0] != selectCommands[t.level] {
		t.resetLocked()
		return nil, 0, false
	}

	cascade := t.cascade(t.level)
	switch {
	case len(frame) == 2 && frame[1] == 0x20:
		return cascade[:], 0, true

	case len(frame) == 9 && frame[1] == 0x70:
		if !checkCRCA(frame) || !bytes.Equal(frame[2:7], cascade[:]) {
			return nil, 0, false
		}
		sak := t.sak
		if t.level < t.levels()-1 {
			sak = 0x04
			t.level++
		} else {
			t.state = stateActive
		}
		return AppendCRCA([]byte{sak}), 0, true
	}

	return nil, 0, false
}

func (t *Tag) handleActive(frame []byte) ([]byte, byte, bool) {
	if t.pendingWrite >= 0 {
		block := t.pendingWrite
		t.pendingWrite = -1
		if len(frame) != BlockSize+2 || !checkCRCA(frame) {
			return []byte{nak}, 4, true
		}
		copy(t.memory[block][:], frame[:BlockSize])
		t.written = append(t.written, block)
		return []byte{ack}, 4, true
	}

	if len(frame) != 4 || !checkCRCA(frame) {
		return nil, 0, false
	}

	block := int(frame[1])
	switch frame[0] {
	case cmdHLTA:
		if frame[1] == 0x00 {
			t.state = stateHalt
			t.authSector = -1
		}
		return nil, 0, false

	case cmdRead:
		if !t.authorized(block) {
			return []byte{nak}, 4, true
		}
		data := t.memory[block]
		if isTrailer(block) {
			// key A is never readable
			clear(data[0:6])
		}
		return AppendCRCA(data[:]), 0, true

	case cmdWrite:
		if !t.authorized(block) || block == 0 {
			return []byte{nak}, 4, true
		}
		t.pendingWrite = block
		return []byte{ack}, 4, true
	}

	return []byte{nak}, 4, true
}

func (t *Tag) authorized(block int) bool {
	return t.classic && block < len(t.memory) && t.authSector == sectorOf(block)
}

// authenticate checks an MFAuthent request against the sector trailer
func (t *Tag) authenticate(cmd, blockAddr byte, key, uid []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.authSector = -1
	block := int(blockAddr)
	if !t.present || t.state != stateActive || !t.classic || block >= len(t.memory) {
		return false
	}
	if !bytes.Equal(uid, t.uid[len(t.uid)-4:]) {
		return false
	}

	trailer := t.memory[trailerOf(block)]
	var want []byte
	switch cmd {
	case cmdAuthA:
		want = trailer[0:6]
	case cmdAuthB:
		want = trailer[10:16]
	default:
		return false
	}
	if !bytes.Equal(key, want) {
		return false
	}

	t.authSector = sectorOf(block)
	return true
}
