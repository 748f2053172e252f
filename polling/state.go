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
	"time"

	"github.com/ZaparooProject/go-mfrc522/tagops"
)

// State is the state of the polling cycle
type State int32

const (
	// StateIdle means no tag is being handled; every tick checks for one
	StateIdle State = iota
	// StateSession means a tag was selected and its blocks are being swept
	StateSession
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSession:
		return "session"
	default:
		return "unknown"
	}
}

// SessionResult describes one finished tag session
type SessionResult struct {
	// ReleaseErr is set when the tag could not be halted afterwards
	ReleaseErr error
	Info       *tagops.TagInfo
	ID         string
	Duration   time.Duration
	// Swept is false when the tag was incompatible and left untouched
	Swept bool
}

// Callbacks defines functions called around each session
type Callbacks struct {
	OnSessionStart func(id string, info *tagops.TagInfo)
	OnSessionEnd   func(result SessionResult)
}

// Metrics tracks the polling cycle
type Metrics struct {
	PollCycles          int64         // Total number of ticks
	Sessions            int64         // Tags detected and handled
	IncompatibleTags    int64         // Sessions skipped because of the tag type
	ReleaseErrors       int64         // Sessions whose tag could not be halted
	LastSessionDuration time.Duration // Duration of the last session
}
