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

// Package tagops writes and reads back the data blocks of a MIFARE Classic
// tag, one authenticated block at a time, reporting every outcome on a
// console logger.
package tagops

import (
	"context"
	"errors"
	"io"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/sirupsen/logrus"
)

// ErrNoTag is returned when an operation needs a selected tag
var ErrNoTag = errors.New("no tag selected")

// Reader is the part of *mfrc522.Device used by Operations
type Reader interface {
	IsNewCardPresent(ctx context.Context) bool
	ReadCardSerial(ctx context.Context) (*mfrc522.UID, error)
	FirmwareVersion() (mfrc522.FirmwareVersion, error)
	Authenticate(ctx context.Context, cmd mfrc522.AuthCommand, block byte, key mfrc522.Key, uid *mfrc522.UID) error
	MIFARERead(ctx context.Context, block byte, buf *mfrc522.TransferBuffer) error
	MIFAREWrite(ctx context.Context, block byte, data mfrc522.Block) error
	HaltA(ctx context.Context) error
	StopCrypto1() error
}

// Step names one sub-operation of a block
type Step int

const (
	// StepAuthWrite is the authentication before a write
	StepAuthWrite Step = iota
	// StepWrite is the 16 byte write
	StepWrite
	// StepAuthRead is the authentication before a read
	StepAuthRead
	// StepRead is the 18 byte read
	StepRead
)

// String returns the step name
func (s Step) String() string {
	switch s {
	case StepAuthWrite:
		return "auth-write"
	case StepWrite:
		return "write"
	case StepAuthRead:
		return "auth-read"
	case StepRead:
		return "read"
	default:
		return "unknown"
	}
}

// StepEvent reports the outcome of one step on one block
type StepEvent struct {
	Block  int
	Step   Step
	Status mfrc522.StatusCode
}

// Operations is the context of one reader: the device, where to print the
// console lines and the tag currently selected.
//
// Thread Safety: Operations is NOT thread-safe, like the Device it drives.
type Operations struct {
	reader  Reader
	console logrus.FieldLogger
	log     logrus.FieldLogger
	onStep  func(StepEvent)
	uid     *mfrc522.UID
	keyType mfrc522.AuthCommand
}

// Option configures Operations
type Option func(*Operations)

// WithKeyType selects key A (the default) or key B for every authentication
func WithKeyType(cmd mfrc522.AuthCommand) Option {
	return func(o *Operations) {
		o.keyType = cmd
	}
}

// WithLogger sets the diagnostics logger. Console lines always go to the
// console logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Operations) {
		if log != nil {
			o.log = log
		}
	}
}

// OnStep registers a function called after every authenticate, write and
// read with its status
func OnStep(fn func(StepEvent)) Option {
	return func(o *Operations) {
		o.onStep = fn
	}
}

// New creates Operations driving reader and printing on console. A nil
// console discards the output.
func New(reader Reader, console logrus.FieldLogger, opts ...Option) *Operations {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	if console == nil {
		console = discard
	}

	o := &Operations{
		reader:  reader,
		console: console,
		log:     discard,
		keyType: mfrc522.AuthKeyA,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// UID returns the selected tag, nil when none
func (o *Operations) UID() *mfrc522.UID {
	return o.uid
}

// DetectTag checks once for a new tag and selects it. It never waits for a
// tag to arrive.
func (o *Operations) DetectTag(ctx context.Context) bool {
	if !o.reader.IsNewCardPresent(ctx) {
		return false
	}

	uid, err := o.reader.ReadCardSerial(ctx)
	if err != nil {
		o.log.WithError(err).Debug("tag present but serial read failed")
		return false
	}

	o.uid = uid
	o.log.WithField("uid", uid.String()).Debug("tag selected")
	return true
}

// Release puts the selected tag in HALT and leaves the authenticated state,
// so the tag is not detected again until it re-enters the field
func (o *Operations) Release(ctx context.Context) error {
	if o.uid == nil {
		return ErrNoTag
	}
	o.uid = nil

	return errors.Join(o.reader.HaltA(ctx), o.reader.StopCrypto1())
}

func (o *Operations) report(block int, step Step, status mfrc522.StatusCode) {
	o.log.WithFields(logrus.Fields{
		"block":  block,
		"step":   step.String(),
		"status": status.String(),
	}).Debug("block step")

	if o.onStep != nil {
		o.onStep(StepEvent{Block: block, Step: step, Status: status})
	}
}
