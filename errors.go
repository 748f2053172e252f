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
	"errors"
	"fmt"
)

// StatusCode is the outcome of a single PCD or PICC operation
type StatusCode int

const (
	// StatusOK means the operation succeeded
	StatusOK StatusCode = iota
	// StatusError is a communication error with the chip or the tag
	StatusError
	// StatusCollision means more than one tag answered
	StatusCollision
	// StatusTimeout means the tag did not answer in time
	StatusTimeout
	// StatusNoRoom means a receive buffer is too small
	StatusNoRoom
	// StatusInternalError should not happen
	StatusInternalError
	// StatusInvalid is an invalid argument
	StatusInvalid
	// StatusCRCWrong means the CRC_A of a response does not match
	StatusCRCWrong
	// StatusMIFARENack means a MIFARE tag answered with NAK
	StatusMIFARENack
)

// String returns the human readable name of the status code
func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "Success."
	case StatusError:
		return "Error in communication."
	case StatusCollision:
		return "Collision detected."
	case StatusTimeout:
		return "Timeout in communication."
	case StatusNoRoom:
		return "A buffer is not big enough."
	case StatusInternalError:
		return "Internal error in the code. Should not happen."
	case StatusInvalid:
		return "Invalid argument."
	case StatusCRCWrong:
		return "The CRC_A does not match."
	case StatusMIFARENack:
		return "A MIFARE PICC responded with NAK."
	default:
		return "Unknown error"
	}
}

// OpError carries a non-OK StatusCode together with the operation that
// produced it and, for bus failures, the underlying transport error.
type OpError struct {
	Err  error
	Op   string
	Code StatusCode
}

// Error implements the error interface
func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	if e.Op == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// Unwrap returns the underlying error
func (e *OpError) Unwrap() error {
	return e.Err
}

// Is matches any OpError carrying the same code, so callers can use
// errors.Is(err, ErrTimeout) regardless of the operation.
func (e *OpError) Is(target error) bool {
	var t *OpError
	if !errors.As(target, &t) {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Code == e.Code
}

// Status errors usable with errors.Is
var (
	ErrCommunication = &OpError{Code: StatusError}
	ErrCollision     = &OpError{Code: StatusCollision}
	ErrTimeout       = &OpError{Code: StatusTimeout}
	ErrNoRoom        = &OpError{Code: StatusNoRoom}
	ErrInternal      = &OpError{Code: StatusInternalError}
	ErrInvalid       = &OpError{Code: StatusInvalid}
	ErrCRCWrong      = &OpError{Code: StatusCRCWrong}
	ErrMIFARENack    = &OpError{Code: StatusMIFARENack}
)

// Device errors
var (
	ErrNoTagSelected   = errors.New("no tag selected")
	ErrNotConnected    = errors.New("transport not connected")
	ErrManufacturerBlk = errors.New("cannot write to manufacturer block")
)

func newOpError(op string, code StatusCode) *OpError {
	return &OpError{Op: op, Code: code}
}

// transportError wraps a bus failure. The chip never saw the command, so
// it is reported as a communication error.
func transportError(op string, err error) *OpError {
	return &OpError{Op: op, Code: StatusError, Err: err}
}

// StatusOf extracts the status code of an error returned by this package.
// A nil error is StatusOK, errors from other sources are StatusError.
func StatusOf(err error) StatusCode {
	if err == nil {
		return StatusOK
	}
	var se *OpError
	if errors.As(err, &se) {
		return se.Code
	}
	if errors.Is(err, ErrManufacturerBlk) || errors.Is(err, ErrNoTagSelected) {
		return StatusInvalid
	}
	return StatusError
}
