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

// Package wait provides deadline based polling used while waiting for
// interrupt bits on the reader chip
package wait

import (
	"context"
	"errors"
	"time"
)

// ErrDeadline is returned when an operation kept asking to be polled again
// until its timeout elapsed
var ErrDeadline = errors.New("deadline exceeded")

// Operation is polled until it reports done
// Returns: data, again, error
// - data: the result once done
// - again: true if the operation should be polled again
// - error: a permanent error that stops polling
type Operation[T any] func() (T, bool, error)

// Until polls operation until it is done, fails, the context is cancelled
// or timeout elapses. The operation always runs at least once.
func Until[T any](ctx context.Context, timeout, interval time.Duration, operation Operation[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for {
		result, again, err := operation()
		if err != nil {
			return zero, err
		}

		if !again {
			return result, nil
		}

		if !time.Now().Before(deadline) {
			return zero, ErrDeadline
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		if interval > 0 {
			time.Sleep(interval)
		}
	}
}
