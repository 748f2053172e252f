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

package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil_DoneFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := Until(context.Background(), time.Millisecond, 0, func() (int, bool, error) {
		calls++
		return 42, false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestUntil_PollsUntilDone(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := Until(context.Background(), time.Second, 0, func() (string, bool, error) {
		calls++
		if calls < 3 {
			return "", true, nil
		}
		return "ready", false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ready", got)
	assert.Equal(t, 3, calls)
}

func TestUntil_Deadline(t *testing.T) {
	t.Parallel()

	_, err := Until(context.Background(), 5*time.Millisecond, time.Millisecond, func() (byte, bool, error) {
		return 0, true, nil
	})

	require.ErrorIs(t, err, ErrDeadline)
}

func TestUntil_PermanentError(t *testing.T) {
	t.Parallel()

	boom := errors.New("bus failure")
	calls := 0
	_, err := Until(context.Background(), time.Second, 0, func() (byte, bool, error) {
		calls++
		return 0, false, boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestUntil_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Until(ctx, time.Second, 0, func() (byte, bool, error) {
		return 0, true, nil
	})

	require.ErrorIs(t, err, context.Canceled)
}
