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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want string
		code StatusCode
	}{
		{code: StatusOK, want: "Success."},
		{code: StatusError, want: "Error in communication."},
		{code: StatusCollision, want: "Collision detected."},
		{code: StatusTimeout, want: "Timeout in communication."},
		{code: StatusNoRoom, want: "A buffer is not big enough."},
		{code: StatusInternalError, want: "Internal error in the code. Should not happen."},
		{code: StatusInvalid, want: "Invalid argument."},
		{code: StatusCRCWrong, want: "The CRC_A does not match."},
		{code: StatusMIFARENack, want: "A MIFARE PICC responded with NAK."},
		{code: StatusCode(99), want: "Unknown error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.code.String())
		})
	}
}

func TestOpError_Is(t *testing.T) {
	t.Parallel()

	cause := errors.New("bus error")

	tests := []struct {
		err    error
		target error
		name   string
		want   bool
	}{
		{
			name:   "Same_Code",
			err:    newOpError("select", StatusTimeout),
			target: ErrTimeout,
			want:   true,
		},
		{
			name:   "Different_Code",
			err:    newOpError("select", StatusTimeout),
			target: ErrCollision,
			want:   false,
		},
		{
			name:   "Wrapped",
			err:    fmt.Errorf("sweep: %w", newOpError("MIFARE write", StatusMIFARENack)),
			target: ErrMIFARENack,
			want:   true,
		},
		{
			name:   "Transport_Cause",
			err:    transportError("read register 0x04", cause),
			target: cause,
			want:   true,
		},
		{
			name:   "Transport_Is_Communication",
			err:    transportError("read register 0x04", cause),
			target: ErrCommunication,
			want:   true,
		},
		{
			name:   "Specific_Target_Does_Not_Match",
			err:    newOpError("select", StatusTimeout),
			target: newOpError("authenticate", StatusTimeout),
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestOpError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Timeout in communication.", ErrTimeout.Error())
	assert.Equal(t, "HLTA: Error in communication.", newOpError("HLTA", StatusError).Error())
	assert.Equal(t,
		"write register 0x01: Error in communication.: spi closed",
		transportError("write register 0x01", errors.New("spi closed")).Error())

	var opErr *OpError
	err := fmt.Errorf("sweep: %w", newOpError("MIFARE read", StatusCRCWrong))
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "MIFARE read", opErr.Op)
	assert.Equal(t, StatusCRCWrong, opErr.Code)
	assert.NotEqual(t, StatusOK, StatusError)
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want StatusCode
	}{
		{name: "Nil", err: nil, want: StatusOK},
		{name: "Op_Error", err: newOpError("x", StatusCRCWrong), want: StatusCRCWrong},
		{name: "Wrapped", err: fmt.Errorf("w: %w", ErrCollision), want: StatusCollision},
		{name: "Manufacturer_Block", err: ErrManufacturerBlk, want: StatusInvalid},
		{name: "No_Tag", err: ErrNoTagSelected, want: StatusInvalid},
		{name: "Foreign", err: errors.New("boom"), want: StatusError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestCommunicate_TransportErrors(t *testing.T) {
	t.Parallel()

	busErr := errors.New("spi transfer failed")

	tests := []struct {
		setup func(*MockTransport)
		name  string
	}{
		{
			name:  "Command_Write",
			setup: func(m *MockTransport) { m.SetWriteError(CommandReg, busErr) },
		},
		{
			name:  "FIFO_Write",
			setup: func(m *MockTransport) { m.SetWriteError(FIFODataReg, busErr) },
		},
		{
			name:  "Irq_Read",
			setup: func(m *MockTransport) { m.SetReadError(ComIrqReg, busErr) },
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := NewMockTransport()
			tt.setup(mock)
			device, err := New(mock)
			require.NoError(t, err)

			_, err = device.RequestA(context.Background())
			require.Error(t, err)
			require.ErrorIs(t, err, busErr)
			assert.Equal(t, StatusError, StatusOf(err))
		})
	}
}

func TestCommunicate_ContextCancelled(t *testing.T) {
	t.Parallel()

	// ComIrqReg stays zero: the command never completes
	mock := NewMockTransport()
	device, err := New(mock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = device.RequestA(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusTimeout, StatusOf(err))
}

func TestCommunicate_ChipHangs(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.RequestA(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
}

func TestCommunicate_ErrorRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		want   StatusCode
		errReg byte
	}{
		{name: "Protocol_Error", errReg: 0x01, want: StatusError},
		{name: "Parity_Error", errReg: 0x02, want: StatusError},
		{name: "Buffer_Overflow", errReg: 0x10, want: StatusError},
		{name: "Collision", errReg: 0x08, want: StatusCollision},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := NewMockTransport()
			mock.QueueReads(ComIrqReg, irqRx|irqIdle)
			mock.SetRegister(ErrorReg, tt.errReg)
			mock.SetRegister(FIFOLevelReg, 2)

			device, err := New(mock)
			require.NoError(t, err)

			_, err = device.RequestA(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, StatusOf(err))
		})
	}
}

func TestCommunicate_NoRoom(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReads(ComIrqReg, irqRx|irqIdle)
	mock.SetRegister(FIFOLevelReg, 5)

	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.RequestA(context.Background())
	require.ErrorIs(t, err, ErrNoRoom)
}
