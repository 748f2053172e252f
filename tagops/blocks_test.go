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
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/console"
	"github.com/ZaparooProject/go-mfrc522/internal/virtual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = "@GuilhermeAw.com"

// newTestOperations returns Operations on a simulated reader with tag in
// its field, and the buffer receiving the console lines
func newTestOperations(t *testing.T, tag *virtual.Tag, opts ...Option) (*Operations, *bytes.Buffer) {
	t.Helper()

	chip := virtual.NewChip(tag)
	device, err := mfrc522.New(mfrc522.NewVirtualTransport(chip))
	require.NoError(t, err)
	require.NoError(t, device.Init(context.Background()))

	var out bytes.Buffer
	return New(device, console.New(&out, "\n"), opts...), &out
}

func payload(t *testing.T) mfrc522.Block {
	t.Helper()
	b, err := mfrc522.BlockFromString(testPayload)
	require.NoError(t, err)
	return b
}

func TestIsReserved(t *testing.T) {
	t.Parallel()

	reserved := map[int]bool{
		0: true, 3: true, 7: true, 11: true, 15: true, 19: true, 23: true, 27: true, 31: true,
		35: true, 39: true, 43: true, 47: true, 51: true, 55: true, 59: true, 63: true,
	}
	require.Len(t, reserved, 17)

	for block := FirstBlock; block <= LastBlock; block++ {
		assert.Equal(t, reserved[block], IsReserved(block), "block %d", block)
	}

	assert.False(t, IsReserved(-1))
	assert.False(t, IsReserved(64))
	assert.False(t, IsReserved(67))
}

func TestWriteBlock_ReadBlock_RoundTrip(t *testing.T) {
	t.Parallel()

	for block := FirstBlock; block <= LastBlock; block++ {
		if IsReserved(block) {
			continue
		}
		block := block
		t.Run(fmt.Sprintf("Block_%02d", block), func(t *testing.T) {
			t.Parallel()

			tag := virtual.NewMIFARE1K(nil)
			ops, _ := newTestOperations(t, tag)
			ctx := context.Background()
			require.True(t, ops.DetectTag(ctx))

			data := mfrc522.Block{byte(block), 0xA5, 0x5A}
			require.Equal(t, mfrc522.StatusOK, ops.WriteBlock(ctx, block, data, mfrc522.DefaultKey))

			var buf mfrc522.TransferBuffer
			require.Equal(t, mfrc522.StatusOK, ops.ReadBlock(ctx, block, &buf, mfrc522.DefaultKey))
			assert.Equal(t, data, buf.Data())
		})
	}
}

func TestWriteBlock_Idempotent(t *testing.T) {
	t.Parallel()

	tag := virtual.NewMIFARE1K(nil)
	ops, _ := newTestOperations(t, tag)
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	data := payload(t)
	assert.Equal(t, mfrc522.StatusOK, ops.WriteBlock(ctx, 9, data, mfrc522.DefaultKey))
	assert.Equal(t, mfrc522.StatusOK, ops.WriteBlock(ctx, 9, data, mfrc522.DefaultKey))
	assert.Equal(t, [16]byte(data), tag.Block(9))
	assert.Equal(t, []int{9, 9}, tag.WrittenBlocks())
}

func TestWriteBlock_Block5(t *testing.T) {
	t.Parallel()

	ops, out := newTestOperations(t, virtual.NewMIFARE1K(nil))
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	assert.Equal(t, mfrc522.StatusOK, ops.WriteBlock(ctx, 5, payload(t), mfrc522.DefaultKey))

	var buf mfrc522.TransferBuffer
	assert.Equal(t, mfrc522.StatusOK, ops.ReadBlock(ctx, 5, &buf, mfrc522.DefaultKey))
	assert.Equal(t, testPayload, string(buf[:mfrc522.BlockSize]))

	assert.Equal(t, strings.Join([]string{
		"Autenticação bem Sucedida.",
		"Os dados foram escritos com sucesso!",
		"Autenticação bem Sucedida.",
		"Leitura do bloco concluida com sucesso!",
		"",
		"Bloco:5 Data: @GuilhermeAw.com",
		"",
	}, "\n"), out.String())
}

func TestWriteBlock_WrongKey(t *testing.T) {
	t.Parallel()

	tag := virtual.NewMIFARE1K(nil)
	var events []StepEvent
	ops, out := newTestOperations(t, tag, OnStep(func(e StepEvent) {
		events = append(events, e)
	}))
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	wrong := mfrc522.Key{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	status := ops.WriteBlock(ctx, 5, payload(t), wrong)
	assert.Equal(t, mfrc522.StatusTimeout, status)
	assert.Equal(t,
		"Autenticação falhou para a execução de escrita, erro: Timeout in communication.\n",
		out.String())

	// no write was attempted
	assert.Empty(t, tag.WrittenBlocks())
	assert.Equal(t, []StepEvent{{Block: 5, Step: StepAuthWrite, Status: mfrc522.StatusTimeout}}, events)

	out.Reset()
	var buf mfrc522.TransferBuffer
	assert.Equal(t, mfrc522.StatusTimeout, ops.ReadBlock(ctx, 5, &buf, wrong))
	assert.Equal(t,
		"Autenticação falhou para a execução da leitura, erro: Timeout in communication.\n",
		out.String())
}

func TestWriteBlock_ManufacturerBlock(t *testing.T) {
	t.Parallel()

	tag := virtual.NewMIFARE1K(nil)
	ops, out := newTestOperations(t, tag)
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	before := tag.Block(0)
	assert.Equal(t, mfrc522.StatusInvalid, ops.WriteBlock(ctx, 0, payload(t), mfrc522.DefaultKey))
	assert.Equal(t, before, tag.Block(0))
	assert.Empty(t, tag.WrittenBlocks())
	assert.Equal(t,
		"Autenticação bem Sucedida.\nA escrita no bloco falhou, erro: Invalid argument.\n",
		out.String())
}

func TestReadBlock_Failure(t *testing.T) {
	t.Parallel()

	tag := virtual.NewMIFARE1K(nil)
	ops, out := newTestOperations(t, tag)
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	assert.Equal(t, mfrc522.StatusNoRoom, ops.ReadBlock(ctx, 4, nil, mfrc522.DefaultKey))
	assert.Equal(t,
		"Autenticação bem Sucedida.\nA leitura falhou, erro: A buffer is not big enough.\n",
		out.String())
}

func TestWriteBlock_InvalidAddress(t *testing.T) {
	t.Parallel()

	ops, _ := newTestOperations(t, virtual.NewMIFARE1K(nil))
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	assert.Equal(t, mfrc522.StatusInvalid, ops.WriteBlock(ctx, 256, payload(t), mfrc522.DefaultKey))
	assert.Equal(t, mfrc522.StatusInvalid, ops.WriteBlock(ctx, -1, payload(t), mfrc522.DefaultKey))
}

func TestWriteBlock_KeyB(t *testing.T) {
	t.Parallel()

	keyA := mfrc522.Key{0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5}
	tag := virtual.NewMIFARE1K(nil)
	tag.SetSectorKeys(1, keyA, mfrc522.DefaultKey)

	ops, _ := newTestOperations(t, tag, WithKeyType(mfrc522.AuthKeyB))
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	assert.Equal(t, mfrc522.StatusOK, ops.WriteBlock(ctx, 4, payload(t), mfrc522.DefaultKey))
}

func TestSweep(t *testing.T) {
	t.Parallel()

	tag := virtual.NewMIFARE1K(nil)
	var events []StepEvent
	ops, out := newTestOperations(t, tag, OnStep(func(e StepEvent) {
		events = append(events, e)
	}))
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	data := payload(t)
	ops.Sweep(ctx, data, mfrc522.DefaultKey)

	var want []int
	for block := FirstBlock; block <= LastBlock; block++ {
		if !IsReserved(block) {
			want = append(want, block)
		}
	}
	require.Len(t, want, 47)
	assert.Equal(t, want, tag.WrittenBlocks())

	for _, block := range want {
		assert.Equal(t, [16]byte(data), tag.Block(block))
	}

	// reserved blocks are never touched
	require.Len(t, events, 4*47)
	for _, e := range events {
		assert.False(t, IsReserved(e.Block), "reserved block %d visited", e.Block)
		assert.Equal(t, mfrc522.StatusOK, e.Status)
	}
	assert.NotContains(t, out.String(), "Bloco:7 ")
	assert.Contains(t, out.String(), "Bloco:62 Data: @GuilhermeAw.com")
}

func TestSweep_WrongSectorKeyAdvances(t *testing.T) {
	t.Parallel()

	secret := mfrc522.Key{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	tag := virtual.NewMIFARE1K(nil)
	tag.SetSectorKeys(1, secret, secret)

	var events []StepEvent
	ops, out := newTestOperations(t, tag, OnStep(func(e StepEvent) {
		events = append(events, e)
	}))
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	ops.Sweep(ctx, payload(t), mfrc522.DefaultKey)

	written := tag.WrittenBlocks()
	assert.NotContains(t, written, 4)
	assert.NotContains(t, written, 5)
	assert.NotContains(t, written, 6)
	assert.Contains(t, written, 8)
	assert.Contains(t, written, 62)
	assert.Len(t, written, 44)

	var failed []StepEvent
	for _, e := range events {
		if e.Status != mfrc522.StatusOK {
			failed = append(failed, e)
		}
	}
	// write and read authentication fail on each block of sector 1
	assert.Equal(t, []StepEvent{
		{Block: 4, Step: StepAuthWrite, Status: mfrc522.StatusTimeout},
		{Block: 4, Step: StepAuthRead, Status: mfrc522.StatusTimeout},
		{Block: 5, Step: StepAuthWrite, Status: mfrc522.StatusTimeout},
		{Block: 5, Step: StepAuthRead, Status: mfrc522.StatusTimeout},
		{Block: 6, Step: StepAuthWrite, Status: mfrc522.StatusTimeout},
		{Block: 6, Step: StepAuthRead, Status: mfrc522.StatusTimeout},
	}, failed)
	assert.Equal(t, 3, strings.Count(out.String(), "Autenticação falhou para a execução de escrita"))
	assert.Equal(t, 3, strings.Count(out.String(), "Autenticação falhou para a execução da leitura"))
}

func TestSweep_ReadAttemptedAfterFailedWrite(t *testing.T) {
	t.Parallel()

	var events []StepEvent
	reader := &scriptedReader{writeErr: mfrc522.ErrMIFARENack}
	ops := New(reader, nil, OnStep(func(e StepEvent) {
		events = append(events, e)
	}))
	ctx := context.Background()
	require.True(t, ops.DetectTag(ctx))

	ops.Sweep(ctx, payload(t), mfrc522.DefaultKey)

	require.Len(t, events, 4*47)
	assert.Equal(t, StepEvent{Block: 1, Step: StepWrite, Status: mfrc522.StatusMIFARENack}, events[1])
	assert.Equal(t, StepEvent{Block: 1, Step: StepRead, Status: mfrc522.StatusOK}, events[3])
	assert.Equal(t, 47, reader.reads)
}
