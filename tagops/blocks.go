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
	"context"

	"github.com/ZaparooProject/go-mfrc522"
)

// Block address space of a MIFARE Classic 1K: 16 sectors of 4 blocks
const (
	FirstBlock = 0
	LastBlock  = 63
)

// reservedBlocks has a bit set for the manufacturer block and for the
// trailer of every sector: blocks 0, 3, 7, 11 ... 63
const reservedBlocks uint64 = 0x8888888888888889

// IsReserved reports whether block holds manufacturer data or sector keys.
// Addresses outside 0..63 are not reserved.
func IsReserved(block int) bool {
	if block < FirstBlock || block > LastBlock {
		return false
	}
	return reservedBlocks&(1<<uint(block)) != 0
}

func blockAddr(block int) (byte, bool) {
	if block < 0 || block > 0xFF {
		return 0, false
	}
	return byte(block), true
}

// authenticate runs the authentication before a write or a read and
// prints its outcome
func (o *Operations) authenticate(ctx context.Context, block int, key mfrc522.Key, step Step) mfrc522.StatusCode {
	addr, ok := blockAddr(block)
	if !ok {
		o.report(block, step, mfrc522.StatusInvalid)
		return mfrc522.StatusInvalid
	}

	err := o.reader.Authenticate(ctx, o.keyType, addr, key, o.uid)
	status := mfrc522.StatusOf(err)
	o.report(block, step, status)

	if status != mfrc522.StatusOK {
		if step == StepAuthWrite {
			o.console.Infof("Autenticação falhou para a execução de escrita, erro: %s", status)
		} else {
			o.console.Infof("Autenticação falhou para a execução da leitura, erro: %s", status)
		}
		return status
	}

	o.console.Info("Autenticação bem Sucedida.")
	return mfrc522.StatusOK
}

// WriteBlock authenticates block with key and writes payload to it. A
// failed authentication skips the write. Nothing is retried.
func (o *Operations) WriteBlock(ctx context.Context, block int, payload mfrc522.Block, key mfrc522.Key) mfrc522.StatusCode {
	if status := o.authenticate(ctx, block, key, StepAuthWrite); status != mfrc522.StatusOK {
		return status
	}

	err := o.reader.MIFAREWrite(ctx, byte(block), payload)
	status := mfrc522.StatusOf(err)
	o.report(block, StepWrite, status)

	if status != mfrc522.StatusOK {
		o.console.Infof("A escrita no bloco falhou, erro: %s", status)
		return status
	}

	o.console.Info("Os dados foram escritos com sucesso!")
	return mfrc522.StatusOK
}

// ReadBlock authenticates block with key and reads it into buf, then prints
// the 16 data bytes as they are
func (o *Operations) ReadBlock(
	ctx context.Context, block int, buf *mfrc522.TransferBuffer, key mfrc522.Key,
) mfrc522.StatusCode {
	if status := o.authenticate(ctx, block, key, StepAuthRead); status != mfrc522.StatusOK {
		return status
	}

	err := o.reader.MIFARERead(ctx, byte(block), buf)
	status := mfrc522.StatusOf(err)
	o.report(block, StepRead, status)

	if status != mfrc522.StatusOK {
		o.console.Infof("A leitura falhou, erro: %s", status)
		return status
	}

	data := buf.Data()
	o.console.Info("Leitura do bloco concluida com sucesso!")
	o.console.Info("")
	o.console.Infof("Bloco:%d Data: %s", block, data[:])
	return mfrc522.StatusOK
}

// Sweep writes payload to every non-reserved block from 0 to 63 and reads
// each one back. The read is attempted even when the write failed, and a
// failure on one block never stops the sweep.
func (o *Operations) Sweep(ctx context.Context, payload mfrc522.Block, key mfrc522.Key) {
	var buf mfrc522.TransferBuffer
	for block := FirstBlock; block <= LastBlock; block++ {
		if IsReserved(block) {
			continue
		}
		o.WriteBlock(ctx, block, payload, key)
		o.ReadBlock(ctx, block, &buf, key)
	}
}
