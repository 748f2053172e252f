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

/*
Package mfrc522 provides a pure Go driver for the NXP MFRC522 reader chip.

The MFRC522 is a 13.56 MHz ISO 14443-A reader IC. It has no firmware of its
own: the host drives it register by register, loading frames into its FIFO
and starting PCD commands. This package implements the register sequences
needed to find a tag, select it, authenticate a MIFARE Classic sector and
read or write 16 byte blocks.

Features:
  - Register level Transport interface with an SPI backend (periph.io)
  - REQA/WUPA, anticollision and SELECT over all three cascade levels
  - MIFARE Classic authentication (key A or B), READ and two step WRITE
  - CRC_A computed by the chip's coprocessor
  - Status codes matching the chip documentation
  - A simulated chip for tests and for running without hardware

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-mfrc522"
	    "github.com/ZaparooProject/go-mfrc522/transport/spi"
	)

	transport, err := spi.New(spi.Config{Bus: "SPI0.0", ResetPin: "GPIO25"})
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	device, err := mfrc522.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	if err := device.Init(ctx); err != nil {
	    log.Fatal(err)
	}

	if device.IsNewCardPresent(ctx) {
	    uid, err := device.ReadCardSerial(ctx)
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Printf("Tag %s: %s\n", uid, uid.Type())

	    err = device.Authenticate(ctx, mfrc522.AuthKeyA, 4, mfrc522.DefaultKey, uid)
	    if err == nil {
	        var buf mfrc522.TransferBuffer
	        err = device.MIFARERead(ctx, 4, &buf)
	    }
	    _ = device.HaltA(ctx)
	    _ = device.StopCrypto1()
	}

Error Handling:

Failed operations return a *OpError carrying a StatusCode. The
sentinels can be matched with errors.Is:

	if errors.Is(err, mfrc522.ErrTimeout) {
	    // no tag answered
	}

	fmt.Println(mfrc522.StatusOf(err)) // "Timeout in communication."

Thread Safety:

Device operations are not thread-safe. If you need concurrent access,
implement appropriate synchronization in your application.
*/
package mfrc522
