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

// MFRC522 register addresses (datasheet section 9). The SPI address byte is
// derived from these by the transport.
const (
	// Command and status
	CommandReg    = 0x01
	ComIEnReg     = 0x02
	DivIEnReg     = 0x03
	ComIrqReg     = 0x04
	DivIrqReg     = 0x05
	ErrorReg      = 0x06
	Status1Reg    = 0x07
	Status2Reg    = 0x08
	FIFODataReg   = 0x09
	FIFOLevelReg  = 0x0A
	WaterLevelReg = 0x0B
	ControlReg    = 0x0C
	BitFramingReg = 0x0D
	CollReg       = 0x0E

	// Command configuration
	ModeReg        = 0x11
	TxModeReg      = 0x12
	RxModeReg      = 0x13
	TxControlReg   = 0x14
	TxASKReg       = 0x15
	TxSelReg       = 0x16
	RxSelReg       = 0x17
	RxThresholdReg = 0x18
	DemodReg       = 0x19
	MfTxReg        = 0x1C
	MfRxReg        = 0x1D
	SerialSpeedReg = 0x1F

	// Configuration
	CRCResultRegH  = 0x21
	CRCResultRegL  = 0x22
	ModWidthReg    = 0x24
	RFCfgReg       = 0x26
	GsNReg         = 0x27
	CWGsPReg       = 0x28
	ModGsPReg      = 0x29
	TModeReg       = 0x2A
	TPrescalerReg  = 0x2B
	TReloadRegH    = 0x2C
	TReloadRegL    = 0x2D
	TCounterValueH = 0x2E
	TCounterValueL = 0x2F

	// Test
	VersionReg = 0x37
)

// PCD commands written to CommandReg
const (
	PCDIdle             = 0x00
	PCDMem              = 0x01
	PCDGenerateRandomID = 0x02
	PCDCalcCRC          = 0x03
	PCDTransmit         = 0x04
	PCDNoCmdChange      = 0x07
	PCDReceive          = 0x08
	PCDTransceive       = 0x0C
	PCDMFAuthent        = 0x0E
	PCDSoftReset        = 0x0F
)

// PICC commands sent over the air
const (
	PICCCmdREQA    = 0x26
	PICCCmdWUPA    = 0x52
	PICCCmdCT      = 0x88 // cascade tag, not a command
	PICCCmdSelCL1  = 0x93
	PICCCmdSelCL2  = 0x95
	PICCCmdSelCL3  = 0x97
	PICCCmdHLTA    = 0x50
	PICCCmdMFRead  = 0x30
	PICCCmdMFWrite = 0xA0
	PICCCmdMFAuthA = 0x60
	PICCCmdMFAuthB = 0x61
)

// Register bits used by the driver
const (
	irqTimer   byte = 0x01 // ComIrqReg TimerIRq
	irqIdle    byte = 0x10 // ComIrqReg IdleIRq
	irqRx      byte = 0x20 // ComIrqReg RxIRq
	irqCRC     byte = 0x04 // DivIrqReg CRCIRq
	irqClear   byte = 0x7F // clears every ComIrqReg request bit
	fifoFlush  byte = 0x80 // FIFOLevelReg FlushBuffer
	startSend  byte = 0x80 // BitFramingReg StartSend
	powerDown  byte = 0x10 // CommandReg PowerDown
	crypto1On  byte = 0x08 // Status2Reg MFCrypto1On
	valuesColl byte = 0x80 // CollReg ValuesAfterColl
	antennaTx  byte = 0x03 // TxControlReg Tx1RFEn | Tx2RFEn
	rxLastBits byte = 0x07 // ControlReg RxLastBits

	errCollision byte = 0x08 // ErrorReg CollErr
	errFatal     byte = 0x13 // ErrorReg BufferOvfl | ParityErr | ProtocolErr
)

// mifareACK is the 4-bit acknowledge answered by MIFARE Classic tags
const mifareACK byte = 0x0A
