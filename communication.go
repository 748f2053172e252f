package mfrc522

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-mfrc522/internal/wait"
)

func (d *Device) writeRegister(reg byte, values ...byte) error {
	if err := d.transport.WriteRegister(reg, values...); err != nil {
		return transportError(fmt.Sprintf("write register 0x%02X", reg), err)
	}
	return nil
}

func (d *Device) readRegister(reg byte) (byte, error) {
	v, err := d.transport.ReadRegister(reg)
	if err != nil {
		return 0, transportError(fmt.Sprintf("read register 0x%02X", reg), err)
	}
	return v, nil
}

func (d *Device) setBits(reg, mask byte) error {
	v, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, v|mask)
}

func (d *Device) clearBits(reg, mask byte) error {
	v, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, v&^mask)
}

// exchange describes one PCD command and what to expect back
type exchange struct {
	op        string
	send      []byte
	command   byte
	waitIRq   byte
	backSize  int  // 0 when no answer is read from the FIFO
	validBits byte // bits of the last sent byte, 0 means all 8
	rxAlign   byte
	checkCRC  bool
}

// communicate runs a command through the FIFO and returns the answer and
// the number of valid bits in its last byte (0 means all 8).
func (d *Device) communicate(ctx context.Context, ex exchange) ([]byte, byte, error) {
	bitFraming := (ex.rxAlign << 4) | ex.validBits

	steps := []struct {
		reg    byte
		values []byte
	}{
		{CommandReg, []byte{PCDIdle}},
		{ComIrqReg, []byte{irqClear}},
		{FIFOLevelReg, []byte{fifoFlush}},
		{FIFODataReg, ex.send},
		{BitFramingReg, []byte{bitFraming}},
		{CommandReg, []byte{ex.command}},
	}
	for _, s := range steps {
		if len(s.values) == 0 {
			continue
		}
		if err := d.writeRegister(s.reg, s.values...); err != nil {
			return nil, 0, err
		}
	}

	if ex.command == PCDTransceive {
		if err := d.setBits(BitFramingReg, startSend); err != nil {
			return nil, 0, err
		}
	}

	irq, err := wait.Until(ctx, d.config.Timeout, d.config.PollInterval, func() (byte, bool, error) {
		n, err := d.readRegister(ComIrqReg)
		if err != nil {
			return 0, false, err
		}
		return n, n&(ex.waitIRq|irqTimer) == 0, nil
	})
	switch {
	case errors.Is(err, wait.ErrDeadline):
		return nil, 0, newOpError(ex.op, StatusTimeout)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, 0, &OpError{Op: ex.op, Code: StatusTimeout, Err: err}
	case err != nil:
		return nil, 0, err
	}
	if irq&ex.waitIRq == 0 {
		// the chip's own timer expired before the tag answered
		return nil, 0, newOpError(ex.op, StatusTimeout)
	}

	errReg, err := d.readRegister(ErrorReg)
	if err != nil {
		return nil, 0, err
	}
	if errReg&errFatal != 0 {
		d.log.Debugf("%s: ErrorReg 0x%02X", ex.op, errReg)
		return nil, 0, newOpError(ex.op, StatusError)
	}

	var back []byte
	var lastBits byte
	if ex.backSize > 0 {
		level, err := d.readRegister(FIFOLevelReg)
		if err != nil {
			return nil, 0, err
		}
		if int(level) > ex.backSize {
			return nil, 0, newOpError(ex.op, StatusNoRoom)
		}
		if level > 0 {
			back, err = d.transport.ReadRegisters(FIFODataReg, int(level))
			if err != nil {
				return nil, 0, transportError(ex.op, err)
			}
		}
		ctrl, err := d.readRegister(ControlReg)
		if err != nil {
			return nil, 0, err
		}
		lastBits = ctrl & rxLastBits
	}

	if errReg&errCollision != 0 {
		return nil, 0, newOpError(ex.op, StatusCollision)
	}

	if ex.backSize > 0 && ex.checkCRC {
		if err := d.verifyCRC(ctx, ex.op, back, lastBits); err != nil {
			return nil, 0, err
		}
	}

	return back, lastBits, nil
}

func (d *Device) verifyCRC(ctx context.Context, op string, back []byte, lastBits byte) error {
	// a single 4 bit answer is a MIFARE NAK
	if len(back) == 1 && lastBits == 4 {
		return newOpError(op, StatusMIFARENack)
	}
	if len(back) < 2 || lastBits != 0 {
		return newOpError(op, StatusCRCWrong)
	}

	n := len(back)
	crc, err := d.calculateCRC(ctx, back[:n-2])
	if err != nil {
		return err
	}
	if crc[0] != back[n-2] || crc[1] != back[n-1] {
		return newOpError(op, StatusCRCWrong)
	}
	return nil
}

// transceive sends data to the tag and reads its answer
func (d *Device) transceive(
	ctx context.Context, op string, send []byte, backSize int, validBits byte, checkCRC bool,
) ([]byte, byte, error) {
	return d.communicate(ctx, exchange{
		op:        op,
		command:   PCDTransceive,
		waitIRq:   irqRx | irqIdle,
		send:      send,
		backSize:  backSize,
		validBits: validBits,
		checkCRC:  checkCRC,
	})
}

// calculateCRC runs the CRC coprocessor over data and returns CRC_A
// low byte first, the order it goes on the air.
func (d *Device) calculateCRC(ctx context.Context, data []byte) ([2]byte, error) {
	var crc [2]byte

	steps := []struct {
		reg    byte
		values []byte
	}{
		{CommandReg, []byte{PCDIdle}},
		{DivIrqReg, []byte{irqCRC}},
		{FIFOLevelReg, []byte{fifoFlush}},
		{FIFODataReg, data},
		{CommandReg, []byte{PCDCalcCRC}},
	}
	for _, s := range steps {
		if len(s.values) == 0 {
			continue
		}
		if err := d.writeRegister(s.reg, s.values...); err != nil {
			return crc, err
		}
	}

	_, err := wait.Until(ctx, d.config.CRCTimeout, d.config.PollInterval, func() (struct{}, bool, error) {
		n, err := d.readRegister(DivIrqReg)
		if err != nil {
			return struct{}{}, false, err
		}
		return struct{}{}, n&irqCRC == 0, nil
	})
	if errors.Is(err, wait.ErrDeadline) {
		return crc, newOpError("calculate CRC", StatusTimeout)
	}
	if err != nil {
		return crc, err
	}

	if err := d.writeRegister(CommandReg, PCDIdle); err != nil {
		return crc, err
	}

	if crc[0], err = d.readRegister(CRCResultRegL); err != nil {
		return crc, err
	}
	if crc[1], err = d.readRegister(CRCResultRegH); err != nil {
		return crc, err
	}
	return crc, nil
}

// appendCRC returns a copy of data followed by its CRC_A
func (d *Device) appendCRC(ctx context.Context, data []byte) ([]byte, error) {
	crc, err := d.calculateCRC(ctx, data)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, len(data), len(data)+2)
	copy(frame, data)
	return append(frame, crc[0], crc[1]), nil
}
