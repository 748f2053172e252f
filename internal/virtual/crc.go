package virtual

// CRCA calculates the ISO 14443-A CRC of data, low byte first, the same
// value the chip's CRC coprocessor produces with preset 0x6363.
func CRCA(data []byte) [2]byte {
	crc := uint32(0x6363)
	for _, bt := range data {
		bt ^= uint8(crc & 0xff)
		bt ^= bt << 4
		bt32 := uint32(bt)
		crc = (crc >> 8) ^ (bt32 << 8) ^ (bt32 << 3) ^ (bt32 >> 4)
	}

	return [2]byte{byte(crc & 0xff), byte((crc >> 8) & 0xff)}
}

// AppendCRCA returns a copy of data followed by its CRC_A
func AppendCRCA(data []byte) []byte {
	crc := CRCA(data)
	out := make([]byte, len(data), len(data)+2)
	copy(out, data)
	return append(out, crc[0], crc[1])
}

// checkCRCA reports whether the last two bytes of frame are the CRC_A of
// the rest
func checkCRCA(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	n := len(frame)
	crc := CRCA(frame[:n-2])
	return crc[0] == frame[n-2] && crc[1] == frame[n-1]
}
