// Package bitlayout is the pure bit-position model underlying every
// decode and encode operation the planners emit: given a signal's DBC
// coordinates it answers exactly one question — which payload bits does
// this signal occupy, and in what order do they contribute to the
// signal's value.
//
// Everything else (sign extension, scaling, type selection) is built
// on top of the position list this package returns; the serpentine
// big-endian rule is the subtlest part of the format, so it is
// isolated and tested on its own.
package bitlayout

import "fmt"

// Position is one payload bit, addressed the way a byte slice is:
// Byte is the index into the payload, Bit is 0..7 least-significant
// first within that byte.
type Position struct {
	Byte int
	Bit  int
}

// OutOfRangeError is returned when a signal's bit footprint escapes
// the declared payload length.
type OutOfRangeError struct {
	StartBit, Width, FrameLen int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("bitlayout: signal at start_bit=%d width=%d escapes %d-byte payload",
		e.StartBit, e.Width, e.FrameLen)
}

// Layout returns the width-long ordered list of payload bit positions
// a signal occupies, value-LSB first, translating the DBC start_bit
// convention named by bigEndian into the uniform (byte, bit) model.
//
// Little-endian ("Intel"): start_bit is the value's LSB. The signal
// occupies width consecutive bits of the payload's natural bit order,
// where natural bit n is (byte n/8, bit n%8) and higher n is more
// significant.
//
// Big-endian ("Motorola"): start_bit is the value's MSB, numbered by
// the serpentine rule — bit index within a byte still runs 0..7
// low-to-high, but the walk of decreasing significance proceeds from
// start_bit down to bit 0 of its byte, then jumps to bit 7 of the next
// byte, and so on.
func Layout(startBit, width int, bigEndian bool, frameLen int) ([]Position, error) {
	if width <= 0 || width > 64 {
		return nil, &OutOfRangeError{startBit, width, frameLen}
	}
	if startBit < 0 || startBit > 63 {
		return nil, &OutOfRangeError{startBit, width, frameLen}
	}

	positions := make([]Position, width)
	if bigEndian {
		pos := startBit
		for i := 0; i < width; i++ {
			byteIdx, bitIdx := pos/8, pos%8
			if byteIdx < 0 || byteIdx >= frameLen {
				return nil, &OutOfRangeError{startBit, width, frameLen}
			}
			// Walked MSB-first; store LSB-first.
			positions[width-1-i] = Position{byteIdx, bitIdx}
			if bitIdx == 0 {
				pos += 15 // jump to bit 7 of the next byte
			} else {
				pos--
			}
		}
		return positions, nil
	}

	totalBits := frameLen * 8
	for i := 0; i < width; i++ {
		bitPos := startBit + i
		if bitPos >= totalBits {
			return nil, &OutOfRangeError{startBit, width, frameLen}
		}
		positions[i] = Position{bitPos / 8, bitPos % 8}
	}
	return positions, nil
}

// Aligned reports whether (startBit, width) lands on whole, consecutive
// bytes under the given byte-order convention: width a multiple of 8
// and start_bit on the convention's byte boundary (bit 0 for
// little-endian, bit 7 for big-endian, since big-endian's start_bit is
// the field's MSB).
func Aligned(startBit, width int, bigEndian bool) bool {
	if width%8 != 0 {
		return false
	}
	if bigEndian {
		return startBit%8 == 7
	}
	return startBit%8 == 0
}

// ByteStart returns the first payload byte index of an aligned field:
// for little-endian, the lowest-addressed (least significant) byte;
// for big-endian, the lowest-addressed (most significant) byte. Only
// meaningful when Aligned(startBit, width, bigEndian) is true.
func ByteStart(startBit int) int {
	return startBit / 8
}
