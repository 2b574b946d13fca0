// Package bitpack converts between bytes, fixed-width integers and bit
// sequences. Bits are stored one per byte (0 or 1), most significant first.
package bitpack

import "hash/crc32"

// BytesToBits expands every byte into 8 bits, MSB first.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

// BitsToBytes packs bits back into bytes. An incomplete trailing group is
// right-padded with zero bits.
func BitsToBytes(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit&1 == 1 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

// IntToBits returns the low width bits of value, MSB first.
func IntToBits(value uint64, width int) []byte {
	if width <= 0 {
		return nil
	}
	bits := make([]byte, width)
	for i := range width {
		shift := uint(width - 1 - i)
		if shift < 64 {
			bits[i] = byte((value >> shift) & 1)
		}
	}
	return bits
}

// BitsToInt folds up to 64 bits, MSB first, into an integer.
func BitsToInt(bits []byte) uint64 {
	var v uint64
	for _, bit := range bits {
		v = (v << 1) | uint64(bit&1)
	}
	return v
}

// Checksum is the IEEE CRC-32 used by zip and gzip.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
