// Package header packs and unpacks the fixed 42-byte container header that
// makes an encoded sample buffer self-describing.
//
// Layout (big-endian):
//
//	offset size field
//	0      4    magic "ASTG"
//	4      1    version
//	5      1    flags: bits 0-1 lsb bit count, bit 2 scatter
//	6      16   salt
//	22     12   nonce
//	34     4    payload length
//	38     4    CRC-32 over bytes [0,38)
package header

import (
	"encoding/binary"
	"fmt"

	"github.com/Dharsan2024/AudioCryptor/bitpack"
	"github.com/Dharsan2024/AudioCryptor/models"
)

const (
	MagicSize = 4
	SaltSize  = 16
	NonceSize = 12

	// Size is the encoded header length in bytes.
	Size = MagicSize + 1 + 1 + SaltSize + NonceSize + 4 + 4
	// Bits is the number of samples the header occupies.
	Bits = Size * 8

	versionOffset  = 4
	flagsOffset    = 5
	saltOffset     = 6
	nonceOffset    = saltOffset + SaltSize
	lengthOffset   = nonceOffset + NonceSize
	ChecksumOffset = lengthOffset + 4

	flagLSBMask = 0x03
	flagScatter = 0x04

	Version1       uint8 = 1
	CurrentVersion       = Version1
)

// Magic identifies buffers written by this codec.
var Magic = [MagicSize]byte{'A', 'S', 'T', 'G'}

// MagicWord is Magic read as a big-endian integer.
var MagicWord = binary.BigEndian.Uint32(Magic[:])

var (
	ErrHeaderTooShort     = fmt.Errorf("%w: header shorter than %d bytes", models.ErrTruncatedInput, Size)
	ErrChecksumMismatch   = fmt.Errorf("%w: header checksum mismatch", models.ErrFormat)
	ErrUnrecognizedFormat = fmt.Errorf("%w: unrecognized magic bytes", models.ErrFormat)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", models.ErrFormat)
	ErrInvalidFlags       = fmt.Errorf("%w: invalid flags", models.ErrFormat)
)

// Header is the decoded form of the container header.
type Header struct {
	Version       uint8
	LSBBits       int
	Scatter       bool
	Salt          [SaltSize]byte
	Nonce         [NonceSize]byte
	PayloadLength uint32
}

// New builds a current-version header after validating lsbBits.
func New(salt [SaltSize]byte, nonce [NonceSize]byte, payloadLength uint32, lsbBits int, scatter bool) (*Header, error) {
	if err := validateLSBBits(lsbBits); err != nil {
		return nil, err
	}
	return &Header{
		Version:       CurrentVersion,
		LSBBits:       lsbBits,
		Scatter:       scatter,
		Salt:          salt,
		Nonce:         nonce,
		PayloadLength: payloadLength,
	}, nil
}

// Encode packs the header fields and appends the checksum.
func Encode(salt [SaltSize]byte, nonce [NonceSize]byte, payloadLength uint32, lsbBits int, scatter bool) ([]byte, error) {
	h, err := New(salt, nonce, payloadLength, lsbBits, scatter)
	if err != nil {
		return nil, err
	}
	return h.Marshal(), nil
}

// Flags returns the packed flags byte.
func (h *Header) Flags() byte {
	flags := byte(h.LSBBits) & flagLSBMask
	if h.Scatter {
		flags |= flagScatter
	}
	return flags
}

// Marshal returns the 42-byte wire form.
func (h *Header) Marshal() []byte {
	buf := make([]byte, Size)
	copy(buf[:MagicSize], Magic[:])
	buf[versionOffset] = h.Version
	buf[flagsOffset] = h.Flags()
	copy(buf[saltOffset:nonceOffset], h.Salt[:])
	copy(buf[nonceOffset:lengthOffset], h.Nonce[:])
	binary.BigEndian.PutUint32(buf[lengthOffset:ChecksumOffset], h.PayloadLength)
	binary.BigEndian.PutUint32(buf[ChecksumOffset:], bitpack.Checksum(buf[:ChecksumOffset]))
	return buf
}

// Decode validates and unpacks a header. The checksum is verified before any
// other field is looked at. Only the first Size bytes are considered.
func Decode(data []byte) (*Header, error) {
	if len(data) < Size {
		return nil, fmt.Errorf("%w: got %d", ErrHeaderTooShort, len(data))
	}
	data = data[:Size]

	want := binary.BigEndian.Uint32(data[ChecksumOffset:])
	if got := bitpack.Checksum(data[:ChecksumOffset]); got != want {
		return nil, fmt.Errorf("%w: computed %08x, stored %08x", ErrChecksumMismatch, got, want)
	}

	if !HasMagic(data) {
		return nil, ErrUnrecognizedFormat
	}

	switch v := data[versionOffset]; v {
	case Version1:
		return decodeV1(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
}

func decodeV1(data []byte) (*Header, error) {
	flags := data[flagsOffset]
	lsbBits := int(flags & flagLSBMask)
	if err := validateLSBBits(lsbBits); err != nil {
		return nil, fmt.Errorf("%w: lsb bits %d", ErrInvalidFlags, lsbBits)
	}

	h := &Header{
		Version:       Version1,
		LSBBits:       lsbBits,
		Scatter:       flags&flagScatter != 0,
		PayloadLength: binary.BigEndian.Uint32(data[lengthOffset:ChecksumOffset]),
	}
	copy(h.Salt[:], data[saltOffset:nonceOffset])
	copy(h.Nonce[:], data[nonceOffset:lengthOffset])
	return h, nil
}

// HasMagic reports whether data starts with the format's magic bytes.
func HasMagic(data []byte) bool {
	if len(data) < MagicSize {
		return false
	}
	return [MagicSize]byte(data[:MagicSize]) == Magic
}

func validateLSBBits(lsbBits int) error {
	if lsbBits < 1 || lsbBits > 2 {
		return fmt.Errorf("%w: lsb bits must be 1 or 2, got %d", models.ErrInvalidArgument, lsbBits)
	}
	return nil
}
