// Package stego to implement LSB
package stego

import (
	"fmt"
	"math"

	"github.com/Dharsan2024/AudioCryptor/bitpack"
	"github.com/Dharsan2024/AudioCryptor/header"
	"github.com/Dharsan2024/AudioCryptor/models"
	"github.com/Dharsan2024/AudioCryptor/scatter"
)

type LSBSteganography struct {
	config models.StegoConfig
}

func NewLSBSteganography(config *models.StegoConfig) (*LSBSteganography, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: missing stego config", models.ErrInvalidArgument)
	}
	if config.LSBBits < 1 || config.LSBBits > 2 {
		return nil, fmt.Errorf("%w: LSB bits must be 1 or 2, got %d", models.ErrInvalidArgument, config.LSBBits)
	}
	return &LSBSteganography{config: *config}, nil
}

// Capacity is the number of ciphertext bytes that fit after the header.
// lsbBits only scales the accounting; embedding always writes bit 0.
func Capacity(totalSamples, lsbBits int) int {
	if totalSamples <= 0 || lsbBits <= 0 {
		return 0
	}
	return max(0, totalSamples*lsbBits/8-header.Size)
}

func (lsb *LSBSteganography) CalculateCapacity(totalSamples int) int {
	return Capacity(totalSamples, lsb.config.LSBBits)
}

// Embed writes header and ciphertext into a copy of samples. The header is
// always sequential so it can be read without knowing the scatter layout.
func (lsb *LSBSteganography) Embed(samples []int16, msg *models.EncryptedMessage) ([]int16, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: missing encrypted message", models.ErrInvalidArgument)
	}
	if uint64(len(msg.Ciphertext)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: ciphertext exceeds the 32-bit length field", models.ErrCapacity)
	}

	hdr, err := header.Encode(msg.Salt, msg.Nonce, uint32(len(msg.Ciphertext)), lsb.config.LSBBits, lsb.config.Scatter)
	if err != nil {
		return nil, err
	}

	totalSamples := len(samples)
	if err := lsb.checkCapacity(totalSamples, len(msg.Ciphertext)); err != nil {
		return nil, err
	}

	headerBits := bitpack.BytesToBits(hdr)
	payloadBits := bitpack.BytesToBits(msg.Ciphertext)

	positions, err := payloadPositions(len(payloadBits), totalSamples-header.Bits, lsb.config.Scatter, msg.Salt[:])
	if err != nil {
		return nil, err
	}

	// Create copy of samples for modification
	stego := make([]int16, totalSamples)
	copy(stego, samples)

	for i, bit := range headerBits {
		stego[i] = setLSB(stego[i], bit)
	}
	for i, bit := range payloadBits {
		pos := header.Bits + positions[i]
		stego[pos] = setLSB(stego[pos], bit)
	}

	return stego, nil
}

// checkCapacity compares required bits against samples*lsbBits. Only bit 0
// is ever written, so with lsbBits=2 the physical sample count is checked too.
func (lsb *LSBSteganography) checkCapacity(totalSamples, ciphertextLen int) error {
	requiredBits := (header.Size + ciphertextLen) * 8
	availableBits := totalSamples * lsb.config.LSBBits
	if requiredBits > availableBits {
		return &models.CapacityError{Required: requiredBits, Available: availableBits}
	}
	if requiredBits > totalSamples {
		return &models.CapacityError{Required: requiredBits, Available: totalSamples}
	}
	return nil
}

// Extract reads the header sequentially, then the ciphertext in the order
// the header describes.
func Extract(samples []int16) (*models.EncryptedMessage, *header.Header, error) {
	if len(samples) < header.Bits {
		return nil, nil, fmt.Errorf("%w: need %d samples for the header, got %d", models.ErrTruncatedInput, header.Bits, len(samples))
	}

	headerBits := make([]byte, header.Bits)
	for i := range headerBits {
		headerBits[i] = getLSB(samples[i])
	}

	hdr, err := header.Decode(bitpack.BitsToBytes(headerBits))
	if err != nil {
		return nil, nil, err
	}

	available := len(samples) - header.Bits
	if need := uint64(hdr.PayloadLength) * 8; need > uint64(available) {
		return nil, nil, fmt.Errorf("%w: payload needs %d samples after the header, only %d present", models.ErrTruncatedInput, need, available)
	}
	payloadBits := int(hdr.PayloadLength) * 8

	positions, err := payloadPositions(payloadBits, available, hdr.Scatter, hdr.Salt[:])
	if err != nil {
		return nil, nil, err
	}

	bits := make([]byte, payloadBits)
	for i, p := range positions {
		pos := header.Bits + p
		if pos >= len(samples) {
			return nil, nil, fmt.Errorf("%w: sample index %d out of range", models.ErrTruncatedInput, pos)
		}
		bits[i] = getLSB(samples[pos])
	}

	return &models.EncryptedMessage{
		Ciphertext: bitpack.BitsToBytes(bits),
		Salt:       hdr.Salt,
		Nonce:      hdr.Nonce,
	}, hdr, nil
}

// payloadPositions returns offsets relative to the end of the header region.
func payloadPositions(count, available int, useScatter bool, salt []byte) ([]int, error) {
	if useScatter {
		return scatter.GenerateIndices(count, available, salt)
	}
	if count > available {
		return nil, &models.CapacityError{Required: count, Available: available}
	}
	positions := make([]int, count)
	for i := range positions {
		positions[i] = i
	}
	return positions, nil
}

func setLSB(sample int16, bit byte) int16 {
	return (sample &^ 1) | int16(bit&1)
}

func getLSB(sample int16) byte {
	return byte(sample & 1)
}
