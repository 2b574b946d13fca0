package stego

import (
	"github.com/Dharsan2024/AudioCryptor/crypto"
	"github.com/Dharsan2024/AudioCryptor/models"
)

// EncodeMessage encrypts message under password and hides it in a copy of
// samples. The capacity is checked before the key is derived.
func EncodeMessage(samples []int16, message, password string, lsbBits int, scatter bool) ([]int16, error) {
	lsb, err := NewLSBSteganography(&models.StegoConfig{LSBBits: lsbBits, Scatter: scatter})
	if err != nil {
		return nil, err
	}
	if err := crypto.ValidatePassword(password); err != nil {
		return nil, err
	}

	if err := lsb.checkCapacity(len(samples), crypto.EncryptedSize(len(message))); err != nil {
		return nil, err
	}

	enc, err := crypto.Encrypt(message, password)
	if err != nil {
		return nil, err
	}
	return lsb.Embed(samples, enc)
}

// DecodeMessage extracts and decrypts the message hidden in samples.
func DecodeMessage(samples []int16, password string) (string, error) {
	enc, _, err := Extract(samples)
	if err != nil {
		return "", err
	}
	return crypto.Decrypt(enc.Ciphertext, password, enc.Salt, enc.Nonce)
}

// ComputeCapacity reports how much ciphertext and plaintext fit in sampleCount samples.
func ComputeCapacity(sampleCount, lsbBits int) models.CapacityReport {
	capacity := Capacity(sampleCount, lsbBits)
	return models.CapacityReport{
		SampleCount:     sampleCount,
		LSBBits:         lsbBits,
		CapacityBytes:   capacity,
		MaxMessageBytes: max(0, capacity-crypto.TagSize),
	}
}
