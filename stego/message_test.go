package stego

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dharsan2024/AudioCryptor/header"
	"github.com/Dharsan2024/AudioCryptor/models"
	"github.com/Dharsan2024/AudioCryptor/scatter"
)

const testPassword = "correct horse battery staple"

func TestEncodeDecodeMessage_Hello(t *testing.T) {
	cover := coverSamples(100000)

	report := ComputeCapacity(len(cover), 1)
	assert.Equal(t, 12458, report.CapacityBytes)
	assert.Equal(t, 12442, report.MaxMessageBytes)

	stego, err := EncodeMessage(cover, "hello", testPassword, 1, true)
	require.NoError(t, err)
	require.Len(t, stego, len(cover))

	got, err := DecodeMessage(stego, testPassword)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestEncodeDecodeMessage_AllModes(t *testing.T) {
	cover := coverSamples(30000)
	msg := "ünïcødé ✓ 秘密 and some ascii"

	for _, lsbBits := range []int{1, 2} {
		for _, useScatter := range []bool{false, true} {
			stego, err := EncodeMessage(cover, msg, testPassword, lsbBits, useScatter)
			require.NoError(t, err)

			got, err := DecodeMessage(stego, testPassword)
			require.NoError(t, err, "lsb=%d scatter=%v", lsbBits, useScatter)
			assert.Equal(t, msg, got)
		}
	}
}

func TestEncodeMessage_Empty(t *testing.T) {
	stego, err := EncodeMessage(coverSamples(1000), "", testPassword, 1, false)
	require.NoError(t, err)

	got, err := DecodeMessage(stego, testPassword)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeMessage_WrongPassword(t *testing.T) {
	stego, err := EncodeMessage(coverSamples(5000), "hello", testPassword, 1, true)
	require.NoError(t, err)

	_, err = DecodeMessage(stego, "Correct horse battery staple")
	assert.ErrorIs(t, err, models.ErrAuthentication)
}

func TestDecodeMessage_TamperedPayload(t *testing.T) {
	cover := coverSamples(5000)
	msg := "hello"
	payloadBits := (len(msg) + 16) * 8

	for _, useScatter := range []bool{false, true} {
		stego, err := EncodeMessage(cover, msg, testPassword, 1, useScatter)
		require.NoError(t, err)

		_, hdr, err := Extract(stego)
		require.NoError(t, err)
		positions := make([]int, payloadBits)
		if useScatter {
			positions, err = scatter.GenerateIndices(payloadBits, len(stego)-header.Bits, hdr.Salt[:])
			require.NoError(t, err)
		} else {
			for i := range positions {
				positions[i] = i
			}
		}

		// first ciphertext bit, a middle bit, and the last tag bit
		for _, bit := range []int{0, payloadBits / 2, payloadBits - 1} {
			tampered := append([]int16(nil), stego...)
			tampered[header.Bits+positions[bit]] ^= 1

			_, err := DecodeMessage(tampered, testPassword)
			assert.ErrorIs(t, err, models.ErrAuthentication, "scatter=%v bit=%d", useScatter, bit)
		}
	}
}

func TestDecodeMessage_CorruptedHeader(t *testing.T) {
	stego, err := EncodeMessage(coverSamples(5000), "hello", testPassword, 1, false)
	require.NoError(t, err)

	// flip a salt bit; the checksum catches it before any key derivation
	stego[6*8] ^= 1
	_, err = DecodeMessage(stego, testPassword)
	assert.ErrorIs(t, err, models.ErrFormat)
	assert.NotErrorIs(t, err, models.ErrAuthentication)
}

func TestEncodeMessage_CapacityBoundary(t *testing.T) {
	k := 40
	cover := coverSamples(header.Bits + 8*k)
	maxMessage := ComputeCapacity(len(cover), 1).MaxMessageBytes
	require.Equal(t, k-16, maxMessage)

	fits := string(make([]byte, maxMessage))
	stego, err := EncodeMessage(cover, fits, testPassword, 1, true)
	require.NoError(t, err)
	got, err := DecodeMessage(stego, testPassword)
	require.NoError(t, err)
	assert.Equal(t, fits, got)

	_, err = EncodeMessage(cover, fits+"x", testPassword, 1, true)
	var capErr *models.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, (header.Size+k+1)*8, capErr.Required)
	assert.Equal(t, len(cover), capErr.Available)
}

func TestEncodeMessage_InvalidArguments(t *testing.T) {
	cover := coverSamples(5000)

	_, err := EncodeMessage(cover, "hello", "", 1, false)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = EncodeMessage(cover, "hello", testPassword, 3, false)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = EncodeMessage(cover, "\xff\xfe", testPassword, 1, false)
	assert.ErrorIs(t, err, models.ErrEncoding)
}

func TestDecodeMessage_ShortBuffer(t *testing.T) {
	_, err := DecodeMessage(coverSamples(100), testPassword)
	assert.ErrorIs(t, err, models.ErrTruncatedInput)
}

func TestComputeCapacity_Small(t *testing.T) {
	report := ComputeCapacity(100, 1)
	assert.Equal(t, models.CapacityReport{SampleCount: 100, LSBBits: 1}, report)

	report = ComputeCapacity(header.Bits+8*10, 1)
	assert.Equal(t, 10, report.CapacityBytes)
	assert.Zero(t, report.MaxMessageBytes)
}
