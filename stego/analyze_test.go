package stego

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dharsan2024/AudioCryptor/header"
	"github.com/Dharsan2024/AudioCryptor/models"
)

func TestAnalyze_CleanCover(t *testing.T) {
	// a slow ramp has a perfectly alternating LSB plane and no header
	samples := make([]int16, 10000)
	for i := range samples {
		samples[i] = int16(i / 3)
	}
	a := Analyze(samples)

	assert.Equal(t, 10000, a.TotalSamples)
	assert.Equal(t, Capacity(10000, 1), a.EstimatedCapacity1LSB)
	assert.Equal(t, Capacity(10000, 2), a.EstimatedCapacity2LSB)
	assert.False(t, a.HasMagic)
	assert.False(t, a.HasValidHeader)
	assert.Zero(t, a.PayloadLength)
}

func TestAnalyze_SilenceIsNotSuspicious(t *testing.T) {
	a := Analyze(make([]int16, 4000))
	assert.Zero(t, a.LSBOnesRatio)
	assert.False(t, a.LSBDistributionSuspicious)
}

func TestAnalyze_DetectsHeader(t *testing.T) {
	lsb, err := NewLSBSteganography(&models.StegoConfig{LSBBits: 2, Scatter: true})
	require.NoError(t, err)
	stego, err := lsb.Embed(make([]int16, 8000), testMessage(64))
	require.NoError(t, err)

	a := Analyze(stego)
	assert.True(t, a.HasMagic)
	assert.True(t, a.HasValidHeader)
	assert.Equal(t, 64, a.PayloadLength)
	assert.True(t, a.Scatter)
}

func TestAnalyze_MagicWithDamagedHeader(t *testing.T) {
	lsb, err := NewLSBSteganography(&models.StegoConfig{LSBBits: 1})
	require.NoError(t, err)
	stego, err := lsb.Embed(coverSamples(4000), testMessage(32))
	require.NoError(t, err)

	stego[header.ChecksumOffset*8] ^= 1
	a := Analyze(stego)
	assert.True(t, a.HasMagic)
	assert.False(t, a.HasValidHeader)
	assert.Zero(t, a.PayloadLength)

	// magic needs all 32 bits
	a = Analyze(stego[:31])
	assert.False(t, a.HasMagic)
}

func TestAnalyze_ShortAndEmpty(t *testing.T) {
	a := Analyze(nil)
	assert.Zero(t, a.TotalSamples)
	assert.False(t, a.HasMagic)

	a = Analyze(make([]int16, 5))
	assert.Equal(t, 5, a.TotalSamples)
	assert.False(t, a.HasValidHeader)
}
