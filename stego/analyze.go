package stego

import (
	"math"

	"github.com/Dharsan2024/AudioCryptor/bitpack"
	"github.com/Dharsan2024/AudioCryptor/header"
	"github.com/Dharsan2024/AudioCryptor/models"
)

// suspiciousRatioDelta flags an LSB plane that is closer to a perfect 50/50
// split than natural recordings usually are.
const suspiciousRatioDelta = 0.01

// Analyze inspects samples for signs of an embedded payload without needing
// the password.
func Analyze(samples []int16) models.Analysis {
	a := models.Analysis{
		TotalSamples:          len(samples),
		EstimatedCapacity1LSB: Capacity(len(samples), 1),
		EstimatedCapacity2LSB: Capacity(len(samples), 2),
	}
	if len(samples) == 0 {
		return a
	}

	ones := 0
	for _, s := range samples {
		ones += int(getLSB(s))
	}
	a.LSBOnesRatio = float64(ones) / float64(len(samples))
	a.LSBDistributionSuspicious = math.Abs(a.LSBOnesRatio-0.5) < suspiciousRatioDelta

	probe := min(len(samples), header.Bits)
	bits := make([]byte, probe)
	for i := range bits {
		bits[i] = getLSB(samples[i])
	}
	if magicBits := header.MagicSize * 8; probe >= magicBits {
		a.HasMagic = uint32(bitpack.BitsToInt(bits[:magicBits])) == header.MagicWord
	}

	prefix := bitpack.BitsToBytes(bits[:probe-probe%8])

	if hdr, err := header.Decode(prefix); err == nil {
		a.HasValidHeader = true
		a.PayloadLength = int(hdr.PayloadLength)
		a.Scatter = hdr.Scatter
	}
	return a
}
