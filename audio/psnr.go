package audio

import (
	"math"
)

// peak16 is the largest positive 16-bit sample value.
const peak16 = math.MaxInt16

// CalculatePSNR compares a stego buffer against its cover. Identical buffers
// yield +Inf; mismatched lengths yield 0.
func CalculatePSNR(original, stego []int16) float64 {
	if len(original) != len(stego) {
		return 0.0
	}

	if len(original) == 0 {
		return 0.0
	}

	var mse float64
	for i := range original {
		diff := float64(original[i]) - float64(stego[i])
		mse += diff * diff
	}
	mse /= float64(len(original))

	// If MSE is 0, signals are identical
	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX_SIGNAL_VALUE / sqrt(MSE))
	return 20 * math.Log10(peak16/math.Sqrt(mse))
}

func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true // Infinite PSNR is always good
	}
	return psnr >= threshold
}
