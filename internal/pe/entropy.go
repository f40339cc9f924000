package pe

import (
	"io"
	"math"
)

// CalculateEntropy calculates Shannon entropy for a given data block.
// Entropy value ranges from 0 (completely uniform) to 8 (completely random).
// High entropy (>7.0) often indicates encryption or compression (packed code).
func CalculateEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0.0
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	// H = -Σ(p(x) * log2(p(x)))
	var entropy float64
	dataLen := float64(len(data))
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / dataLen
		entropy -= p * math.Log2(p)
	}

	return entropy
}

// CalculateSectionEntropy reads a section's raw data and calculates its entropy.
func CalculateSectionEntropy(r io.ReadSeeker, h SectionHeader) (float64, error) {
	if h.SizeOfRawData == 0 {
		return 0.0, nil
	}

	data, err := SectionData(r, h)
	if err != nil {
		return 0.0, err
	}
	return CalculateEntropy(data), nil
}
