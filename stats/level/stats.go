// Package level summarizes the signal level of a raw sample dump: DC
// offset, AC RMS, extremes and mean crossings. The crossing rate gives a
// coarse frequency estimate that cross-checks spectral detection.
package level

import "math"

// Stats holds time-domain level statistics.
type Stats struct {
	Length int
	DC     float64 // mean
	RMS    float64
	ACRMS  float64 // RMS around DC (population standard deviation)
	Max    float64
	MaxPos int
	Min    float64
	MinPos int
	Peak   float64 // max(|max|, |min|)
	// CrestFactor is the AC peak (largest excursion from DC) over ACRMS,
	// or 0 for a constant signal.
	CrestFactor float64
	// MeanCrossings counts sign changes of x - DC.
	MeanCrossings int
}

// Calculate computes all statistics. Mean and variance use Welford's online
// update; mean crossings need the final mean and take a second pass.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	var (
		mean   float64
		m2     float64
		sumSq  float64
		maxVal = signal[0]
		maxPos int
		minVal = signal[0]
		minPos int
	)

	for i, x := range signal {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)

		sumSq += x * x

		if x > maxVal {
			maxVal = x
			maxPos = i
		}

		if x < minVal {
			minVal = x
			minPos = i
		}
	}

	crossings := 0
	prev := 0.0
	for _, x := range signal {
		d := x - mean
		if d == 0 {
			continue
		}
		if prev*d < 0 {
			crossings++
		}
		prev = d
	}

	nf := float64(n)
	acRMS := math.Sqrt(m2 / nf)

	var crest float64
	if acRMS > 0 {
		crest = math.Max(maxVal-mean, mean-minVal) / acRMS
	}

	return Stats{
		Length:        n,
		DC:            mean,
		RMS:           math.Sqrt(sumSq / nf),
		ACRMS:         acRMS,
		Max:           maxVal,
		MaxPos:        maxPos,
		Min:           minVal,
		MinPos:        minPos,
		Peak:          math.Max(math.Abs(maxVal), math.Abs(minVal)),
		CrestFactor:   crest,
		MeanCrossings: crossings,
	}
}

// CrossingFrequency estimates the dominant frequency in Hz from the mean
// crossing rate: two crossings per period. It is only meaningful for
// signals dominated by one tone.
func (s Stats) CrossingFrequency(sampleRate float64) float64 {
	if s.Length == 0 || sampleRate <= 0 {
		return 0
	}
	return float64(s.MeanCrossings) / 2 * sampleRate / float64(s.Length)
}
