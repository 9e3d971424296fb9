package audio

import (
	"math"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// SpectralCentroid returns the power-weighted mean frequency of each frame.
// Silent frames yield 0.
func SpectralCentroid(spec *Spectrogram) []float64 {
	out := make([]float64, spec.NumFrames())
	for i, frame := range spec.Power {
		var num, den float64
		for k, p := range frame {
			num += spec.BinFrequency(k) * p
			den += p
		}
		if den > 0 {
			out[i] = num / den
		}
	}
	return out
}

// SpectralBandwidth returns the power-weighted standard deviation of
// frequency around the centroid, per frame.
func SpectralBandwidth(spec *Spectrogram) []float64 {
	centroids := SpectralCentroid(spec)
	out := make([]float64, spec.NumFrames())
	for i, frame := range spec.Power {
		var num, den float64
		for k, p := range frame {
			d := spec.BinFrequency(k) - centroids[i]
			num += d * d * p
			den += p
		}
		if den > 0 {
			out[i] = math.Sqrt(num / den)
		}
	}
	return out
}

// SpectralRolloff returns, per frame, the frequency below which the given
// fraction of total spectral power lies. percent must be in (0, 1].
func SpectralRolloff(spec *Spectrogram, percent float64) ([]float64, error) {
	if percent <= 0 || percent > 1 {
		return nil, errors.NewValueError("SpectralRolloff", "percent must be in (0, 1]")
	}

	out := make([]float64, spec.NumFrames())
	for i, frame := range spec.Power {
		var total float64
		for _, p := range frame {
			total += p
		}
		if total == 0 {
			continue
		}

		threshold := percent * total
		var cum float64
		for k, p := range frame {
			cum += p
			if cum >= threshold {
				out[i] = spec.BinFrequency(k)
				break
			}
		}
	}
	return out, nil
}

// ZeroCrossingRate returns the fraction of sign changes per frame, computed
// in the time domain over the same framing as the spectrogram.
func ZeroCrossingRate(clip *Clip, frameSize, hopSize int) ([]float64, error) {
	if frameSize <= 1 || hopSize <= 0 {
		return nil, errors.NewValueError("ZeroCrossingRate", "frame size must be > 1, hop size positive")
	}
	if len(clip.Samples) < frameSize {
		return nil, errors.Newf("audio: clip too short: %d samples, frame size %d",
			len(clip.Samples), frameSize)
	}

	var out []float64
	for start := 0; start+frameSize <= len(clip.Samples); start += hopSize {
		crossings := 0
		for i := start + 1; i < start+frameSize; i++ {
			if (clip.Samples[i-1] >= 0) != (clip.Samples[i] >= 0) {
				crossings++
			}
		}
		out = append(out, float64(crossings)/float64(frameSize-1))
	}
	return out, nil
}
