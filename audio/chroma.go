package audio

import (
	"math"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// NumPitchClasses is the size of a chroma vector (C, C#, ..., B).
const NumPitchClasses = 12

// Chroma folds each spectrogram frame onto the 12 pitch classes. Each frame
// is normalized to sum to 1 so the profile describes harmonic shape rather
// than loudness; silent frames stay all-zero.
func Chroma(spec *Spectrogram) ([][]float64, error) {
	if spec.NumFrames() == 0 {
		return nil, errors.NewModelError("audio.Chroma", "empty spectrogram", errors.ErrEmptyData)
	}

	// Pitch class per bin is fixed across frames; precompute it. Bins below
	// ~20 Hz carry no pitch information and are skipped.
	nBins := spec.NumBins()
	class := make([]int, nBins)
	for k := 0; k < nBins; k++ {
		f := spec.BinFrequency(k)
		if f < 20 {
			class[k] = -1
			continue
		}
		midi := 69 + 12*math.Log2(f/440)
		pc := int(math.Round(midi)) % NumPitchClasses
		if pc < 0 {
			pc += NumPitchClasses
		}
		class[k] = pc
	}

	out := make([][]float64, spec.NumFrames())
	for i, frame := range spec.Power {
		profile := make([]float64, NumPitchClasses)
		var total float64
		for k, p := range frame {
			if class[k] < 0 {
				continue
			}
			profile[class[k]] += p
			total += p
		}
		if total > 0 {
			for pc := range profile {
				profile[pc] /= total
			}
		}
		out[i] = profile
	}
	return out, nil
}
