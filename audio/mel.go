package audio

import (
	"math"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// floor under the log in the MFCC computation
const logEps = 1e-10

// MelFilterBank holds nMels triangular filters over the STFT bins.
type MelFilterBank struct {
	weights [][]float64 // [nMels][nBins]
}

// NewMelFilterBank builds triangular filters spaced evenly on the mel scale
// between fMin and fMax. nBins must match the spectrogram this bank will be
// applied to (frameSize/2 + 1).
func NewMelFilterBank(nMels, nBins, sampleRate int, fMin, fMax float64) (*MelFilterBank, error) {
	if nMels <= 0 || nBins <= 1 {
		return nil, errors.NewValueError("NewMelFilterBank", "nMels and nBins must be positive")
	}
	if fMax <= fMin || fMin < 0 {
		return nil, errors.NewValueError("NewMelFilterBank", "need 0 <= fMin < fMax")
	}
	if fMax > float64(sampleRate)/2 {
		fMax = float64(sampleRate) / 2
	}

	// nMels+2 equally spaced mel points define the filter edges.
	melMin, melMax := hzToMel(fMin), hzToMel(fMax)
	edges := make([]float64, nMels+2)
	for i := range edges {
		mel := melMin + (melMax-melMin)*float64(i)/float64(nMels+1)
		edges[i] = melToHz(mel)
	}

	binHz := func(k int) float64 {
		// nBins = frameSize/2 + 1, so bin spacing is sr / (2*(nBins-1)).
		return float64(k) * float64(sampleRate) / (2 * float64(nBins-1))
	}

	weights := make([][]float64, nMels)
	for m := 0; m < nMels; m++ {
		left, center, right := edges[m], edges[m+1], edges[m+2]
		row := make([]float64, nBins)
		for k := 0; k < nBins; k++ {
			f := binHz(k)
			switch {
			case f <= left || f >= right:
				// outside the triangle
			case f <= center:
				row[k] = (f - left) / (center - left)
			default:
				row[k] = (right - f) / (right - center)
			}
		}
		weights[m] = row
	}

	return &MelFilterBank{weights: weights}, nil
}

// Apply projects one power spectrum frame onto the mel bands.
func (fb *MelFilterBank) Apply(powerFrame []float64) ([]float64, error) {
	if len(powerFrame) != len(fb.weights[0]) {
		return nil, errors.NewDimensionError("MelFilterBank.Apply", len(fb.weights[0]), len(powerFrame), 0)
	}

	out := make([]float64, len(fb.weights))
	for m, row := range fb.weights {
		var sum float64
		for k, w := range row {
			if w != 0 {
				sum += w * powerFrame[k]
			}
		}
		out[m] = sum
	}
	return out, nil
}

// MelSpectrogram applies the filter bank to every frame of the spectrogram.
func MelSpectrogram(spec *Spectrogram, fb *MelFilterBank) ([][]float64, error) {
	mel := make([][]float64, spec.NumFrames())
	for i, frame := range spec.Power {
		band, err := fb.Apply(frame)
		if err != nil {
			return nil, err
		}
		mel[i] = band
	}
	return mel, nil
}

// MFCC computes nCoeffs mel-frequency cepstral coefficients per frame: the
// DCT-II of the log mel spectrum.
func MFCC(melSpec [][]float64, nCoeffs int) ([][]float64, error) {
	if len(melSpec) == 0 {
		return nil, errors.NewModelError("audio.MFCC", "empty mel spectrogram", errors.ErrEmptyData)
	}
	nMels := len(melSpec[0])
	if nCoeffs <= 0 || nCoeffs > nMels {
		return nil, errors.NewValueError("MFCC", "nCoeffs must be in [1, nMels]")
	}

	out := make([][]float64, len(melSpec))
	logMel := make([]float64, nMels)

	for i, frame := range melSpec {
		for m, e := range frame {
			logMel[m] = math.Log(e + logEps)
		}

		coeffs := make([]float64, nCoeffs)
		for c := 0; c < nCoeffs; c++ {
			var sum float64
			for m := 0; m < nMels; m++ {
				sum += logMel[m] * math.Cos(math.Pi*float64(c)*(float64(m)+0.5)/float64(nMels))
			}
			coeffs[c] = sum
		}
		out[i] = coeffs
	}
	return out, nil
}

func hzToMel(f float64) float64 {
	return 2595 * math.Log10(1+f/700)
}

func melToHz(m float64) float64 {
	return 700 * (math.Pow(10, m/2595) - 1)
}
