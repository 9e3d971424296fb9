package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// Spectrogram is a power spectrogram: one row per frame, one column per
// frequency bin (frameSize/2 + 1 bins).
type Spectrogram struct {
	Power      [][]float64
	SampleRate int
	FrameSize  int
	HopSize    int
}

// NumFrames returns the number of analysis frames.
func (s *Spectrogram) NumFrames() int {
	return len(s.Power)
}

// NumBins returns the number of frequency bins per frame.
func (s *Spectrogram) NumBins() int {
	if len(s.Power) == 0 {
		return 0
	}
	return len(s.Power[0])
}

// BinFrequency returns the center frequency in Hz of bin k.
func (s *Spectrogram) BinFrequency(k int) float64 {
	return float64(k) * float64(s.SampleRate) / float64(s.FrameSize)
}

// STFT computes the power spectrogram of the clip with a Hann window.
// Trailing samples that do not fill a whole frame are dropped.
func STFT(clip *Clip, frameSize, hopSize int) (*Spectrogram, error) {
	if frameSize <= 0 || hopSize <= 0 {
		return nil, errors.NewValueError("STFT", "frame and hop sizes must be positive")
	}
	if len(clip.Samples) < frameSize {
		return nil, errors.Newf("audio: clip too short for STFT: %d samples, frame size %d",
			len(clip.Samples), frameSize)
	}

	window := hannWindow(frameSize)
	fft := fourier.NewFFT(frameSize)
	nBins := frameSize/2 + 1

	nFrames := 1 + (len(clip.Samples)-frameSize)/hopSize
	power := make([][]float64, 0, nFrames)

	frame := make([]float64, frameSize)
	coeffs := make([]complex128, nBins)

	for start := 0; start+frameSize <= len(clip.Samples); start += hopSize {
		for i := 0; i < frameSize; i++ {
			frame[i] = clip.Samples[start+i] * window[i]
		}

		coeffs = fft.Coefficients(coeffs, frame)

		row := make([]float64, nBins)
		for k, c := range coeffs {
			row[k] = real(c)*real(c) + imag(c)*imag(c)
		}
		power = append(power, row)
	}

	return &Spectrogram{
		Power:      power,
		SampleRate: clip.SampleRate,
		FrameSize:  frameSize,
		HopSize:    hopSize,
	}, nil
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
