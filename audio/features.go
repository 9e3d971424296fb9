package audio

import (
	"github.com/aviary-ml/aviary/pkg/errors"
)

// Config controls feature extraction. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	FrameSize      int     // STFT frame length in samples
	HopSize        int     // hop between frames in samples
	NMels          int     // mel filter bank size
	NMFCC          int     // cepstral coefficients kept per frame
	FMin           float64 // filter bank lower edge in Hz
	FMax           float64 // filter bank upper edge in Hz; 0 means Nyquist
	RolloffPercent float64 // cumulative power fraction for the rolloff
}

// DefaultConfig returns the extraction parameters used throughout.
func DefaultConfig() Config {
	return Config{
		FrameSize:      2048,
		HopSize:        512,
		NMels:          26,
		NMFCC:          13,
		FMin:           20,
		FMax:           0,
		RolloffPercent: 0.85,
	}
}

// Features is the fixed-shape description of one recording: frame-level
// features mean-pooled over time. It is the artifact persisted by the
// extraction pipeline and the row format consumed by classifiers.
type Features struct {
	MFCC      []float64 // NMFCC values
	Chroma    []float64 // NumPitchClasses values
	Centroid  float64
	Bandwidth float64
	Rolloff   float64
	ZCR       float64

	SampleRate int
	Duration   float64
	NumFrames  int
}

// VectorLen returns the length of the vectors Vector produces for cfg.
func VectorLen(cfg Config) int {
	return cfg.NMFCC + NumPitchClasses + 4
}

// Vector flattens the features into a single slice: MFCC, chroma, then the
// four spectral summaries. All recordings extracted with the same Config
// yield vectors of identical length.
func (f *Features) Vector() []float64 {
	v := make([]float64, 0, len(f.MFCC)+len(f.Chroma)+4)
	v = append(v, f.MFCC...)
	v = append(v, f.Chroma...)
	v = append(v, f.Centroid, f.Bandwidth, f.Rolloff, f.ZCR)
	return v
}

// Extract computes the pooled feature set for a clip.
func Extract(clip *Clip, cfg Config) (*Features, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, errors.NewModelError("audio.Extract", "empty clip", errors.ErrEmptyData)
	}

	fMax := cfg.FMax
	if fMax == 0 {
		fMax = float64(clip.SampleRate) / 2
	}

	spec, err := STFT(clip, cfg.FrameSize, cfg.HopSize)
	if err != nil {
		return nil, err
	}

	fb, err := NewMelFilterBank(cfg.NMels, spec.NumBins(), clip.SampleRate, cfg.FMin, fMax)
	if err != nil {
		return nil, err
	}
	melSpec, err := MelSpectrogram(spec, fb)
	if err != nil {
		return nil, err
	}
	mfcc, err := MFCC(melSpec, cfg.NMFCC)
	if err != nil {
		return nil, err
	}

	chroma, err := Chroma(spec)
	if err != nil {
		return nil, err
	}

	rolloff, err := SpectralRolloff(spec, cfg.RolloffPercent)
	if err != nil {
		return nil, err
	}
	zcr, err := ZeroCrossingRate(clip, cfg.FrameSize, cfg.HopSize)
	if err != nil {
		return nil, err
	}

	return &Features{
		MFCC:       meanPool(mfcc),
		Chroma:     meanPool(chroma),
		Centroid:   mean(SpectralCentroid(spec)),
		Bandwidth:  mean(SpectralBandwidth(spec)),
		Rolloff:    mean(rolloff),
		ZCR:        mean(zcr),
		SampleRate: clip.SampleRate,
		Duration:   clip.Duration(),
		NumFrames:  spec.NumFrames(),
	}, nil
}

// meanPool averages frame-level feature rows into one row.
func meanPool(frames [][]float64) []float64 {
	if len(frames) == 0 {
		return nil
	}
	out := make([]float64, len(frames[0]))
	for _, row := range frames {
		for j, v := range row {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(frames))
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
