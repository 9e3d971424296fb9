// Package audio decodes WAV recordings and extracts the spectral feature
// vectors used to describe them: mel spectrogram, MFCC, chroma and summary
// spectral statistics. Frame-level features are mean-pooled so recordings of
// unequal duration produce equal-shape vectors.
package audio

import (
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// Clip is a decoded recording: mono samples in [-1, 1] plus the sample rate.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// LoadWAV reads and decodes the WAV file at path.
func LoadWAV(path string) (*Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "audio: opening %s", path)
	}
	defer file.Close()

	return DecodeWAV(file)
}

// DecodeWAV decodes a WAV stream into a mono clip. Multi-channel input is
// downmixed by averaging, and integer PCM is scaled by the bit depth so
// samples land in [-1, 1].
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, errors.New("audio: input is not a valid WAV file")
	}

	divisor, err := sampleDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, err
	}

	numChans := int(decoder.NumChans)
	if numChans < 1 {
		return nil, errors.Newf("audio: unsupported channel count: %d", numChans)
	}

	sampleRate := int(decoder.SampleRate)
	samples := make([]float64, 0, 1<<16)

	buf := &audio.IntBuffer{
		Data:   make([]int, 8192*numChans),
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: numChans},
	}

	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, errors.Wrap(err, "audio: reading PCM data")
		}
		if n == 0 {
			break
		}

		// Downmix interleaved frames to mono.
		for i := 0; i+numChans <= n; i += numChans {
			var sum float64
			for ch := 0; ch < numChans; ch++ {
				sum += float64(buf.Data[i+ch])
			}
			samples = append(samples, sum/float64(numChans)/divisor)
		}
	}

	if len(samples) == 0 {
		return nil, errors.NewModelError("audio.DecodeWAV", "no samples decoded", errors.ErrEmptyData)
	}

	return &Clip{Samples: samples, SampleRate: sampleRate}, nil
}

func sampleDivisor(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, errors.Newf("audio: unsupported bit depth: %d", bitDepth)
	}
}
