package pipeline

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aviary-ml/aviary/audio"
	"github.com/aviary-ml/aviary/xenocanto"
)

// fetcherWithAudio returns a fetcher whose directory already holds decodable
// audio for the given IDs.
func fetcherWithAudio(t *testing.T, ids ...string) *Fetcher {
	t.Helper()

	dir := t.TempDir()
	f, err := NewFetcher(&fakeDownloader{}, dir)
	require.NoError(t, err)

	data := wavBytes(t, 8000, 8192)
	for _, id := range ids {
		require.NoError(t, os.WriteFile(f.Path(id), data, 0o644))
	}
	return f
}

func TestExtractorRun(t *testing.T) {
	f := fetcherWithAudio(t, "100", "101")
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := audio.DefaultConfig()
	cfg.FrameSize = 1024
	cfg.HopSize = 512

	e, err := NewExtractor(store, f, WithExtractConfig(cfg), WithExtractWorkers(2))
	require.NoError(t, err)

	recs := []xenocanto.Recording{{ID: "100"}, {ID: "101"}}
	results, summary, err := e.Run(context.Background(), recs)
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, StatusExtracted, r.Status)
		assert.True(t, store.Exists(DefaultFeatureKind, r.ID))
	}
	assert.Equal(t, 2, summary.Succeeded)

	feats, err := e.LoadFeatures("100")
	require.NoError(t, err)
	assert.Len(t, feats.Vector(), audio.VectorLen(cfg))
	assert.Equal(t, 8000, feats.SampleRate)
}

func TestExtractorSkipsExistingArtifacts(t *testing.T) {
	f := fetcherWithAudio(t, "100")
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := audio.DefaultConfig()
	cfg.FrameSize = 1024

	e, err := NewExtractor(store, f, WithExtractConfig(cfg))
	require.NoError(t, err)

	recs := []xenocanto.Recording{{ID: "100"}}
	_, _, err = e.Run(context.Background(), recs)
	require.NoError(t, err)

	results, summary, err := e.Run(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, StatusCached, results[0].Status)
	assert.Equal(t, 1, summary.Skipped)
}

func TestExtractorRecordsDecodeFailure(t *testing.T) {
	f := fetcherWithAudio(t, "100")
	// A second recording with garbage instead of audio.
	require.NoError(t, os.WriteFile(f.Path("999"), []byte("not audio"), 0o644))

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := audio.DefaultConfig()
	cfg.FrameSize = 1024

	e, err := NewExtractor(store, f, WithExtractConfig(cfg))
	require.NoError(t, err)

	recs := []xenocanto.Recording{{ID: "100"}, {ID: "999"}, {ID: "missing"}}
	results, summary, err := e.Run(context.Background(), recs)
	require.NoError(t, err, "item failures must not abort the run")

	assert.Equal(t, StatusExtracted, results[0].Status)
	assert.Equal(t, StatusErrDecode, results[1].Status)
	assert.Equal(t, StatusErrDecode, results[2].Status)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
}

func TestExtractorRunReportsCancellation(t *testing.T) {
	f := fetcherWithAudio(t, "100")
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	e, err := NewExtractor(store, f)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, summary, err := e.Run(ctx, []xenocanto.Recording{{ID: "100"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusPending, results[0].Status)
	assert.Equal(t, 1, summary.Pending)
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	feats := &audio.Features{
		MFCC:       []float64{1, 2, 3},
		Chroma:     []float64{0.5, 0.5},
		Centroid:   1234.5,
		SampleRate: 8000,
	}
	require.NoError(t, store.Save("features", "42", feats))
	assert.True(t, store.Exists("features", "42"))
	assert.False(t, store.Exists("features", "43"))
	assert.False(t, store.Exists("chroma", "42"))

	var loaded audio.Features
	require.NoError(t, store.Load("features", "42", &loaded))
	assert.Equal(t, feats.MFCC, loaded.MFCC)
	assert.Equal(t, feats.Centroid, loaded.Centroid)

	ids, err := store.IDs("features")
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, ids)

	ids, err = store.IDs("nonexistent")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNewStoreValidation(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}
