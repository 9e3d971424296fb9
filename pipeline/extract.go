package pipeline

import (
	"context"
	"log/slog"

	"github.com/aviary-ml/aviary/audio"
	"github.com/aviary-ml/aviary/core/parallel"
	"github.com/aviary-ml/aviary/pkg/errors"
	"github.com/aviary-ml/aviary/xenocanto"
)

// DefaultFeatureKind is the artifact directory used when none is configured.
const DefaultFeatureKind = "features"

// Extractor decodes downloaded audio and persists one feature artifact per
// recording. An existing artifact is never recomputed.
type Extractor struct {
	store   *Store
	audio   *Fetcher // provides the audio path convention
	kind    string
	cfg     audio.Config
	workers int
	logger  *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithFeatureKind names the artifact directory (default "features").
func WithFeatureKind(kind string) ExtractorOption {
	return func(e *Extractor) {
		e.kind = kind
	}
}

// WithExtractConfig overrides the extraction parameters.
func WithExtractConfig(cfg audio.Config) ExtractorOption {
	return func(e *Extractor) {
		e.cfg = cfg
	}
}

// WithExtractWorkers bounds extraction parallelism.
func WithExtractWorkers(n int) ExtractorOption {
	return func(e *Extractor) {
		e.workers = n
	}
}

// WithExtractLogger overrides the logger.
func WithExtractLogger(l *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = l
	}
}

// NewExtractor creates an extractor reading audio via fetcher's path
// convention and writing artifacts into store.
func NewExtractor(store *Store, fetcher *Fetcher, opts ...ExtractorOption) (*Extractor, error) {
	if store == nil || fetcher == nil {
		return nil, errors.NewValueError("NewExtractor", "nil store or fetcher")
	}

	e := &Extractor{
		store:  store,
		audio:  fetcher,
		kind:   DefaultFeatureKind,
		cfg:    audio.DefaultConfig(),
		logger: slog.Default().With("component", "pipeline.extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run extracts features for every recording, bounded-parallel. Per-item
// failures are recorded in the results; only context cancellation returns
// an error.
func (e *Extractor) Run(ctx context.Context, recs []xenocanto.Recording) ([]Result, Summary, error) {
	results := make([]Result, len(recs))

	err := parallel.ForEach(ctx, e.workers, len(recs), func(ctx context.Context, i int) error {
		results[i] = e.extractOne(recs[i].ID)
		return nil
	})

	summary := summarize(results)
	e.logger.Info("extract run finished",
		"kind", e.kind,
		"total", summary.Total,
		"extracted", summary.Succeeded,
		"cached", summary.Skipped,
		"failed", summary.Failed,
		"pending", summary.Pending)

	return results, summary, err
}

func (e *Extractor) extractOne(id string) Result {
	if e.store.Exists(e.kind, id) {
		e.logger.Debug("artifact already present", "id", id, "kind", e.kind)
		return Result{ID: id, Status: StatusCached}
	}

	clip, err := audio.LoadWAV(e.audio.Path(id))
	if err != nil {
		e.logger.Warn("decode failed", "id", id, "error", err)
		return Result{ID: id, Status: StatusErrDecode, Err: err}
	}

	feats, err := audio.Extract(clip, e.cfg)
	if err != nil {
		e.logger.Warn("extraction failed", "id", id, "error", err)
		return Result{ID: id, Status: StatusErrExtract, Err: err}
	}

	if err := e.store.Save(e.kind, id, feats); err != nil {
		e.logger.Warn("persist failed", "id", id, "error", err)
		return Result{ID: id, Status: StatusErrPersist, Err: err}
	}

	return Result{ID: id, Status: StatusExtracted}
}

// LoadFeatures reads a persisted artifact back.
func (e *Extractor) LoadFeatures(id string) (*audio.Features, error) {
	var f audio.Features
	if err := e.store.Load(e.kind, id, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
