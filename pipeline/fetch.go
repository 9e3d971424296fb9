package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aviary-ml/aviary/core/parallel"
	"github.com/aviary-ml/aviary/pkg/errors"
	"github.com/aviary-ml/aviary/xenocanto"
)

// Downloader fetches a URL into a writer. *xenocanto.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Fetcher downloads recording audio into a directory, one file per
// recording ID. Files already on disk are skipped, which makes re-runs
// idempotent at the cost of a duplicate-work race under concurrent
// invocation of the same run.
type Fetcher struct {
	downloader Downloader
	dir        string
	workers    int
	logger     *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchWorkers bounds download parallelism (default runtime.NumCPU via
// the worker pool).
func WithFetchWorkers(n int) FetcherOption {
	return func(f *Fetcher) {
		f.workers = n
	}
}

// WithFetchLogger overrides the logger.
func WithFetchLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a fetcher writing into dir.
func NewFetcher(d Downloader, dir string, opts ...FetcherOption) (*Fetcher, error) {
	if d == nil {
		return nil, errors.NewValueError("NewFetcher", "nil downloader")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "pipeline: creating audio directory %s", dir)
	}

	f := &Fetcher{
		downloader: d,
		dir:        dir,
		logger:     slog.Default().With("component", "pipeline.fetcher"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the audio file path for a recording ID.
func (f *Fetcher) Path(id string) string {
	return filepath.Join(f.dir, id+".wav")
}

// Run downloads every recording, bounded-parallel. Item failures are
// recorded per result and never abort the run; only context cancellation
// returns an error, with the unprocessed items left in StatusPending.
func (f *Fetcher) Run(ctx context.Context, recs []xenocanto.Recording) ([]Result, Summary, error) {
	results := make([]Result, len(recs))

	err := parallel.ForEach(ctx, f.workers, len(recs), func(ctx context.Context, i int) error {
		results[i] = f.fetchOne(ctx, &recs[i])
		return nil
	})

	summary := summarize(results)
	f.logger.Info("fetch run finished",
		"total", summary.Total,
		"downloaded", summary.Succeeded,
		"cached", summary.Skipped,
		"failed", summary.Failed,
		"pending", summary.Pending)

	return results, summary, err
}

func (f *Fetcher) fetchOne(ctx context.Context, rec *xenocanto.Recording) Result {
	dest := f.Path(rec.ID)

	if _, err := os.Stat(dest); err == nil {
		f.logger.Debug("audio already present", "id", rec.ID)
		return Result{ID: rec.ID, Status: StatusCached}
	}

	status, err := f.downloadTo(ctx, rec.DownloadURL(), dest)
	if err != nil && status == StatusErrFetch {
		// One retry against the endpoint derived from the recording ID,
		// unless that is the URL that just failed.
		if alt := rec.AlternateURL(); alt != rec.DownloadURL() {
			f.logger.Debug("retrying with derived URL", "id", rec.ID, "url", alt)
			status, err = f.downloadTo(ctx, alt, dest)
		}
	}
	if err != nil {
		f.logger.Warn("fetch failed", "id", rec.ID, "status", status.String(), "error", err)
		return Result{ID: rec.ID, Status: status, Err: err}
	}

	return Result{ID: rec.ID, Status: StatusDownloaded}
}

// downloadTo streams one URL into dest, removing the partial file on error.
func (f *Fetcher) downloadTo(ctx context.Context, url, dest string) (Status, error) {
	file, err := os.Create(dest)
	if err != nil {
		return StatusErrWrite, errors.Wrapf(err, "pipeline: creating %s", dest)
	}

	_, dlErr := f.downloader.Download(ctx, url, file)
	closeErr := file.Close()

	if dlErr != nil || closeErr != nil {
		os.Remove(dest)
		if dlErr != nil {
			return StatusErrFetch, dlErr
		}
		return StatusErrWrite, errors.Wrapf(closeErr, "pipeline: writing %s", dest)
	}
	return StatusDownloaded, nil
}
