// Package pipeline runs the batch jobs that turn catalog metadata into local
// audio files and cached feature artifacts. Jobs are bounded-parallel and
// best-effort: an individual item failure is recorded in its result, never
// aborts the run, and re-runs skip work that already exists on disk.
package pipeline

// Status classifies the outcome of one item in a batch run.
type Status int

const (
	// StatusPending is the zero value: the item has not been processed,
	// for example because the run was canceled first.
	StatusPending Status = iota
	// StatusDownloaded means the audio file was fetched and written.
	StatusDownloaded
	// StatusExtracted means the feature artifact was computed and persisted.
	StatusExtracted
	// StatusCached means the target already existed and work was skipped.
	StatusCached
	// StatusErrFetch means the download failed, including the one alternate
	// URL retry.
	StatusErrFetch
	// StatusErrWrite means the audio file could not be written.
	StatusErrWrite
	// StatusErrDecode means the audio file could not be decoded.
	StatusErrDecode
	// StatusErrExtract means feature computation failed.
	StatusErrExtract
	// StatusErrPersist means the feature artifact could not be written.
	StatusErrPersist
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDownloaded:
		return "downloaded"
	case StatusExtracted:
		return "extracted"
	case StatusCached:
		return "cached"
	case StatusErrFetch:
		return "fetch_error"
	case StatusErrWrite:
		return "write_error"
	case StatusErrDecode:
		return "decode_error"
	case StatusErrExtract:
		return "extract_error"
	case StatusErrPersist:
		return "persist_error"
	default:
		return "unknown"
	}
}

// OK reports whether the status is a success (including a cache hit).
func (s Status) OK() bool {
	switch s {
	case StatusDownloaded, StatusExtracted, StatusCached:
		return true
	default:
		return false
	}
}

// Result is the per-item outcome of a batch run.
type Result struct {
	ID     string
	Status Status
	Err    error // non-nil only for error statuses
}

// Summary aggregates a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int // cache hits
	Failed    int
	Pending   int // unprocessed, canceled run
}

func summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Status == StatusPending:
			s.Pending++
		case r.Status == StatusCached:
			s.Skipped++
		case r.Status.OK():
			s.Succeeded++
		default:
			s.Failed++
		}
	}
	return s
}
