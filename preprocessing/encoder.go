// Package preprocessing provides categorical encoding and feature scaling.
package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/core/model"
	"github.com/aviary-ml/aviary/pkg/errors"
)

// OneHotEncoder encodes categorical string features as binary indicator
// columns. Fit learns the sorted distinct levels of each input column;
// Transform emits one indicator column per level, so each encoded feature
// contributes exactly one 1 per row.
//
// With drop-first enabled the first (alphabetically smallest) level of every
// feature is omitted, leaving k-1 columns per k-level feature. That keeps a
// design matrix with an intercept column full rank and avoids the dummy
// variable trap.
type OneHotEncoder struct {
	state *model.StateManager

	dropFirst     bool
	ignoreUnknown bool

	categories_ [][]string         // sorted levels per feature
	index_      []map[string]int   // level -> position per feature
}

// OneHotOption configures a OneHotEncoder.
type OneHotOption func(*OneHotEncoder)

// WithDropFirst omits the first level of each feature from the output.
func WithDropFirst(drop bool) OneHotOption {
	return func(e *OneHotEncoder) {
		e.dropFirst = drop
	}
}

// WithIgnoreUnknown makes Transform encode unseen levels as all-zero rows
// instead of returning an error.
func WithIgnoreUnknown(ignore bool) OneHotOption {
	return func(e *OneHotEncoder) {
		e.ignoreUnknown = ignore
	}
}

// NewOneHotEncoder creates a new OneHotEncoder.
func NewOneHotEncoder(opts ...OneHotOption) *OneHotEncoder {
	e := &OneHotEncoder{
		state: model.NewStateManager(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fit learns the distinct levels of each categorical column. records is
// row-major: records[i][j] is the value of feature j in sample i.
func (e *OneHotEncoder) Fit(records [][]string) error {
	if len(records) == 0 || len(records[0]) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	nFeatures := len(records[0])
	seen := make([]map[string]bool, nFeatures)
	for j := range seen {
		seen[j] = make(map[string]bool)
	}

	for i, rec := range records {
		if len(rec) != nFeatures {
			return errors.NewDimensionError(fmt.Sprintf("OneHotEncoder.Fit row %d", i), nFeatures, len(rec), 1)
		}
		for j, v := range rec {
			seen[j][v] = true
		}
	}

	e.categories_ = make([][]string, nFeatures)
	e.index_ = make([]map[string]int, nFeatures)
	for j := range seen {
		levels := make([]string, 0, len(seen[j]))
		for v := range seen[j] {
			levels = append(levels, v)
		}
		sort.Strings(levels)
		e.categories_[j] = levels

		e.index_[j] = make(map[string]int, len(levels))
		for pos, v := range levels {
			e.index_[j][v] = pos
		}
	}

	e.state.SetDimensions(nFeatures, len(records))
	e.state.SetFitted()
	return nil
}

// Transform encodes records into indicator columns. Column layout is the
// concatenation of each feature's levels in sorted order (minus the first
// level per feature when drop-first is set).
func (e *OneHotEncoder) Transform(records [][]string) (*mat.Dense, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Transform", "empty data", errors.ErrEmptyData)
	}

	nFeatures := len(e.categories_)
	width := e.width()

	out := mat.NewDense(len(records), width, nil)

	for i, rec := range records {
		if len(rec) != nFeatures {
			return nil, errors.NewDimensionError(fmt.Sprintf("OneHotEncoder.Transform row %d", i), nFeatures, len(rec), 1)
		}

		offset := 0
		for j, v := range rec {
			pos, ok := e.index_[j][v]
			if !ok {
				if !e.ignoreUnknown {
					return nil, errors.Wrapf(errors.ErrUnknownCategory,
						"OneHotEncoder.Transform: feature %d value %q", j, v)
				}
				offset += e.featureWidth(j)
				continue
			}

			if e.dropFirst {
				if pos > 0 {
					out.Set(i, offset+pos-1, 1)
				}
			} else {
				out.Set(i, offset+pos, 1)
			}
			offset += e.featureWidth(j)
		}
	}

	return out, nil
}

// FitTransform fits the encoder and transforms the same records.
func (e *OneHotEncoder) FitTransform(records [][]string) (*mat.Dense, error) {
	if err := e.Fit(records); err != nil {
		return nil, err
	}
	return e.Transform(records)
}

// Categories returns the sorted levels learned for each feature.
func (e *OneHotEncoder) Categories() [][]string {
	return e.categories_
}

// FeatureNames returns the output column names as "<prefix>_<level>" using
// the given per-feature prefixes. Useful when building a labelled design
// matrix from encoded categoricals.
func (e *OneHotEncoder) FeatureNames(prefixes []string) ([]string, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "FeatureNames")
	}
	if len(prefixes) != len(e.categories_) {
		return nil, errors.NewDimensionError("OneHotEncoder.FeatureNames", len(e.categories_), len(prefixes), 1)
	}

	names := make([]string, 0, e.width())
	for j, levels := range e.categories_ {
		start := 0
		if e.dropFirst {
			start = 1
		}
		for _, level := range levels[start:] {
			names = append(names, fmt.Sprintf("%s_%s", prefixes[j], level))
		}
	}
	return names, nil
}

func (e *OneHotEncoder) width() int {
	w := 0
	for j := range e.categories_ {
		w += e.featureWidth(j)
	}
	return w
}

func (e *OneHotEncoder) featureWidth(j int) int {
	w := len(e.categories_[j])
	if e.dropFirst && w > 0 {
		w--
	}
	return w
}
