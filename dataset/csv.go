package dataset

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// csvOptions configures LoadCSV.
type csvOptions struct {
	header bool
}

// CSVOption configures LoadCSV.
type CSVOption func(*csvOptions)

// WithHeader treats the first row as column names instead of data.
func WithHeader(has bool) CSVOption {
	return func(o *csvOptions) {
		o.header = has
	}
}

// LoadCSV reads a numeric CSV table into a dense matrix. When WithHeader is
// set the returned names hold the first row, otherwise names is nil.
func LoadCSV(r io.Reader, opts ...CSVOption) (*mat.Dense, []string, error) {
	o := &csvOptions{}
	for _, opt := range opts {
		opt(o)
	}

	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "LoadCSV: failed to read records")
	}

	var names []string
	if o.header {
		if len(records) == 0 {
			return nil, nil, errors.NewModelError("LoadCSV", "empty data", errors.ErrEmptyData)
		}
		names = records[0]
		records = records[1:]
	}

	if len(records) == 0 {
		return nil, nil, errors.NewModelError("LoadCSV", "empty data", errors.ErrEmptyData)
	}

	rows := len(records)
	cols := len(records[0])
	data := make([]float64, 0, rows*cols)

	for i, rec := range records {
		if len(rec) != cols {
			return nil, nil, errors.NewDimensionError("LoadCSV", cols, len(rec), 1)
		}
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, errors.Newf("LoadCSV: row %d column %d: %q is not numeric", i, j, field)
			}
			data = append(data, v)
		}
	}

	return mat.NewDense(rows, cols, data), names, nil
}

// SplitTarget separates column col of m into an outcome vector, returning
// the remaining columns as the design matrix.
func SplitTarget(m *mat.Dense, col int) (*mat.Dense, *mat.VecDense, error) {
	r, c := m.Dims()
	if col < 0 || col >= c {
		return nil, nil, errors.NewValueError("SplitTarget", "target column out of range")
	}
	if c < 2 {
		return nil, nil, errors.NewValueError("SplitTarget", "matrix needs at least two columns")
	}

	X := mat.NewDense(r, c-1, nil)
	y := mat.NewVecDense(r, nil)

	for i := 0; i < r; i++ {
		y.SetVec(i, m.At(i, col))
		k := 0
		for j := 0; j < c; j++ {
			if j == col {
				continue
			}
			X.Set(i, k, m.At(i, j))
			k++
		}
	}

	return X, y, nil
}
