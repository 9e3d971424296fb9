// Package linear provides linear regression models: ordinary least squares,
// ridge, lasso and first-order gradient descent.
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/core/model"
	"github.com/aviary-ml/aviary/core/parallel"
	"github.com/aviary-ml/aviary/pkg/errors"
)

// Regression is an ordinary least squares model solved with the normal
// equations w = (XᵀX)⁻¹Xᵀy.
type Regression struct {
	state *model.StateManager

	// Weights holds the fitted coefficients, one per feature.
	Weights *mat.VecDense
	// Intercept is the fitted bias term.
	Intercept float64
	// NFeatures is the number of features seen during Fit.
	NFeatures int
}

// NewRegression creates a new ordinary least squares model.
func NewRegression() *Regression {
	return &Regression{
		state: model.NewStateManager(),
	}
}

// Fit estimates the weights with the normal equations.
func (lr *Regression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Regression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("Regression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Regression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	// Prepend an intercept column: X' = [1, X].
	XWithIntercept := mat.NewDense(r, c+1, nil)

	const parallelThreshold = 1000

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XWithIntercept.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				XWithIntercept.Set(i, j+1, X.At(i, j))
			}
		}
	})

	var XT mat.Dense
	XT.CloneFrom(XWithIntercept.T())

	var XTX mat.Dense
	XTX.Mul(&XT, XWithIntercept)

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return errors.NewModelError("Regression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	weights := mat.NewVecDense(c+1, nil)
	weights.MulVec(&XTXInv, &XTy)

	lr.Intercept = weights.AtVec(0)
	lr.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		lr.Weights.SetVec(i, weights.AtVec(i+1))
	}

	lr.state.SetDimensions(c, r)
	lr.state.SetFitted()

	return nil
}

// Predict returns ŷ = X·w + intercept as an n×1 matrix.
func (lr *Regression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("Regression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)

	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Coef returns the fitted coefficients as a slice.
func (lr *Regression) Coef() []float64 {
	if lr.Weights == nil {
		return nil
	}

	weights := make([]float64, lr.Weights.Len())
	for i := 0; i < lr.Weights.Len(); i++ {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// Score returns the coefficient of determination R² of the predictions.
func (lr *Regression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.state.IsFitted() {
		return 0, errors.NewNotFittedError("Regression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	return rSquared(y, yPred)
}

// rSquared computes R² = 1 - RSS/TSS for column-vector inputs.
func rSquared(y, yPred mat.Matrix) (float64, error) {
	r, _ := y.Dims()

	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	var tss, rss float64
	for i := 0; i < r; i++ {
		yTrue := y.At(i, 0)
		yPredVal := yPred.At(i, 0)

		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += (yTrue - yPredVal) * (yTrue - yPredVal)
	}

	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}

	return 1 - rss/tss, nil
}
