package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/core/model"
	"github.com/aviary-ml/aviary/pkg/errors"
)

// Ridge is linear regression with an L2 penalty on the coefficients, solved
// in closed form as w = (XᵀX + αI)⁻¹Xᵀy on centered data. The intercept is
// recovered from the column means and is not penalized.
type Ridge struct {
	state *model.StateManager

	alpha float64

	coef_      []float64
	intercept_ float64
	nFeatures_ int
}

// RidgeOption configures a Ridge model.
type RidgeOption func(*Ridge)

// WithRidgeAlpha sets the regularization strength (default 1.0).
func WithRidgeAlpha(alpha float64) RidgeOption {
	return func(r *Ridge) {
		r.alpha = alpha
	}
}

// NewRidge creates a new ridge regression model.
func NewRidge(opts ...RidgeOption) *Ridge {
	r := &Ridge{
		state: model.NewStateManager(),
		alpha: 1.0,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit estimates the penalized weights.
func (r *Ridge) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("Ridge.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("Ridge.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Ridge.Fit", "y must be a column vector")
	}
	if r.alpha < 0 {
		return errors.NewValueError("Ridge.Fit", "alpha must be non-negative")
	}

	// Center X and y so the intercept drops out of the penalized solve.
	xMean := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			xMean[j] += X.At(i, j)
		}
		xMean[j] /= float64(n)
	}
	var yMean float64
	for i := 0; i < n; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(n)

	Xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			Xc.Set(i, j, X.At(i, j)-xMean[j])
		}
		yc.SetVec(i, y.At(i, 0)-yMean)
	}

	var XTX mat.Dense
	XTX.Mul(Xc.T(), Xc)
	for j := 0; j < p; j++ {
		XTX.Set(j, j, XTX.At(j, j)+r.alpha)
	}

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return errors.NewModelError("Ridge.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	var XTy mat.VecDense
	XTy.MulVec(Xc.T(), yc)

	w := mat.NewVecDense(p, nil)
	w.MulVec(&XTXInv, &XTy)

	r.coef_ = make([]float64, p)
	r.intercept_ = yMean
	for j := 0; j < p; j++ {
		r.coef_[j] = w.AtVec(j)
		r.intercept_ -= w.AtVec(j) * xMean[j]
	}
	r.nFeatures_ = p

	r.state.SetDimensions(p, n)
	r.state.SetFitted()
	return nil
}

// Predict returns ŷ = X·w + intercept as an n×1 matrix.
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "Predict")
	}

	n, p := X.Dims()
	if p != r.nFeatures_ {
		return nil, errors.NewDimensionError("Ridge.Predict", r.nFeatures_, p, 1)
	}

	predictions := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		pred := r.intercept_
		for j := 0; j < p; j++ {
			pred += X.At(i, j) * r.coef_[j]
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Coef returns the fitted coefficients.
func (r *Ridge) Coef() []float64 {
	coef := make([]float64, len(r.coef_))
	copy(coef, r.coef_)
	return coef
}

// Intercept returns the fitted intercept.
func (r *Ridge) Intercept() float64 {
	return r.intercept_
}

// Score returns the coefficient of determination R² of the predictions.
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	if !r.state.IsFitted() {
		return 0, errors.NewNotFittedError("Ridge", "Score")
	}

	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return rSquared(y, yPred)
}
