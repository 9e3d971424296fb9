package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/core/model"
	"github.com/aviary-ml/aviary/pkg/errors"
)

// Lasso is linear regression with an L1 penalty, fitted by cyclic coordinate
// descent with soft thresholding. The intercept is not penalized.
type Lasso struct {
	state *model.StateManager

	alpha   float64
	maxIter int
	tol     float64

	coef_      []float64
	intercept_ float64
	nFeatures_ int
	nIter_     int
}

// LassoOption configures a Lasso model.
type LassoOption func(*Lasso)

// WithLassoAlpha sets the regularization strength (default 1.0).
func WithLassoAlpha(alpha float64) LassoOption {
	return func(l *Lasso) {
		l.alpha = alpha
	}
}

// WithLassoMaxIter sets the maximum number of coordinate descent sweeps
// (default 1000).
func WithLassoMaxIter(maxIter int) LassoOption {
	return func(l *Lasso) {
		l.maxIter = maxIter
	}
}

// WithLassoTol sets the stopping tolerance on the largest coefficient
// update per sweep (default 1e-4).
func WithLassoTol(tol float64) LassoOption {
	return func(l *Lasso) {
		l.tol = tol
	}
}

// NewLasso creates a new lasso model.
func NewLasso(opts ...LassoOption) *Lasso {
	l := &Lasso{
		state:   model.NewStateManager(),
		alpha:   1.0,
		maxIter: 1000,
		tol:     1e-4,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fit runs coordinate descent on the centered problem. A ConvergenceWarning
// is emitted when the sweep budget is exhausted before the tolerance is met.
func (l *Lasso) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("Lasso.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("Lasso.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Lasso.Fit", "y must be a column vector")
	}
	if l.alpha < 0 {
		return errors.NewValueError("Lasso.Fit", "alpha must be non-negative")
	}

	// Center both sides; the intercept is recovered afterwards.
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
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			Xc.Set(i, j, X.At(i, j)-xMean[j])
		}
	}

	// Per-feature squared norms, reused every sweep.
	colNormSq := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			v := Xc.At(i, j)
			colNormSq[j] += v * v
		}
	}

	w := make([]float64, p)

	// residual = yc - Xc·w, maintained incrementally.
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		residual[i] = y.At(i, 0) - yMean
	}

	threshold := l.alpha * float64(n)
	converged := false

	for iter := 0; iter < l.maxIter; iter++ {
		maxDelta := 0.0

		for j := 0; j < p; j++ {
			if colNormSq[j] == 0 {
				continue // constant feature after centering
			}

			// rho = Xcⱼᵀ(residual + Xcⱼ·wⱼ): the correlation of feature j
			// with the residual excluding its own contribution.
			rho := 0.0
			for i := 0; i < n; i++ {
				rho += Xc.At(i, j) * (residual[i] + Xc.At(i, j)*w[j])
			}

			newW := softThreshold(rho, threshold) / colNormSq[j]

			delta := newW - w[j]
			if delta != 0 {
				for i := 0; i < n; i++ {
					residual[i] -= Xc.At(i, j) * delta
				}
				w[j] = newW
			}
			if math.Abs(delta) > maxDelta {
				maxDelta = math.Abs(delta)
			}
		}

		l.nIter_ = iter + 1
		if maxDelta < l.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("Lasso", l.maxIter, ""))
	}

	l.coef_ = w
	l.intercept_ = yMean
	for j := 0; j < p; j++ {
		l.intercept_ -= w[j] * xMean[j]
	}
	l.nFeatures_ = p

	l.state.SetDimensions(p, n)
	l.state.SetFitted()
	return nil
}

// Predict returns ŷ = X·w + intercept as an n×1 matrix.
func (l *Lasso) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !l.state.IsFitted() {
		return nil, errors.NewNotFittedError("Lasso", "Predict")
	}

	n, p := X.Dims()
	if p != l.nFeatures_ {
		return nil, errors.NewDimensionError("Lasso.Predict", l.nFeatures_, p, 1)
	}

	predictions := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		pred := l.intercept_
		for j := 0; j < p; j++ {
			pred += X.At(i, j) * l.coef_[j]
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Coef returns the fitted coefficients.
func (l *Lasso) Coef() []float64 {
	coef := make([]float64, len(l.coef_))
	copy(coef, l.coef_)
	return coef
}

// Intercept returns the fitted intercept.
func (l *Lasso) Intercept() float64 {
	return l.intercept_
}

// NIter returns the number of coordinate descent sweeps performed.
func (l *Lasso) NIter() int {
	return l.nIter_
}

// Score returns the coefficient of determination R² of the predictions.
func (l *Lasso) Score(X, y mat.Matrix) (float64, error) {
	if !l.state.IsFitted() {
		return 0, errors.NewNotFittedError("Lasso", "Score")
	}

	yPred, err := l.Predict(X)
	if err != nil {
		return 0, err
	}
	return rSquared(y, yPred)
}

// softThreshold is the proximal operator of the L1 penalty.
func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}
