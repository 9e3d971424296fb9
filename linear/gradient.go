package linear

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/core/model"
	"github.com/aviary-ml/aviary/pkg/errors"
)

// GDRegressor fits a linear model by first-order gradient descent on the
// mean squared error loss. With the default batch size of 0 every epoch uses
// the full gradient; a batch size of 1 gives stochastic gradient descent and
// anything in between gives mini-batch updates. Samples are shuffled once
// per epoch when the batch size is positive.
type GDRegressor struct {
	state *model.StateManager

	learningRate float64
	maxEpochs    int
	batchSize    int // 0 = full batch
	tol          float64
	fitIntercept bool
	seed         int64

	coef_       []float64
	intercept_  float64
	nFeatures_  int
	nEpochs_    int
	lossHistory []float64

	rng *rand.Rand
}

// GDOption configures a GDRegressor.
type GDOption func(*GDRegressor)

// WithLearningRate sets the step size (default 0.01).
func WithLearningRate(eta float64) GDOption {
	return func(g *GDRegressor) {
		g.learningRate = eta
	}
}

// WithMaxEpochs sets the number of passes over the data (default 1000).
func WithMaxEpochs(epochs int) GDOption {
	return func(g *GDRegressor) {
		g.maxEpochs = epochs
	}
}

// WithBatchSize sets the mini-batch size. Zero selects full-batch descent,
// one selects stochastic descent.
func WithBatchSize(size int) GDOption {
	return func(g *GDRegressor) {
		g.batchSize = size
	}
}

// WithGDTol sets the stopping tolerance on the epoch-over-epoch loss
// decrease (default 1e-8). A non-positive value disables early stopping.
func WithGDTol(tol float64) GDOption {
	return func(g *GDRegressor) {
		g.tol = tol
	}
}

// WithGDFitIntercept sets whether a bias term is learned (default true).
func WithGDFitIntercept(fit bool) GDOption {
	return func(g *GDRegressor) {
		g.fitIntercept = fit
	}
}

// WithGDSeed fixes the shuffling seed for reproducible stochastic runs.
func WithGDSeed(seed int64) GDOption {
	return func(g *GDRegressor) {
		g.seed = seed
	}
}

// NewGDRegressor creates a gradient descent regressor.
func NewGDRegressor(opts ...GDOption) *GDRegressor {
	g := &GDRegressor{
		state:        model.NewStateManager(),
		learningRate: 0.01,
		maxEpochs:    1000,
		batchSize:    0,
		tol:          1e-8,
		fitIntercept: true,
		seed:         -1,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.seed >= 0 {
		g.rng = rand.New(rand.NewSource(g.seed))
	} else {
		g.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	return g
}

// Fit runs gradient descent. Weights start at zero; each update subtracts
// the learning-rate-scaled gradient of the batch MSE. The full-data loss is
// recorded once per epoch and fitting stops early when it decreases by less
// than the tolerance. A ConvergenceWarning is emitted when the epoch budget
// runs out first.
func (g *GDRegressor) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("GDRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("GDRegressor.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("GDRegressor.Fit", "y must be a column vector")
	}
	if g.learningRate <= 0 {
		return errors.NewValueError("GDRegressor.Fit", "learning rate must be positive")
	}
	if g.batchSize < 0 || g.batchSize > n {
		return errors.NewValueError("GDRegressor.Fit", "batch size must be in [0, n_samples]")
	}

	w := make([]float64, p)
	var b float64

	batch := g.batchSize
	if batch == 0 {
		batch = n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	g.lossHistory = make([]float64, 0, g.maxEpochs)
	prevLoss := math.Inf(1)
	converged := false

	gradW := make([]float64, p)

	for epoch := 0; epoch < g.maxEpochs; epoch++ {
		if g.batchSize > 0 {
			g.rng.Shuffle(n, func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}

		for start := 0; start < n; start += batch {
			end := start + batch
			if end > n {
				end = n
			}
			m := float64(end - start)

			for j := range gradW {
				gradW[j] = 0
			}
			gradB := 0.0

			for k := start; k < end; k++ {
				i := order[k]
				pred := b
				for j := 0; j < p; j++ {
					pred += X.At(i, j) * w[j]
				}
				residual := pred - y.At(i, 0)

				gradB += residual
				for j := 0; j < p; j++ {
					gradW[j] += residual * X.At(i, j)
				}
			}

			// Gradient of the batch MSE: (2/m)·Xᵀr. The factor 2 is folded
			// into the learning rate convention used here.
			for j := 0; j < p; j++ {
				w[j] -= g.learningRate * gradW[j] / m
			}
			if g.fitIntercept {
				b -= g.learningRate * gradB / m
			}
		}

		loss := g.fullLoss(X, y, w, b)
		g.lossHistory = append(g.lossHistory, loss)
		g.nEpochs_ = epoch + 1

		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return errors.Newf("GDRegressor.Fit: loss diverged at epoch %d; reduce the learning rate", epoch+1)
		}

		if g.tol > 0 && math.Abs(prevLoss-loss) < g.tol {
			converged = true
			break
		}
		prevLoss = loss
	}

	if !converged && g.tol > 0 {
		errors.Warn(errors.NewConvergenceWarning("GDRegressor", g.maxEpochs, ""))
	}

	g.coef_ = w
	g.intercept_ = b
	g.nFeatures_ = p

	g.state.SetDimensions(p, n)
	g.state.SetFitted()
	return nil
}

// fullLoss computes the MSE over the whole dataset for the given weights.
func (g *GDRegressor) fullLoss(X, y mat.Matrix, w []float64, b float64) float64 {
	n, p := X.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		pred := b
		for j := 0; j < p; j++ {
			pred += X.At(i, j) * w[j]
		}
		diff := pred - y.At(i, 0)
		sum += diff * diff
	}
	return sum / float64(n)
}

// Predict returns ŷ = X·w + intercept as an n×1 matrix.
func (g *GDRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !g.state.IsFitted() {
		return nil, errors.NewNotFittedError("GDRegressor", "Predict")
	}

	n, p := X.Dims()
	if p != g.nFeatures_ {
		return nil, errors.NewDimensionError("GDRegressor.Predict", g.nFeatures_, p, 1)
	}

	predictions := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		pred := g.intercept_
		for j := 0; j < p; j++ {
			pred += X.At(i, j) * g.coef_[j]
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Coef returns the fitted coefficients.
func (g *GDRegressor) Coef() []float64 {
	coef := make([]float64, len(g.coef_))
	copy(coef, g.coef_)
	return coef
}

// Intercept returns the fitted intercept.
func (g *GDRegressor) Intercept() float64 {
	return g.intercept_
}

// LossHistory returns the full-data MSE recorded after each epoch.
func (g *GDRegressor) LossHistory() []float64 {
	history := make([]float64, len(g.lossHistory))
	copy(history, g.lossHistory)
	return history
}

// NEpochs returns the number of epochs actually run.
func (g *GDRegressor) NEpochs() int {
	return g.nEpochs_
}

// Score returns the coefficient of determination R² of the predictions.
func (g *GDRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !g.state.IsFitted() {
		return 0, errors.NewNotFittedError("GDRegressor", "Score")
	}

	yPred, err := g.Predict(X)
	if err != nil {
		return 0, err
	}
	return rSquared(y, yPred)
}
