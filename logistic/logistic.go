// Package logistic provides binary logistic regression fitted by gradient
// descent, plus the log-likelihood helpers used by the pseudo-R² metrics.
package logistic

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/core/model"
	"github.com/aviary-ml/aviary/pkg/errors"
)

// Classifier is a binary logistic regression model. Labels must be 0/1.
type Classifier struct {
	state *model.StateManager

	// Hyperparameters
	c            float64 // inverse L2 regularization strength; 0 disables
	fitIntercept bool
	maxIter      int
	tol          float64
	randomState  int64

	// Fitted parameters
	coef_      []float64
	intercept_ float64
	nFeatures_ int
	nIter_     int

	rng *rand.Rand
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithC sets the inverse regularization strength. Zero disables the L2
// penalty entirely (default 0).
func WithC(c float64) Option {
	return func(lr *Classifier) {
		lr.c = c
	}
}

// WithFitIntercept sets whether a bias term is learned (default true).
func WithFitIntercept(fit bool) Option {
	return func(lr *Classifier) {
		lr.fitIntercept = fit
	}
}

// WithMaxIter sets the maximum number of gradient descent iterations
// (default 1000).
func WithMaxIter(maxIter int) Option {
	return func(lr *Classifier) {
		lr.maxIter = maxIter
	}
}

// WithTol sets the stopping tolerance on the largest gradient component
// (default 1e-6).
func WithTol(tol float64) Option {
	return func(lr *Classifier) {
		lr.tol = tol
	}
}

// WithRandomState fixes the seed used for weight initialization.
func WithRandomState(seed int64) Option {
	return func(lr *Classifier) {
		lr.randomState = seed
	}
}

// NewClassifier creates a binary logistic regression classifier.
func NewClassifier(opts ...Option) *Classifier {
	lr := &Classifier{
		state:        model.NewStateManager(),
		c:            0,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-6,
		randomState:  -1,
	}
	for _, opt := range opts {
		opt(lr)
	}

	if lr.randomState >= 0 {
		lr.rng = rand.New(rand.NewSource(lr.randomState))
	} else {
		lr.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	return lr
}

// Fit trains the model by gradient descent on the negative log-likelihood
// with a decaying learning rate. A ConvergenceWarning is emitted when the
// iteration budget is exhausted before the gradient tolerance is met.
func (lr *Classifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("Classifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("Classifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("Classifier.Fit", "y must be a column vector")
	}
	for i := 0; i < nSamples; i++ {
		if v := y.At(i, 0); v != 0 && v != 1 {
			return errors.NewValueError("Classifier.Fit", "labels must be 0 or 1")
		}
	}

	lr.nFeatures_ = nFeatures

	// Small random initialization keeps the early sigmoid activations away
	// from the saturated region.
	weights := make([]float64, nFeatures)
	for j := range weights {
		weights[j] = lr.rng.NormFloat64() * 0.01
	}
	var intercept float64

	baseLearningRate := 1.0
	gradWeights := make([]float64, nFeatures)
	converged := false

	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := Sigmoid(z) - y.At(i, 0)

			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += residual * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] /= float64(nSamples)
		}
		gradIntercept /= float64(nSamples)

		if lr.c > 0 {
			lambda := 1.0 / lr.c
			for j := range weights {
				gradWeights[j] += lambda * weights[j] / float64(nSamples)
			}
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))

		for j := range weights {
			weights[j] -= learningRate * gradWeights[j]
		}
		if lr.fitIntercept {
			intercept -= learningRate * gradIntercept
		}

		lr.nIter_ = iter + 1

		maxGrad := math.Abs(gradIntercept)
		if !lr.fitIntercept {
			maxGrad = 0
		}
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("logistic.Classifier", lr.maxIter, ""))
	}

	lr.coef_ = weights
	lr.intercept_ = intercept

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// DecisionFunction returns the linear scores X·w + intercept.
func (lr *Classifier) DecisionFunction(X mat.Matrix) (*mat.VecDense, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("Classifier", "DecisionFunction")
	}

	n, p := X.Dims()
	if p != lr.nFeatures_ {
		return nil, errors.NewDimensionError("Classifier.DecisionFunction", lr.nFeatures_, p, 1)
	}

	scores := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z := lr.intercept_
		for j := 0; j < p; j++ {
			z += X.At(i, j) * lr.coef_[j]
		}
		scores.SetVec(i, z)
	}
	return scores, nil
}

// PredictProba returns the fitted probability of class 1 for each row.
func (lr *Classifier) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	scores, err := lr.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	probs := mat.NewVecDense(scores.Len(), nil)
	for i := 0; i < scores.Len(); i++ {
		probs.SetVec(i, Sigmoid(scores.AtVec(i)))
	}
	return probs, nil
}

// Predict returns hard 0/1 labels at the 0.5 threshold.
func (lr *Classifier) Predict(X mat.Matrix) (*mat.VecDense, error) {
	probs, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}

	labels := mat.NewVecDense(probs.Len(), nil)
	for i := 0; i < probs.Len(); i++ {
		if probs.AtVec(i) >= 0.5 {
			labels.SetVec(i, 1)
		}
	}
	return labels, nil
}

// Score returns the mean accuracy on the given test data and labels.
func (lr *Classifier) Score(X, y mat.Matrix) (float64, error) {
	labels, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	n, _ := y.Dims()
	if n != labels.Len() {
		return 0, errors.NewDimensionError("Classifier.Score", labels.Len(), n, 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if labels.AtVec(i) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Coef returns the fitted coefficients.
func (lr *Classifier) Coef() []float64 {
	coef := make([]float64, len(lr.coef_))
	copy(coef, lr.coef_)
	return coef
}

// Intercept returns the fitted intercept.
func (lr *Classifier) Intercept() float64 {
	return lr.intercept_
}

// NIter returns the number of gradient descent iterations performed.
func (lr *Classifier) NIter() int {
	return lr.nIter_
}

// LogLikelihood returns the Bernoulli log-likelihood of the fitted model on
// (X, y). It is the numerator input for the pseudo-R² family.
func (lr *Classifier) LogLikelihood(X, y mat.Matrix) (float64, error) {
	probs, err := lr.PredictProba(X)
	if err != nil {
		return 0, err
	}

	n, _ := y.Dims()
	if n != probs.Len() {
		return 0, errors.NewDimensionError("Classifier.LogLikelihood", probs.Len(), n, 0)
	}

	yVec := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	return LogLikelihood(yVec, probs)
}

// probability clamp keeping log() finite
const probEps = 1e-15

// LogLikelihood returns Σ y·log(p) + (1−y)·log(1−p) with probabilities
// clamped away from 0 and 1.
func LogLikelihood(y, proba *mat.VecDense) (float64, error) {
	n := y.Len()
	if n == 0 {
		return 0, errors.NewValueError("LogLikelihood", "empty vector")
	}
	if proba.Len() != n {
		return 0, errors.NewDimensionError("LogLikelihood", n, proba.Len(), 0)
	}

	var ll float64
	for i := 0; i < n; i++ {
		p := math.Min(math.Max(proba.AtVec(i), probEps), 1-probEps)
		if y.AtVec(i) == 1 {
			ll += math.Log(p)
		} else {
			ll += math.Log(1 - p)
		}
	}
	return ll, nil
}

// NullLogLikelihood returns the log-likelihood of the intercept-only model,
// which predicts the empirical positive rate for every sample. It is the
// denominator input for the pseudo-R² family.
func NullLogLikelihood(y *mat.VecDense) (float64, error) {
	n := y.Len()
	if n == 0 {
		return 0, errors.NewValueError("NullLogLikelihood", "empty vector")
	}

	var positives float64
	for i := 0; i < n; i++ {
		positives += y.AtVec(i)
	}
	pBar := positives / float64(n)
	pBar = math.Min(math.Max(pBar, probEps), 1-probEps)

	return positives*math.Log(pBar) + (float64(n)-positives)*math.Log(1-pBar), nil
}

// Sigmoid computes the logistic function.
func Sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
