// Package dataset provides synthetic data generators and CSV ingestion for
// the estimator packages.
package dataset

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// simOptions holds the knobs shared by the generators.
type simOptions struct {
	noise     float64
	bias      float64
	seed      int64
	coef      []float64
	hasSeed   bool
	hasCoef   bool
	intercept bool
}

// Option configures a generator.
type Option func(*simOptions)

// WithNoise sets the standard deviation of the Gaussian noise added to the
// continuous outcome (default 1.0).
func WithNoise(sigma float64) Option {
	return func(o *simOptions) {
		o.noise = sigma
	}
}

// WithBias sets the intercept term of the generating model (default 0).
func WithBias(b float64) Option {
	return func(o *simOptions) {
		o.bias = b
	}
}

// WithSeed makes the draw reproducible.
func WithSeed(seed int64) Option {
	return func(o *simOptions) {
		o.seed = seed
		o.hasSeed = true
	}
}

// WithCoef fixes the true weight vector instead of drawing it at random.
// Its length must equal the number of features.
func WithCoef(coef []float64) Option {
	return func(o *simOptions) {
		o.coef = coef
		o.hasCoef = true
	}
}

func newSimOptions(opts []Option) (*simOptions, *rand.Rand) {
	o := &simOptions{noise: 1.0}
	for _, opt := range opts {
		opt(o)
	}
	var rng *rand.Rand
	if o.hasSeed {
		rng = rand.New(rand.NewPCG(uint64(o.seed), uint64(o.seed)))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o, rng
}

// MakeRegression draws a synthetic linear regression problem
// y = X·w + bias + ε with standard normal covariates and Gaussian noise.
// It returns the design matrix, the outcome column vector and the true
// weights used to generate it.
func MakeRegression(nSamples, nFeatures int, opts ...Option) (*mat.Dense, *mat.VecDense, []float64, error) {
	if nSamples <= 0 || nFeatures <= 0 {
		return nil, nil, nil, errors.NewValueError("MakeRegression", "nSamples and nFeatures must be positive")
	}

	o, rng := newSimOptions(opts)

	coef, err := trueCoef(o, nFeatures, rng, "MakeRegression")
	if err != nil {
		return nil, nil, nil, err
	}

	X := mat.NewDense(nSamples, nFeatures, nil)
	y := mat.NewVecDense(nSamples, nil)

	standard := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	noise := distuv.Normal{Mu: 0, Sigma: o.noise, Src: rng}

	for i := 0; i < nSamples; i++ {
		target := o.bias
		for j := 0; j < nFeatures; j++ {
			v := standard.Rand()
			X.Set(i, j, v)
			target += v * coef[j]
		}
		y.SetVec(i, target+noise.Rand())
	}

	return X, y, coef, nil
}

// MakeClassification draws a synthetic binary classification problem: the
// label is Bernoulli with success probability sigmoid(X·w + bias). Labels
// are 0/1 in the returned column vector.
func MakeClassification(nSamples, nFeatures int, opts ...Option) (*mat.Dense, *mat.VecDense, []float64, error) {
	if nSamples <= 0 || nFeatures <= 0 {
		return nil, nil, nil, errors.NewValueError("MakeClassification", "nSamples and nFeatures must be positive")
	}

	o, rng := newSimOptions(opts)

	coef, err := trueCoef(o, nFeatures, rng, "MakeClassification")
	if err != nil {
		return nil, nil, nil, err
	}

	X := mat.NewDense(nSamples, nFeatures, nil)
	y := mat.NewVecDense(nSamples, nil)

	standard := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	for i := 0; i < nSamples; i++ {
		z := o.bias
		for j := 0; j < nFeatures; j++ {
			v := standard.Rand()
			X.Set(i, j, v)
			z += v * coef[j]
		}
		p := 1.0 / (1.0 + math.Exp(-z))
		if rng.Float64() < p {
			y.SetVec(i, 1)
		}
	}

	return X, y, coef, nil
}

// Categorical draws n values uniformly from the given levels. It feeds the
// one-hot encoding demonstrations and tests.
func Categorical(n int, levels []string, seed int64) ([]string, error) {
	if n <= 0 {
		return nil, errors.NewValueError("Categorical", "n must be positive")
	}
	if len(levels) == 0 {
		return nil, errors.NewValueError("Categorical", "levels must be non-empty")
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	out := make([]string, n)
	for i := range out {
		out[i] = levels[rng.IntN(len(levels))]
	}
	return out, nil
}

func trueCoef(o *simOptions, nFeatures int, rng *rand.Rand, op string) ([]float64, error) {
	if o.hasCoef {
		if len(o.coef) != nFeatures {
			return nil, errors.NewDimensionError(op, nFeatures, len(o.coef), 1)
		}
		coef := make([]float64, nFeatures)
		copy(coef, o.coef)
		return coef, nil
	}

	// Random weights in a range that keeps the signal comparable to the
	// unit-variance covariates.
	coef := make([]float64, nFeatures)
	for j := range coef {
		coef[j] = rng.Float64()*10 - 5
	}
	return coef, nil
}
