package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// Pseudo-R² statistics for logistic regression. None of these is "the" R²:
// each is a different heuristic analogue of the OLS coefficient of
// determination, and they routinely disagree on the same fit. Likelihood
// based variants take the fitted and null (intercept-only) log-likelihoods;
// the remainder work directly on labels and fitted probabilities.

// McFadden computes 1 − llFull/llNull. Zero when the model explains nothing
// beyond the base rate; values approach (but never reach) 1 for a perfect
// fit, and go negative when the fit is worse than the null model, which an
// iterative fit stopped short of the optimum can produce. Both
// log-likelihoods must be non-positive with llNull strictly negative.
func McFadden(llFull, llNull float64) (float64, error) {
	if err := validateLL("McFadden", llFull, llNull); err != nil {
		return 0, err
	}
	return 1 - llFull/llNull, nil
}

// McFaddenAdjusted computes 1 − (llFull − nParams)/llNull, penalizing model
// size the way adjusted R² does. nParams counts the fitted parameters
// including the intercept.
func McFaddenAdjusted(llFull, llNull float64, nParams int) (float64, error) {
	if err := validateLL("McFaddenAdjusted", llFull, llNull); err != nil {
		return 0, err
	}
	if nParams < 0 {
		return 0, errors.NewValueError("McFaddenAdjusted", "nParams must be non-negative")
	}
	return 1 - (llFull-float64(nParams))/llNull, nil
}

// CoxSnell computes 1 − exp((2/n)·(llNull − llFull)). Its maximum is below
// 1 even for a perfect model, which motivates the Nagelkerke correction.
func CoxSnell(llFull, llNull float64, n int) (float64, error) {
	if err := validateLL("CoxSnell", llFull, llNull); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.NewValueError("CoxSnell", "n must be positive")
	}
	return 1 - math.Exp(2*(llNull-llFull)/float64(n)), nil
}

// Nagelkerke rescales Cox–Snell by its maximum attainable value so a
// perfect model scores 1.
func Nagelkerke(llFull, llNull float64, n int) (float64, error) {
	cs, err := CoxSnell(llFull, llNull, n)
	if err != nil {
		return 0, err
	}

	maxCS := 1 - math.Exp(2*llNull/float64(n))
	if maxCS == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("Nagelkerke", "degenerate null model", 0))
		return 0, nil
	}
	return cs / maxCS, nil
}

// Efron computes 1 − Σ(y−p)²/Σ(y−ȳ)², the squared-residual analogue of R²
// with fitted probabilities in place of predictions.
func Efron(yTrue, proba *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Efron", "empty vector")
	}
	if proba.Len() != n {
		return 0, errors.NewDimensionError("Efron", n, proba.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var rss, tss float64
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		rss += (y - proba.AtVec(i)) * (y - proba.AtVec(i))
		tss += (y - yMean) * (y - yMean)
	}

	if tss == 0 {
		return 0, errors.Newf("Efron: no variance in yTrue (single-class labels)")
	}
	return 1 - rss/tss, nil
}

// Tjur computes the discrimination coefficient: the difference between the
// mean fitted probability of the positive and negative classes.
func Tjur(yTrue, proba *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Tjur", "empty vector")
	}
	if proba.Len() != n {
		return 0, errors.NewDimensionError("Tjur", n, proba.Len(), 0)
	}

	var sumPos, sumNeg float64
	var nPos, nNeg int
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			sumPos += proba.AtVec(i)
			nPos++
		case 0:
			sumNeg += proba.AtVec(i)
			nNeg++
		default:
			return 0, errors.NewValueError("Tjur", "labels must be 0 or 1")
		}
	}

	if nPos == 0 || nNeg == 0 {
		return 0, errors.Newf("Tjur: both classes must be present")
	}
	return sumPos/float64(nPos) - sumNeg/float64(nNeg), nil
}

// CountR2 computes the fraction of samples classified correctly at the 0.5
// probability threshold.
func CountR2(yTrue, proba *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("CountR2", "empty vector")
	}
	if proba.Len() != n {
		return 0, errors.NewDimensionError("CountR2", n, proba.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		pred := 0.0
		if proba.AtVec(i) >= 0.5 {
			pred = 1
		}
		if yTrue.AtVec(i) == pred {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// validateLL checks the shared preconditions. A fitted log-likelihood below
// the null model's is allowed: it yields a negative statistic rather than an
// error, since a fit stopped short of the maximum can legitimately be worse
// than the null model.
func validateLL(op string, llFull, llNull float64) error {
	if llFull > 0 || llNull > 0 {
		return errors.NewValueError(op, "log-likelihoods must be non-positive")
	}
	if llNull == 0 {
		return errors.NewValueError(op, "null log-likelihood must be negative")
	}
	return nil
}
