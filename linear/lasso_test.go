package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLassoRecoversSparseSignal(t *testing.T) {
	// y depends on the first feature only; the second is noise and a small
	// penalty should drive its coefficient to exactly zero.
	X := mat.NewDense(10, 2, []float64{
		0.1, 0.9,
		1.2, -0.4,
		-0.8, 0.2,
		2.0, 0.7,
		0.5, -1.1,
		-1.5, 0.3,
		0.9, 0.8,
		1.1, -0.6,
		-0.3, 1.2,
		0.7, -0.2,
	})
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		y.Set(i, 0, 4*X.At(i, 0)+1)
	}

	lasso := NewLasso(WithLassoAlpha(0.05), WithLassoMaxIter(5000), WithLassoTol(1e-10))
	if err := lasso.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	coef := lasso.Coef()
	if math.Abs(coef[0]-4) > 0.2 {
		t.Errorf("coef[0] = %v, want about 4", coef[0])
	}
	if math.Abs(coef[1]) > 0.1 {
		t.Errorf("coef[1] = %v, want shrunk toward 0", coef[1])
	}
}

func TestLassoZeroAlphaMatchesOLS(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		1, 2,
		2, 1,
		3, 4,
		4, 3,
		5, 6,
		6, 5,
	})
	y := mat.NewDense(6, 1, []float64{5, 4, 11, 10, 17, 16})

	ols := NewRegression()
	if err := ols.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	lasso := NewLasso(WithLassoAlpha(0), WithLassoMaxIter(20000), WithLassoTol(1e-12))
	if err := lasso.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	olsCoef := ols.Coef()
	lassoCoef := lasso.Coef()
	for j := range olsCoef {
		if math.Abs(olsCoef[j]-lassoCoef[j]) > 1e-4 {
			t.Errorf("coef[%d]: lasso = %v, ols = %v", j, lassoCoef[j], olsCoef[j])
		}
	}
	if math.Abs(lasso.Intercept()-ols.Intercept) > 1e-4 {
		t.Errorf("intercept: lasso = %v, ols = %v", lasso.Intercept(), ols.Intercept)
	}
}

func TestLassoHugeAlphaZeroesEverything(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

	lasso := NewLasso(WithLassoAlpha(1e6))
	if err := lasso.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	if c := lasso.Coef()[0]; c != 0 {
		t.Errorf("coef = %v, want exactly 0 under a huge penalty", c)
	}
	// With all coefficients zeroed the prediction is the mean of y.
	if math.Abs(lasso.Intercept()-5) > 1e-10 {
		t.Errorf("intercept = %v, want mean(y) = 5", lasso.Intercept())
	}
}

func TestLassoNegativeAlpha(t *testing.T) {
	lasso := NewLasso(WithLassoAlpha(-1))
	if err := lasso.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(2, 1, []float64{1, 2})); err == nil {
		t.Error("negative alpha should error")
	}
}

func TestLassoNotFitted(t *testing.T) {
	lasso := NewLasso()
	if _, err := lasso.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict before Fit should error")
	}
}

func TestSoftThreshold(t *testing.T) {
	tests := []struct {
		name  string
		z     float64
		gamma float64
		want  float64
	}{
		{name: "above threshold", z: 3, gamma: 1, want: 2},
		{name: "below negative threshold", z: -3, gamma: 1, want: -2},
		{name: "inside dead zone", z: 0.5, gamma: 1, want: 0},
		{name: "at boundary", z: 1, gamma: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := softThreshold(tt.z, tt.gamma); got != tt.want {
				t.Errorf("softThreshold(%v, %v) = %v, want %v", tt.z, tt.gamma, got, tt.want)
			}
		})
	}
}
