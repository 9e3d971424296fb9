package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRegressionExactLine(t *testing.T) {
	// y = 2x + 1, recoverable exactly.
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	reg := NewRegression()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(reg.Weights.AtVec(0)-2) > 1e-10 {
		t.Errorf("slope = %v, want 2", reg.Weights.AtVec(0))
	}
	if math.Abs(reg.Intercept-1) > 1e-10 {
		t.Errorf("intercept = %v, want 1", reg.Intercept)
	}
}

func TestRegressionMultipleFeatures(t *testing.T) {
	// y = 1*x1 + 2*x2 + 3
	X := mat.NewDense(5, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 3,
	})
	y := mat.NewDense(5, 1, []float64{3, 4, 5, 6, 11})

	reg := NewRegression()
	if err := reg.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	coef := reg.Coef()
	if math.Abs(coef[0]-1) > 1e-8 || math.Abs(coef[1]-2) > 1e-8 {
		t.Errorf("coef = %v, want [1 2]", coef)
	}
	if math.Abs(reg.Intercept-3) > 1e-8 {
		t.Errorf("intercept = %v, want 3", reg.Intercept)
	}
}

func TestRegressionScoreRange(t *testing.T) {
	// On its own training data OLS R² lies in [0, 1].
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewDense(6, 1, []float64{1.2, 1.9, 3.3, 3.8, 5.1, 6.2})

	reg := NewRegression()
	if err := reg.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	r2, err := reg.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if r2 < 0 || r2 > 1 {
		t.Errorf("training R² = %v, want within [0, 1]", r2)
	}
	if r2 < 0.9 {
		t.Errorf("near-linear data should score high, got %v", r2)
	}
}

func TestRegressionNotFitted(t *testing.T) {
	reg := NewRegression()
	if _, err := reg.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict before Fit should error")
	}
	if _, err := reg.Score(mat.NewDense(1, 1, nil), mat.NewDense(1, 1, nil)); err == nil {
		t.Error("Score before Fit should error")
	}
}

func TestRegressionDimensionMismatch(t *testing.T) {
	reg := NewRegression()

	X := mat.NewDense(3, 2, nil)
	y := mat.NewDense(4, 1, nil)
	if err := reg.Fit(X, y); err == nil {
		t.Error("row mismatch between X and y should error")
	}

	y2 := mat.NewDense(3, 2, nil)
	if err := reg.Fit(X, y2); err == nil {
		t.Error("multi-column y should error")
	}
}

func TestRegressionSingular(t *testing.T) {
	// Duplicate columns make XᵀX singular. This is exactly the dummy
	// variable trap: all k indicators plus the intercept.
	X := mat.NewDense(4, 2, []float64{
		1, 0,
		0, 1,
		1, 0,
		0, 1,
	})
	// col0 + col1 == intercept column for every row
	y := mat.NewDense(4, 1, []float64{1, 2, 1, 2})

	reg := NewRegression()
	if err := reg.Fit(X, y); err == nil {
		t.Error("rank-deficient design should fail to fit")
	}
}

func TestRegressionPredictWrongWidth(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{2, 4, 6})

	reg := NewRegression()
	if err := reg.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	if _, err := reg.Predict(mat.NewDense(2, 3, nil)); err == nil {
		t.Error("Predict with wrong feature count should error")
	}
}
