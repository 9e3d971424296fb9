package dataset

import (
	"math"
	"testing"
)

func TestMakeRegressionShape(t *testing.T) {
	X, y, coef, err := MakeRegression(100, 3, WithSeed(42))
	if err != nil {
		t.Fatalf("MakeRegression() error = %v", err)
	}

	r, c := X.Dims()
	if r != 100 || c != 3 {
		t.Errorf("X dims = (%d, %d), want (100, 3)", r, c)
	}
	if y.Len() != 100 {
		t.Errorf("y length = %d, want 100", y.Len())
	}
	if len(coef) != 3 {
		t.Errorf("coef length = %d, want 3", len(coef))
	}
}

func TestMakeRegressionReproducible(t *testing.T) {
	X1, y1, _, err := MakeRegression(50, 2, WithSeed(7))
	if err != nil {
		t.Fatal(err)
	}
	X2, y2, _, err := MakeRegression(50, 2, WithSeed(7))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		if y1.AtVec(i) != y2.AtVec(i) {
			t.Fatalf("same seed produced different outcomes at row %d", i)
		}
		for j := 0; j < 2; j++ {
			if X1.At(i, j) != X2.At(i, j) {
				t.Fatalf("same seed produced different covariates at (%d, %d)", i, j)
			}
		}
	}
}

func TestMakeRegressionNoiselessExact(t *testing.T) {
	coef := []float64{2.0, -1.5}
	X, y, _, err := MakeRegression(20, 2, WithSeed(1), WithCoef(coef), WithBias(0.5), WithNoise(0))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		want := 0.5 + 2.0*X.At(i, 0) - 1.5*X.At(i, 1)
		if math.Abs(y.AtVec(i)-want) > 1e-12 {
			t.Errorf("row %d: y = %v, want %v", i, y.AtVec(i), want)
		}
	}
}

func TestMakeRegressionBadCoefLength(t *testing.T) {
	if _, _, _, err := MakeRegression(10, 3, WithCoef([]float64{1, 2})); err == nil {
		t.Error("mismatched WithCoef length should error")
	}
}

func TestMakeClassificationLabels(t *testing.T) {
	_, y, _, err := MakeClassification(200, 4, WithSeed(3))
	if err != nil {
		t.Fatalf("MakeClassification() error = %v", err)
	}

	for i := 0; i < y.Len(); i++ {
		v := y.AtVec(i)
		if v != 0 && v != 1 {
			t.Fatalf("label at %d is %v, want 0 or 1", i, v)
		}
	}
}

func TestMakeRegressionInvalidSizes(t *testing.T) {
	tests := []struct {
		name       string
		n, feature int
	}{
		{name: "zero samples", n: 0, feature: 2},
		{name: "zero features", n: 10, feature: 0},
		{name: "negative", n: -1, feature: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := MakeRegression(tt.n, tt.feature); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCategorical(t *testing.T) {
	levels := []string{"urban", "forest", "wetland"}
	draws, err := Categorical(100, levels, 11)
	if err != nil {
		t.Fatalf("Categorical() error = %v", err)
	}
	if len(draws) != 100 {
		t.Fatalf("got %d draws, want 100", len(draws))
	}

	valid := map[string]bool{"urban": true, "forest": true, "wetland": true}
	for i, d := range draws {
		if !valid[d] {
			t.Errorf("draw %d = %q is not a known level", i, d)
		}
	}
}

func TestCategoricalEmptyLevels(t *testing.T) {
	if _, err := Categorical(5, nil, 0); err == nil {
		t.Error("empty levels should error")
	}
}
