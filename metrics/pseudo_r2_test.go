package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// A small worked example shared by the likelihood-based tests: 10 samples,
// balanced classes, so llNull = 10*log(0.5).
const (
	testLLNull = -6.931471805599453 // 10 * ln(0.5)
	testLLFull = -2.0
	testN      = 10
)

func TestMcFadden(t *testing.T) {
	got, err := McFadden(testLLFull, testLLNull)
	if err != nil {
		t.Fatalf("McFadden() error = %v", err)
	}

	want := 1 - testLLFull/testLLNull
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("McFadden() = %v, want %v", got, want)
	}
	if got < 0 || got >= 1 {
		t.Errorf("McFadden must lie in [0, 1), got %v", got)
	}
}

func TestMcFaddenNullModelScoresZero(t *testing.T) {
	got, err := McFadden(testLLNull, testLLNull)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("model identical to null should score 0, got %v", got)
	}
}

func TestMcFaddenRejectsInvalidLikelihoods(t *testing.T) {
	tests := []struct {
		name   string
		llFull float64
		llNull float64
	}{
		{"positive llFull", 1, -5},
		{"positive llNull", -1, 5},
		{"zero llNull", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := McFadden(tt.llFull, tt.llNull); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWorseThanNullFitGoesNegative(t *testing.T) {
	// A gradient descent fit stopped early can end up below the null model;
	// the likelihood-based statistics then go negative instead of erroring.
	llFull, llNull := -10.0, -5.0

	mcf, err := McFadden(llFull, llNull)
	if err != nil {
		t.Fatalf("McFadden() error = %v", err)
	}
	if mcf != -1.0 {
		t.Errorf("McFadden() = %v, want -1", mcf)
	}

	cs, err := CoxSnell(llFull, llNull, 10)
	if err != nil {
		t.Fatalf("CoxSnell() error = %v", err)
	}
	if cs >= 0 {
		t.Errorf("Cox-Snell should be negative for a worse-than-null fit, got %v", cs)
	}

	nk, err := Nagelkerke(llFull, llNull, 10)
	if err != nil {
		t.Fatalf("Nagelkerke() error = %v", err)
	}
	if nk >= 0 {
		t.Errorf("Nagelkerke should be negative for a worse-than-null fit, got %v", nk)
	}
}

func TestMcFaddenAdjustedPenalizesParameters(t *testing.T) {
	plain, err := McFadden(testLLFull, testLLNull)
	if err != nil {
		t.Fatal(err)
	}
	adjusted, err := McFaddenAdjusted(testLLFull, testLLNull, 3)
	if err != nil {
		t.Fatal(err)
	}

	if adjusted >= plain {
		t.Errorf("adjusted (%v) should be below unadjusted (%v)", adjusted, plain)
	}

	want := 1 - (testLLFull-3)/testLLNull
	if math.Abs(adjusted-want) > 1e-12 {
		t.Errorf("McFaddenAdjusted() = %v, want %v", adjusted, want)
	}
}

func TestCoxSnellBelowOne(t *testing.T) {
	got, err := CoxSnell(testLLFull, testLLNull, testN)
	if err != nil {
		t.Fatalf("CoxSnell() error = %v", err)
	}

	want := 1 - math.Exp(2*(testLLNull-testLLFull)/testN)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("CoxSnell() = %v, want %v", got, want)
	}

	// Even a perfect model (llFull = 0) cannot reach 1.
	perfect, err := CoxSnell(0, testLLNull, testN)
	if err != nil {
		t.Fatal(err)
	}
	if perfect >= 1 {
		t.Errorf("Cox-Snell is bounded below 1, got %v", perfect)
	}
}

func TestNagelkerkePerfectModelScoresOne(t *testing.T) {
	got, err := Nagelkerke(0, testLLNull, testN)
	if err != nil {
		t.Fatalf("Nagelkerke() error = %v", err)
	}
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("perfect model should score 1, got %v", got)
	}
}

func TestNagelkerkeDominatesCoxSnell(t *testing.T) {
	cs, err := CoxSnell(testLLFull, testLLNull, testN)
	if err != nil {
		t.Fatal(err)
	}
	nk, err := Nagelkerke(testLLFull, testLLNull, testN)
	if err != nil {
		t.Fatal(err)
	}

	if nk < cs {
		t.Errorf("Nagelkerke (%v) must be >= Cox-Snell (%v)", nk, cs)
	}
	if nk < 0 || nk > 1 {
		t.Errorf("Nagelkerke must lie in [0, 1], got %v", nk)
	}
}

func TestEfron(t *testing.T) {
	y := mat.NewVecDense(4, []float64{0, 0, 1, 1})

	perfect := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	got, err := Efron(y, perfect)
	if err != nil {
		t.Fatalf("Efron() error = %v", err)
	}
	if math.Abs(got-1) > 1e-12 {
		t.Errorf("perfect probabilities should score 1, got %v", got)
	}

	// Predicting the base rate everywhere scores 0.
	baseRate := mat.NewVecDense(4, []float64{0.5, 0.5, 0.5, 0.5})
	got, err = Efron(y, baseRate)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got) > 1e-12 {
		t.Errorf("base-rate probabilities should score 0, got %v", got)
	}
}

func TestEfronRejectsConstantLabels(t *testing.T) {
	y := mat.NewVecDense(3, []float64{1, 1, 1})
	p := mat.NewVecDense(3, []float64{0.9, 0.8, 0.7})

	if _, err := Efron(y, p); err == nil {
		t.Error("single-class labels should error")
	}
}

func TestTjur(t *testing.T) {
	y := mat.NewVecDense(6, []float64{0, 0, 0, 1, 1, 1})
	p := mat.NewVecDense(6, []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9})

	got, err := Tjur(y, p)
	if err != nil {
		t.Fatalf("Tjur() error = %v", err)
	}

	// mean(p | y=1) - mean(p | y=0) = 0.8 - 0.2
	if math.Abs(got-0.6) > 1e-12 {
		t.Errorf("Tjur() = %v, want 0.6", got)
	}
}

func TestTjurRequiresBothClasses(t *testing.T) {
	y := mat.NewVecDense(3, []float64{1, 1, 1})
	p := mat.NewVecDense(3, []float64{0.9, 0.8, 0.7})

	if _, err := Tjur(y, p); err == nil {
		t.Error("single-class labels should error")
	}
}

func TestTjurRejectsNonBinary(t *testing.T) {
	y := mat.NewVecDense(2, []float64{0, 2})
	p := mat.NewVecDense(2, []float64{0.1, 0.9})

	if _, err := Tjur(y, p); err == nil {
		t.Error("labels outside {0, 1} should error")
	}
}

func TestCountR2(t *testing.T) {
	y := mat.NewVecDense(5, []float64{0, 0, 1, 1, 1})
	p := mat.NewVecDense(5, []float64{0.2, 0.6, 0.8, 0.9, 0.4})

	got, err := CountR2(y, p)
	if err != nil {
		t.Fatalf("CountR2() error = %v", err)
	}

	// Correct at threshold 0.5: samples 0, 2, 3.
	if math.Abs(got-0.6) > 1e-12 {
		t.Errorf("CountR2() = %v, want 0.6", got)
	}
}

func TestCountR2DimensionMismatch(t *testing.T) {
	y := mat.NewVecDense(2, []float64{0, 1})
	p := mat.NewVecDense(3, []float64{0.1, 0.9, 0.5})

	if _, err := CountR2(y, p); err == nil {
		t.Error("mismatched lengths should error")
	}
}
