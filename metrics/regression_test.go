package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: []float64{1, 2, 3},
			yPred: []float64{1, 2, 3},
			want:  0,
		},
		{
			name:  "constant offset",
			yTrue: []float64{1, 2, 3, 4},
			yPred: []float64{2, 3, 4, 5},
			want:  1,
		},
		{
			name:  "mixed errors",
			yTrue: []float64{3, -0.5, 2, 7},
			yPred: []float64{2.5, 0.0, 2, 8},
			want:  0.375,
		},
		{
			name:    "empty vectors",
			yTrue:   []float64{},
			yPred:   []float64{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yT, yP := &mat.VecDense{}, &mat.VecDense{}
			if len(tt.yTrue) > 0 {
				yT = mat.NewVecDense(len(tt.yTrue), tt.yTrue)
				yP = mat.NewVecDense(len(tt.yPred), tt.yPred)
			}

			got, err := MSE(yT, yP)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MSE() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("MSE() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMSEDimensionMismatch(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(2, []float64{1, 2})

	if _, err := MSE(yTrue, yPred); err == nil {
		t.Error("mismatched lengths should error")
	}
}

func TestRMSE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{3, 4, 5, 6})

	got, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE() error = %v", err)
	}
	if math.Abs(got-2) > 1e-10 {
		t.Errorf("RMSE() = %v, want 2", got)
	}
}

func TestMAE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{3, -0.5, 2, 7})
	yPred := mat.NewVecDense(4, []float64{2.5, 0.0, 2, 8})

	got, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAE() error = %v", err)
	}
	if math.Abs(got-0.5) > 1e-10 {
		t.Errorf("MAE() = %v, want 0.5", got)
	}
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect fit",
			yTrue: []float64{1, 2, 3, 4},
			yPred: []float64{1, 2, 3, 4},
			want:  1,
		},
		{
			name:  "mean prediction scores zero",
			yTrue: []float64{1, 2, 3},
			yPred: []float64{2, 2, 2},
			want:  0,
		},
		{
			name:  "standard example",
			yTrue: []float64{3, -0.5, 2, 7},
			yPred: []float64{2.5, 0.0, 2, 8},
			want:  0.9486081370449679,
		},
		{
			name:    "constant target is undefined",
			yTrue:   []float64{5, 5, 5},
			yPred:   []float64{5, 5, 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yT := mat.NewVecDense(len(tt.yTrue), tt.yTrue)
			yP := mat.NewVecDense(len(tt.yPred), tt.yPred)

			got, err := R2Score(yT, yP)
			if (err != nil) != tt.wantErr {
				t.Fatalf("R2Score() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("R2Score() = %v, want %v", got, tt.want)
			}
		})
	}
}
