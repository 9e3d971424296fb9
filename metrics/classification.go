package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/aviary-ml/aviary/pkg/errors"
)

// Accuracy computes the fraction of exactly matching labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix computes the binary confusion counts for 0/1 labels,
// returned as [[TN, FP], [FN, TP]].
func ConfusionMatrix(yTrue, yPred *mat.VecDense) ([2][2]int, error) {
	var cm [2][2]int

	n := yTrue.Len()
	if n == 0 {
		return cm, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return cm, errors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}

	for i := 0; i < n; i++ {
		t := yTrue.AtVec(i)
		p := yPred.AtVec(i)
		if (t != 0 && t != 1) || (p != 0 && p != 1) {
			return cm, errors.NewValueError("ConfusionMatrix", "labels must be 0 or 1")
		}
		cm[int(t)][int(p)]++
	}

	return cm, nil
}
