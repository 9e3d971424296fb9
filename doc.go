// Package aviary provides statistical learning components for Go, together
// with a batch pipeline for fetching bird-sound recordings and extracting
// spectral features from them.
//
// The library follows a scikit-learn-like estimator design: models expose
// Fit, Predict and Score over gonum matrices, configuration is done through
// functional options, and fitted state is tracked explicitly so calling
// Predict on an untrained model returns an error instead of garbage.
//
// # Packages
//
//   - dataset: synthetic data simulation and CSV ingestion
//   - preprocessing: one-hot encoding of categorical variables, scaling
//   - linear: ordinary least squares, ridge, lasso and gradient descent
//   - logistic: binary logistic regression
//   - metrics: regression metrics, classification metrics and the
//     pseudo-R² family for logistic models
//   - audio: WAV decoding, STFT and spectral/chroma/MFCC features
//   - xenocanto: client for the xeno-canto recording catalog
//   - pipeline: parallel download and feature-extraction batch jobs
//
// # Quick start
//
//	X, y, _, err := dataset.MakeRegression(200, 3, dataset.WithSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg := linear.NewRegression()
//	if err := reg.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	r2, _ := reg.Score(X, y)
//	fmt.Printf("R² = %.3f\n", r2)
package aviary
