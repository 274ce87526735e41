// Package xgbpredictor reads models saved in XGBoost's legacy binary format
// and predicts with them in pure Go, without cgo or the XGBoost library.
//
// The module is split by layer:
//
//   - xgboost: Load, Predict, PredictSingle, PredictLeaf and batch prediction over gonum matrices
//   - xgboost/gbm: the gbtree, dart and gblinear boosters, text dumps and graphviz rendering
//   - xgboost/objective: output transforms selected by objective name
//   - xgboost/fvec: dense, sparse and matrix-row feature vectors
//   - xgboost/modelreader: little-endian primitive reads with truncation errors
//   - metrics: evaluation metrics for scored data
//   - cmd/xgbpredict: a command line tool wrapping all of the above
//
// # Quick Start
//
//	p, err := xgboost.LoadFromFile("model.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	preds, err := p.Predict(fvec.Sparse{0: 0.3, 4: 1}, false, 0)
//
// Features absent from a sparse vector, and NaN cells of a dense one, are
// missing and follow each split's default direction.
//
// # Batch prediction
//
//	X := mat.NewDense(rows, cols, data)
//	out, err := p.PredictBatch(X, false, 0)
//
// Rows are scored concurrently; row i of out always belongs to row i of X.
// WithWorkers and WithParallelThreshold tune the fan-out.
//
// # Error Handling
//
// Decoding failures carry a type per cause and match sentinels with errors.Is:
//
//	_, err := xgboost.LoadFromFile("model.bin")
//	if errors.Is(err, errors.ErrTruncated) {
//	    // the file ended early
//	}
//
// See pkg/errors for the full list.
package xgbpredictor
