/*
Package xgboost loads gradient boosted models saved in XGBoost's legacy binary
format and predicts with them, without linking the XGBoost library.

Three boosters are supported: "gbtree", its dropout-weighted variant "dart",
and "gblinear". The objective stored in the model selects the output
transform: identity for regression and ranking, sigmoid for binary:logistic,
arg-max for multi:softmax and softmax for multi:softprob.

# Basic usage

	p, err := xgboost.LoadFromFile("model.bin")
	if err != nil {
	    return err
	}
	prob, err := p.PredictSingle(fvec.Sparse{0: 0.2, 3: 1}, false, 0)

# Batch prediction

PredictBatch scores the rows of a gonum matrix concurrently; NaN cells are
treated as missing features and row i of the result matches row i of the input.

	X := mat.NewDense(rows, cols, data)
	preds, err := p.PredictBatch(X, false, 0)

# Errors

Decoding failures are returned as the structured types of pkg/errors
(TruncatedError, UnsupportedBoosterError, UnsupportedObjectiveError,
InvalidUTF8Error, StructuralError, UnsupportedFormatError) and can be
matched with errors.Is against the package sentinels.
*/
package xgboost
