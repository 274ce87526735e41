// Package log defines standard attribute keys for model loading and inference.
//
// The keys follow a hierarchical naming convention (e.g. "model.booster",
// "data.features") so that log pipelines can filter on them.
package log

// Model and Operation Context
const (
	// ObjectiveKey is the objective name decoded from the model,
	// e.g. "binary:logistic", "multi:softprob".
	ObjectiveKey = "model.objective"

	// BoosterKey is the booster kind decoded from the model:
	// "gbtree", "gblinear" or "dart".
	BoosterKey = "model.booster"

	// NumTreesKey is the number of trees in a tree ensemble.
	NumTreesKey = "model.num_trees"

	// NumGroupsKey is the number of output groups (1 for binary/regression).
	NumGroupsKey = "model.num_groups"

	// BaseScoreKey is the global bias added to every raw score.
	BaseScoreKey = "model.base_score"

	// DialectKey is the header dialect of the binary model ("binf" or "legacy").
	DialectKey = "model.dialect"

	// SourceKey identifies where a model was loaded from, typically a file path.
	SourceKey = "model.source"

	// OperationKey specifies the operation being performed.
	// Standard values: "load", "predict", "predict_leaf"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	// Examples: "xgboost.predictor", "gbm.gbtree", "cli"
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// SamplesKey is the number of rows in a batch.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features of the model or the batch.
	FeaturesKey = "data.features"

	// BytesKey is the number of bytes consumed from a stream.
	BytesKey = "data.bytes"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// WorkersKey records how many goroutines served a batch.
	WorkersKey = "perf.workers"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Standard values for operation keys
const (
	OperationLoad        = "load"
	OperationPredict     = "predict"
	OperationPredictLeaf = "predict_leaf"
	OperationDump        = "dump"
	OperationRender      = "render"
)
