package session

// Shape is the dataset's row/column counts.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// ColumnType describes one column's current dtype and the server's
// suggestion for a better one.
type ColumnType struct {
	Name          string `json:"name"`
	CurrentType   string `json:"current_type"`
	SuggestedType string `json:"suggested_type,omitempty"`
}

// columnTypesResponse is the wire shape of /column-types.
type columnTypesResponse struct {
	Columns []ColumnType `json:"columns"`
}

// NumericRange is the observed value range of a numeric column.
type NumericRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// numericColumnsResponse is the wire shape of
// /preprocess/numerical-columns.
type numericColumnsResponse struct {
	Columns map[string]NumericRange `json:"columns"`
}

// categoricalColumnsResponse is the wire shape of
// /preprocess/categorical-columns: column name to distinct values.
type categoricalColumnsResponse struct {
	Columns map[string][]string `json:"columns"`
}

// MissingCount reports how many values are absent in one column.
type MissingCount struct {
	Column       string `json:"column"`
	MissingCount int    `json:"missing_count"`
}

// missingResponse is the wire shape of /missing.
type missingResponse struct {
	Columns []string       `json:"columns"`
	Data    []MissingCount `json:"data"`
}

// RowWindow is a head or tail slice of the dataset: ordered column
// names plus one map per row.
type RowWindow struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"data"`
}

// Description is the dataset's summary statistics: one row per
// statistic (count, mean, std, ...), one map entry per column.
type Description struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"data"`
	Index   []string         `json:"index"`
}

// ColumnInfo is one row of the /info report.
type ColumnInfo struct {
	Column       string `json:"column"`
	DType        string `json:"dtype"`
	NonNullCount int    `json:"non_null_count"`
	MemoryUsage  int    `json:"memory_usage"`
}

// infoResponse is the wire shape of /info.
type infoResponse struct {
	Columns []string     `json:"columns"`
	Data    []ColumnInfo `json:"data"`
}

// ColumnValues carries raw column data for charting; Second is empty
// for single-column requests.
type ColumnValues struct {
	First  []any `json:"column1"`
	Second []any `json:"column2,omitempty"`
	Values []any `json:"values,omitempty"`
}

// SplitRequest parametrizes a train/test split.
type SplitRequest struct {
	Features    []string `json:"features"`
	Target      string   `json:"target"`
	TestSize    float64  `json:"test_size"`
	RandomState int      `json:"random_state"`
	Shuffle     bool     `json:"shuffle"`
	Stratify    bool     `json:"stratify"`
}

// SplitResult is the materialized split as returned by the server:
// feature rows keyed by column name plus target vectors.
type SplitResult struct {
	XTrain    []map[string]float64 `json:"X_train"`
	XTest     []map[string]float64 `json:"X_test"`
	YTrain    []float64            `json:"y_train"`
	YTest     []float64            `json:"y_test"`
	TrainSize int                  `json:"train_size"`
	TestSize  int                  `json:"test_size"`
}

// TrainResult reports a completed training run.
type TrainResult struct {
	TrainingSamples int `json:"training_samples"`
	FeatureCount    int `json:"features_shape"`
}

// Metrics is the evaluation report. Classification fills accuracy/
// precision/recall/F1 and the confusion matrix; regression fills MSE
// and R2. Predictions and actuals are returned for charting.
type Metrics struct {
	Accuracy        float64   `json:"accuracy,omitempty"`
	Precision       float64   `json:"precision,omitempty"`
	Recall          float64   `json:"recall,omitempty"`
	F1              float64   `json:"f1,omitempty"`
	MSE             float64   `json:"mse,omitempty"`
	R2              float64   `json:"r2,omitempty"`
	ConfusionMatrix [][]int   `json:"confusion_matrix,omitempty"`
	Predictions     []float64 `json:"predictions,omitempty"`
	Actual          []float64 `json:"actual,omitempty"`
}

// evaluateResponse is the wire shape of /model/evaluate.
type evaluateResponse struct {
	Metrics *Metrics `json:"metrics"`
}

// PredictResult is the wire shape of /model/predict.
type PredictResult struct {
	Predictions      []float64 `json:"predictions"`
	SamplesPredicted int       `json:"samples_predicted"`
}

// ImputeMethod selects a missing-value strategy.
type ImputeMethod string

const (
	ImputeMean   ImputeMethod = "mean"
	ImputeMedian ImputeMethod = "median"
	ImputeMode   ImputeMethod = "mode"
	ImputeRemove ImputeMethod = "remove"
)

// EncodeMethod selects a categorical encoding strategy.
type EncodeMethod string

const (
	EncodeLabel     EncodeMethod = "label"
	EncodeOneHot    EncodeMethod = "onehot"
	EncodeBinary    EncodeMethod = "binary"
	EncodeFrequency EncodeMethod = "frequency"
	EncodeTarget    EncodeMethod = "target"
)

// ScaleMethod selects a numeric scaling strategy.
type ScaleMethod string

const (
	ScaleMinMax     ScaleMethod = "minmax"
	ScaleStandard   ScaleMethod = "standard"
	ScaleRobust     ScaleMethod = "robust"
	ScaleNormalizer ScaleMethod = "normalizer"
	ScaleQuantile   ScaleMethod = "quantile"
)

// TaskType distinguishes classification from regression.
type TaskType string

const (
	TaskClassification TaskType = "classification"
	TaskRegression     TaskType = "regression"
)
