// Package session exposes typed read and mutation operations against
// the server-held dataset session. Accessors never cache: every call
// re-hits the network and returns a fresh snapshot. Mutators guard
// against duplicate in-flight requests for the same column but place
// no further ordering constraints.
package session

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"

	"github.com/evrenbal/mlforge/internal/backend"
)

// Session wraps the gateway client with the dataset/model operation
// surface. A Session holds no dataset state of its own; the backend
// owns the single mutable dataset.
type Session struct {
	client *backend.Client

	mu       sync.Mutex
	inflight map[string]bool
}

// New creates a session on top of a gateway client.
func New(client *backend.Client) *Session {
	return &Session{
		client:   client,
		inflight: make(map[string]bool),
	}
}

// Load uploads a dataset file, replacing the server-side session.
func (s *Session) Load(ctx context.Context, filename string, r io.Reader) error {
	return s.client.Upload(ctx, "/load", "file", filename, r, nil)
}

// Shape fetches the dataset dimensions.
func (s *Session) Shape(ctx context.Context) (Shape, error) {
	var resp struct {
		Rows    *int `json:"rows"`
		Columns *int `json:"columns"`
	}
	if err := s.client.Get(ctx, "/shape", &resp); err != nil {
		return Shape{}, err
	}
	if resp.Rows == nil || resp.Columns == nil {
		return Shape{}, backend.NewValidationError("/shape", "response missing rows/columns")
	}
	return Shape{Rows: *resp.Rows, Columns: *resp.Columns}, nil
}

// ColumnTypes fetches the per-column dtype report.
func (s *Session) ColumnTypes(ctx context.Context) ([]ColumnType, error) {
	var resp columnTypesResponse
	if err := s.client.Get(ctx, "/column-types", &resp); err != nil {
		return nil, err
	}
	if resp.Columns == nil {
		return nil, backend.NewValidationError("/column-types", "response missing columns")
	}
	for _, col := range resp.Columns {
		if col.Name == "" || col.CurrentType == "" {
			return nil, backend.NewValidationError("/column-types", "column entry missing name or current_type")
		}
	}
	return resp.Columns, nil
}

// NumericColumns fetches the numeric column subset with value ranges.
func (s *Session) NumericColumns(ctx context.Context) (map[string]NumericRange, error) {
	var resp numericColumnsResponse
	if err := s.client.Get(ctx, "/preprocess/numerical-columns", &resp); err != nil {
		return nil, err
	}
	if resp.Columns == nil {
		return nil, backend.NewValidationError("/preprocess/numerical-columns", "response missing columns")
	}
	return resp.Columns, nil
}

// CategoricalColumns fetches the categorical column subset with their
// distinct values.
func (s *Session) CategoricalColumns(ctx context.Context) (map[string][]string, error) {
	var resp categoricalColumnsResponse
	if err := s.client.Get(ctx, "/preprocess/categorical-columns", &resp); err != nil {
		return nil, err
	}
	if resp.Columns == nil {
		return nil, backend.NewValidationError("/preprocess/categorical-columns", "response missing columns")
	}
	return resp.Columns, nil
}

// MissingValues fetches per-column missing-value counts.
func (s *Session) MissingValues(ctx context.Context) ([]MissingCount, error) {
	var resp missingResponse
	if err := s.client.Get(ctx, "/missing", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, backend.NewValidationError("/missing", "response missing data")
	}
	return resp.Data, nil
}

// Head fetches the first n rows.
func (s *Session) Head(ctx context.Context, n int) (RowWindow, error) {
	return s.rowWindow(ctx, fmt.Sprintf("/head?n=%d", n))
}

// Tail fetches the last n rows.
func (s *Session) Tail(ctx context.Context, n int) (RowWindow, error) {
	return s.rowWindow(ctx, fmt.Sprintf("/tail?n=%d", n))
}

func (s *Session) rowWindow(ctx context.Context, path string) (RowWindow, error) {
	var win RowWindow
	if err := s.client.Get(ctx, path, &win); err != nil {
		return RowWindow{}, err
	}
	if win.Columns == nil {
		return RowWindow{}, backend.NewValidationError(path, "response missing columns")
	}
	return win, nil
}

// Describe fetches the summary-statistics table.
func (s *Session) Describe(ctx context.Context) (Description, error) {
	var desc Description
	if err := s.client.Get(ctx, "/describe", &desc); err != nil {
		return Description{}, err
	}
	if desc.Columns == nil || desc.Index == nil {
		return Description{}, backend.NewValidationError("/describe", "response missing columns/index")
	}
	return desc, nil
}

// Info fetches the per-column dtype/null-count report.
func (s *Session) Info(ctx context.Context) ([]ColumnInfo, error) {
	var resp infoResponse
	if err := s.client.Get(ctx, "/info", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, backend.NewValidationError("/info", "response missing data")
	}
	return resp.Data, nil
}

// ColumnValues fetches raw values for one or two columns, for
// charting.
func (s *Session) ColumnValues(ctx context.Context, column1, column2 string) (ColumnValues, error) {
	q := url.Values{}
	q.Set("column1", column1)
	if column2 != "" {
		q.Set("column2", column2)
	}
	path := "/preprocess/get-columns?" + q.Encode()
	var vals ColumnValues
	if err := s.client.Get(ctx, path, &vals); err != nil {
		return ColumnValues{}, err
	}
	// Single-column responses arrive under "values".
	if vals.First == nil && vals.Values != nil {
		vals.First = vals.Values
		vals.Values = nil
	}
	if vals.First == nil {
		return ColumnValues{}, backend.NewValidationError(path, "response missing column values")
	}
	return vals, nil
}

// DeleteColumn removes a column from the dataset. Returns false when
// another mutation for the same column is still in flight; the call is
// then a no-op with no network request.
func (s *Session) DeleteColumn(ctx context.Context, column string) (bool, error) {
	return s.mutate(ctx, column, "/preprocess/delete-column", map[string]string{
		"column": column,
	})
}

// UpdateColumnType casts a column to a new dtype.
func (s *Session) UpdateColumnType(ctx context.Context, column, dtype string) (bool, error) {
	return s.mutate(ctx, column, "/update-type", map[string]string{
		"column": column,
		"dtype":  dtype,
	})
}

// HandleMissing imputes or removes missing values in a column.
// Repeating the call against an already-clean column is safe; the
// server treats it as a no-op.
func (s *Session) HandleMissing(ctx context.Context, column string, method ImputeMethod) (bool, error) {
	return s.mutate(ctx, column, "/preprocess/handle-missing-values", map[string]string{
		"column": column,
		"method": string(method),
	})
}

// Encode applies a categorical encoding to a column.
func (s *Session) Encode(ctx context.Context, column string, method EncodeMethod) (bool, error) {
	return s.mutate(ctx, column, "/preprocess/encode", map[string]string{
		"column": column,
		"method": string(method),
	})
}

// ScaleParams carries optional method parameters, e.g. minmax bounds.
type ScaleParams struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Scale applies a scaling method to one or more numeric columns. All
// named columns are guarded as one unit: if any of them has a mutation
// in flight the whole call is a no-op.
func (s *Session) Scale(ctx context.Context, columns []string, method ScaleMethod, params *ScaleParams) (bool, error) {
	if len(columns) == 0 {
		return false, backend.NewPreconditionError("No columns selected for scaling.")
	}

	keys := make([]string, len(columns))
	copy(keys, columns)
	sort.Strings(keys)

	if !s.tryAcquireAll(keys) {
		return false, nil
	}
	defer s.releaseAll(keys)

	body := map[string]any{
		"columns": columns,
		"method":  string(method),
	}
	if params != nil {
		body["params"] = params
	}
	if err := s.client.Post(ctx, "/preprocess/scale", body, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Split materializes a train/test split server-side and returns it.
func (s *Session) Split(ctx context.Context, req SplitRequest) (SplitResult, error) {
	if len(req.Features) == 0 {
		return SplitResult{}, backend.NewPreconditionError("No features selected. Please select features first.")
	}
	if req.Target == "" {
		return SplitResult{}, backend.NewPreconditionError("No target selected. Please select a target variable first.")
	}

	var result SplitResult
	if err := s.client.Post(ctx, "/preprocess/split", req, &result); err != nil {
		return SplitResult{}, err
	}
	if result.XTrain == nil || result.YTrain == nil {
		return SplitResult{}, backend.NewValidationError("/preprocess/split", "response missing X_train/y_train")
	}
	return result, nil
}

// InitModel initializes a model server-side.
func (s *Session) InitModel(ctx context.Context, algorithm string, task TaskType, params map[string]any) error {
	body := map[string]any{
		"algorithm":  algorithm,
		"model_type": string(task),
	}
	if params != nil {
		body["params"] = params
	}
	return s.client.Post(ctx, "/model/init", body, nil)
}

// Train fits the initialized model on the given matrix.
func (s *Session) Train(ctx context.Context, x [][]float64, y []float64, features []string) (TrainResult, error) {
	var result TrainResult
	err := s.client.Post(ctx, "/model/train", map[string]any{
		"X_train":  x,
		"y_train":  y,
		"features": features,
	}, &result)
	return result, err
}

// Evaluate scores the trained model on the test matrix.
func (s *Session) Evaluate(ctx context.Context, x [][]float64, y []float64) (Metrics, error) {
	var resp evaluateResponse
	err := s.client.Post(ctx, "/model/evaluate", map[string]any{
		"X_test": x,
		"y_test": y,
	}, &resp)
	if err != nil {
		return Metrics{}, err
	}
	if resp.Metrics == nil {
		return Metrics{}, backend.NewValidationError("/model/evaluate", "response missing metrics")
	}
	return *resp.Metrics, nil
}

// Predict runs the trained model on feature rows.
func (s *Session) Predict(ctx context.Context, rows [][]float64, features []string) (PredictResult, error) {
	var result PredictResult
	err := s.client.Post(ctx, "/model/predict", map[string]any{
		"features":      rows,
		"feature_names": features,
	}, &result)
	if err != nil {
		return PredictResult{}, err
	}
	if result.Predictions == nil {
		return PredictResult{}, backend.NewValidationError("/model/predict", "response missing predictions")
	}
	return result, nil
}

// mutate runs a column-keyed mutation under the in-flight guard.
func (s *Session) mutate(ctx context.Context, key, path string, body any) (bool, error) {
	if !s.tryAcquire(key) {
		return false, nil
	}
	defer s.release(key)

	if err := s.client.Post(ctx, path, body, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) tryAcquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

func (s *Session) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

// tryAcquireAll acquires every key or none.
func (s *Session) tryAcquireAll(keys []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if s.inflight[key] {
			return false
		}
	}
	for _, key := range keys {
		s.inflight[key] = true
	}
	return true
}

func (s *Session) releaseAll(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.inflight, key)
	}
}
