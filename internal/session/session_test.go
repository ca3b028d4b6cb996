package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evrenbal/mlforge/internal/backend"
)

func newTestSession(t *testing.T, handler http.Handler) (*Session, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := backend.New(server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return New(client), server
}

func TestShape(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shape" {
			t.Errorf("expected /shape, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"rows": 150, "columns": 5}`))
	}))

	shape, err := sess.Shape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shape.Rows != 150 || shape.Columns != 5 {
		t.Errorf("unexpected shape: %+v", shape)
	}
}

func TestShape_MissingFields(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rows": 150}`))
	}))

	_, err := sess.Shape(context.Background())
	if err == nil {
		t.Fatal("expected validation error for missing columns field")
	}
	if !backend.IsRemoteError(err) {
		t.Errorf("schema violations must surface as remote errors, got %v", err)
	}
}

func TestColumnTypes(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns": [
			{"name": "Age", "current_type": "int64", "suggested_type": "int64"},
			{"name": "City", "current_type": "object", "suggested_type": "category"}
		]}`))
	}))

	cols, err := sess.ColumnTypes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(cols))
	}
	if cols[0].Name != "Age" || cols[0].CurrentType != "int64" {
		t.Errorf("unexpected first column: %+v", cols[0])
	}
}

func TestColumnTypes_RejectsMissingName(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns": [{"current_type": "int64"}]}`))
	}))

	if _, err := sess.ColumnTypes(context.Background()); err == nil {
		t.Fatal("expected validation error for column entry without name")
	}
}

// Read accessors must not memoize: two consecutive fetches are two
// network requests.
func TestAccessors_NoMemoization(t *testing.T) {
	var calls int32
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"rows": 1, "columns": 1}`))
	}))

	ctx := context.Background()
	if _, err := sess.Shape(ctx); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if _, err := sess.Shape(ctx); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected 2 network requests for 2 fetches, got %d", n)
	}
}

func TestHead(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("n"); got != "3" {
			t.Errorf("expected n=3, got n=%s", got)
		}
		_, _ = w.Write([]byte(`{"columns": ["a", "b"], "data": [{"a": 1, "b": 2}]}`))
	}))

	win, err := sess.Head(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(win.Columns) != 2 || len(win.Rows) != 1 {
		t.Errorf("unexpected window: %+v", win)
	}
}

func TestMissingValues(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"columns": ["Age"], "data": [{"column": "Age", "missing_count": 7}]}`))
	}))

	missing, err := sess.MissingValues(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 1 || missing[0].MissingCount != 7 {
		t.Errorf("unexpected report: %+v", missing)
	}
}

func TestColumnValues_SingleColumn(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"values": [1, 2, 3]}`))
	}))

	vals, err := sess.ColumnValues(context.Background(), "Age", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals.First) != 3 {
		t.Errorf("expected 3 values, got %+v", vals)
	}
}

// While a mutation for one column is pending, re-invoking it for the
// same column must be a no-op with no second network call; mutations
// for other columns proceed normally.
func TestMutationLock_PerColumn(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		_, _ = w.Write([]byte(`{"message": "handled"}`))
	}))

	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := sess.HandleMissing(ctx, "Age", ImputeMean); err != nil {
			t.Errorf("first mutation failed: %v", err)
		}
	}()

	// Wait for the first request to be in flight.
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first mutation never reached the server")
		}
		time.Sleep(time.Millisecond)
	}

	applied, err := sess.HandleMissing(ctx, "Age", ImputeMean)
	if err != nil {
		t.Fatalf("duplicate mutation errored instead of no-op: %v", err)
	}
	if applied {
		t.Error("duplicate mutation for a pending column must be a no-op")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 network call while pending, got %d", n)
	}

	// A different column proceeds during the same window.
	var wg2 sync.WaitGroup
	wg2.Add(1)
	go func() {
		defer wg2.Done()
		applied, err := sess.HandleMissing(ctx, "Income", ImputeMedian)
		if err != nil {
			t.Errorf("different-column mutation failed: %v", err)
		}
		if !applied {
			t.Error("different-column mutation must not be blocked")
		}
	}()

	for atomic.LoadInt32(&calls) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("different-column mutation never reached the server")
		}
		time.Sleep(time.Millisecond)
	}

	close(release)
	wg.Wait()
	wg2.Wait()

	// After settlement the column is mutable again.
	applied, err = sess.HandleMissing(ctx, "Age", ImputeMean)
	if err != nil {
		t.Fatalf("post-settlement mutation failed: %v", err)
	}
	if !applied {
		t.Error("expected mutation to proceed after the previous one settled")
	}
}

func TestSplit_Preconditions(t *testing.T) {
	var calls int32
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	ctx := context.Background()

	_, err := sess.Split(ctx, SplitRequest{Target: "c"})
	if !backend.IsPreconditionError(err) {
		t.Errorf("expected precondition error for empty features, got %v", err)
	}

	_, err = sess.Split(ctx, SplitRequest{Features: []string{"a"}})
	if !backend.IsPreconditionError(err) {
		t.Errorf("expected precondition error for empty target, got %v", err)
	}

	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("precondition failures must not touch the network, got %d calls", n)
	}
}

func TestSplit(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/preprocess/split" {
			t.Errorf("expected /preprocess/split, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"X_train": [{"a": 1, "b": 2}], "X_test": [{"a": 3, "b": 4}],
			"y_train": [0], "y_test": [1],
			"train_size": 1, "test_size": 1
		}`))
	}))

	result, err := sess.Split(context.Background(), SplitRequest{
		Features:    []string{"a", "b"},
		Target:      "c",
		TestSize:    0.2,
		RandomState: 42,
		Shuffle:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TrainSize != 1 || result.TestSize != 1 {
		t.Errorf("unexpected sizes: %+v", result)
	}
	if result.XTrain[0]["a"] != 1 {
		t.Errorf("unexpected X_train: %+v", result.XTrain)
	}
}

func TestEvaluate(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"metrics": {
			"accuracy": 0.95, "precision": 0.93, "recall": 0.94, "f1": 0.935,
			"confusion_matrix": [[45, 5], [3, 47]],
			"predictions": [0, 1], "actual": [0, 1]
		}}`))
	}))

	metrics, err := sess.Evaluate(context.Background(), [][]float64{{1, 2}}, []float64{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.Accuracy != 0.95 {
		t.Errorf("unexpected accuracy: %v", metrics.Accuracy)
	}
	if len(metrics.ConfusionMatrix) != 2 {
		t.Errorf("unexpected confusion matrix: %+v", metrics.ConfusionMatrix)
	}
}

func TestPredict(t *testing.T) {
	sess, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions": [0.72], "samples_predicted": 1}`))
	}))

	result, err := sess.Predict(context.Background(), [][]float64{{30, 52000}}, []string{"Age", "Income"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SamplesPredicted != 1 || len(result.Predictions) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}
