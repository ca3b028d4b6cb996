package backend

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// recordingBus counts broadcasts so tests can assert the exactly-0-or-1
// cardinality contract.
type recordingBus struct {
	mu       sync.Mutex
	messages []string
}

func (b *recordingBus) Broadcast(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, text)
}

func (b *recordingBus) all() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.messages))
	copy(out, b.messages)
	return out
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *recordingBus, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	bus := &recordingBus{}
	client, err := New(server.URL, bus)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client, bus, server
}

func TestClient_BroadcastsServerMessage(t *testing.T) {
	client, bus, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "Dataset loaded successfully"}`))
	}))

	if err := client.Get(context.Background(), "/load", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := bus.all()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly 1 broadcast, got %d: %v", len(msgs), msgs)
	}
	if msgs[0] != "Dataset loaded successfully" {
		t.Errorf("expected verbatim server message, got %q", msgs[0])
	}
}

func TestClient_NoMessageNoBroadcast(t *testing.T) {
	client, bus, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows": 100, "columns": 5}`))
	}))

	var shape struct {
		Rows    int `json:"rows"`
		Columns int `json:"columns"`
	}
	if err := client.Get(context.Background(), "/shape", &shape); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shape.Rows != 100 || shape.Columns != 5 {
		t.Errorf("unexpected decode: %+v", shape)
	}

	if n := len(bus.all()); n != 0 {
		t.Errorf("expected 0 broadcasts for a silent response, got %d", n)
	}
}

func TestClient_RemoteErrorPrefersServerString(t *testing.T) {
	client, bus, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Column Age not found"}`))
	}))

	err := client.Post(context.Background(), "/preprocess/delete-column", map[string]string{"column": "Age"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRemoteError(err) {
		t.Fatalf("expected remote error, got %v", err)
	}

	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *backend.Error, got %T", err)
	}
	if be.Message != "Column Age not found" {
		t.Errorf("expected verbatim server error, got %q", be.Message)
	}
	if be.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", be.StatusCode)
	}

	msgs := bus.all()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly 1 broadcast on failure, got %d: %v", len(msgs), msgs)
	}
	if msgs[0] != "Column Age not found" {
		t.Errorf("expected broadcast to match the reported error, got %q", msgs[0])
	}
}

func TestClient_RemoteErrorGenericFallback(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{}`))
	}))

	err := client.Get(context.Background(), "/shape", nil)
	var be *Error
	if !errors.As(err, &be) {
		t.Fatalf("expected *backend.Error, got %T", err)
	}
	if be.Message != "request failed with status 502" {
		t.Errorf("expected status-derived message, got %q", be.Message)
	}
}

func TestClient_MessageAndFailureSingleBroadcast(t *testing.T) {
	// A failing response that still carries a message field must
	// produce exactly one broadcast, never two.
	client, bus, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "validation ran", "error": "Column name is required"}`))
	}))

	err := client.Post(context.Background(), "/preprocess/encode", map[string]string{}, nil)
	if !IsRemoteError(err) {
		t.Fatalf("expected remote error, got %v", err)
	}

	msgs := bus.all()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly 1 broadcast, got %d: %v", len(msgs), msgs)
	}
}

func TestClient_InBandErrorWithSuccessStatus(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Invalid encoding method"}`))
	}))

	err := client.Post(context.Background(), "/preprocess/encode", map[string]string{"column": "City", "method": "bogus"}, nil)
	if !IsRemoteError(err) {
		t.Fatalf("expected remote error for in-band error field, got %v", err)
	}
}

func TestClient_TransportError(t *testing.T) {
	bus := &recordingBus{}
	client, err := New("http://127.0.0.1:1", bus)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	callErr := client.Get(context.Background(), "/shape", nil)
	if callErr == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !IsTransportError(callErr) {
		t.Fatalf("expected transport error, got %v", callErr)
	}
	if n := len(bus.all()); n != 1 {
		t.Errorf("expected exactly 1 broadcast for transport failure, got %d", n)
	}
}

func TestClient_MalformedJSON(t *testing.T) {
	client, bus, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))

	err := client.Get(context.Background(), "/shape", nil)
	if !IsTransportError(err) {
		t.Fatalf("expected transport error for malformed body, got %v", err)
	}
	if n := len(bus.all()); n != 1 {
		t.Errorf("expected exactly 1 broadcast, got %d", n)
	}
}

func TestClient_UploadMultipart(t *testing.T) {
	client, bus, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "data.csv" {
			t.Errorf("expected filename data.csv, got %q", header.Filename)
		}
		_, _ = w.Write([]byte(`{"message": "Dataset loaded successfully"}`))
	}))

	err := client.Upload(context.Background(), "/load", "file", "data.csv",
		bytes.NewReader([]byte("a,b\n1,2\n")), nil)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if n := len(bus.all()); n != 1 {
		t.Errorf("expected 1 broadcast, got %d", n)
	}
}

func TestClient_NilBus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": "ok"}`))
	}))
	defer server.Close()

	client, err := New(server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := client.Get(context.Background(), "/load", nil); err != nil {
		t.Fatalf("nil bus must not panic or fail: %v", err)
	}
}

func TestClient_QueryStringReachesServer(t *testing.T) {
	var gotN, gotColumn string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/head":
			gotN = r.URL.Query().Get("n")
		case "/preprocess/get-columns":
			gotColumn = r.URL.Query().Get("column1")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))

	if err := client.Get(context.Background(), "/head?n=3", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotN != "3" {
		t.Errorf("expected n=3 to survive the join, server saw n=%q", gotN)
	}

	if err := client.Get(context.Background(), "/preprocess/get-columns?column1=species", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotColumn != "species" {
		t.Errorf("expected column1=species to survive the join, server saw column1=%q", gotColumn)
	}
}
