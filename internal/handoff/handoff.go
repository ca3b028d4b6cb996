// Package handoff persists the materialized train/test split between
// pipeline stages. The store is a single fixed slot: a new split
// silently replaces the old one, and consumers that already copied the
// old artifact are not notified.
package handoff

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const artifactFile = "split.json"

// Artifact is the split output the training, testing, and prediction
// stages consume.
type Artifact struct {
	XTrain    []map[string]float64 `json:"X_train"`
	XTest     []map[string]float64 `json:"X_test"`
	YTrain    []float64            `json:"y_train"`
	YTest     []float64            `json:"y_test"`
	Features  []string             `json:"features"`
	Target    string               `json:"target"`
	CreatedAt time.Time            `json:"created_at"`
}

// Empty reports whether the artifact carries no split at all.
func (a Artifact) Empty() bool {
	return len(a.XTrain) == 0 && len(a.XTest) == 0 &&
		len(a.YTrain) == 0 && len(a.YTest) == 0
}

// TrainReady reports whether the artifact carries usable training data.
func (a Artifact) TrainReady() bool {
	return len(a.XTrain) > 0 && len(a.YTrain) > 0
}

// TestReady reports whether the artifact carries usable test data.
func (a Artifact) TestReady() bool {
	return len(a.XTest) > 0 && len(a.YTest) > 0
}

// Complete reports whether both halves of the split are present.
func (a Artifact) Complete() bool {
	return a.TrainReady() && a.TestReady()
}

// TrainMatrix flattens X_train into a row matrix ordered by the
// artifact's feature list.
func (a Artifact) TrainMatrix() [][]float64 {
	return matrix(a.XTrain, a.Features)
}

// TestMatrix flattens X_test into a row matrix ordered by the
// artifact's feature list.
func (a Artifact) TestMatrix() [][]float64 {
	return matrix(a.XTest, a.Features)
}

func matrix(rows []map[string]float64, features []string) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(features))
		for j, f := range features {
			vec[j] = row[f]
		}
		out[i] = vec
	}
	return out
}

// Store reads and writes the split artifact under a state directory.
type Store struct {
	path string
}

// NewStore creates a store rooted at dir. The directory is created on
// the first Save.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, artifactFile)}
}

// Path returns the artifact file location.
func (s *Store) Path() string {
	return s.path
}

// Save overwrites the stored artifact.
func (s *Store) Save(a Artifact) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode split artifact: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write split artifact: %w", err)
	}
	return nil
}

// Load returns the stored artifact. A missing file is not an error; it
// yields the empty artifact so consumers can gate on TrainReady or
// TestReady instead of handling file-system details.
func (s *Store) Load() (Artifact, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Artifact{}, nil
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to read split artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("failed to decode split artifact: %w", err)
	}
	return a, nil
}

// Clear removes the stored artifact. Clearing an empty store is a
// no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove split artifact: %w", err)
	}
	return nil
}
