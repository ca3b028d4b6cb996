// Package project saves and restores named workbench projects. A
// project bundles the dataset location, the current selection, and the
// chosen model so a pipeline can be resumed in a later session.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Project is the persisted workbench state.
type Project struct {
	Name        string    `json:"name"`
	DatasetPath string    `json:"dataset_path,omitempty"`
	Features    []string  `json:"features,omitempty"`
	Target      string    `json:"target,omitempty"`
	Algorithm   string    `json:"algorithm,omitempty"`
	Task        string    `json:"task,omitempty"`
	SplitPath   string    `json:"split_path,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store reads and writes project files under a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on
// the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the project under its name, overwriting any previous
// save with the same name.
func (s *Store) Save(p Project) error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	p.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.WriteFile(s.path(p.Name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	return nil
}

// Load reads the named project.
func (s *Store) Load(name string) (Project, error) {
	if err := validateName(name); err != nil {
		return Project{}, err
	}

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return Project{}, fmt.Errorf("project %q not found", name)
	}
	if err != nil {
		return Project{}, fmt.Errorf("failed to read project: %w", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("failed to decode project: %w", err)
	}
	return p, nil
}

// List returns the names of all saved projects, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			names = append(names, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named project. Deleting a missing project is not
// an error.
func (s *Store) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("project name is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid project name %q", name)
	}
	return nil
}
