package project

import (
	"reflect"
	"testing"
)

func TestStore_SaveLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	want := Project{
		Name:        "churn",
		DatasetPath: "/data/churn.csv",
		Features:    []string{"Age", "Income"},
		Target:      "Churn",
		Algorithm:   "random_forest",
		Task:        "classification",
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load("churn")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.SavedAt.IsZero() {
		t.Error("save must stamp SavedAt")
	}
	got.SavedAt = want.SavedAt
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.Load("nope"); err == nil {
		t.Error("expected error for missing project")
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore(t.TempDir())

	names, err := store.List()
	if err != nil {
		t.Fatalf("list on empty store failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no projects, got %v", names)
	}

	for _, name := range []string{"beta", "alpha"} {
		if err := store.Save(Project{Name: name}); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
	}

	names, err = store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"alpha", "beta"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected sorted %v, got %v", want, names)
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Delete("missing"); err != nil {
		t.Errorf("deleting a missing project must be a no-op: %v", err)
	}

	if err := store.Save(Project{Name: "tmp"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete("tmp"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Load("tmp"); err == nil {
		t.Error("expected load to fail after delete")
	}
}

func TestStore_RejectsBadNames(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, name := range []string{"", "../escape", "a/b", `a\b`} {
		if err := store.Save(Project{Name: name}); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}
