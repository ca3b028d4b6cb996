package selection

import (
	"context"
	"reflect"
	"testing"
)

func TestSetTarget_RemovesFromFeatures(t *testing.T) {
	s := NewStore()
	s.SetFeatures([]string{"Age", "Income", "City"})
	s.SetTarget("Income")

	if got := s.Target(); got != "Income" {
		t.Errorf("expected target Income, got %q", got)
	}
	want := []string{"Age", "City"}
	if got := s.Features(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected features %v, got %v", want, got)
	}
}

func TestSetFeatures_DropsCurrentTarget(t *testing.T) {
	s := NewStore()
	s.SetTarget("Churn")
	s.SetFeatures([]string{"Age", "Churn", "Income"})

	want := []string{"Age", "Income"}
	if got := s.Features(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected features %v, got %v", want, got)
	}
	if got := s.Target(); got != "Churn" {
		t.Errorf("target must survive a feature update, got %q", got)
	}
}

func TestSetFeatures_PreservesOrder(t *testing.T) {
	s := NewStore()
	s.SetFeatures([]string{"c", "a", "b"})

	want := []string{"c", "a", "b"}
	if got := s.Features(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected caller order %v, got %v", want, got)
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.SetFeatures([]string{"a", "b"})
	s.SetTarget("c")
	s.Clear()

	if len(s.Features()) != 0 || s.Target() != "" {
		t.Errorf("expected empty store, got features=%v target=%q", s.Features(), s.Target())
	}
}

func TestFeatures_ReturnsCopy(t *testing.T) {
	s := NewStore()
	s.SetFeatures([]string{"a", "b"})

	got := s.Features()
	got[0] = "mutated"

	if s.Features()[0] != "a" {
		t.Error("Features must return a copy, not the internal slice")
	}
}

func TestFromContext(t *testing.T) {
	s := NewStore()
	ctx := NewContext(context.Background(), s)

	if FromContext(ctx) != s {
		t.Error("expected the same store back from the context")
	}
}

func TestFromContext_PanicsOutsideScope(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when no store is on the context")
		}
	}()
	FromContext(context.Background())
}
