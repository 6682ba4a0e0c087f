package zruntime

import (
	"errors"
	"testing"
)

func TestInferenceMode_DepthBalanced(t *testing.T) {
	if InferenceDepth() != 0 {
		t.Fatalf("depth before = %d, want 0", InferenceDepth())
	}

	err := InferenceMode(func() error {
		if InferenceDepth() != 1 {
			t.Errorf("depth inside = %d, want 1", InferenceDepth())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if InferenceDepth() != 0 {
		t.Errorf("depth after = %d, want 0", InferenceDepth())
	}
}

func TestInferenceMode_ExitsOnError(t *testing.T) {
	wantErr := errors.New("invocation failed")

	err := InferenceMode(func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
	if InferenceDepth() != 0 {
		t.Errorf("depth after error = %d, want 0", InferenceDepth())
	}
}

func TestInferenceMode_ExitsOnPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate")
		}
		if InferenceDepth() != 0 {
			t.Errorf("depth after panic = %d, want 0", InferenceDepth())
		}
	}()

	_ = InferenceMode(func() error { panic("boom") })
}

func TestInferenceMode_Nests(t *testing.T) {
	_ = InferenceMode(func() error {
		return InferenceMode(func() error {
			if InferenceDepth() != 2 {
				t.Errorf("nested depth = %d, want 2", InferenceDepth())
			}
			return nil
		})
	})
	if InferenceDepth() != 0 {
		t.Errorf("depth after = %d, want 0", InferenceDepth())
	}
}
