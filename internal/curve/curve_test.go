package curve

import (
	"errors"
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	c := Identity()
	for _, v := range []float64{-1, 0, 0.25, 1, 3} {
		if got := c.Evaluate(v); got != v {
			t.Errorf("Evaluate(%v) = %v, want %v", v, got, v)
		}
	}
	if !c.IsIdentity() {
		t.Error("expected empty curve to be identity")
	}
}

func TestLinear(t *testing.T) {
	c, err := New(Linear, Key{0, 0}, Key{0.4, 0}, Key{1, 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.2, 0},
		{0.4, 0},
		{0.7, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := c.Evaluate(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Evaluate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSmooth(t *testing.T) {
	c, _ := New(Smooth, Key{0, 0}, Key{1, 1})
	if got := c.Evaluate(0.5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Evaluate(0.5) = %v, want 0.5", got)
	}
	if got := c.Evaluate(0.25); got >= 0.25 {
		t.Errorf("expected smooth curve to ease in, got %v at 0.25", got)
	}
}

func TestSingleKey(t *testing.T) {
	c, _ := New(Linear, Key{0.5, 0.8})
	for _, v := range []float64{0, 0.5, 1} {
		if got := c.Evaluate(v); got != 0.8 {
			t.Errorf("Evaluate(%v) = %v, want 0.8", v, got)
		}
	}
}

func TestValidate(t *testing.T) {
	if _, err := New(Linear, Key{0, 0}, Key{0, 1}); !errors.Is(err, ErrUnsortedKeys) {
		t.Errorf("expected ErrUnsortedKeys for duplicate input, got %v", err)
	}
	if _, err := New(Linear, Key{0.5, 0}, Key{0.2, 1}); !errors.Is(err, ErrUnsortedKeys) {
		t.Errorf("expected ErrUnsortedKeys for descending input, got %v", err)
	}
}

func TestNewCopiesKeys(t *testing.T) {
	keys := []Key{{0, 0}, {1, 1}}
	c, _ := New(Linear, keys...)
	keys[1].Out = 5
	if got := c.Evaluate(1); got != 1 {
		t.Errorf("curve shares caller's key slice: Evaluate(1) = %v", got)
	}
}
