package mathutil

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestSoftmaxEmpty(t *testing.T) {
	var xs []float32
	Softmax(xs) // must not panic
	if len(xs) != 0 {
		t.Fatalf("expected empty slice to remain empty")
	}
}

func TestSoftmaxSumsToOne(t *testing.T) {
	xs := []float32{1, 2, 3, -5, 0.5}
	Softmax(xs)

	var sum float32
	for _, x := range xs {
		if x <= 0 || x > 1 {
			t.Fatalf("softmax output out of (0,1]: %v", x)
		}
		sum += x
	}
	if math32.Abs(sum-1) > 1e-5 {
		t.Fatalf("softmax outputs summed to %v, want ~1", sum)
	}
}

func TestSoftmaxUniform(t *testing.T) {
	xs := []float32{2, 2, 2, 2}
	Softmax(xs)
	for _, x := range xs {
		if math32.Abs(x-0.25) > 1e-6 {
			t.Fatalf("expected uniform 0.25, got %v", x)
		}
	}
}

func TestSoftmaxSingleton(t *testing.T) {
	xs := []float32{42}
	Softmax(xs)
	if math32.Abs(xs[0]-1) > 1e-6 {
		t.Fatalf("singleton softmax should be 1, got %v", xs[0])
	}
}
