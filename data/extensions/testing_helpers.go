package extensions

import (
	"math"
	"testing"
)

func AssertAreEqual[T comparable](t *testing.T, name string, expected T, actual T) {
	t.Helper()
	if expected != actual {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, actual)
	}
}

func AssertNillability[T comparable](t *testing.T, name string, expected bool, actual *T) {
	t.Helper()
	if (actual == nil) != expected {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, (actual == nil))
	}
}

// AssertApprox fails when actual is further than tol from expected
func AssertApprox(t *testing.T, name string, expected, actual, tol float64) {
	t.Helper()
	if math.Abs(expected-actual) > tol {
		t.Fatalf("value mismatch for %s, expected %.10f, got %.10f", name, expected, actual)
	}
}
