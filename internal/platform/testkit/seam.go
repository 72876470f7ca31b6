package testkit

import (
	"sync"
	"testing"
)

// seams are package globals, so every test that swaps one shares this lock
var seamMu sync.Mutex

// Swap points *target at replacement until the test ends
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds the seam lock for the rest of the test. Call it before Swap
// in tests that touch globals other tests read (seams, working directory).
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}
