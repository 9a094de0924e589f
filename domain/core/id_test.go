package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID()

	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid.String(), valid, false},
		{"  " + valid.String() + " ", valid, false},
		{"run-123", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseVariableKey tests variable key parsing
func TestParseVariableKey(t *testing.T) {
	if _, err := ParseVariableKey("   "); err == nil {
		t.Error("Expected error for blank variable key")
	}
	key, err := ParseVariableKey(" T ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if key != "T" {
		t.Errorf("Expected T, got %s", key)
	}
}

func TestComputeColumnsHash(t *testing.T) {
	a := map[string][]float64{"x": {1, 2, 3}, "y": {0.5, -0.5, 0}}
	b := map[string][]float64{"y": {0.5, -0.5, 0}, "x": {1, 2, 3}}
	if ComputeColumnsHash(a) != ComputeColumnsHash(b) {
		t.Error("Expected hash to be independent of map order")
	}

	c := map[string][]float64{"x": {1, 2, 3}, "y": {0.5, -0.5, 1e-300}}
	if ComputeColumnsHash(a) == ComputeColumnsHash(c) {
		t.Error("Expected tiny value change to change the hash")
	}

	if len(ComputeColumnsHash(a).Short()) != 12 {
		t.Error("Expected 12-character short hash")
	}
}
