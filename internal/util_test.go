package internal

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	testCases := []struct {
		in       float64
		expected string
	}{
		{12, "12"},
		{-12, "-12"},
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{2.5, "2.5"},
		{1e21, "1000000000000000000000"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FormatNumber(tc.in); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestMultiplySummary(t *testing.T) {
	if got := MultiplySummary(3, 4, 12); got != "3 × 4 = 12" {
		t.Errorf("Unexpected summary: %s", got)
	}
	if got := MultiplySummary(-2, 6, -12); got != "-2 × 6 = -12" {
		t.Errorf("Unexpected summary: %s", got)
	}
}

func TestParseOperands(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		testCases := []struct {
			line string
			a, b float64
		}{
			{"3 4", 3, 4},
			{"  0\t5 ", 0, 5},
			{"-2 6", -2, 6},
			{"1.5 2e3", 1.5, 2000},
		}
		for _, tc := range testCases {
			a, b, err := ParseOperands(tc.line)
			if err != nil {
				t.Fatalf("Expected no error for %q, got: %v", tc.line, err)
			}
			if a != tc.a || b != tc.b {
				t.Errorf("Expected (%v, %v) for %q, got (%v, %v)", tc.a, tc.b, tc.line, a, b)
			}
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		for _, line := range []string{"", "3", "3 4 5", "three 4", "3 four", "NaN 1", "1 Inf"} {
			if _, _, err := ParseOperands(line); err == nil {
				t.Errorf("Expected error for %q, got nil", line)
			}
		}
	})
}
