// Package internal provides internal utility functionality for the mathtools application.
package internal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a float in its shortest exact form, eg- 12 instead of 12.000000.
func FormatNumber(f float64) string {
	if f == 0 {
		// avoid printing "-0"
		f = math.Abs(f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MultiplySummary returns the human readable summary of a multiplication, eg- "3 × 4 = 12".
func MultiplySummary(a, b, product float64) string {
	return fmt.Sprintf("%s × %s = %s", FormatNumber(a), FormatNumber(b), FormatNumber(product))
}

// ParseOperands parses a line of user input containing exactly two whitespace-separated numbers.
func ParseOperands(line string) (float64, float64, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two numbers separated by a space, got %d values", len(fields))
	}
	a, err := parseFinite(fields[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := parseFinite(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a number", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("'%s' is not a finite number", s)
	}
	return f, nil
}
