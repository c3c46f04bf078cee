package util

import (
	"fmt"
	"strconv"
)

// ParseFloat parses a decimal string, naming the field on failure.
func ParseFloat(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return v, nil
}
