package domain

import (
	"strconv"
	"strings"
)

// ParseRecommendedReps turns a template reps expression into a default rep count.
// A single integer is used as is, a hyphenated range "A-B" yields the floor of
// its midpoint. Any other form, including the empty string, yields nil.
func ParseRecommendedReps(expr string) *int {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	if n, err := strconv.Atoi(expr); err == nil {
		return &n
	}

	lo, hi, ok := strings.Cut(expr, "-")
	if !ok {
		return nil
	}
	a, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return nil
	}
	b, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return nil
	}
	mid := floorDiv(a+b, 2)
	return &mid
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
