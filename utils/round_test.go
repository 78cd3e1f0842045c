package utils

import (
	"testing"
	"time"
)

func TestRoundToTenth(t *testing.T) {
	tests := []struct {
		name string
		n, d int64
		want float64
	}{
		{name: "ninety minutes", n: int64(90 * time.Minute), d: int64(time.Hour), want: 1.5},
		{name: "exact half rounds up", n: 15, d: 100, want: 0.2},
		{name: "just below half", n: 149, d: 1000, want: 0.1},
		{name: "negative half rounds away from zero", n: -25, d: 100, want: -0.3},
		{name: "average of ratings", n: 14, d: 3, want: 4.7},
		{name: "twenty minutes", n: int64(20 * time.Minute), d: int64(time.Hour), want: 0.3},
		{name: "zero denominator", n: 5, d: 0, want: 0},
		{name: "negative denominator", n: 3, d: -2, want: -1.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoundToTenth(tc.n, tc.d); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
