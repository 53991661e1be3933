package utils

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-5, 0},
		{42.5, 42.5},
		{130, 100},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in, 0, 100); got != tc.want {
			t.Errorf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(52.456, 2); got != 52.46 {
		t.Errorf("RoundTo = %v, want 52.46", got)
	}
}

func TestTickStep(t *testing.T) {
	cases := []struct {
		n, max, want int
	}{
		{5, 10, 1},
		{130, 10, 13},
		{131, 10, 14},
		{7, 0, 1},
	}
	for _, tc := range cases {
		if got := TickStep(tc.n, tc.max); got != tc.want {
			t.Errorf("TickStep(%d, %d) = %d, want %d", tc.n, tc.max, got, tc.want)
		}
	}
}
