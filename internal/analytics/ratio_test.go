package analytics

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		num, den float64
		want     float64
	}{
		{"zero over zero", 0, 0, 0},
		{"negative denominator", 5, -1, 0},
		{"half", 50, 100, 50},
		{"capped", 150, 100, 100},
		{"one decimal", 1, 3, 33.3},
		{"rounds half up", 2, 3, 66.7},
		{"nan denominator", 1, math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.num, tt.den); got != tt.want {
				t.Errorf("Ratio(%v, %v) = %v, want %v", tt.num, tt.den, got, tt.want)
			}
		})
	}
}

func TestRatioWith_CustomCap(t *testing.T) {
	if got := RatioWith(30, 10, 500, 0); got != 300 {
		t.Errorf("RatioWith(30, 10, 500, 0) = %v, want 300", got)
	}
	if got := RatioWith(30, 10, 200, 0); got != 200 {
		t.Errorf("RatioWith(30, 10, 200, 0) = %v, want 200", got)
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		cur, prev float64
		want      float64
	}{
		{0, 0, 0},
		{5, 0, 100},
		{50, 100, -50},
		{150, 100, 50},
		{1, 3, -67},
		{10, 10, 0},
	}
	for _, tt := range tests {
		if got := Delta(tt.cur, tt.prev); got != tt.want {
			t.Errorf("Delta(%v, %v) = %v, want %v", tt.cur, tt.prev, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x      float64
		places int32
		want   float64
	}{
		{2.675, 2, 2.68},
		{0.05, 1, 0.1},
		{2.5, 0, 3},
		{-2.5, 0, -2},
		{12.34, 1, 12.3},
		{math.Inf(1), 1, 0},
	}
	for _, tt := range tests {
		if got := Round(tt.x, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
	}
}

func TestChange(t *testing.T) {
	if got := Change(85.3, 80.1); got != 5.2 {
		t.Errorf("Change(85.3, 80.1) = %v, want 5.2", got)
	}
}
