package school

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradePoint(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{100, 4.0},
		{80, 4.0},
		{79, 3.5},
		{79.99, 3.5},
		{75, 3.5},
		{74, 3.0},
		{70, 3.0},
		{65, 2.5},
		{60, 2.0},
		{55, 1.5},
		{50, 1.0},
		{49, 0.0},
		{0, 0.0},
	}
	for _, tt := range tests {
		if got := GradePoint(tt.score); got != tt.want {
			t.Errorf("GradePoint(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name   string
		in     interface{}
		want   float64
		wantOk bool
	}{
		{name: "number", in: 87.5, want: 87.5, wantOk: true},
		{name: "int", in: 70, want: 70, wantOk: true},
		{name: "numeric string", in: " 64 ", want: 64, wantOk: true},
		{name: "nil", in: nil},
		{name: "empty string", in: ""},
		{name: "garbage", in: "abc"},
		{name: "NaN string", in: "NaN"},
		{name: "NaN", in: math.NaN()},
		{name: "bool", in: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseScore(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
