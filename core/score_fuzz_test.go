package core

import (
	"math"
	"testing"
)

// FuzzCalculateIntegrityScore checks that in-domain inputs always give an in-domain score.
func FuzzCalculateIntegrityScore(f *testing.F) {
	seeds := [][5]float64{
		{80, 70, 60, 75, 85},
		{0, 0, 0, 0, 0},
		{100, 100, 100, 100, 100},
		{99.999, 0.001, 50, 12.5, 87.5},
	}
	for _, s := range seeds {
		f.Add(s[0], s[1], s[2], s[3], s[4])
	}

	f.Fuzz(func(t *testing.T, h, tr, a, e, c float64) {
		for _, v := range []float64{h, tr, a, e, c} {
			if math.IsNaN(v) || v < 0 || v > 100 {
				t.Skip()
			}
		}
		score := CalculateIntegrityScore(h, tr, a, e, c)
		if score < 0 || score > 100 {
			t.Errorf("score %v out of [0,100] for inputs %v %v %v %v %v", score, h, tr, a, e, c)
		}
	})
}
