package rhythm

import (
	"math"
	"slices"
	"sort"
)

// median returns the middle value for odd-length input and the mean of
// the two middle values for even-length input. The input is not
// modified. Panics on empty input.
func median(xs []float64) float64 {
	s := slices.Clone(xs)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// roundTo rounds x to the given number of decimal places.
func roundTo(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
