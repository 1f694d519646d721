package features

import (
	"math"
	"sort"
)

// Entropy returns the Shannon entropy (base 2) of the rune distribution of s.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}

	counts := make(map[rune]int)
	n := 0
	for _, r := range s {
		counts[r]++
		n++
	}

	// sum in rune order so the result is bit-identical across calls
	runes := make([]rune, 0, len(counts))
	for r := range counts {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	total := float64(n)
	var h float64
	for _, r := range runes {
		p := float64(counts[r]) / total
		h -= p * math.Log2(p)
	}
	return h
}
