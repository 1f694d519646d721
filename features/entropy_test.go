package features

import (
	"math"
	"strings"
	"testing"
)

func TestEntropy(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"empty", "", 0},
		{"single char", "a", 0},
		{"repeated", "aaaa", 0},
		{"two equal", "abab", 1},
		{"four equal", "abcd", 2},
		{"three equal", "abcabc", math.Log2(3)},
		{"eight equal", "abcdefgh", 3},
		{"skewed", "aab", -(2.0/3*math.Log2(2.0/3) + 1.0/3*math.Log2(1.0/3))},
		{"unicode runes", "ééàà", 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Entropy(c.in)
			if math.Abs(got-c.want) > 1e-12 {
				t.Fatalf("Entropy(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestEntropyNonNegative(t *testing.T) {
	inputs := []string{
		"http://example.com",
		"https://secure-login-update.com/verify?id=123",
		strings.Repeat("z", 1000),
		"\x00\xff\xfe",
		" ",
	}
	for _, in := range inputs {
		if got := Entropy(in); got < 0 || math.IsNaN(got) {
			t.Fatalf("Entropy(%q) = %v, want >= 0", in, got)
		}
	}
}

func TestEntropyDeterministic(t *testing.T) {
	s := "http://a1b2c3.d4e5f6.example.org/some/path?q=xyz&r=%20"
	first := Entropy(s)
	for i := 0; i < 50; i++ {
		if got := Entropy(s); math.Float64bits(got) != math.Float64bits(first) {
			t.Fatalf("Entropy not bit-identical: %v vs %v", got, first)
		}
	}
}
