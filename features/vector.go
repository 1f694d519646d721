package features

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldNames is the column order every model is trained and served with.
var FieldNames = []string{
	"url_length",
	"num_dots",
	"num_slashes",
	"entropy",
	"digit_ratio",
	"special_char_count",
	"subdomain_count",
	"domain_length",
	"path_length",
	"has_https",
	"has_suspicious",
	"domain_age",
	"dns_valid",
	"blacklisted",
}

// SuspiciousWords are matched as plain substrings of the lower-cased URL.
var SuspiciousWords = []string{
	"verify", "update", "free", "secure", "confirm",
	"account", "login", "bank", "payment",
}

// Vector is the fixed 14-field feature set. Field order matches FieldNames.
type Vector struct {
	URLLength        int     `json:"url_length"`
	NumDots          int     `json:"num_dots"`
	NumSlashes       int     `json:"num_slashes"`
	Entropy          float64 `json:"entropy"`
	DigitRatio       float64 `json:"digit_ratio"`
	SpecialCharCount int     `json:"special_char_count"`
	SubdomainCount   int     `json:"subdomain_count"`
	DomainLength     int     `json:"domain_length"`
	PathLength       int     `json:"path_length"`
	HasHTTPS         int     `json:"has_https"`
	HasSuspicious    int     `json:"has_suspicious"`
	DomainAge        int     `json:"domain_age"`
	DNSValid         int     `json:"dns_valid"`
	Blacklisted      int     `json:"blacklisted"`
}

// Values returns the features in FieldNames order.
func (v Vector) Values() []float64 {
	return []float64{
		float64(v.URLLength),
		float64(v.NumDots),
		float64(v.NumSlashes),
		v.Entropy,
		v.DigitRatio,
		float64(v.SpecialCharCount),
		float64(v.SubdomainCount),
		float64(v.DomainLength),
		float64(v.PathLength),
		float64(v.HasHTTPS),
		float64(v.HasSuspicious),
		float64(v.DomainAge),
		float64(v.DNSValid),
		float64(v.Blacklisted),
	}
}

// Map returns the features keyed by name.
func (v Vector) Map() map[string]float64 {
	vals := v.Values()
	m := make(map[string]float64, len(FieldNames))
	for i, name := range FieldNames {
		m[name] = vals[i]
	}
	return m
}

// lexical fills every field that needs no network lookup.
func lexical(u URLParts) Vector {
	var v Vector
	lower := strings.ToLower(u.URL)

	digits := 0
	for _, r := range u.URL {
		v.URLLength++
		switch {
		case r == '.':
			v.NumDots++
		case r == '/':
			v.NumSlashes++
		}
		if r >= '0' && r <= '9' {
			digits++
		}
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			v.SpecialCharCount++
		}
	}

	v.Entropy = Entropy(u.URL)
	if v.URLLength > 0 {
		v.DigitRatio = float64(digits) / float64(v.URLLength)
	}
	v.SubdomainCount = strings.Count(u.Domain, ".")
	v.DomainLength = utf8.RuneCountInString(u.Domain)
	v.PathLength = utf8.RuneCountInString(u.Path)
	v.HasHTTPS = boolInt(strings.HasPrefix(lower, "https://"))
	v.HasSuspicious = boolInt(containsAny(lower, SuspiciousWords))
	return v
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
