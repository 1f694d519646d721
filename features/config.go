package features

import "time"

const (
	DefaultLookupTimeout     = 4 * time.Second
	DefaultCacheSize         = 2000
	DefaultBlacklistEndpoint = "https://phishstats.info:2096/api/phishing"
	DefaultBlacklistRPS      = 5
)

// Config controls one Extractor instance.
//
// FastMode replaces the WHOIS, DNS and blacklist lookups with fixed
// placeholders (domain_age=0, dns_valid=1, blacklisted=0) and performs no I/O.
type Config struct {
	FastMode      bool
	LookupTimeout time.Duration
	CacheSize     int

	// DNSServer is a host[:port] queried directly. Empty uses the system resolver.
	DNSServer string

	BlacklistEndpoint string
	// BlacklistRPS caps outbound blacklist queries per second. <= 0 disables the cap.
	BlacklistRPS float64
}

// DefaultConfig returns the offline (fast mode) configuration used for training.
func DefaultConfig() Config {
	return Config{
		FastMode:          true,
		LookupTimeout:     DefaultLookupTimeout,
		CacheSize:         DefaultCacheSize,
		BlacklistEndpoint: DefaultBlacklistEndpoint,
		BlacklistRPS:      DefaultBlacklistRPS,
	}
}

func (c Config) withDefaults() Config {
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = DefaultLookupTimeout
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.BlacklistEndpoint == "" {
		c.BlacklistEndpoint = DefaultBlacklistEndpoint
	}
	return c
}
