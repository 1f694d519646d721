package features

import (
	"context"
	"errors"
	"time"
)

// RegistrationDater reports when a domain was registered (WHOIS creation date).
type RegistrationDater interface {
	CreatedAt(ctx context.Context, domain string) (time.Time, error)
}

// HostResolver returns nil when host resolves to at least one address.
type HostResolver interface {
	Resolve(ctx context.Context, host string) error
}

// BlacklistClient reports whether a URL is on a phishing blacklist.
type BlacklistClient interface {
	Listed(ctx context.Context, rawURL string) (bool, error)
}

var (
	ErrEmptyDomain    = errors.New("empty domain")
	ErrIPLiteral      = errors.New("whois: host is an IP address")
	ErrNoCreationDate = errors.New("whois: no creation date")
	ErrNoAddress      = errors.New("dns: no address records")
)

// Lookup names, as they appear in LookupResult.Name
const (
	LookupDomainAge = "domain_age"
	LookupDNSValid  = "dns_valid"
	LookupBlacklist = "blacklisted"
)

type LookupStatus string

const (
	StatusOK      LookupStatus = "ok"
	StatusFailed  LookupStatus = "failed"
	StatusSkipped LookupStatus = "skipped" // fast mode
)

// LookupResult is the outcome of one network-backed feature. Value is what
// went into the vector; a failed lookup always carries its fallback value.
type LookupResult struct {
	Name   string       `json:"name"`
	Value  int          `json:"value"`
	Status LookupStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Cached bool         `json:"cached"`
}

// outcome is what the caches hold.
type outcome struct {
	value int
	err   error
}

func (o outcome) result(name string, cached bool) LookupResult {
	r := LookupResult{Name: name, Value: o.value, Status: StatusOK, Cached: cached}
	if o.err != nil {
		r.Status = StatusFailed
		r.Reason = o.err.Error()
	}
	return r
}

func skipped(name string, value int) LookupResult {
	return LookupResult{Name: name, Value: value, Status: StatusSkipped, Reason: "fast mode"}
}
