// Package features turns a URL string into the fixed feature vector consumed
// by the phishing classifier. The same Extractor code runs for training
// exports (fast mode) and for serving (optionally with live lookups).
package features

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"phishing-detector/logger"
)

// Extractor computes feature vectors. It owns its lookup caches and is safe
// for concurrent use.
type Extractor struct {
	cfg Config
	log zerolog.Logger
	now func() time.Time

	registry  RegistrationDater
	resolver  HostResolver
	blacklist BlacklistClient

	ages   *lruCache[outcome]
	hosts  *lruCache[outcome]
	listed *lruCache[outcome]
}

// Option customizes an Extractor.
type Option func(*Extractor)

func WithRegistrationDater(r RegistrationDater) Option {
	return func(e *Extractor) { e.registry = r }
}

func WithHostResolver(r HostResolver) Option {
	return func(e *Extractor) { e.resolver = r }
}

func WithBlacklistClient(b BlacklistClient) Option {
	return func(e *Extractor) { e.blacklist = b }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// WithClock sets the time source used for domain age.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New builds an Extractor. Collaborators not supplied through options are
// the live WHOIS, DNS and PhishStats clients.
func New(cfg Config, opts ...Option) *Extractor {
	cfg = cfg.withDefaults()
	e := &Extractor{
		cfg:    cfg,
		log:    logger.Named("features"),
		now:    time.Now,
		ages:   newLRUCache[outcome](cfg.CacheSize),
		hosts:  newLRUCache[outcome](cfg.CacheSize),
		listed: newLRUCache[outcome](cfg.CacheSize),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = &whoisRegistry{timeout: cfg.LookupTimeout}
	}
	if e.resolver == nil {
		if cfg.DNSServer != "" {
			e.resolver = newDNSResolver(cfg.DNSServer, cfg.LookupTimeout)
		} else {
			e.resolver = &systemResolver{resolver: net.DefaultResolver}
		}
	}
	if e.blacklist == nil {
		e.blacklist = newPhishStats(cfg.BlacklistEndpoint, cfg.BlacklistRPS, &http.Client{Timeout: cfg.LookupTimeout})
	}
	return e
}

// Config returns the effective configuration.
func (e *Extractor) Config() Config { return e.cfg }

// Report is a feature vector together with how its network features were obtained.
type Report struct {
	URLParts
	Features Vector         `json:"features"`
	Lookups  []LookupResult `json:"lookups"`
}

// Extract returns the feature vector for rawURL. It never fails: lookup
// errors degrade the affected feature to its fallback value.
func (e *Extractor) Extract(ctx context.Context, rawURL string) Vector {
	return e.Inspect(ctx, rawURL).Features
}

// Inspect is Extract plus the per-lookup outcomes.
func (e *Extractor) Inspect(ctx context.Context, rawURL string) Report {
	parts := Normalize(rawURL)
	v := lexical(parts)

	age, dnsOK, listed := e.enrich(ctx, parts)
	v.DomainAge = age.Value
	v.DNSValid = dnsOK.Value
	v.Blacklisted = listed.Value

	return Report{
		URLParts: parts,
		Features: v,
		Lookups:  []LookupResult{age, dnsOK, listed},
	}
}

func (e *Extractor) enrich(ctx context.Context, parts URLParts) (age, dnsOK, listed LookupResult) {
	if e.cfg.FastMode {
		return skipped(LookupDomainAge, 0), skipped(LookupDNSValid, 1), skipped(LookupBlacklist, 0)
	}

	domain := strings.ToLower(parts.Domain)

	var g errgroup.Group
	g.Go(func() error {
		age = e.domainAge(ctx, domain)
		return nil
	})
	g.Go(func() error {
		dnsOK = e.dnsValid(ctx, domain)
		return nil
	})
	g.Go(func() error {
		listed = e.blacklistCheck(ctx, parts.URL)
		return nil
	})
	_ = g.Wait()

	for _, r := range []LookupResult{age, dnsOK, listed} {
		if r.Status == StatusFailed && !r.Cached {
			e.log.Debug().Str("lookup", r.Name).Str("domain", domain).Str("reason", r.Reason).Msg("lookup failed, using fallback")
		}
	}
	return age, dnsOK, listed
}

func (e *Extractor) domainAge(ctx context.Context, domain string) LookupResult {
	if domain == "" {
		return outcome{err: ErrEmptyDomain}.result(LookupDomainAge, false)
	}
	if net.ParseIP(domain) != nil {
		return outcome{err: ErrIPLiteral}.result(LookupDomainAge, false)
	}
	o, hit := e.ages.Load(domain, func() outcome {
		ctx, cancel := e.lookupContext(ctx)
		defer cancel()

		created, err := e.registry.CreatedAt(ctx, domain)
		if err != nil {
			return outcome{err: err}
		}
		days, err := ageDays(created, e.now())
		return outcome{value: days, err: err}
	})
	return o.result(LookupDomainAge, hit)
}

func (e *Extractor) dnsValid(ctx context.Context, domain string) LookupResult {
	if domain == "" {
		return outcome{err: ErrEmptyDomain}.result(LookupDNSValid, false)
	}
	if net.ParseIP(domain) != nil {
		return outcome{value: 1}.result(LookupDNSValid, false)
	}
	o, hit := e.hosts.Load(domain, func() outcome {
		ctx, cancel := e.lookupContext(ctx)
		defer cancel()

		if err := e.resolver.Resolve(ctx, domain); err != nil {
			return outcome{err: err}
		}
		return outcome{value: 1}
	})
	return o.result(LookupDNSValid, hit)
}

func (e *Extractor) blacklistCheck(ctx context.Context, rawURL string) LookupResult {
	o, hit := e.listed.Load(rawURL, func() outcome {
		ctx, cancel := e.lookupContext(ctx)
		defer cancel()

		ok, err := e.blacklist.Listed(ctx, rawURL)
		if err != nil {
			return outcome{err: err}
		}
		return outcome{value: boolInt(ok)}
	})
	return o.result(LookupBlacklist, hit)
}

// lookupContext detaches from the caller's cancellation: the result is
// cached for every later caller, so only the lookup timeout bounds it.
func (e *Extractor) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.cfg.LookupTimeout)
}
