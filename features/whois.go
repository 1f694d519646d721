package features

import (
	"context"
	"fmt"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
	"golang.org/x/net/publicsuffix"
)

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-2006 15:04:05 MST",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
}

// whoisRegistry queries public WHOIS for the registrable part of a domain.
type whoisRegistry struct {
	timeout time.Duration
}

func (w *whoisRegistry) CreatedAt(ctx context.Context, domain string) (time.Time, error) {
	apex, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return time.Time{}, fmt.Errorf("whois: registrable domain of %q: %w", domain, err)
	}

	type reply struct {
		raw string
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		raw, err := whois.NewClient().SetTimeout(w.timeout).Whois(apex)
		ch <- reply{raw, err}
	}()

	var r reply
	select {
	case <-ctx.Done():
		return time.Time{}, fmt.Errorf("whois %s: %w", apex, ctx.Err())
	case r = <-ch:
	}
	if r.err != nil {
		return time.Time{}, fmt.Errorf("whois %s: %w", apex, r.err)
	}

	info, err := parser.Parse(r.raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("whois %s: parse: %w", apex, err)
	}
	if info.Domain == nil {
		return time.Time{}, fmt.Errorf("whois %s: %w", apex, ErrNoCreationDate)
	}

	created, ok := parseWhoisDate(info.Domain.CreatedDate)
	if !ok {
		return time.Time{}, fmt.Errorf("whois %s: %w (%q)", apex, ErrNoCreationDate, info.Domain.CreatedDate)
	}
	return created, nil
}

func parseWhoisDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range whoisDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ageDays is the number of whole days between created and now.
func ageDays(created, now time.Time) (int, error) {
	if created.After(now) {
		return 0, fmt.Errorf("whois: creation date %s is in the future", created.Format(time.DateOnly))
	}
	return int(now.Sub(created).Hours() / 24), nil
}
