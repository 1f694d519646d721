package features

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// dnsResolver asks one DNS server directly for A, then AAAA records.
type dnsResolver struct {
	server string
	client *dns.Client
}

func newDNSResolver(server string, timeout time.Duration) *dnsResolver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &dnsResolver{
		server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

func (r *dnsResolver) Resolve(ctx context.Context, host string) error {
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(host), qtype)

		resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
		if err != nil {
			lastErr = fmt.Errorf("dns %s %s: %w", dns.TypeToString[qtype], host, err)
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("dns %s %s: %s", dns.TypeToString[qtype], host, dns.RcodeToString[resp.Rcode])
			if resp.Rcode == dns.RcodeNameError {
				return lastErr
			}
			continue
		}
		for _, rr := range resp.Answer {
			switch rr.(type) {
			case *dns.A, *dns.AAAA:
				return nil
			}
		}
		lastErr = fmt.Errorf("%w for %s", ErrNoAddress, host)
	}
	return lastErr
}

// systemResolver uses the host's resolver configuration.
type systemResolver struct {
	resolver *net.Resolver
}

func (r *systemResolver) Resolve(ctx context.Context, host string) error {
	addrs, err := r.resolver.LookupHost(ctx, host)
	if err != nil {
		return fmt.Errorf("dns %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%w for %s", ErrNoAddress, host)
	}
	return nil
}
