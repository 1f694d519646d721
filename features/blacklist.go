package features

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

// phishStats queries a PhishStats-compatible API: a GET with
// _where=(url,eq,"<url>") that answers with a JSON array of matches.
type phishStats struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

func newPhishStats(endpoint string, rps float64, client *http.Client) *phishStats {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &phishStats{
		endpoint: endpoint,
		client:   client,
		limiter:  rate.NewLimiter(limit, int(math.Max(1, math.Ceil(rps)))),
	}
}

func (p *phishStats) Listed(ctx context.Context, rawURL string) (bool, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("blacklist: rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("_where", `(url,eq,"`+rawURL+`")`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("blacklist: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("blacklist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("blacklist: unexpected status %s", resp.Status)
	}

	var matches []json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&matches); err != nil {
		return false, fmt.Errorf("blacklist: decode: %w", err)
	}
	return len(matches) > 0, nil
}
