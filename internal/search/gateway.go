// Package search implements the domain-restricted search gateway.
package search

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rset-labs/campus-assist/internal/config"
	"github.com/rset-labs/campus-assist/internal/model"
	"github.com/rset-labs/campus-assist/internal/resilience"
	"github.com/rset-labs/campus-assist/pkg/cse"
)

// ErrSearchUnavailable signals that the search provider could not be
// reached or exhausted its retries.
var ErrSearchUnavailable = eris.New("search: provider unavailable")

// providerMax is the largest result count the CSE API accepts per call.
const providerMax = 10

// stopWords are dropped from the relaxed fallback query.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"how": true, "does": true, "can": true, "about": true, "tell": true,
}

// Gateway queries the Custom Search Engine with the domain restriction
// applied twice: as a siteSearch parameter and as a post-hoc allow-list
// check on every returned link.
type Gateway struct {
	client  cse.Client
	cfg     config.SearchConfig
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewGateway creates a Gateway over the given CSE client.
func NewGateway(client cse.Client, cfg config.SearchConfig) *Gateway {
	retry := resilience.DefaultRetryConfig()
	if cfg.MaxRetries >= 0 {
		retry.MaxAttempts = cfg.MaxRetries + 1
	}
	retry.ShouldRetry = retryableSearchError
	retry.OnRetry = resilience.RetryLogger("cse", "search")

	return &Gateway{
		client: client,
		cfg:    cfg,
		retry:  retry,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("search: circuit state change",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
	}
}

// Search returns up to count domain-restricted results for query. A zero
// result set from the restricted query triggers one relaxed-query retry;
// the domain restriction itself is never dropped.
func (g *Gateway) Search(ctx context.Context, query string, count int) ([]model.SearchResult, error) {
	if count < 1 {
		count = 1
	}
	if count > providerMax {
		count = providerMax
	}

	results, err := g.doSearch(ctx, query, count)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		if relaxed := RelaxQuery(query); relaxed != "" && relaxed != query {
			zap.L().Debug("search: retrying with relaxed query",
				zap.String("query", query),
				zap.String("relaxed", relaxed),
			)
			return g.doSearch(ctx, relaxed, count)
		}
	}

	return results, nil
}

func (g *Gateway) doSearch(ctx context.Context, query string, count int) ([]model.SearchResult, error) {
	resp, err := resilience.ExecuteVal(ctx, g.breaker, func(ctx context.Context) (*cse.SearchResponse, error) {
		return resilience.DoVal(ctx, g.retry, func(ctx context.Context) (*cse.SearchResponse, error) {
			return g.client.Search(ctx, cse.SearchRequest{
				Query:      query,
				Num:        count,
				SiteSearch: g.cfg.PrimaryDomain(),
				Language:   g.cfg.Language,
			})
		})
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, ErrSearchUnavailable
		}
		zap.L().Warn("search: provider call failed", zap.Error(err))
		return nil, eris.Wrap(ErrSearchUnavailable, err.Error())
	}

	results := make([]model.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if !g.allowed(item.Link) {
			zap.L().Debug("search: dropping off-list result", zap.String("link", item.Link))
			continue
		}
		results = append(results, model.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// allowed re-validates a result link against the domain allow-list, so a
// provider misconfiguration cannot leak out-of-scope pages.
func (g *Gateway) allowed(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range g.cfg.AllowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// RelaxQuery drops short words and stop words, keeping the informative
// terms for the fallback search.
func RelaxQuery(query string) string {
	var kept []string
	for _, w := range strings.Fields(query) {
		lw := strings.ToLower(w)
		if len([]rune(lw)) < 3 || stopWords[lw] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// retryableSearchError retries rate limits and transient faults only;
// hard 4xx responses and malformed payloads fail immediately.
func retryableSearchError(err error) bool {
	var statusErr *cse.StatusError
	if errors.As(err, &statusErr) {
		return resilience.IsTransientHTTPStatus(statusErr.StatusCode)
	}
	return resilience.IsTransient(err)
}
