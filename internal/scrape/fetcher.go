// Package scrape fetches pages from the college site and reduces them to
// clean plain text for relevance extraction.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rset-labs/campus-assist/internal/config"
	"github.com/rset-labs/campus-assist/internal/model"
)

// ErrNoContent means the page yielded nothing useful: network failure,
// non-2xx status, a bot-protection page, or text below the minimum
// length. Callers skip the page and continue.
var ErrNoContent = eris.New("scrape: no usable content")

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 512 * 1024

// Fetcher downloads and cleans pages with per-host rate limiting.
type Fetcher struct {
	cfg    config.ScrapeConfig
	client *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a Fetcher from scrape configuration.
func NewFetcher(cfg config.ScrapeConfig) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch downloads targetURL and returns its cleaned text. Any failure
// that just means "nothing useful here" comes back as ErrNoContent.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*model.ScrapedPage, error) {
	host, err := hostOf(targetURL)
	if err != nil {
		return nil, eris.Wrap(ErrNoContent, "invalid url")
	}

	if err := f.limiterFor(host).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "scrape: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(ErrNoContent, "create request")
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Debug("scrape: fetch failed", zap.String("url", targetURL), zap.Error(err))
		return nil, eris.Wrap(ErrNoContent, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(ErrNoContent, "read body")
	}

	if reason := detectInterstitial(resp, body); reason != blockNone {
		zap.L().Debug("scrape: interstitial page",
			zap.String("url", targetURL),
			zap.String("reason", string(reason)),
		)
		return nil, eris.Wrap(ErrNoContent, "interstitial")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Wrapf(ErrNoContent, "status %d", resp.StatusCode)
	}

	text := CleanHTML(body, f.cfg.MaxPageChars)
	if len(text) < f.cfg.MinContentLen {
		return nil, eris.Wrap(ErrNoContent, "below minimum length")
	}

	return &model.ScrapedPage{
		SourceURL: targetURL,
		Text:      text,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.limiters[host]; ok {
		return l
	}
	rps := f.cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2.0
	}
	l := rate.NewLimiter(rate.Limit(rps), 1)
	f.limiters[host] = l
	return l
}

func hostOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", eris.New("missing host")
	}
	return u.Hostname(), nil
}
