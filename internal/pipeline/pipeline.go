// Package pipeline wires search, scraping, extraction and the LLM into
// the question answering flow.
package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rset-labs/campus-assist/internal/config"
	"github.com/rset-labs/campus-assist/internal/extract"
	"github.com/rset-labs/campus-assist/internal/model"
	"github.com/rset-labs/campus-assist/internal/store"
)

// Fixed user-facing fallback strings. Every failure mode degrades to one
// of these; a raw error never reaches the caller as answer text.
const (
	GreetingMessage  = "Hi there! I'm the campus assistant. How can I help you?"
	NoAccessMessage  = "Sorry, I couldn't access the college resources right now. Please try again in a little while."
	NoContentMessage = "I couldn't find specific information about that on the college website."
	ApologyMessage   = "Sorry, I'm having trouble answering right now. Please try again later."
)

// greetings are answered directly without touching the pipeline.
var greetings = map[string]bool{
	"hi": true, "hello": true, "hey": true, "hi there": true, "hello there": true,
}

// SearchGateway is the domain-restricted search contract.
type SearchGateway interface {
	Search(ctx context.Context, query string, count int) ([]model.SearchResult, error)
}

// PageFetcher fetches and cleans a single page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*model.ScrapedPage, error)
}

// Pipeline answers questions from college website content.
type Pipeline struct {
	cfg     *config.Config
	search  SearchGateway
	fetcher PageFetcher
	llm     LLM
	cache   store.Store // nil when caching is disabled

	llmBackoff time.Duration // test override for the retry backoff
}

// New creates a Pipeline. cache may be nil to disable answer caching.
func New(cfg *config.Config, search SearchGateway, fetcher PageFetcher, llm LLM, cache store.Store) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		search:  search,
		fetcher: fetcher,
		llm:     llm,
		cache:   cache,
	}
}

// Ask runs the full pipeline for one question. The returned error is
// non-nil only for caller cancellation; every pipeline failure degrades
// to a fixed fallback answer.
func (p *Pipeline) Ask(ctx context.Context, question string) (model.ChatAnswer, error) {
	question = strings.TrimSpace(question)
	log := zap.L().With(zap.String("question", question))

	if greetings[store.NormalizeKey(question)] {
		return model.ChatAnswer{Text: GreetingMessage, Confident: true}, nil
	}

	if cached := p.cacheLookup(ctx, question); cached != nil {
		log.Debug("pipeline: cache hit")
		return *cached, nil
	}

	results, err := p.search.Search(ctx, question, p.cfg.Search.MaxResults)
	if err != nil || len(results) == 0 {
		if ctx.Err() != nil {
			return model.ChatAnswer{}, ctx.Err()
		}
		if err != nil {
			log.Warn("pipeline: search unavailable", zap.Error(err))
		}
		return model.ChatAnswer{Text: NoAccessMessage}, nil
	}

	docs := p.collectDocuments(ctx, question, results)
	if ctx.Err() != nil {
		return model.ChatAnswer{}, ctx.Err()
	}
	if len(docs) == 0 {
		log.Info("pipeline: no relevant content extracted")
		return model.ChatAnswer{Text: NoContentMessage}, nil
	}

	contextText, used := assembleContext(docs, question, p.cfg.Context.Budget)
	system, user := BuildPrompt(p.cfg.Answer.Institution, question, contextText)

	answerText, err := p.generate(ctx, system, user)
	if ctx.Err() != nil {
		return model.ChatAnswer{}, ctx.Err()
	}
	if err != nil {
		return model.ChatAnswer{Text: ApologyMessage}, nil
	}

	answer := p.compose(answerText, used)
	p.cacheStore(ctx, question, answer)
	return answer, nil
}

// collectDocuments fetches, cleans and extracts every search result in
// parallel. A failed or empty page is skipped, never fatal. Each document
// lands in its result's slot, so the returned slice keeps search rank
// order no matter when each fetch completes.
func (p *Pipeline) collectDocuments(ctx context.Context, question string, results []model.SearchResult) []model.ContextDocument {
	limit := p.cfg.Scrape.MaxConcurrent
	if limit <= 0 {
		limit = 4
	}

	slots := make([]*model.ContextDocument, len(results))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, r := range results {
		g.Go(func() error {
			page, err := p.fetcher.Fetch(gCtx, r.Link)
			if err != nil {
				zap.L().Debug("pipeline: skipping page",
					zap.String("url", r.Link),
					zap.Error(err),
				)
				return nil
			}

			excerpt := extract.Extract(*page, question, p.cfg.Context.PerDocumentCap)
			if excerpt == "" {
				return nil
			}

			slots[i] = &model.ContextDocument{
				Source:  r.Link,
				Title:   r.Title,
				Excerpt: excerpt,
			}
			return nil
		})
	}
	_ = g.Wait()

	docs := make([]model.ContextDocument, 0, len(results))
	for _, d := range slots {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	return docs
}

func (p *Pipeline) cacheLookup(ctx context.Context, question string) *model.ChatAnswer {
	if p.cache == nil || !p.cfg.Cache.Enabled {
		return nil
	}
	entry, err := p.cache.Get(ctx, question)
	if err != nil {
		zap.L().Warn("pipeline: cache read failed", zap.Error(err))
		return nil
	}
	if entry == nil {
		return nil
	}
	return &entry.Answer
}

func (p *Pipeline) cacheStore(ctx context.Context, question string, answer model.ChatAnswer) {
	if p.cache == nil || !p.cfg.Cache.Enabled || !answer.Confident {
		return
	}
	if err := p.cache.Set(ctx, question, answer, p.cfg.CacheTTL()); err != nil {
		zap.L().Warn("pipeline: cache write failed", zap.Error(err))
	}
}
