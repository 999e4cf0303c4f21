package pipeline

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rset-labs/campus-assist/internal/resilience"
)

// generate calls the LLM under the retry policy and returns the cleaned
// answer. The error is non-nil only once retries are exhausted.
func (p *Pipeline) generate(ctx context.Context, system, user string) (string, error) {
	retry := resilience.DefaultRetryConfig()
	if p.cfg.LLM.MaxRetries >= 0 {
		retry.MaxAttempts = p.cfg.LLM.MaxRetries + 1
	}
	if p.llmBackoff > 0 {
		retry.InitialBackoff = p.llmBackoff
	}
	retry.ShouldRetry = func(error) bool { return true }
	retry.OnRetry = resilience.RetryLogger("llm", "chat_completion")

	text, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
		return p.llm.Complete(ctx, system, user)
	})
	if err != nil {
		zap.L().Error("pipeline: generation failed after retries", zap.Error(err))
		return "", err
	}

	return CleanAnswer(text), nil
}

// quoteNormalizer maps typographic quotes and dashes to plain ASCII.
var quoteNormalizer = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	" ", " ",
)

// controlStripper removes control and format characters after NFC
// normalization.
var controlStripper = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.Cc)),
	runes.Remove(runes.In(unicode.Cf)),
)

// CleanAnswer normalizes quotes, strips control characters and collapses
// whitespace in LLM output.
func CleanAnswer(text string) string {
	// Collapse whitespace first so newlines become spaces instead of
	// disappearing with the control characters.
	text = strings.Join(strings.Fields(text), " ")
	text = quoteNormalizer.Replace(text)
	if cleaned, _, err := transform.String(controlStripper, text); err == nil {
		text = cleaned
	}
	return strings.TrimSpace(text)
}
