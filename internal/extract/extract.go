// Package extract scores heading-delimited sections of a cleaned page
// against the query and returns a length-bounded excerpt.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rset-labs/campus-assist/internal/model"
)

// Scoring weights. Heading matches are the strongest relevance signal,
// plain occurrences are baseline, sentence-level matches a weaker
// secondary signal, and long sections pay a mild density penalty.
const (
	headingWeight  = 3.0
	sentenceWeight = 0.5
	lengthPenalty  = 0.1 // per 1000 chars of section body
)

// maxSentencesPerSection caps how many matching sentences represent a
// section in the excerpt.
const maxSentencesPerSection = 5

var (
	markdownHeadingRe = regexp.MustCompile(`^#{1,6}\s+\S`)
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+\S`)
	letterRe          = regexp.MustCompile(`[A-Za-z]`)
	wordRe            = regexp.MustCompile(`[a-z0-9]+`)
)

// Extract returns the most relevant parts of page for query, at most
// maxLen characters. An empty string means no section scored positively
// and the page contributes nothing.
func Extract(page model.ScrapedPage, query string, maxLen int) string {
	keywords := QueryKeywords(query)
	if len(keywords) == 0 {
		return ""
	}

	sections := SplitSections(page.Text)
	scored := make([]model.ScoredSection, 0, len(sections))
	for _, s := range sections {
		s.Score = Score(s, keywords)
		if s.Score > 0 {
			scored = append(scored, s)
		}
	}
	if len(scored) == 0 {
		return ""
	}

	// Stable keeps document order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	var b strings.Builder
	for _, s := range scored {
		repr := represent(s, keywords)
		if repr == "" {
			continue
		}
		extra := len(repr)
		if b.Len() > 0 {
			extra += 2 // the "\n\n" joiner
		}
		if b.Len()+extra > maxLen {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(repr)
	}
	return b.String()
}

// QueryKeywords returns the lowercase query words of length >= 3.
func QueryKeywords(query string) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range wordRe.FindAllString(strings.ToLower(query), -1) {
		if len(w) < 3 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// SplitSections partitions cleaned page text into heading-delimited
// sections. Text before the first heading becomes a heading-less section.
func SplitSections(text string) []model.ScoredSection {
	var sections []model.ScoredSection
	var cur model.ScoredSection
	var body []string
	lastWasHeading := false

	flush := func() {
		cur.Text = strings.TrimSpace(strings.Join(body, "\n"))
		if cur.Text != "" || len(cur.Headings) > 0 {
			sections = append(sections, cur)
		}
		cur = model.ScoredSection{}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if IsHeadingLine(line) {
			if !lastWasHeading && (len(body) > 0 || len(cur.Headings) > 0) {
				flush()
			}
			cur.Headings = append(cur.Headings, strings.TrimLeft(line, "# "))
			lastWasHeading = true
			continue
		}
		body = append(body, line)
		lastWasHeading = false
	}
	flush()

	return sections
}

// IsHeadingLine reports whether a line looks like a section heading:
// markdown-style, numbered, or a short all-caps line.
func IsHeadingLine(line string) bool {
	if markdownHeadingRe.MatchString(line) {
		return true
	}
	if len(line) <= 80 && numberedHeadingRe.MatchString(line) {
		return true
	}
	if len(line) <= 60 && letterRe.MatchString(line) && line == strings.ToUpper(line) {
		return true
	}
	return false
}

// Score computes the relevance of a section:
// occurrences + 3×heading occurrences + 0.5×matching sentences − 0.1 per
// 1000 chars of body. Heading hits are scored apart from the body so an
// extra matching heading moves the score by exactly the heading weight.
func Score(s model.ScoredSection, keywords []string) float64 {
	bodyTokens := tokenize(s.Text)
	headingTokens := tokenize(strings.Join(s.Headings, " "))

	hits := countHits(bodyTokens, keywords)
	headingHits := countHits(headingTokens, keywords)

	matching := 0
	for _, sentence := range SplitSentences(s.Text) {
		if containsAny(tokenize(sentence), keywords) {
			matching++
		}
	}

	return float64(hits) +
		headingWeight*float64(headingHits) +
		sentenceWeight*float64(matching) -
		lengthPenalty*float64(len(s.Text))/1000.0
}

// SplitSentences splits text into sentences on ./!/? boundaries.
func SplitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// represent renders a section as its heading line(s) plus the first
// matching sentences, falling back to the whole body when no single
// sentence matched.
func represent(s model.ScoredSection, keywords []string) string {
	var parts []string
	if len(s.Headings) > 0 {
		parts = append(parts, strings.Join(s.Headings, "\n"))
	}

	var matched []string
	for _, sentence := range SplitSentences(s.Text) {
		if containsAny(tokenize(sentence), keywords) {
			matched = append(matched, sentence)
			if len(matched) == maxSentencesPerSection {
				break
			}
		}
	}
	if len(matched) > 0 {
		parts = append(parts, strings.Join(matched, " "))
	} else if s.Text != "" {
		parts = append(parts, s.Text)
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

func countHits(tokens, keywords []string) int {
	hits := 0
	for _, t := range tokens {
		for _, k := range keywords {
			if t == k {
				hits++
				break
			}
		}
	}
	return hits
}

func containsAny(tokens, keywords []string) bool {
	for _, t := range tokens {
		for _, k := range keywords {
			if t == k {
				return true
			}
		}
	}
	return false
}
