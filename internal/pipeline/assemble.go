package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rset-labs/campus-assist/internal/extract"
	"github.com/rset-labs/campus-assist/internal/model"
)

// assembleContext concatenates document excerpts in priority order under
// a hard character budget. The first document that would overflow the
// budget ends assembly entirely; later documents are never consulted,
// which keeps the truncation policy predictable. Returns the assembled
// text and the documents actually used.
func assembleContext(docs []model.ContextDocument, query string, budget int) (string, []model.ContextDocument) {
	docs = dedupeBySource(docs)
	sortByPriority(docs, query)

	var b strings.Builder
	var used []model.ContextDocument
	for _, d := range docs {
		block := formatBlock(d)
		extra := len(block)
		if b.Len() > 0 {
			extra += 2
		}
		if b.Len()+extra > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		used = append(used, d)
	}

	return b.String(), used
}

// sortByPriority orders documents by query terms matching the title,
// then by excerpt length, both descending. The sort is stable so search
// rank breaks remaining ties.
func sortByPriority(docs []model.ContextDocument, query string) {
	keywords := extract.QueryKeywords(query)
	matches := make(map[string]int, len(docs))
	for _, d := range docs {
		matches[d.Source] = titleMatches(d.Title, keywords)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		mi, mj := matches[docs[i].Source], matches[docs[j].Source]
		if mi != mj {
			return mi > mj
		}
		return len(docs[i].Excerpt) > len(docs[j].Excerpt)
	})
}

// titleMatches counts the distinct query keywords present in a title.
func titleMatches(title string, keywords []string) int {
	lower := strings.ToLower(title)
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

func dedupeBySource(docs []model.ContextDocument) []model.ContextDocument {
	seen := make(map[string]bool, len(docs))
	out := docs[:0:0]
	for _, d := range docs {
		if seen[d.Source] {
			continue
		}
		seen[d.Source] = true
		out = append(out, d)
	}
	return out
}

func formatBlock(d model.ContextDocument) string {
	return fmt.Sprintf("### %s (%s)\n%s", d.Title, d.Source, d.Excerpt)
}
