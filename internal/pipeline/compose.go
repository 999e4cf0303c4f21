package pipeline

import (
	"strings"

	"github.com/rset-labs/campus-assist/internal/model"
)

// compose turns the generated text into the final ChatAnswer. Source
// links are attached only when the answer is confident and at least one
// document actually made it into the assembled context; unused search
// hits are never cited.
func (p *Pipeline) compose(answer string, used []model.ContextDocument) model.ChatAnswer {
	confident := IsConfident(answer, p.cfg.Answer.HedgePhrases)

	out := model.ChatAnswer{
		Text:      answer,
		Confident: confident,
	}
	if !confident || len(used) == 0 {
		return out
	}

	var b strings.Builder
	b.WriteString(answer)
	b.WriteString("\n\nFor more information:")
	for _, d := range used {
		out.Sources = append(out.Sources, model.SourceRef{Title: d.Title, Link: d.Source})
		b.WriteString("\n- ")
		if d.Title != "" {
			b.WriteString(d.Title)
			b.WriteString(": ")
		}
		b.WriteString(d.Source)
	}
	out.Text = b.String()

	return out
}

// IsConfident reports whether none of the hedge phrases appears in the
// answer (case-insensitive substring match).
func IsConfident(answer string, hedgePhrases []string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range hedgePhrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return false
		}
	}
	return true
}
