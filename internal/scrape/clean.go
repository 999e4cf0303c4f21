package scrape

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// skipTags are structural elements that never carry visible prose.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true,
	"header": true, "footer": true, "form": true, "iframe": true,
	"svg": true, "img": true, "video": true, "audio": true,
	"button": true, "select": true, "object": true, "embed": true,
	"aside": true,
}

// blockTags start a new output line so headings and paragraphs stay
// separable downstream.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"table": true, "ul": true, "ol": true, "br": true,
	"thead": true, "tbody": true, "main": true, "blockquote": true,
}

// headingTags map heading elements to true.
var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// CleanHTML reduces raw HTML to capped plain text. Headings are kept as
// upper-cased lines, list items get a "- " prefix, and table rows are
// flattened with a " | " column delimiter. Within a line, whitespace
// runs collapse to a single space. The output is a pure function of the
// input bytes.
func CleanHTML(raw []byte, maxChars int) string {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var b strings.Builder
	walk(doc, &b)

	text := normalizeLines(b.String())
	return truncate(text, maxChars)
}

func walk(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		switch {
		case skipTags[n.Data]:
			return
		case headingTags[n.Data]:
			if t := innerText(n); t != "" {
				b.WriteString("\n")
				b.WriteString(strings.ToUpper(t))
				b.WriteString("\n")
			}
			return
		case n.Data == "li":
			if t := innerText(n); t != "" {
				b.WriteString("\n- ")
				b.WriteString(t)
				b.WriteString("\n")
			}
			return
		case n.Data == "tr":
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					if t := innerText(c); t != "" {
						cells = append(cells, t)
					}
				}
			}
			if len(cells) > 0 {
				b.WriteString("\n")
				b.WriteString(strings.Join(cells, " | "))
				b.WriteString("\n")
			}
			return
		case blockTags[n.Data]:
			b.WriteString("\n")
		}
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteString(" ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}
}

// innerText gathers the visible text beneath n with whitespace collapsed.
func innerText(n *html.Node) string {
	var b strings.Builder
	var gather func(*html.Node)
	gather = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			gather(c)
		}
	}
	gather(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// normalizeLines collapses within-line whitespace and drops empty lines,
// keeping line boundaries so section detection still sees document
// structure.
func normalizeLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// truncate caps s at maxChars without splitting a rune.
func truncate(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	if len(runes) > maxChars {
		runes = runes[:maxChars]
	}
	return strings.TrimSpace(string(runes))
}
