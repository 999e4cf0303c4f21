package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML_StripsNonContent(t *testing.T) {
	raw := []byte(`<html><head>
		<title>RSET</title>
		<script>var x = 1;</script>
		<style>body { color: red; }</style>
	</head><body>
		<nav>Home | About | Contact</nav>
		<header>Site banner</header>
		<p>The college library is open from 8am to 8pm.</p>
		<footer>Copyright 2024</footer>
	</body></html>`)

	got := CleanHTML(raw, 0)
	assert.Contains(t, got, "The college library is open from 8am to 8pm.")
	assert.NotContains(t, got, "var x")
	assert.NotContains(t, got, "color: red")
	assert.NotContains(t, got, "Home | About")
	assert.NotContains(t, got, "Site banner")
	assert.NotContains(t, got, "Copyright")
}

func TestCleanHTML_HeadingsUppercasedOnOwnLine(t *testing.T) {
	raw := []byte(`<body><h2>Hostel Facilities</h2><p>Separate hostels for men and women.</p></body>`)

	got := CleanHTML(raw, 0)
	lines := strings.Split(got, "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "HOSTEL FACILITIES", lines[0])
	assert.Equal(t, "Separate hostels for men and women.", lines[1])
}

func TestCleanHTML_ListItemsPrefixed(t *testing.T) {
	raw := []byte(`<body><ul><li>Computer Science</li><li>Electronics</li></ul></body>`)

	got := CleanHTML(raw, 0)
	assert.Contains(t, got, "- Computer Science")
	assert.Contains(t, got, "- Electronics")
}

func TestCleanHTML_TableRowsFlattened(t *testing.T) {
	raw := []byte(`<body><table>
		<tr><th>Course</th><th>Fee</th></tr>
		<tr><td>B.Tech CSE</td><td>75000</td></tr>
	</table></body>`)

	got := CleanHTML(raw, 0)
	assert.Contains(t, got, "Course | Fee")
	assert.Contains(t, got, "B.Tech CSE | 75000")
}

func TestCleanHTML_CollapsesWhitespaceWithinLines(t *testing.T) {
	raw := []byte("<body><p>Admission    process\t\tstarts   in June.</p></body>")

	got := CleanHTML(raw, 0)
	assert.Contains(t, got, "Admission process starts in June.")
	for _, line := range strings.Split(got, "\n") {
		assert.NotContains(t, line, "  ")
		assert.NotEqual(t, "", line)
	}
}

func TestCleanHTML_TruncatesAtCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<body>")
	for i := 0; i < 200; i++ {
		sb.WriteString("<p>The quick brown fox jumps over the lazy dog.</p>")
	}
	sb.WriteString("</body>")

	got := CleanHTML([]byte(sb.String()), 500)
	assert.LessOrEqual(t, len([]rune(got)), 500)
	assert.NotEmpty(t, got)
}

func TestCleanHTML_TruncateDoesNotSplitRunes(t *testing.T) {
	raw := []byte("<body><p>" + strings.Repeat("വിദ്യാർത്ഥി ", 200) + "</p></body>")

	got := CleanHTML(raw, 300)
	assert.True(t, strings.HasPrefix(got, "വ"))
	for _, r := range got {
		assert.NotEqual(t, '�', r)
	}
}

func TestCleanHTML_Deterministic(t *testing.T) {
	raw := []byte(`<body><h1>Departments</h1><ul><li>CSE</li><li>ECE</li></ul><p>Nine departments in total.</p></body>`)

	first := CleanHTML(raw, 8000)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, CleanHTML(raw, 8000))
	}
}

func TestCleanHTML_EmptyAndGarbageInput(t *testing.T) {
	assert.Equal(t, "", CleanHTML(nil, 8000))
	assert.Equal(t, "", CleanHTML([]byte("   \n\t  "), 8000))
	// The parser is forgiving; broken markup still yields its text.
	got := CleanHTML([]byte("<p>unclosed paragraph"), 8000)
	assert.Contains(t, got, "unclosed paragraph")
}
