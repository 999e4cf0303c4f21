package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rset-labs/campus-assist/internal/model"
)

func doc(source, title, excerpt string) model.ContextDocument {
	return model.ContextDocument{Source: source, Title: title, Excerpt: excerpt}
}

func TestAssembleContext_AllFit(t *testing.T) {
	docs := []model.ContextDocument{
		doc("https://a.example/1", "Hostel", "The hostel fee is 40000."),
		doc("https://a.example/2", "Mess", "Mess charges are separate."),
	}

	text, used := assembleContext(docs, "hostel fee", 8000)
	require.Len(t, used, 2)
	assert.Contains(t, text, "The hostel fee is 40000.")
	assert.Contains(t, text, "Mess charges are separate.")
	assert.Contains(t, text, "### Hostel (https://a.example/1)")
}

func TestAssembleContext_StopsAtFirstOverflow(t *testing.T) {
	docs := []model.ContextDocument{
		doc("https://a.example/1", "T1", strings.Repeat("x", 150)),
		doc("https://a.example/2", "T2", strings.Repeat("y", 120)),
		doc("https://a.example/3", "T3", strings.Repeat("z", 10)),
	}

	// Budget admits the first document only. The second overflows, and
	// assembly stops there even though the third would still fit.
	text, used := assembleContext(docs, "unrelated query", 250)
	require.Len(t, used, 1)
	assert.Equal(t, "T1", used[0].Title)
	assert.NotContains(t, text, "zzz")
	assert.LessOrEqual(t, len(text), 250)
}

func TestAssembleContext_BudgetNeverExceeded(t *testing.T) {
	docs := []model.ContextDocument{
		doc("https://a.example/1", "A", strings.Repeat("a", 300)),
		doc("https://a.example/2", "B", strings.Repeat("b", 300)),
	}

	for _, budget := range []int{0, 50, 350, 700, 10000} {
		text, _ := assembleContext(docs, "q", budget)
		assert.LessOrEqual(t, len(text), budget, "budget %d", budget)
	}
}

func TestAssembleContext_DedupesBySource(t *testing.T) {
	docs := []model.ContextDocument{
		doc("https://a.example/1", "First", "Content one."),
		doc("https://a.example/1", "Duplicate", "Content two."),
	}

	_, used := assembleContext(docs, "content", 8000)
	require.Len(t, used, 1)
	assert.Equal(t, "First", used[0].Title)
}

func TestSortByPriority_TitleMatchesFirst(t *testing.T) {
	docs := []model.ContextDocument{
		doc("https://a.example/other", "Campus Map", strings.Repeat("a", 900)),
		doc("https://a.example/fees", "Hostel Fee Structure", "short"),
	}

	sortByPriority(docs, "hostel fee")
	assert.Equal(t, "Hostel Fee Structure", docs[0].Title)
}

func TestSortByPriority_LongerExcerptBreaksTies(t *testing.T) {
	docs := []model.ContextDocument{
		doc("https://a.example/1", "Admissions", "short"),
		doc("https://a.example/2", "Admissions FAQ", "a much longer excerpt with more detail in it"),
	}

	sortByPriority(docs, "placement statistics")
	assert.Equal(t, "Admissions FAQ", docs[0].Title)
}

func TestSortByPriority_StableForEqualDocs(t *testing.T) {
	docs := []model.ContextDocument{
		doc("https://a.example/1", "Same", "equal length"),
		doc("https://a.example/2", "Same", "equal length"),
		doc("https://a.example/3", "Same", "equal length"),
	}

	sortByPriority(docs, "anything")
	assert.Equal(t, "https://a.example/1", docs[0].Source)
	assert.Equal(t, "https://a.example/2", docs[1].Source)
	assert.Equal(t, "https://a.example/3", docs[2].Source)
}

func TestTitleMatches(t *testing.T) {
	assert.Equal(t, 2, titleMatches("Hostel Fee Structure", []string{"hostel", "fee"}))
	assert.Equal(t, 0, titleMatches("Campus Map", []string{"hostel", "fee"}))
	assert.Equal(t, 1, titleMatches("HOSTEL RULES", []string{"hostel", "fee"}))
}
