package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	system, user := BuildPrompt(
		"Rajagiri School of Engineering and Technology, Kochi",
		"What is the hostel fee?",
		"### Hostel (https://www.rajagiritech.ac.in/hostel)\nThe hostel fee is 40000 per year.",
	)

	assert.Contains(t, system, "Rajagiri School of Engineering and Technology, Kochi")
	assert.Contains(t, system, "ONLY the provided context")
	assert.Contains(t, system, "I couldn't find that information on the college website.")

	assert.Contains(t, user, "Context:\n### Hostel")
	assert.Contains(t, user, "Question: What is the hostel fee?")
}

func TestBuildPrompt_FallbackInstructionMatchesHedgeDetection(t *testing.T) {
	system, _ := BuildPrompt("RSET", "q", "ctx")

	// The refusal wording the model is told to use must trip the default
	// hedge phrases, otherwise refusals would get source links attached.
	assert.False(t, IsConfident("I couldn't find that information on the college website.", testPipelineConfig().Answer.HedgePhrases))
	assert.Contains(t, system, "couldn't find")
}
