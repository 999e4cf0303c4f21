package pipeline

import "fmt"

const systemPromptTemplate = "You are a helpful assistant for %s. " +
	"Answer the question using ONLY the provided context from the college website. " +
	"If the context does not contain the answer, say \"I couldn't find that information on the college website.\" " +
	"Do not invent facts."

const userPromptTemplate = "Context:\n%s\n\nQuestion: %s"

// BuildPrompt renders the fixed instruction template around the question
// and the assembled context.
func BuildPrompt(institution, question, contextText string) (system, user string) {
	system = fmt.Sprintf(systemPromptTemplate, institution)
	user = fmt.Sprintf(userPromptTemplate, contextText, question)
	return system, user
}
