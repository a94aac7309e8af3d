package services

import (
	"strings"

	"google.golang.org/genai"

	"github.com/itish2003/searchdoc/models"
)

const systemPrompt = "You are a helpful assistant."

// GetSystemPrompt returns the system instruction in Gemini's content form.
func GetSystemPrompt() *genai.Content {
	contents := genai.Text(systemPrompt)
	if len(contents) == 0 {
		return nil
	}
	return contents[0]
}

// BuildAnswerPrompt asks the model to cite sources with the bracketed labels
// it was given, lists those labels with their URLs, and appends the search
// context the answer should be grounded on.
func BuildAnswerPrompt(question, searchContext string, citations []models.Citation) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString("\n\nPlease use the following citation format when referencing sources: [1], [2], etc. ")
	b.WriteString("The citations should correspond to the following references:\n")
	for i, c := range citations {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.Label)
		b.WriteString(": ")
		b.WriteString(c.URL)
	}
	if searchContext != "" {
		b.WriteString("\n\nSearch results:\n")
		b.WriteString(searchContext)
	}
	return b.String()
}
