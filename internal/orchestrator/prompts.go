package orchestrator

import (
	"fmt"
	"strings"

	"github.com/intellecta/intellecta/internal/llm"
	"github.com/intellecta/intellecta/internal/models"
)

const systemPrompt = "You are an assistant for energy-sector document analysis. " +
	"Answer strictly from the provided context passages. " +
	"If the context does not contain the answer, say so instead of guessing. " +
	"Cite facts from the passages; do not invent sources."

const finalAnswerMarker = "FINAL ANSWER:"

func buildContext(candidates []models.RerankedCandidate) string {
	var b strings.Builder
	for i, cand := range candidates {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, cand.Chunk.Filename, cand.Chunk.Content)
	}
	return b.String()
}

func buildMessages(query, contextText string, lang languageSettings, chainOfThought bool) []llm.Message {
	var user strings.Builder
	user.WriteString("Context passages:\n\n")
	user.WriteString(contextText)
	user.WriteString("Question: ")
	user.WriteString(query)
	user.WriteString("\n\n")

	if chainOfThought {
		user.WriteString("Think through the relevant passages step by step, ")
		user.WriteString("then give your conclusion on a new line starting with \"" + finalAnswerMarker + "\".")
	} else if lang.Translate {
		user.WriteString("Answer concisely in " + lang.Name + ".")
	} else {
		user.WriteString("Answer concisely.")
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: user.String()},
	}
}

// extractFinalAnswer pulls the conclusion out of a chain-of-thought
// completion. Completions without the marker are returned whole.
func extractFinalAnswer(completion string) string {
	if i := strings.LastIndex(completion, finalAnswerMarker); i >= 0 {
		return strings.TrimSpace(completion[i+len(finalAnswerMarker):])
	}
	return strings.TrimSpace(completion)
}

func translationMessages(text, from, to string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(
			"Translate the user's text from %s to %s. Reply with the translation only.", from, to)},
		{Role: llm.RoleUser, Content: text},
	}
}
