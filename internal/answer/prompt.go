package answer

import (
	"fmt"
	"strings"

	"github.com/askdoc/askdoc/internal/openai"
	"github.com/askdoc/askdoc/internal/retrieval"
)

// Response format markers the model is instructed to emit. Parsing in
// splitAnswer depends on these exact strings.
const (
	conciseMarker   = "Concise Answer:"
	reasoningMarker = "Reasoning:"
)

const instructionTemplate = `You are a helpful AI assistant specializing in the document "%s".
Answer the user's question ONLY based on the provided context.
If the answer is not found in the context, clearly state that you don't have enough information from the document to answer the question. Do not make up answers.

First, provide a concise answer.
Then, in a separate "Reasoning" section, elaborate on your answer, directly quoting or paraphrasing key details from the context to support your response.

Format your response exactly as:
Concise Answer: <your concise answer>
Reasoning: <your supporting reasoning>`

// buildMessages assembles the chat request: a system instruction with the
// retrieved context, the prior exchanges, and the current question.
func buildMessages(docName string, chunks []retrieval.ContextChunk, history []Turn, question string) []openai.Message {
	var context strings.Builder
	for i, c := range chunks {
		if i > 0 {
			context.WriteString("\n\n")
		}
		fmt.Fprintf(&context, "[Page %d] %s", c.Page, c.Text)
	}

	system := fmt.Sprintf(instructionTemplate, docName)
	system += "\n\nContext:\n" + context.String()

	messages := make([]openai.Message, 0, len(history)*2+2)
	messages = append(messages, openai.Message{Role: "system", Content: system})
	for _, t := range history {
		messages = append(messages, openai.Message{Role: "user", Content: t.Question})
		messages = append(messages, openai.Message{Role: "assistant", Content: t.Answer})
	}
	messages = append(messages, openai.Message{Role: "user", Content: question})
	return messages
}
