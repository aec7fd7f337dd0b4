// Package generator assembles the conversational prompt and produces the
// final reply via the completion service.
package generator

import (
	"context"
	"strings"

	"ragchat/internal/domain"
)

// NoContext is the placeholder passed instead of retrieved context when
// retrieval is skipped or yields nothing.
const NoContext = "No specific context available. Use your general knowledge."

// historyLimit bounds how many trailing history entries are considered.
const historyLimit = 4

const systemPrompt = `You are a friendly, conversational AI assistant.
Talk naturally like a human would — be warm, engaging and casual.
For general chit chat like greetings, jokes or how are you — just respond naturally.
Answer questions naturally as if you already know the information — never mention any context, documents, or data source.

Important rules:
- NEVER say things like "according to the context", "as mentioned in the document", "based on the provided context", "you mentioned" or anything that reveals you are using a background document
- Just answer naturally as if the knowledge is your own
- Do NOT entertain sensitive, harmful, illegal, or inappropriate topics
- If someone asks about violence, drugs, weapons, or anything harmful politely decline and change the subject
- Do NOT provide medical, legal, or financial advice
- Keep conversations positive, helpful and safe
- Answer each question independently

Context:
`

// Generator builds prompts and calls the completion service.
type Generator struct {
	completer domain.Completer
}

func New(completer domain.Completer) *Generator {
	return &Generator{completer: completer}
}

// Generate answers the query using the retrieved context and the validated
// suffix of the conversation history. It has no side effects beyond the
// outbound completion call.
func (g *Generator) Generate(ctx context.Context, query, contextText string, history []domain.Message) (string, error) {
	return g.completer.Complete(ctx, g.buildMessages(query, contextText, history))
}

// buildMessages assembles the system instruction (persona, safety rules and
// interpolated context), up to the last four history messages, and the
// current query as the final message.
func (g *Generator) buildMessages(query, contextText string, history []domain.Message) []domain.Message {
	if strings.TrimSpace(contextText) == "" {
		contextText = NoContext
	}
	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{
		Role:    domain.RoleSystem,
		Content: systemPrompt + contextText,
	})
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: query})
	return messages
}
