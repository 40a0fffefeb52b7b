// Package llm turns a meeting prompt into a SummaryOutput using a chat
// completion backend.
package llm

import (
	"context"
	"errors"
)

// SystemPrompt is sent with every summarization request.
const SystemPrompt = `You are DayBrief, an expert meeting summarizer. Be concise and factual. Use only the provided context. Never invent details, owners, or dates. If information is missing, omit it rather than guessing.

Your response must be valid JSON with exactly this structure:
{
  "summaryMd": "markdown formatted bullet points",
  "actionItems": ["action item 1", "action item 2"],
  "confidence": 0.8
}`

const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 1000
)

var ErrNoContent = errors.New("No content in LLM response")

// Completer sends one system+user exchange and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
