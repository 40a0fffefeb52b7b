package llm

import (
	"context"
	"log"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"daybrief-backend/internal/metrics"
	"daybrief-backend/internal/models"
)

const DefaultMaxRetries = 2

// Generator calls a Completer with linear backoff and parses its reply.
type Generator struct {
	completer  Completer
	maxRetries int
	unit       time.Duration
}

type GeneratorOption func(*Generator)

func WithMaxRetries(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 0 {
			g.maxRetries = n
		}
	}
}

// WithBackoffUnit sets the delay step; attempt n waits n*unit before retrying.
func WithBackoffUnit(d time.Duration) GeneratorOption {
	return func(g *Generator) { g.unit = d }
}

func NewGenerator(c Completer, opts ...GeneratorOption) *Generator {
	g := &Generator{completer: c, maxRetries: DefaultMaxRetries, unit: time.Second}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// linearBackOff waits unit, 2*unit, 3*unit... between attempts.
type linearBackOff struct {
	unit    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.unit
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

// Generate returns the parsed summary or the last error once every attempt
// has failed.
func (g *Generator) Generate(ctx context.Context, prompt string) (models.SummaryOutput, error) {
	var (
		out     models.SummaryOutput
		attempt int
	)
	op := func() error {
		attempt++
		content, err := g.completer.Complete(ctx, SystemPrompt, prompt)
		if err != nil {
			metrics.LLMAttempts.WithLabelValues("error").Inc()
			log.Printf("⚠ LLM attempt %d failed: %v", attempt, err)
			return err
		}
		metrics.LLMAttempts.WithLabelValues("ok").Inc()

		parsed, stage := Parse(content)
		metrics.ParseStage.WithLabelValues(stage).Inc()
		if stage == "none" {
			log.Printf("⚠ LLM attempt %d returned blank content", attempt)
			return ErrNoContent
		}
		out = parsed
		if stage == "fallback" {
			log.Printf("⚠ LLM reply was not JSON, using raw text (%d chars)", len(content))
		}
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{unit: g.unit}, uint64(g.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(op, b); err != nil {
		return models.SummaryOutput{}, err
	}
	return out, nil
}
