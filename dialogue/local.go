package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const CompletionMessage = "🎊 **Herzlichen Glückwunsch!** Alle Felder sind ausgefüllt. Du kannst das PDF jetzt herunterladen!"

// LocalGenerator confirms the stored value without calling a model.
type LocalGenerator struct{}

func (g *LocalGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	msg := fmt.Sprintf("✅ \"%s\" für **%s** gespeichert!", req.Value, req.FieldName)
	switch {
	case req.Complete():
		msg += "\n\n" + CompletionMessage
	case req.Remaining <= 3:
		unit := "Feld"
		if req.Remaining > 1 {
			unit = "Felder"
		}
		msg += fmt.Sprintf("\n\n🎉 Fast geschafft! Nur noch %d %s, als Nächstes **%s**. Du schaffst das!", req.Remaining, unit, req.NextField)
	default:
		msg += fmt.Sprintf("\n\nNächstes Feld: **%s**. Weiter so!", req.NextField)
	}
	return msg, nil
}

type FailbackGenerator struct {
	generators []Generator
}

func NewFailbackGenerator(generators ...Generator) *FailbackGenerator {
	return &FailbackGenerator{generators: generators}
}

func (g *FailbackGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	var lastErr error
	for _, generator := range g.generators {
		msg, err := generator.GenerateDialogue(ctx, req)
		if err == nil {
			return msg, nil
		}
		slog.Warn("dialogue generator failed, trying next", "err", err)
		lastErr = err
	}
	return "", fmt.Errorf("all dialogue generators failed: %w", lastErr)
}

// TimeoutGenerator bounds the wrapped generator. A result that arrives after
// the deadline is discarded.
type TimeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

func NewTimeoutGenerator(next Generator, timeout time.Duration) *TimeoutGenerator {
	return &TimeoutGenerator{next: next, timeout: timeout}
}

type generated struct {
	msg string
	err error
}

func (g *TimeoutGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	if g.timeout <= 0 {
		return g.next.GenerateDialogue(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan generated, 1)
	go func() {
		msg, err := g.next.GenerateDialogue(ctx, req)
		done <- generated{msg: msg, err: err}
	}()

	select {
	case res := <-done:
		return res.msg, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, g.timeout)
		}
		return "", ctx.Err()
	}
}

// NewDefaultGenerator chains the model generator, bounded by timeout, with
// the local fallback. A nil chat model yields the local generator alone.
func NewDefaultGenerator(model *ModelGenerator, timeout time.Duration) Generator {
	if model == nil {
		return &LocalGenerator{}
	}
	return NewFailbackGenerator(NewTimeoutGenerator(model, timeout), &LocalGenerator{})
}
