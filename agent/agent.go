package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var _ adk.Agent = (*Agent)(nil)

type sessionIDContext struct{}

const defaultSessionID = "default"

// WithSessionID routes Agent runs on ctx to the given session.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContext{}, id)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDContext{}).(string)
	return id, ok && id != ""
}

func sessionIDOrDefault(ctx context.Context) string {
	if id, ok := SessionIDFromContext(ctx); ok {
		return id
	}
	return defaultSessionID
}

// Agent exposes the Engine as an adk agent. Each run handles the last user
// message of the input.
type Agent struct {
	name        string
	description string
	engine      *Engine
}

func NewAgent(name, description string, engine *Engine) *Agent {
	return &Agent{
		name:        name,
		description: description,
		engine:      engine,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			if e := recover(); e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		message, ok := lastUserMessage(input)
		if !ok {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no user message in input"),
			})
			return
		}
		resp, err := a.engine.HandleMessage(ctx, sessionIDOrDefault(ctx), message, ClientHints{})
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("handle message failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			AgentName: a.name,
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message:     schema.AssistantMessage(resp.Message, nil),
					Role:        schema.Assistant,
				},
				CustomizedOutput: resp,
			},
		})
	}()
	return iter
}

func lastUserMessage(input *adk.AgentInput) (string, bool) {
	if input == nil {
		return "", false
	}
	for i := len(input.Messages) - 1; i >= 0; i-- {
		if m := input.Messages[i]; m != nil && m.Role == schema.User {
			return m.Content, true
		}
	}
	return "", false
}
