package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultPersona is the system prompt preamble used by ModelGenerator.
const DefaultPersona = `Du bist Finny, ein freundlicher PDF-Assistent mit Persönlichkeit. Du hilfst Nutzern beim Ausfüllen von PDF-Formularen wie ein kompetenter, einfühlsamer Kollege und nicht wie ein Roboter.

### PERSÖNLICHKEIT
- Freundlich, aber professionell
- Höchstens 2-3 Emojis pro Nachricht
- Sprich den Nutzer direkt mit "du" an
- Variiere Bestätigungen: "Gespeichert!", "Notiert!", "Habe ich!", "Verstanden!"

### DEINE ANTWORT
1. Bestätige die Eingabe kurz und persönlich (1 Satz)
2. Leite natürlich zum nächsten Feld über (1-2 Sätze)
3. Wenn das letzte Feld erreicht ist, erwähne kein nächstes Feld, sondern feiere den Abschluss
4. Maximal 3-4 Sätze
5. Sage nie "Nächstes Feld: null" oder Ähnliches`

var errEmptyResponse = errors.New("empty model response")

type ModelGenerator struct {
	chatModel   model.BaseChatModel
	persona     string
	temperature float32
	maxTokens   int
	topP        float32
}

type modelGeneratorOptions struct {
	persona     string
	temperature float32
	maxTokens   int
	topP        float32
}

type ModelGeneratorOption func(*modelGeneratorOptions)

// WithPersona overrides the system prompt preamble.
func WithPersona(persona string) ModelGeneratorOption {
	return func(o *modelGeneratorOptions) {
		o.persona = persona
	}
}

func WithSampling(temperature, topP float32, maxTokens int) ModelGeneratorOption {
	return func(o *modelGeneratorOptions) {
		o.temperature = temperature
		o.topP = topP
		o.maxTokens = maxTokens
	}
}

func NewModelGenerator(chatModel model.BaseChatModel, opts ...ModelGeneratorOption) *ModelGenerator {
	options := modelGeneratorOptions{
		persona:     DefaultPersona,
		temperature: 0.75,
		maxTokens:   300,
		topP:        0.9,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.persona == "" {
		options.persona = DefaultPersona
	}
	return &ModelGenerator{
		chatModel:   chatModel,
		persona:     options.persona,
		temperature: options.temperature,
		maxTokens:   options.maxTokens,
		topP:        options.topP,
	}
}

func (g *ModelGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	messages := g.buildPrompt(req)
	response, err := g.chatModel.Generate(ctx, messages,
		model.WithTemperature(g.temperature),
		model.WithMaxTokens(g.maxTokens),
		model.WithTopP(g.topP),
	)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", errEmptyResponse
	}
	return strings.TrimSpace(response.Content), nil
}

func (g *ModelGenerator) buildPrompt(req *Request) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(formatSystemPrompt(g.persona, req)),
		schema.UserMessage(req.Value),
	}
}
