package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/sahilm/fuzzy"
	"github.com/tbxark/formpilot/catalog"
	"github.com/tbxark/formpilot/dialogue"
	"github.com/tbxark/formpilot/intent"
	"github.com/tbxark/formpilot/patch"
	"github.com/tbxark/formpilot/types"
	"github.com/tbxark/formpilot/validate"
)

var ErrSessionNotFound = errors.New("session not found")

// ClientHints carries the state a client believes the session is in. It is
// used to reconcile after the server lost the session.
type ClientHints struct {
	Cursor *int
	Values map[string]string
}

type Engine struct {
	store      SessionStore
	generator  dialogue.Generator
	recognizer *intent.LocalIntentRecognizer
	catalog    *catalog.Catalog
	now        func() time.Time
}

type EngineOption func(*Engine)

func WithGenerator(g dialogue.Generator) EngineOption {
	return func(e *Engine) {
		e.generator = g
	}
}

func WithRecognizer(r *intent.LocalIntentRecognizer) EngineOption {
	return func(e *Engine) {
		e.recognizer = r
	}
}

func WithCatalog(c *catalog.Catalog) EngineOption {
	return func(e *Engine) {
		e.catalog = c
	}
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(store SessionStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:      store,
		generator:  &dialogue.LocalGenerator{},
		recognizer: intent.NewLocalIntentRecognizer(),
		catalog:    catalog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// CreateSession starts a conversation over fields and returns the
// introduction of the first field. An existing session with the same id is
// replaced.
func (e *Engine) CreateSession(ctx context.Context, id, documentURL string, fields []types.Field) (string, error) {
	s := NewSession(id, documentURL, fields, e.now())
	intro := msgNoFields
	if first, ok := s.Active(); ok {
		intro = catalog.Intro(first.Name)
	}
	s.History = append(s.History, schema.AssistantMessage(intro, nil))
	if err := e.store.Put(ctx, s); err != nil {
		return "", fmt.Errorf("failed to store session %s: %w", id, err)
	}
	slog.Debug("session created", "session_id", id, "fields", len(fields))
	return intro, nil
}

func (e *Engine) HandleMessage(ctx context.Context, sessionID, message string, hints ClientHints) (*Response, error) {
	ctx = callbacks.EnsureRunInfo(ctx, "FormPilot", "Engine")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"session_id": sessionID,
		"message":    message,
	})

	resp, err := e.handleMessage(ctx, sessionID, message, hints)
	if err != nil {
		callbacks.OnError(ctx, err)
		return nil, err
	}

	callbacks.OnEnd(ctx, map[string]any{
		"action":      string(resp.Action),
		"next_cursor": resp.NextCursor,
	})
	return resp, nil
}

func (e *Engine) handleMessage(ctx context.Context, sessionID, message string, hints ClientHints) (*Response, error) {
	s, err := e.resolve(ctx, sessionID, hints)
	if err != nil {
		return nil, err
	}

	resp := e.dispatch(ctx, s, message)

	s.record(message, resp.Message)
	s.UpdatedAt = e.now()
	if err := e.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to store session %s: %w", sessionID, err)
	}
	return resp, nil
}

// resolve loads the session, synthesizing an empty one on a miss, and
// merges the client hints into it.
func (e *Engine) resolve(ctx context.Context, id string, hints ClientHints) (*Session, error) {
	s, ok, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if !ok {
		slog.Warn("session not found, recovering from client state", "session_id", id)
		s = NewSession(id, "", nil, e.now())
	}
	if hints.Cursor != nil {
		s.Cursor = *hints.Cursor
	}
	if len(hints.Values) > 0 {
		merged, err := patch.MergeValues(s.Values, hints.Values)
		if err != nil {
			return nil, fmt.Errorf("failed to merge client values: %w", err)
		}
		s.Values = merged
	}
	s.normalize()
	return s, nil
}

func (e *Engine) dispatch(ctx context.Context, s *Session, message string) *Response {
	in := e.recognizer.Classify(message)
	field, ok := s.Active()
	if !ok {
		// A completed form only reopens through back.
		if in.Kind == intent.Back && s.Cursor > 0 {
			return stepBack(s)
		}
		return reply(ActionCompleted, msgCompleted)
	}
	slog.Debug("classified message", "session_id", s.ID, "intent", in.Kind, "command", in.IsCommand(), "field", field.Name)

	switch in.Kind {
	case intent.ShowCommands:
		return reply(ActionShowCommands, commandsText())
	case intent.Help:
		hint, found := e.catalog.Lookup(field.Name)
		return reply(ActionHelp, helpText(field, hint, found))
	case intent.Clear:
		s.Values[field.Name] = ""
		return changed(ActionFieldCleared, clearedText(field), s.Cursor, s.Values)
	case intent.Skip:
		s.Values[field.Name] = ""
		s.Cursor++
		return changed(ActionSkip, withNext(msgSkipped, s), s.Cursor, s.Values)
	case intent.Back:
		if s.Cursor == 0 {
			return reply(ActionAtFirstField, msgAtFirstField)
		}
		return stepBack(s)
	case intent.Status:
		return reply(ActionStatus, statusText(statusOf(s), field))
	case intent.Finish:
		return reply(ActionFinish, finishText(s))
	case intent.Navigate:
		idx, suggestion := findField(s.Fields, in.Target)
		if idx < 0 {
			return reply(ActionFieldNotFound, notFoundText(in.Target, suggestion))
		}
		s.Cursor = idx
		return moved(ActionNavigate, navigateText(s.Fields[idx]), s.Cursor)
	}

	if catalog.Classify(field.Name).Type == catalog.TypeCheckbox {
		if checked, ok := e.recognizer.ClassifyCheckbox(message); ok {
			value, msg := "", msgUnchecked
			if checked {
				value, msg = "X", msgChecked
			}
			s.Values[field.Name] = value
			s.Cursor++
			return changed(ActionFieldSaved, withNext(msg, s), s.Cursor, s.Values)
		}
	}

	if result := validate.Validate(message, field); !result.Valid {
		return reply(ActionInvalidInput, invalidText(result.Reason))
	}

	value := strings.TrimSpace(message)
	s.Values[field.Name] = value
	s.Cursor++
	return changed(ActionFieldSaved, e.compose(ctx, s, field, value), s.Cursor, s.Values)
}

func stepBack(s *Session) *Response {
	s.Cursor--
	prev, _ := s.Active()
	return moved(ActionBack, backText(prev), s.Cursor)
}

// compose asks the generator for the confirmation of a stored value. The
// next field is always taken from the session.
func (e *Engine) compose(ctx context.Context, s *Session, field types.Field, value string) string {
	req := &dialogue.Request{
		FieldName: field.Name,
		Value:     value,
		Answered:  s.Cursor,
		Total:     len(s.Fields),
		Remaining: len(s.Fields) - s.Cursor,
	}
	if next, ok := s.Active(); ok {
		req.NextField = next.Name
	}
	msg, err := e.generator.GenerateDialogue(ctx, req)
	if err != nil {
		slog.Warn("dialogue generation failed, using local fallback", "session_id", s.ID, "err", err)
		msg, _ = (&dialogue.LocalGenerator{}).GenerateDialogue(ctx, req)
	}
	return msg
}

// findField returns the first field whose name contains target, ignoring
// case. A leading "feld " in target is tried without it as well. On a miss
// the closest fuzzy match is returned as a suggestion.
func findField(fields []types.Field, target string) (int, string) {
	folded := types.Fold(target)
	if folded == "" {
		return -1, ""
	}
	candidates := []string{folded}
	if rest, ok := strings.CutPrefix(folded, "feld "); ok && strings.TrimSpace(rest) != "" {
		candidates = append(candidates, strings.TrimSpace(rest))
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = types.Fold(f.Name)
	}
	for _, c := range candidates {
		for i, name := range names {
			if strings.Contains(name, c) {
				return i, ""
			}
		}
	}
	matches := fuzzy.Find(candidates[len(candidates)-1], names)
	if len(matches) == 0 {
		return -1, ""
	}
	return -1, fields[matches[0].Index].Name
}

func (e *Engine) Session(ctx context.Context, id string) (*Session, error) {
	s, ok, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (e *Engine) Status(ctx context.Context, id string) (*Status, error) {
	s, err := e.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return statusOf(s), nil
}

func (e *Engine) Values(ctx context.Context, id string) (map[string]string, error) {
	s, err := e.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Values, nil
}

// UpdateValues applies RFC6902 operations to the session values. Paths
// address fields by name: "/<field name>".
func (e *Engine) UpdateValues(ctx context.Context, id string, ops []patch.Operation) (map[string]string, error) {
	s, err := e.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	values, err := patch.ApplyRFC6902(s.Values, ops, patch.AllowedPaths(s.FieldNames()))
	if err != nil {
		return nil, fmt.Errorf("failed to update session %s: %w", id, err)
	}
	s.Values = values
	s.UpdatedAt = e.now()
	if err := e.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to store session %s: %w", id, err)
	}
	slog.Debug("session values updated", "session_id", id, "ops", len(ops))
	return copyValues(s.Values), nil
}

// ReplaceFields swaps the field list of a session, creating it if needed.
// Values of fields that no longer exist are dropped and the cursor is
// clamped.
func (e *Engine) ReplaceFields(ctx context.Context, id string, fields []types.Field) error {
	s, ok, err := e.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if !ok {
		s = NewSession(id, "", nil, e.now())
	}
	s.Fields = append([]types.Field(nil), fields...)
	s.normalize()
	s.UpdatedAt = e.now()
	if err := e.store.Put(ctx, s); err != nil {
		return fmt.Errorf("failed to store session %s: %w", id, err)
	}
	return nil
}

func (e *Engine) EndSession(ctx context.Context, id string) error {
	if err := e.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove session %s: %w", id, err)
	}
	return nil
}
