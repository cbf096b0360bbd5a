package agent

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type Trimmer interface {
	Trim(history []*schema.Message) []*schema.Message
}

// KeepLastNTrimmer keeps system messages and the last N other messages.
type KeepLastNTrimmer struct {
	N int
}

func (t KeepLastNTrimmer) Trim(history []*schema.Message) []*schema.Message {
	rest := 0
	for _, m := range history {
		if m != nil && m.Role != schema.System {
			rest++
		}
	}
	drop := rest - max(t.N, 0)
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		if m == nil {
			continue
		}
		if m.Role != schema.System && drop > 0 {
			drop--
			continue
		}
		out = append(out, m)
	}
	return out
}

// TranscriptStore keeps the conversation window a runner is fed with, per
// session. Unlike Session.History it is trimmed.
type TranscriptStore struct {
	core    Cache[[]*schema.Message]
	trimmer Trimmer
}

func NewTranscriptStore(core Cache[[]*schema.Message], trimmer Trimmer) *TranscriptStore {
	return &TranscriptStore{core: core, trimmer: trimmer}
}

func NewMemoryTranscriptStore(trimmer Trimmer) *TranscriptStore {
	return NewTranscriptStore(NewMemoryCache[[]*schema.Message](), trimmer)
}

func (s *TranscriptStore) key(id string) string {
	return "transcript:" + id
}

// Append adds msgs, skipping an exact repeat of the previous message, and
// returns the trimmed window.
func (s *TranscriptStore) Append(ctx context.Context, id string, msgs ...*schema.Message) ([]*schema.Message, error) {
	hist, _, err := s.core.Get(ctx, s.key(id))
	if err != nil {
		return nil, err
	}
	hist = append([]*schema.Message(nil), hist...)
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if n := len(hist); n > 0 && hist[n-1].Role == msg.Role && hist[n-1].Content == msg.Content {
			continue
		}
		hist = append(hist, msg)
	}
	if s.trimmer != nil {
		hist = s.trimmer.Trim(hist)
	}
	if err := s.core.Set(ctx, s.key(id), hist); err != nil {
		return nil, err
	}
	return hist, nil
}

func (s *TranscriptStore) Clear(ctx context.Context, id string) error {
	return s.core.Del(ctx, s.key(id))
}
