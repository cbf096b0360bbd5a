package agent

import (
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formpilot/types"
)

type Session struct {
	ID          string            `json:"id"`
	DocumentURL string            `json:"documentUrl,omitempty"`
	Fields      []types.Field     `json:"fields"`
	Cursor      int               `json:"cursor"`
	Values      map[string]string `json:"values"`
	// History is kept for auditing and never drives control flow.
	History   []*schema.Message `json:"history,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func NewSession(id, documentURL string, fields []types.Field, now time.Time) *Session {
	return &Session{
		ID:          id,
		DocumentURL: documentURL,
		Fields:      append([]types.Field(nil), fields...),
		Values:      map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Fields = append([]types.Field(nil), s.Fields...)
	out.Values = make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		out.Values[k] = v
	}
	out.History = make([]*schema.Message, len(s.History))
	for i, m := range s.History {
		if m != nil {
			cp := *m
			out.History[i] = &cp
		}
	}
	return &out
}

func (s *Session) Phase() types.Phase {
	return types.PhaseOf(s.Cursor, len(s.Fields))
}

func (s *Session) Complete() bool {
	return s.Cursor >= len(s.Fields)
}

// Active returns the field under the cursor.
func (s *Session) Active() (types.Field, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Fields) {
		return types.Field{}, false
	}
	return s.Fields[s.Cursor], true
}

func (s *Session) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s *Session) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Answered counts fields holding a non-empty value.
func (s *Session) Answered() int {
	n := 0
	for _, f := range s.Fields {
		if s.Values[f.Name] != "" {
			n++
		}
	}
	return n
}

// normalize restores the session invariants: the cursor lies within
// [0, len(Fields)] and only field names are keys of Values.
func (s *Session) normalize() {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	for k := range s.Values {
		if !s.HasField(k) {
			delete(s.Values, k)
		}
	}
	s.Cursor = max(0, min(s.Cursor, len(s.Fields)))
}

func (s *Session) record(user, assistant string) {
	s.History = append(s.History, schema.UserMessage(user), schema.AssistantMessage(assistant, nil))
}
