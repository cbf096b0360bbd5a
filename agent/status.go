package agent

import "github.com/tbxark/formpilot/types"

type FieldStatus struct {
	Name      string `json:"name"`
	Index     int    `json:"index"`
	Completed bool   `json:"completed"`
	Value     string `json:"value"`
}

type Status struct {
	SessionID      string        `json:"sessionId"`
	Phase          types.Phase   `json:"phase"`
	Fields         []FieldStatus `json:"fields"`
	Cursor         int           `json:"cursor"`
	TotalCompleted int           `json:"totalCompleted"`
	TotalFields    int           `json:"totalFields"`
}

func statusOf(s *Session) *Status {
	st := &Status{
		SessionID:   s.ID,
		Phase:       s.Phase(),
		Fields:      make([]FieldStatus, 0, len(s.Fields)),
		Cursor:      s.Cursor,
		TotalFields: len(s.Fields),
	}
	for _, f := range s.Fields {
		v := s.Values[f.Name]
		fs := FieldStatus{Name: f.Name, Index: f.Index, Completed: v != "", Value: v}
		if fs.Completed {
			st.TotalCompleted++
		}
		st.Fields = append(st.Fields, fs)
	}
	return st
}

// Percent is the share of completed fields, rounded to a whole number.
func (s *Status) Percent() int {
	if s.TotalFields == 0 {
		return 0
	}
	return (s.TotalCompleted*100 + s.TotalFields/2) / s.TotalFields
}
