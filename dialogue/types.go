package dialogue

import (
	"context"
	"errors"
)

var ErrTimeout = errors.New("dialogue generation timed out")

// Request describes the turn that just stored a value.
type Request struct {
	FieldName string
	Value     string
	// NextField is empty when the form is complete.
	NextField string
	Answered  int
	Total     int
	Remaining int
}

func (r *Request) Complete() bool {
	return r.NextField == ""
}

type Generator interface {
	GenerateDialogue(ctx context.Context, req *Request) (string, error)
}
