package intent

type Kind string

const (
	ShowCommands Kind = "show_commands"
	Help         Kind = "help"
	Skip         Kind = "skip"
	Back         Kind = "back"
	Status       Kind = "status"
	Finish       Kind = "finish"
	Navigate     Kind = "navigate"
	Clear        Kind = "clear"
	Input        Kind = "input"
)

// Intent is the classified meaning of one user message. Target is set for
// Navigate, Value for Input.
type Intent struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target,omitempty"`
	Value  string `json:"value,omitempty"`
}

func (i Intent) IsCommand() bool {
	return i.Kind != Input
}
