package agent

type Action string

const (
	ActionShowCommands  Action = "show_commands"
	ActionHelp          Action = "help"
	ActionFieldCleared  Action = "field_cleared"
	ActionSkip          Action = "skip"
	ActionBack          Action = "back"
	ActionAtFirstField  Action = "at_first_field"
	ActionStatus        Action = "status"
	ActionFinish        Action = "finish"
	ActionNavigate      Action = "navigate"
	ActionFieldNotFound Action = "field_not_found"
	ActionFieldSaved    Action = "field_saved"
	ActionInvalidInput  Action = "invalid_input"
	ActionCompleted     Action = "completed"
)

// Response is a tagged variant over Action. NextCursor is set only for
// actions that move the cursor, Values only for actions that change values.
type Response struct {
	Action     Action            `json:"action"`
	Message    string            `json:"response"`
	NextCursor *int              `json:"nextCursor,omitempty"`
	Values     map[string]string `json:"collectedValues,omitempty"`
}

func reply(action Action, message string) *Response {
	return &Response{Action: action, Message: message}
}

func moved(action Action, message string, cursor int) *Response {
	return &Response{Action: action, Message: message, NextCursor: &cursor}
}

func changed(action Action, message string, cursor int, values map[string]string) *Response {
	r := moved(action, message, cursor)
	r.Values = copyValues(values)
	return r
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
