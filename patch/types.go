package patch

import "errors"

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
	OperationTest    = "test"
)

var (
	ErrPathNotAllowed = errors.New("path not allowed")
	ErrInvalidPatch   = errors.New("invalid patch")
)

// Operation is one RFC6902 operation against a session's value map, where
// each path addresses a single field: "/<escaped field name>".
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}
