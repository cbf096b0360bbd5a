package patch

import (
	"fmt"
	"strings"
)

func ValidatePatchOperations(ops []Operation, allowedPaths map[string]bool) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationReplace, OperationRemove, OperationTest:
		default:
			return fmt.Errorf("%w: operation %d: unsupported op %q", ErrInvalidPatch, i, op.Op)
		}
		if !allowedPaths[op.Path] {
			return fmt.Errorf("operation %d: %w: %q", i, ErrPathNotAllowed, op.Path)
		}
	}
	return nil
}

// AllowedPaths builds the set of field paths for the given field names.
func AllowedPaths(fieldNames []string) map[string]bool {
	allowed := make(map[string]bool, len(fieldNames))
	for _, name := range fieldNames {
		allowed[FieldPath(name)] = true
	}
	return allowed
}

func FieldPath(fieldName string) string {
	return "/" + EscapePointer(fieldName)
}

func EscapePointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

func UnescapePointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
