package patch

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyRFC6902 applies ops to a copy of values. Every path must be in
// allowedPaths and every resulting value must be a string.
func ApplyRFC6902(values map[string]string, ops []Operation, allowedPaths map[string]bool) (map[string]string, error) {
	if len(ops) == 0 {
		return cloneValues(values), nil
	}
	if err := ValidatePatchOperations(ops, allowedPaths); err != nil {
		return nil, err
	}

	current := cloneValues(values)
	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current values: %w", err)
	}

	ops = FixOperation(current, ops)
	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch operations: %w", err)
	}

	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidPatch, err)
	}
	modifiedJSON, err := p.Apply(currentJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: apply: %w", ErrInvalidPatch, err)
	}

	result := map[string]string{}
	if err := sonic.Unmarshal(modifiedJSON, &result); err != nil {
		return nil, fmt.Errorf("%w: field values must be strings: %w", ErrInvalidPatch, err)
	}
	return result, nil
}

// FixOperation turns replace on a missing field into add and drops removes of
// fields that were never answered.
func FixOperation(values map[string]string, ops []Operation) []Operation {
	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		_, exists := values[UnescapePointer(strings.TrimPrefix(op.Path, "/"))]
		switch op.Op {
		case OperationReplace:
			if !exists {
				op.Op = OperationAdd
			}
			fixed = append(fixed, op)
		case OperationRemove:
			if exists {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}
	return fixed
}

// MergeValues overlays overrides onto values with JSON merge patch
// semantics. Since values are strings an override can add or replace an
// entry but never delete one.
func MergeValues(values, overrides map[string]string) (map[string]string, error) {
	if len(overrides) == 0 {
		return cloneValues(values), nil
	}
	doc, err := sonic.Marshal(cloneValues(values))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current values: %w", err)
	}
	mp, err := sonic.Marshal(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal client values: %w", err)
	}
	merged, err := jsonpatch.MergePatch(doc, mp)
	if err != nil {
		return nil, fmt.Errorf("failed to merge client values: %w", err)
	}
	result := map[string]string{}
	if err := sonic.Unmarshal(merged, &result); err != nil {
		return nil, fmt.Errorf("failed to decode merged values: %w", err)
	}
	return result, nil
}

func cloneValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
