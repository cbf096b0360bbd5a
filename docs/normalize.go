package docs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tbxark/formpilot/types"
)

// Record is one field entry as the extraction service returns it. The same
// attribute shows up under several spellings.
type Record map[string]any

var (
	nameKeys     = []string{"FieldName", "fieldName", "name"}
	typeKeys     = []string{"Type", "type"}
	pageKeys     = []string{"PageIndex", "pageIndex"}
	valueKeys    = []string{"Value", "value"}
	requiredKeys = []string{"Required", "required"}
)

// NormalizeFields turns raw records into fields. Records without a name are
// dropped, a repeated name keeps its first occurrence and indexes follow the
// order of the remaining records.
func NormalizeFields(records []Record) []types.Field {
	fields := make([]types.Field, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		name := strings.TrimSpace(rec.text(nameKeys...))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		typ := rec.text(typeKeys...)
		if typ == "" {
			typ = "text"
		}
		fields = append(fields, types.Field{
			Index:    len(fields),
			Name:     name,
			Type:     strings.ToLower(typ),
			Page:     rec.number(pageKeys...),
			Value:    rec.text(valueKeys...),
			Required: rec.flag(requiredKeys...),
		})
	}
	return fields
}

func (r Record) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r Record) text(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case nil:
		case string:
			if v != "" {
				return v
			}
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func (r Record) number(keys ...string) int {
	v, ok := r.first(keys...)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func (r Record) flag(keys ...string) bool {
	v, ok := r.first(keys...)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	case float64:
		return b != 0
	}
	return false
}
