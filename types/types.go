package types

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

type Phase string

const (
	PhaseActive   Phase = "active"
	PhaseComplete Phase = "complete"
)

// Field is one form slot as delivered by field extraction. Index and Name
// never change for the lifetime of a session.
type Field struct {
	Index    int    `json:"index"`
	Name     string `json:"fieldName"`
	Type     string `json:"type"`
	Page     int    `json:"pageIndex"`
	Value    string `json:"value"`
	Required bool   `json:"required"`
}

func PhaseOf(cursor, total int) Phase {
	if cursor >= total {
		return PhaseComplete
	}
	return PhaseActive
}

// Fold lower-cases, trims and NFC-normalizes s so that composed and
// decomposed umlauts compare equal.
func Fold(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}
