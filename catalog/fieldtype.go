package catalog

import (
	"strings"

	"github.com/tbxark/formpilot/types"
)

type FieldType string

const (
	TypeCheckbox FieldType = "checkbox"
	TypeDate     FieldType = "date"
	TypeEmail    FieldType = "email"
	TypePhone    FieldType = "phone"
	TypeAddress  FieldType = "address"
	TypeNumber   FieldType = "number"
	TypeText     FieldType = "text"
)

type TypeInfo struct {
	Type        FieldType `json:"type"`
	Instruction string    `json:"instruction"`
	Example     string    `json:"example"`
}

type keywordGroup struct {
	info     TypeInfo
	keywords []string
}

// groups are checked in order, first match wins.
var groups = []keywordGroup{
	{
		info: TypeInfo{
			Type:        TypeCheckbox,
			Instruction: `Dies ist ein Auswahlfeld. Antworte mit "X" zum Ankreuzen oder "leer" zum Überspringen.`,
			Example:     `Schreibe "X" oder lasse es leer`,
		},
		keywords: []string{"Männlich", "Weiblich", "Divers", "Ja", "Nein", "Vollzeit", "Teilzeit"},
	},
	{
		info: TypeInfo{
			Type:        TypeDate,
			Instruction: "Bitte gib ein Datum im Format TT.MM.JJJJ ein.",
			Example:     "15.03.2024",
		},
		keywords: []string{"Datum", "Geburtsdatum", "Beginn", "Ende"},
	},
	{
		info: TypeInfo{
			Type:        TypeEmail,
			Instruction: "Gib eine gültige E-Mail-Adresse ein.",
			Example:     "max.mustermann@beispiel.de",
		},
		keywords: []string{"E-Mail", "Email", "Mail"},
	},
	{
		info: TypeInfo{
			Type:        TypePhone,
			Instruction: "Gib eine Telefonnummer mit Vorwahl ein.",
			Example:     "+49 89 12345678",
		},
		keywords: []string{"Telefon", "Telefax", "Mobil", "Handy"},
	},
	{
		info: TypeInfo{
			Type:        TypeAddress,
			Instruction: "Gib die vollständige Anschrift ein (Straße, Hausnummer, PLZ, Ort).",
			Example:     "Musterstraße 12, 80331 München",
		},
		keywords: []string{"Anschrift", "Adresse", "Straße", "PLZ", "Ort"},
	},
	{
		info: TypeInfo{
			Type:        TypeNumber,
			Instruction: "Bitte gib eine Zahl ein.",
			Example:     "5",
		},
		keywords: []string{"Anzahl", "Zahl", "Nummer", "Betrag"},
	},
}

var textInfo = TypeInfo{
	Type:        TypeText,
	Instruction: "Bitte fülle dieses Feld aus.",
	Example:     "Text eingeben",
}

// Classify maps a field name to its semantic type by case-insensitive
// keyword containment.
func Classify(fieldName string) TypeInfo {
	name := types.Fold(fieldName)
	for _, g := range groups {
		if containsAny(name, g.keywords) {
			return g.info
		}
	}
	return textInfo
}

// HasKeyword reports whether fieldName contains any keyword of the given
// type's group, regardless of the group priority used by Classify.
func HasKeyword(fieldName string, t FieldType) bool {
	name := types.Fold(fieldName)
	for _, g := range groups {
		if g.info.Type == t {
			return containsAny(name, g.keywords)
		}
	}
	return false
}

func containsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(folded, types.Fold(kw)) {
			return true
		}
	}
	return false
}
