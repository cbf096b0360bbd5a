// Package validate accepts or rejects a user reply for the active field.
package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tbxark/formpilot/catalog"
	"github.com/tbxark/formpilot/types"
)

const (
	ReasonTooShort = "Die Eingabe ist zu kurz oder ungültig. Bitte geben Sie einen sinnvollen Wert ein."
	ReasonDate     = "Bitte geben Sie ein Datum im Format TT.MM.YYYY ein (z.B. 15.03.2024)."
	ReasonPhone    = "Bitte geben Sie eine gültige Telefonnummer ein."
	ReasonEmail    = "Bitte geben Sie eine gültige E-Mail-Adresse ein (z.B. info@beispiel.de)."
)

var (
	datePattern  = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`)
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

	placeholders = map[string]struct{}{"ok": {}, "f": {}, "test": {}}
)

type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func ok() Result { return Result{Valid: true} }

func reject(reason string) Result { return Result{Reason: reason} }

// Validate checks message against the loose rules of field. It never looks at
// any state besides its arguments.
func Validate(message string, field types.Field) Result {
	folded := types.Fold(message)
	if _, bad := placeholders[folded]; bad || utf8.RuneCountInString(folded) < 2 {
		return reject(ReasonTooShort)
	}

	if catalog.HasKeyword(field.Name, catalog.TypeDate) {
		if !datePattern.MatchString(message) {
			return reject(ReasonDate)
		}
	}

	if isPhoneField(field.Name) {
		if utf8.RuneCountInString(message) < 6 || !strings.ContainsFunc(message, unicode.IsDigit) {
			return reject(ReasonPhone)
		}
	}

	if catalog.HasKeyword(field.Name, catalog.TypeEmail) {
		// short answers are left alone, they are usually abbreviations like "-"
		if utf8.RuneCountInString(message) > 3 && !emailPattern.MatchString(message) {
			return reject(ReasonEmail)
		}
	}

	return ok()
}

func isPhoneField(name string) bool {
	return catalog.HasKeyword(name, catalog.TypePhone) || strings.Contains(types.Fold(name), "fax")
}
