package catalog

import (
	"fmt"
	"strings"

	"github.com/tbxark/formpilot/types"
)

var intros = []struct {
	key  string
	text string
}{
	{"Männlich", "📝 **Geschlecht auswählen**\nWenn du männlich bist, schreibe \"X\". Sonst lasse es leer oder schreibe \"weiter\"."},
	{"Weiblich", "📝 **Geschlecht auswählen**\nWenn du weiblich bist, schreibe \"X\". Sonst lasse es leer oder schreibe \"weiter\"."},
	{"Divers", "📝 **Geschlecht auswählen**\nWenn du divers bist, schreibe \"X\". Sonst lasse es leer oder schreibe \"weiter\"."},
	{"Familienname", "👤 **Dein Nachname**\nGib deinen Familiennamen ein, wie er in deinem Ausweis steht."},
	{"Vorname", "👤 **Dein Vorname**\nGib deinen Vornamen ein."},
	{"Geburtsdatum", "📅 **Wann wurdest du geboren?**\nGib dein Geburtsdatum im Format TT.MM.JJJJ ein."},
	{"E-Mail", "📧 **Deine E-Mail-Adresse**\nGib eine gültige E-Mail-Adresse für die Kontaktaufnahme ein."},
	{"Telefon", "📞 **Deine Telefonnummer**\nGib deine Telefonnummer mit Vorwahl ein."},
	{"Anschrift", "🏠 **Deine Adresse**\nGib deine vollständige Anschrift ein (Straße, Hausnummer, PLZ, Ort)."},
}

// Intro is the text presented when fieldName becomes the active field.
func Intro(fieldName string) string {
	info := Classify(fieldName)
	name := types.Fold(fieldName)
	for _, in := range intros {
		if strings.Contains(name, types.Fold(in.key)) {
			return in.text + "\n\n" + info.Instruction
		}
	}
	return fmt.Sprintf("📝 **%s**\n\n%s", fieldName, info.Instruction)
}
