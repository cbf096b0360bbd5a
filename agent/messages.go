package agent

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/tbxark/formpilot/catalog"
	"github.com/tbxark/formpilot/dialogue"
	"github.com/tbxark/formpilot/types"
)

const (
	msgCompleted    = "✅ Alle Felder wurden bearbeitet!"
	msgNoFields     = "Es wurden keine Formularfelder gefunden."
	msgSkipped      = "⏭️ Feld übersprungen."
	msgAtFirstField = "⚠️ Du bist bereits beim ersten Feld."
	msgChecked      = "✅ Angekreuzt mit \"X\""
	msgUnchecked    = "⭕ Nicht angekreuzt (leer gelassen)"
)

var commandDescriptions = []struct {
	command     string
	description string
}{
	{"befehle", "Zeigt alle verfügbaren Befehle"},
	{"hilfe", "Gibt Hilfe zum aktuellen Feld"},
	{"beispiel", "Zeigt ein Beispiel für das aktuelle Feld"},
	{"weiter", "Überspringt das aktuelle Feld"},
	{"zurück", "Geht zum vorherigen Feld"},
	{"löschen", "Leert das aktuelle Feld"},
	{"gehe zu [Feldname]", "Springt zu einem bestimmten Feld"},
	{"status", "Zeigt den aktuellen Fortschritt"},
	{"fertig", "Beendet die Eingabe"},
}

func commandsText() string {
	var sb strings.Builder
	sb.WriteString("📋 **Verfügbare Befehle:**\n")
	for _, c := range commandDescriptions {
		fmt.Fprintf(&sb, "\n• **%s**: %s", c.command, c.description)
	}
	return sb.String()
}

func helpText(field types.Field, hint catalog.Hint, hasHint bool) string {
	info := catalog.Classify(field.Name)
	example := info.Example
	if hasHint && hint.Example != "" {
		example = hint.Example
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "💡 **Ausführliche Hilfe für: %s**\n\n", field.Name)
	fmt.Fprintf(&sb, "**Feldtyp:** %s\n", info.Type)
	fmt.Fprintf(&sb, "**Anleitung:** %s\n", info.Instruction)
	fmt.Fprintf(&sb, "**Beispiel:** %s\n\n", example)
	if hasHint && hint.Hint != "" {
		fmt.Fprintf(&sb, "**Zusatzinfo:** %s\n\n", hint.Hint)
	}
	sb.WriteString("**🛠️ Verfügbare Befehle:**\n")
	sb.WriteString("• \"löschen\" - Feld leeren\n")
	sb.WriteString("• \"weiter\" - Überspringen\n")
	sb.WriteString("• \"zurück\" - Vorheriges Feld\n")
	sb.WriteString("• \"status\" - Fortschritt anzeigen")
	return sb.String()
}

func statusText(st *Status, active types.Field) string {
	return fmt.Sprintf("📊 **Fortschritt: %d/%d Felder (%d%%)**\n\nAktuelles Feld: **%s**",
		st.TotalCompleted, st.TotalFields, st.Percent(), active.Name)
}

func finishText(s *Session) string {
	st := statusOf(s)
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏁 **Zusammenfassung: %d von %d Feldern ausgefüllt**\n\n", st.TotalCompleted, st.TotalFields)
	if st.TotalCompleted > 0 {
		var buf bytes.Buffer
		table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
		table.Header("Feld", "Wert")
		for _, f := range st.Fields {
			if f.Completed {
				_ = table.Append(f.Name, f.Value)
			}
		}
		_ = table.Render()
		sb.WriteString(strings.TrimSpace(buf.String()))
		sb.WriteString("\n\n")
	}
	if st.TotalCompleted < st.TotalFields {
		sb.WriteString("Offene Felder kannst du jederzeit mit \"gehe zu [Feldname]\" nachtragen. ")
	}
	sb.WriteString("Du kannst das PDF jetzt erstellen lassen.")
	return sb.String()
}

func clearedText(field types.Field) string {
	return fmt.Sprintf("🗑️ Feld \"%s\" wurde geleert.", field.Name)
}

func backText(field types.Field) string {
	return fmt.Sprintf("↩️ Zurück zu: **%s**\n\n%s", field.Name, catalog.Intro(field.Name))
}

func navigateText(field types.Field) string {
	return fmt.Sprintf("➡️ Springe zu: **%s**\n\n%s", field.Name, catalog.Intro(field.Name))
}

func notFoundText(target, suggestion string) string {
	msg := fmt.Sprintf("❌ Feld \"%s\" nicht gefunden.", target)
	if suggestion != "" {
		msg += fmt.Sprintf(" Meintest du **%s**?", suggestion)
	}
	return msg
}

func invalidText(reason string) string {
	return "⚠️ " + reason
}

// withNext appends the introduction of the field now under the cursor, or
// the completion message when none is left.
func withNext(message string, s *Session) string {
	if next, ok := s.Active(); ok {
		return message + "\n\n" + catalog.Intro(next.Name)
	}
	return message + "\n\n" + dialogue.CompletionMessage
}
