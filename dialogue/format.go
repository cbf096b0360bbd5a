package dialogue

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

const lastFieldReached = "Letztes Feld erreicht"

func formatContextTable(req *Request) string {
	next := req.NextField
	if next == "" {
		next = lastFieldReached
	}
	var buf bytes.Buffer
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Kontext", "Wert")
	_ = table.Append("Gerade gespeichertes Feld", req.FieldName)
	_ = table.Append("Eingabe", req.Value)
	_ = table.Append("Nächstes Feld", next)
	_ = table.Append("Fortschritt", fmt.Sprintf("%d von %d Feldern", req.Answered, req.Total))
	_ = table.Render()
	return strings.TrimSpace(buf.String())
}

// stageGuidance maps the progress of the form to the tone of the reply.
func stageGuidance(req *Request) string {
	switch {
	case req.Complete():
		return "Das Formular ist abgeschlossen. Feiere den Erfolg und erwähne kein nächstes Feld."
	case req.Remaining <= 3:
		return "Nur noch wenige Felder. Sei emotional und motivierend: \"Du bist so nah dran!\""
	case req.Answered <= 3:
		return "Der Nutzer hat gerade erst begonnen. Sei einladend und erklärend."
	case req.Answered <= 8:
		return "Guter Fortschritt. Sei motivierend."
	default:
		return "Mehr als die Hälfte ist geschafft. Bleib enthusiastisch."
	}
}

func formatSystemPrompt(persona string, req *Request) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\n\n### AKTUELLER KONTEXT\n")
	sb.WriteString(formatContextTable(req))
	sb.WriteString("\n\n### STUFE\n")
	sb.WriteString(stageGuidance(req))
	return sb.String()
}
