package catalog

import (
	"strings"
	"testing"
)

func TestDefaultCatalogLookup(t *testing.T) {
	h, ok := Lookup("Geburtsdatum")
	if !ok {
		t.Fatal("expected hint for Geburtsdatum")
	}
	if h.Example != "15.03.1985" {
		t.Errorf("unexpected example %q", h.Example)
	}
	if _, ok := Lookup("  vorname "); !ok {
		t.Error("lookup should ignore case and surrounding spaces")
	}
	if _, ok := Lookup("Lieblingsfarbe"); ok {
		t.Error("unknown field should not be found")
	}
	if got := len(Default().Names()); got != 18 {
		t.Errorf("expected 18 catalog entries, got %d", got)
	}
}

func TestLoadRejectsNamelessEntries(t *testing.T) {
	if _, err := Load([]byte("- hint: no name\n")); err == nil {
		t.Fatal("expected error for entry without name")
	}
	if _, err := Load([]byte("{not a list")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want FieldType
	}{
		{"Männlich", TypeCheckbox},
		{"Zahl Vollzeit", TypeCheckbox},
		{"Geburtsdatum", TypeDate},
		{"Beginn der angemeldeten Tätigkeit", TypeDate},
		{"E-Mail/Web (freiwillig)", TypeEmail},
		{"Telefax", TypePhone},
		{"Anschrift der Wohnung", TypeAddress},
		{"Anzahl Filialen", TypeNumber},
		{"Vorname", TypeText},
	}
	for _, tc := range cases {
		if got := Classify(tc.name).Type; got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassifyPriority(t *testing.T) {
	// checkbox terms win over date terms
	if got := Classify("Ja, Datum bekannt").Type; got != TypeCheckbox {
		t.Errorf("expected checkbox, got %s", got)
	}
	if !HasKeyword("Ja, Datum bekannt", TypeDate) {
		t.Error("HasKeyword should ignore group priority")
	}
	if HasKeyword("Vorname", TypeEmail) {
		t.Error("Vorname has no e-mail keyword")
	}
}

func TestIntro(t *testing.T) {
	got := Intro("Geburtsdatum")
	if !strings.HasPrefix(got, "📅") || !strings.Contains(got, "TT.MM.JJJJ") {
		t.Errorf("unexpected intro: %q", got)
	}
	got = Intro("Name des Geschäfts")
	if !strings.Contains(got, "**Name des Geschäfts**") {
		t.Errorf("generic intro should name the field: %q", got)
	}
}
