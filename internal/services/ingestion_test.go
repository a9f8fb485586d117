package services

import (
	"testing"
	"time"
)

func TestParseSummary_ResolvesAliases(t *testing.T) {
	summary := "Titre : Fonds compétitif maraîcher\n" +
		"- Catégorie : subvention\n" +
		"* Porteur : Ministère de l'Agriculture\n" +
		"Description : Appui aux producteurs de la ceinture verte.\n" +
		"Échéance : 15/10/2026\n" +
		"Zone : Abidjan\n" +
		"Champ inconnu : ignoré\n"

	fields := parseSummary(summary)
	if fields["title"] != "Fonds compétitif maraîcher" {
		t.Fatalf("unexpected title: %q", fields["title"])
	}
	if fields["type"] != "subvention" {
		t.Fatalf("expected catégorie to map onto type, got %q", fields["type"])
	}
	if fields["organization"] != "Ministère de l'Agriculture" {
		t.Fatalf("expected porteur to map onto organization, got %q", fields["organization"])
	}
	if fields["deadline"] != "15/10/2026" {
		t.Fatalf("expected échéance to map onto deadline, got %q", fields["deadline"])
	}
	if fields["location"] != "Abidjan" {
		t.Fatalf("expected zone to map onto location, got %q", fields["location"])
	}
	if _, ok := fields["champ inconnu"]; ok {
		t.Fatalf("unknown labels must be dropped")
	}
}

func TestParseSummary_KeepsFirstValuePerField(t *testing.T) {
	fields := parseSummary("Date limite : 01/01/2027\nÉchéance : 02/02/2027\n")
	if fields["deadline"] != "01/01/2027" {
		t.Fatalf("expected the first alias hit to win, got %q", fields["deadline"])
	}
}

func TestParseDeadline_Formats(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"15/10/2026":   time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		"2026-10-15":   time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		"15-10-2026":   time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		"15 mars 2027": time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC),
		"1 août 2027":  time.Date(2027, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		if got := parseDeadline(raw, now); !got.Equal(want) {
			t.Fatalf("parseDeadline(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestParseDeadline_FallsBackThirtyDaysOut(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	want := now.AddDate(0, 0, 30)
	for _, raw := range []string{"", "dès que possible", "fin 2026"} {
		if got := parseDeadline(raw, now); !got.Equal(want) {
			t.Fatalf("parseDeadline(%q) = %v, want fallback %v", raw, got, want)
		}
	}
}
