package normalization

import "testing"

func TestFoldAccents_StripsDiacriticsAndLowercases(t *testing.T) {
	cases := map[string]string{
		"Coopérative":      "cooperative",
		"publié":           "publie",
		"ÉCHÉANCE":         "echeance",
		"entrepreneur":     "entrepreneur",
		"Crédit à l'achat": "credit a l'achat",
	}
	for in, want := range cases {
		if got := FoldAccents(in); got != want {
			t.Fatalf("FoldAccents(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseInputString_TrimsAndLowercases(t *testing.T) {
	if got := ParseInputString("  Investisseur \n"); got != "investisseur" {
		t.Fatalf("unexpected result: %q", got)
	}
}
