package textmatch

import "testing"

func TestFoldStripsDiacriticsAndCase(t *testing.T) {
	cases := map[string]string{
		"Aïn Sebaâ":   "ain sebaa",
		"  Maârif  ":  "maarif",
		"CASABLANCA":  "casablanca",
		"ben m'sick":  "ben m'sick",
		"Médina":      "medina",
		"":            "",
	}

	for input, want := range cases {
		if got := Fold(input); got != want {
			t.Errorf("Fold(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRatioIdenticalStrings(t *testing.T) {
	if got := Ratio("beach club", "Beach Club"); got != 100 {
		t.Fatalf("expected 100 for case-insensitive identical strings, got %d", got)
	}
}

func TestPartialRatioSubstring(t *testing.T) {
	if got := PartialRatio("beach club", "beach club casablanca"); got != 100 {
		t.Fatalf("expected 100 for exact substring, got %d", got)
	}
}

func TestScoreRanksCloseMatchAboveThreshold(t *testing.T) {
	score := Score("beach club casa", "Beach Club Casablanca")
	if score < 60 {
		t.Fatalf("expected score >= 60 for close match, got %d", score)
	}

	unrelated := Score("beach club casa", "Spa Marrakech Oriental")
	if unrelated >= score {
		t.Fatalf("expected unrelated item to score below the match (%d >= %d)", unrelated, score)
	}
}

func TestScoreEmptyQuery(t *testing.T) {
	if got := Score("", "anything"); got != 0 {
		t.Fatalf("expected 0 for empty query, got %d", got)
	}
}
