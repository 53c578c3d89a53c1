package hostregex

import "testing"

func TestOccursInAndFindFirst(t *testing.T) {
	re, err := Compile(`(\w+)@(\w+)\.com`)
	if err != nil {
		t.Fatal(err)
	}
	if !re.OccursIn("contact me at alice@example.com today") {
		t.Fatal("expected occursin to find the address")
	}
	m, ok := re.FindFirst("contact me at alice@example.com today")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Text != "alice@example.com" || m.Captures[0] != "alice" || m.Captures[1] != "example" {
		t.Fatalf("unexpected match: %+v", m)
	}
}

func TestEachMatchFindsAllOccurrences(t *testing.T) {
	re, err := Compile(`\d+`)
	if err != nil {
		t.Fatal(err)
	}
	matches := re.EachMatch("a1 b22 c333")
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[2].Text != "333" {
		t.Fatalf("expected third match 333, got %s", matches[2].Text)
	}
}

func TestReplaceAllSubstitutesCaptures(t *testing.T) {
	re, err := Compile(`(\w+)\s(\w+)`)
	if err != nil {
		t.Fatal(err)
	}
	got := re.ReplaceAll("hello world", "$2 $1")
	if got != "world hello" {
		t.Fatalf("expected \"world hello\", got %q", got)
	}
}
