package search

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Mercearia  ", "mercearia"},
		{"Café", "cafe"},
		{"SÃO JOÃO", "sao joao"},
		{"Elettricità", "elettricita"},
		{"already plain", "already plain"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"Café", "mercearia", "SÃO JOÃO", "x"} {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", s, once, twice)
		}
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	for _, c := range []string{"", "anything", "Café"} {
		if !Match(c, "") {
			t.Fatalf("empty query must match %q", c)
		}
		if !Match(c, "   ") {
			t.Fatalf("blank query must match %q", c)
		}
	}
}

func TestMatchSelf(t *testing.T) {
	for _, s := range []string{"Grocer", "Café da manhã", "x"} {
		if !Match(s, s) {
			t.Fatalf("string must match itself: %q", s)
		}
	}
}

func TestMatchSubstring(t *testing.T) {
	cases := []struct {
		candidate, query string
	}{
		{"Supermercado Central", "mercado"},
		{"Café da Esquina", "cafe"}, // accent-insensitive
		{"FARMÁCIA", "farmacia"},
		{"Grocer", "GROCER"},
	}
	for _, tc := range cases {
		if !Match(tc.candidate, tc.query) {
			t.Fatalf("expected %q to match %q", tc.query, tc.candidate)
		}
	}
}

func TestMatchSubsequenceTypo(t *testing.T) {
	// One dropped or swapped letter keeps at least 80% coverage.
	cases := []struct {
		candidate, query string
		want             bool
	}{
		{"grocer", "grocre", true},
		{"supermercado", "supermecado", true},
		{"fuel", "xyzw", false},
		{"grocer", "butcher", false},
		{"abc", "abq", false}, // 2/3 coverage is below the bar
	}
	for _, tc := range cases {
		if got := Match(tc.candidate, tc.query); got != tc.want {
			t.Fatalf("Match(%q, %q) = %v, want %v", tc.candidate, tc.query, got, tc.want)
		}
	}
}

func TestMatchAny(t *testing.T) {
	if !MatchAny("mercado", "Fuel", "Supermercado") {
		t.Fatalf("expected match on second candidate")
	}
	if MatchAny("zzzz", "Fuel", "Grocer") {
		t.Fatalf("expected no match")
	}
	if !MatchAny("", "anything") {
		t.Fatalf("empty query matches")
	}
}
