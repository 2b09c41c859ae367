package command

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"sudosudo vim test.txt", "sudosudo vim"},
		{"git push origin main", "git push"},
		{"ls", "ls"},
		{"", ""},
		{"  spaced   out   args  ", "spaced out"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFirstToken(t *testing.T) {
	if got := FirstToken("  git status"); got != "git" {
		t.Fatalf("unexpected first token: %q", got)
	}
	if got := FirstToken("   "); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

func TestSwapFirstToken(t *testing.T) {
	cases := []struct {
		command     string
		replacement string
		want        string
	}{
		{"sudosudo vim config.yml", "sudo", "sudo vim config.yml"},
		{"gti  push   origin", "git", "git  push   origin"},
		{"ls", "sl", "sl"},
		{"", "git", ""},
	}
	for _, tc := range cases {
		if got := SwapFirstToken(tc.command, tc.replacement); got != tc.want {
			t.Errorf("SwapFirstToken(%q, %q) = %q, want %q", tc.command, tc.replacement, got, tc.want)
		}
	}
}

func TestSimilarityProperties(t *testing.T) {
	if got := Similarity("sudosudo vim", "sudosudo vim"); got != 1.0 {
		t.Fatalf("identical strings must score 1.0, got %g", got)
	}
	ab := Similarity("gti status", "git status")
	ba := Similarity("git status", "gti status")
	if ab != ba {
		t.Fatalf("similarity must be symmetric: %g vs %g", ab, ba)
	}
	if ab <= 0.75 {
		t.Fatalf("transposition typo should score above threshold, got %g", ab)
	}
	if got := Similarity("ls", "shutdown"); got > 0.3 {
		t.Fatalf("unrelated strings should score low, got %g", got)
	}
	if got := Similarity("", ""); got != 1.0 {
		t.Fatalf("two empty strings score 1.0, got %g", got)
	}
}

func TestSimilarityTransposition(t *testing.T) {
	// Damerau counts an adjacent swap as one edit, not two.
	got := Similarity("gti", "git")
	want := 1.0 - 1.0/3.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %g for one transposition over 3 runes, got %g", want, got)
	}
}
