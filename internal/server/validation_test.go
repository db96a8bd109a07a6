package server

import (
	"strings"
	"testing"
)

func TestValidateCaptionWordLimit(t *testing.T) {
	fifteen := strings.TrimSpace(strings.Repeat("word ", 15))
	if _, err := validateCaption(fifteen); err != nil {
		t.Fatalf("15 words should be accepted: %v", err)
	}
	sixteen := strings.TrimSpace(strings.Repeat("word ", 16))
	if _, err := validateCaption(sixteen); errKind(err) != errValidation {
		t.Fatalf("16 words should be rejected, got %v", err)
	}
}

func TestValidateCaptionNormalizesWhitespace(t *testing.T) {
	caption, err := validateCaption("  the   cat \t sat  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caption != "the cat sat" {
		t.Fatalf("expected collapsed whitespace, got %q", caption)
	}
}

func TestValidateCaptionRejectsEmptyAndLong(t *testing.T) {
	if _, err := validateCaption("   "); errKind(err) != errValidation {
		t.Fatalf("blank caption should be rejected, got %v", err)
	}
	long := strings.Repeat("a", maxCaptionLength+1)
	if _, err := validateCaption(long); errKind(err) != errValidation {
		t.Fatalf("oversized caption should be rejected, got %v", err)
	}
}

func TestValidateCaptionRejectsUnsafeRunes(t *testing.T) {
	if _, err := validateCaption("nice try <script>"); errKind(err) != errValidation {
		t.Fatalf("angle brackets should be rejected")
	}
	if _, err := validateCaption("gato gracióso"); errKind(err) != errValidation {
		t.Fatalf("non-ascii should be rejected")
	}
	if _, err := validateCaption("it's fine, really!"); err != nil {
		t.Fatalf("common punctuation should pass: %v", err)
	}
}

func TestValidateName(t *testing.T) {
	if _, err := validateName(strings.Repeat("a", maxNameLength)); err != nil {
		t.Fatalf("name at the limit should pass: %v", err)
	}
	if _, err := validateName(strings.Repeat("a", maxNameLength+1)); errKind(err) != errValidation {
		t.Fatalf("oversized name should be rejected")
	}
	if _, err := validateName(""); errKind(err) != errValidation {
		t.Fatalf("empty name should be rejected")
	}
}

func TestValidateSettings(t *testing.T) {
	valid := Settings{TotalRounds: 5, MaxPlayers: 8, RoundSeconds: 60}
	if _, err := validateSettings(valid, 10, 12); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []Settings{
		{TotalRounds: 0, MaxPlayers: 8, RoundSeconds: 60},
		{TotalRounds: 11, MaxPlayers: 8, RoundSeconds: 60},
		{TotalRounds: 5, MaxPlayers: 1, RoundSeconds: 60},
		{TotalRounds: 5, MaxPlayers: 13, RoundSeconds: 60},
		{TotalRounds: 5, MaxPlayers: 8, RoundSeconds: -1},
	}
	for i, settings := range cases {
		if _, err := validateSettings(settings, 10, 12); errKind(err) != errValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestWordCount(t *testing.T) {
	if got := wordCount("one two  three"); got != 3 {
		t.Fatalf("expected 3 words, got %d", got)
	}
	if got := wordCount("   "); got != 0 {
		t.Fatalf("expected 0 words, got %d", got)
	}
}
