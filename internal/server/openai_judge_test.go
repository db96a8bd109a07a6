package server

import (
	"strings"
	"testing"
)

func TestParseVerdict(t *testing.T) {
	verdict, err := parseVerdict(`{"humour": 7, "relevance": 4, "comment": "the cat disagrees"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Humour != 7 || verdict.Relevance != 4 || verdict.Comment != "the cat disagrees" {
		t.Fatalf("unexpected verdict: %#v", verdict)
	}
}

func TestParseVerdictTrimsSurroundingProse(t *testing.T) {
	raw := "Here is my verdict:\n```json\n{\"humour\": 2, \"relevance\": 9, \"comment\": \"accurate, not funny\"}\n```\nHope that helps!"
	verdict, err := parseVerdict(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Humour != 2 || verdict.Relevance != 9 {
		t.Fatalf("unexpected verdict: %#v", verdict)
	}
}

func TestParseVerdictRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{not valid json}"} {
		if _, err := parseVerdict(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestOpenAIJudgeRequiresAPIKey(t *testing.T) {
	judge := newOpenAIJudge("", "gpt-4o-mini")
	_, err := judge.Score(t.Context(), "https://example.test/cat.jpg", "caption")
	if errKind(err) != errJudgeUnavailable {
		t.Fatalf("expected judge unavailable, got %v", err)
	}
}

func TestNewSessionCodeShape(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for i := 0; i < 100; i++ {
		code := newSessionCode()
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("code %q uses a character outside the alphabet", code)
			}
		}
	}
}
