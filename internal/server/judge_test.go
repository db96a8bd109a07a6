package server

import "testing"

func TestFallbackScoreDeterministic(t *testing.T) {
	first := fallbackScore("the cat sat")
	second := fallbackScore("  the   cat sat ")
	if first != second {
		t.Fatalf("equivalent captions should score alike: %#v vs %#v", first, second)
	}
	if !first.Fallback {
		t.Fatalf("fallback score should be marked as such")
	}
	if first.Humour < 3 || first.Humour > 8 || first.Relevance < 3 || first.Relevance > 8 {
		t.Fatalf("fallback score out of range: %#v", first)
	}
	if first.Total != first.Humour+first.Relevance {
		t.Fatalf("total should be the sum of parts: %#v", first)
	}
	if first.Comment == "" {
		t.Fatalf("fallback score should carry a comment")
	}
}

func TestClampScore(t *testing.T) {
	score := clampScore(Score{Humour: 14, Relevance: -2, Total: 99})
	if score.Humour != 10 || score.Relevance != 0 {
		t.Fatalf("expected clamped components, got %#v", score)
	}
	if score.Total != 10 {
		t.Fatalf("total should be recomputed from components, got %d", score.Total)
	}
	if score.Comment == "" {
		t.Fatalf("clamped score should be given a comment when missing")
	}

	kept := clampScore(Score{Humour: 7, Relevance: 6, Comment: "purrfect"})
	if kept.Comment != "purrfect" || kept.Total != 13 {
		t.Fatalf("unexpected clamp result: %#v", kept)
	}
}

func TestScoreCaptionFallsBackAfterRetries(t *testing.T) {
	srv := New(nil, testConfig()).WithJudge(stubJudge{err: errJudgeDown}).WithImageSource(stubImages{})
	score := srv.scoreCaption(t.Context(), "https://example.test/cat.jpg", "judge refuses to work")
	if !score.Fallback {
		t.Fatalf("expected fallback after judge failures, got %#v", score)
	}
	if score != fallbackScore("judge refuses to work") {
		t.Fatalf("fallback should be deterministic, got %#v", score)
	}
}

func TestScoreCaptionUsesJudgeResult(t *testing.T) {
	srv := newGameServer(t)
	caption := "exactly21characters!!"
	score := srv.scoreCaption(t.Context(), "https://example.test/cat.jpg", caption)
	if score.Fallback {
		t.Fatalf("healthy judge should not fall back")
	}
	want := len(caption) % 11
	if score.Humour != want || score.Relevance != 5 {
		t.Fatalf("unexpected score: %#v", score)
	}
}
