package server

import (
	"context"
	"crypto/sha256"
	"time"
)

// Judge scores a single caption against the round image.
type Judge interface {
	Score(ctx context.Context, imageURL, caption string) (Score, error)
}

var roastComments = []string{
	"The cat has seen funnier things in its litter box.",
	"Bold of you to call that a punchline.",
	"The cat walked away halfway through reading this.",
	"Somewhere a dad joke is asking for royalties.",
	"The cat rates this a slow blink, and not the affectionate kind.",
	"This caption landed like a cat that misjudged the counter.",
	"Even the placeholder image deserved better.",
	"The cat is filing this under 'attempts were made'.",
}

// scoreCaption asks the judge with one retry, then falls back to a
// deterministic score so a round always reveals.
func (s *Server) scoreCaption(ctx context.Context, imageURL, caption string) Score {
	timeout := time.Duration(s.cfg.JudgeTimeoutSeconds) * time.Second
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		score, err := s.judge.Score(callCtx, imageURL, caption)
		cancel()
		if err == nil {
			return clampScore(score)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return fallbackScore(caption)
}

// fallbackScore derives a stable mid-range score from the caption text, so
// retries and restarts reproduce the same numbers.
func fallbackScore(caption string) Score {
	sum := sha256.Sum256([]byte(normalizeText(caption)))
	humour := 3 + int(sum[0])%6
	relevance := 3 + int(sum[1])%6
	return Score{
		Humour:    humour,
		Relevance: relevance,
		Total:     humour + relevance,
		Comment:   roastComments[int(sum[2])%len(roastComments)],
		Fallback:  true,
	}
}

func clampScore(score Score) Score {
	score.Humour = clampInt(score.Humour, 0, 10)
	score.Relevance = clampInt(score.Relevance, 0, 10)
	score.Total = score.Humour + score.Relevance
	if score.Comment == "" {
		score.Comment = roastComments[(score.Humour+score.Relevance)%len(roastComments)]
	}
	return score
}

func clampInt(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
