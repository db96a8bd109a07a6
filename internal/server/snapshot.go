package server

import "time"

// snapshot builds the full session state sent on connect, reconnect, and
// after every accepted mutation. Captions of an open round never appear
// here; only the submitted flags do.
func snapshot(session *Session) map[string]any {
	players := make([]map[string]any, 0, len(session.Players))
	submitted := submittedByPlayer(session)
	for _, player := range session.Players {
		players = append(players, map[string]any{
			"player_id": player.ID,
			"name":      player.Name,
			"is_host":   player.IsHost,
			"connected": player.Connected,
			"submitted": submitted[player.ID],
		})
	}

	payload := map[string]any{
		"code":        session.Code,
		"status":      session.Status,
		"host_id":     session.HostID,
		"game_number": session.GameNumber,
		"settings": map[string]any{
			"total_rounds":  session.Settings.TotalRounds,
			"max_players":   session.Settings.MaxPlayers,
			"round_seconds": session.Settings.RoundSeconds,
		},
		"players":       players,
		"rounds_played": len(session.Rounds),
		"leaderboard":   buildLeaderboard(session),
		"server_time":   timeNowUTC().Format(time.RFC3339),
	}

	if round := currentRound(session); round != nil {
		roundPayload := map[string]any{
			"number":          round.Number,
			"status":          round.Status,
			"image_url":       round.ImageURL,
			"started_at":      round.StartedAt.UTC().Format(time.RFC3339),
			"submitted_count": len(round.Captions),
		}
		if !round.EndsAt.IsZero() {
			roundPayload["ends_at"] = round.EndsAt.UTC().Format(time.RFC3339)
		}
		payload["round"] = roundPayload
	}

	if revealed := latestRevealedRound(session); revealed != nil {
		payload["results"] = buildRoundResults(session, revealed)
	}
	return payload
}

func submittedByPlayer(session *Session) map[string]bool {
	flags := make(map[string]bool, len(session.Players))
	round := currentRound(session)
	if round == nil {
		return flags
	}
	for _, caption := range round.Captions {
		flags[caption.PlayerID] = true
	}
	return flags
}

func latestRevealedRound(session *Session) *Round {
	for i := len(session.Rounds) - 1; i >= 0; i-- {
		if session.Rounds[i].Status == roundRevealed {
			return &session.Rounds[i]
		}
	}
	return nil
}

// buildRoundResults is the reveal payload: every caption with its score,
// plus the leaderboard after the round counted.
func buildRoundResults(session *Session, round *Round) map[string]any {
	names := make(map[string]string, len(session.Players))
	for _, player := range session.Players {
		names[player.ID] = player.Name
	}
	captions := make([]map[string]any, 0, len(round.Captions))
	for _, caption := range round.Captions {
		entry := map[string]any{
			"player_id":   caption.PlayerID,
			"player_name": names[caption.PlayerID],
			"text":        caption.Text,
		}
		if caption.Score != nil {
			entry["score"] = caption.Score
		}
		captions = append(captions, entry)
	}
	return map[string]any{
		"round_number": round.Number,
		"game_number":  session.GameNumber,
		"image_url":    round.ImageURL,
		"captions":     captions,
		"leaderboard":  buildLeaderboard(session),
	}
}
