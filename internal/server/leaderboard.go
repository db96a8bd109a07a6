package server

import "sort"

// buildLeaderboard sums revealed-round totals for the current game. Ties
// break by join order, so earlier joiners rank first.
func buildLeaderboard(session *Session) []LeaderboardEntry {
	totals := make(map[string]int, len(session.Players))
	for _, player := range session.Players {
		totals[player.ID] = 0
	}
	for i := range session.Rounds {
		round := &session.Rounds[i]
		if round.Status != roundRevealed {
			continue
		}
		for _, caption := range round.Captions {
			if caption.Score == nil {
				continue
			}
			totals[caption.PlayerID] += caption.Score.Total
		}
	}

	entries := make([]LeaderboardEntry, 0, len(session.Players))
	joinOrder := make(map[string]int, len(session.Players))
	for _, player := range session.Players {
		joinOrder[player.ID] = player.JoinOrder
		entries = append(entries, LeaderboardEntry{
			PlayerID: player.ID,
			Name:     player.Name,
			Total:    totals[player.ID],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return joinOrder[entries[i].PlayerID] < joinOrder[entries[j].PlayerID]
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
