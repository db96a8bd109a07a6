package server

import "testing"

func scorePtr(humour, relevance int) *Score {
	return &Score{Humour: humour, Relevance: relevance, Total: humour + relevance}
}

func TestBuildLeaderboardOrdersByTotal(t *testing.T) {
	session := &Session{
		Players: []Player{
			{ID: "a", Name: "Ada", JoinOrder: 0},
			{ID: "b", Name: "Bob", JoinOrder: 1},
			{ID: "c", Name: "Carol", JoinOrder: 2},
		},
		Rounds: []Round{
			{
				Number: 1,
				Status: roundRevealed,
				Captions: []Caption{
					{PlayerID: "a", Score: scorePtr(3, 4)},
					{PlayerID: "b", Score: scorePtr(8, 7)},
					{PlayerID: "c", Score: scorePtr(5, 5)},
				},
			},
			{
				Number: 2,
				Status: roundRevealed,
				Captions: []Caption{
					{PlayerID: "a", Score: scorePtr(9, 9)},
					{PlayerID: "b", Score: scorePtr(1, 2)},
				},
			},
		},
	}

	entries := buildLeaderboard(session)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].PlayerID != "a" || entries[0].Total != 25 || entries[0].Rank != 1 {
		t.Fatalf("unexpected leader: %#v", entries[0])
	}
	if entries[1].PlayerID != "b" || entries[1].Total != 18 {
		t.Fatalf("unexpected second place: %#v", entries[1])
	}
	if entries[2].PlayerID != "c" || entries[2].Total != 10 || entries[2].Rank != 3 {
		t.Fatalf("unexpected third place: %#v", entries[2])
	}
}

func TestBuildLeaderboardTieBreaksOnJoinOrder(t *testing.T) {
	session := &Session{
		Players: []Player{
			{ID: "late", Name: "Late", JoinOrder: 1},
			{ID: "early", Name: "Early", JoinOrder: 0},
		},
		Rounds: []Round{
			{
				Number: 1,
				Status: roundRevealed,
				Captions: []Caption{
					{PlayerID: "late", Score: scorePtr(5, 5)},
					{PlayerID: "early", Score: scorePtr(5, 5)},
				},
			},
		},
	}

	entries := buildLeaderboard(session)
	if entries[0].PlayerID != "early" || entries[1].PlayerID != "late" {
		t.Fatalf("tie should break by join order: %#v", entries)
	}
}

func TestBuildLeaderboardIgnoresUnrevealedRounds(t *testing.T) {
	session := &Session{
		Players: []Player{{ID: "a", Name: "Ada", JoinOrder: 0}},
		Rounds: []Round{
			{
				Number:   1,
				Status:   roundScoring,
				Captions: []Caption{{PlayerID: "a", Score: scorePtr(9, 9)}},
			},
		},
	}
	entries := buildLeaderboard(session)
	if entries[0].Total != 0 {
		t.Fatalf("scoring round should not count, got %#v", entries[0])
	}
}
