package models

import (
	"time"

	"github.com/Dosada05/clubscore/rating"
)

type Player struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Rating     int       `json:"rating" db:"rating"`
	MatchCount int       `json:"match_count" db:"match_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func (p Player) ToRating() rating.Player {
	return rating.Player{ID: p.ID, Name: p.Name, Rating: p.Rating, MatchCount: p.MatchCount}
}

// RatingHistory is one rating change caused by a processed match.
type RatingHistory struct {
	ID           int64     `json:"id" db:"id"`
	PlayerID     string    `json:"player_id" db:"player_id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	MatchID      string    `json:"match_id" db:"match_id"`
	OldRating    int       `json:"old_rating" db:"old_rating"`
	NewRating    int       `json:"new_rating" db:"new_rating"`
	Change       int       `json:"change" db:"change"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func NewRatingHistory(tournamentID, matchID string, c rating.RatingChange) RatingHistory {
	return RatingHistory{
		PlayerID:     c.PlayerID,
		TournamentID: tournamentID,
		MatchID:      matchID,
		OldRating:    c.OldRating,
		NewRating:    c.NewRating,
		Change:       c.Change,
	}
}
