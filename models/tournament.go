package models

import (
	"time"

	"github.com/Dosada05/clubscore/brackets"
)

// TournamentStatus соответствует ENUM tournament_status в БД.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "draft"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
	StatusCanceled  TournamentStatus = "canceled"
)

type Tournament struct {
	ID              string               `json:"id" db:"id"`
	Name            string               `json:"name" db:"name"`
	Format          brackets.BracketType `json:"format" db:"format"`
	SeedMethod      brackets.SeedMethod  `json:"seed_method" db:"seed_method"`
	GroupCount      int                  `json:"group_count,omitempty" db:"group_count"`
	AdvancePerGroup int                  `json:"advance_per_group,omitempty" db:"advance_per_group"`
	Legs            int                  `json:"legs,omitempty" db:"legs"`
	Status          TournamentStatus     `json:"status" db:"status"`
	ChampionID      *string              `json:"champion_id,omitempty" db:"champion_player_id"`
	CreatedAt       time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" db:"updated_at"`

	Participants []TournamentParticipant `json:"participants,omitempty" db:"-"`
}

// TournamentParticipant is a registered player with the rating they carry
// into seeding.
type TournamentParticipant struct {
	TournamentID string `json:"tournament_id" db:"tournament_id"`
	PlayerID     string `json:"player_id" db:"player_id"`
	Name         string `json:"name" db:"name"`
	Rating       int    `json:"rating" db:"rating"`
	Position     int    `json:"position" db:"position"`
}

func (p TournamentParticipant) ToBracket() brackets.Participant {
	rating := p.Rating
	return brackets.Participant{ID: p.PlayerID, Name: p.Name, Rating: &rating}
}
