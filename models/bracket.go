package models

import (
	"time"

	"github.com/Dosada05/clubscore/brackets"
)

// StoredBracket is the persisted bracket snapshot. Version grows by one on
// every write and guards concurrent result submissions.
type StoredBracket struct {
	TournamentID string            `json:"tournament_id" db:"tournament_id"`
	Bracket      *brackets.Bracket `json:"bracket" db:"snapshot"`
	Version      int               `json:"version" db:"version"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}
