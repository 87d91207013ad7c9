package services

import (
	"github.com/Dosada05/clubscore/brackets"
	"github.com/Dosada05/clubscore/models"
)

type GroupTable struct {
	Group     string              `json:"group"`
	Standings []brackets.Standing `json:"standings"`
}

// BracketView is the stored bracket plus everything a viewer derives from it.
type BracketView struct {
	TournamentID string                `json:"tournament_id"`
	Version      int                   `json:"version"`
	Bracket      *brackets.Bracket     `json:"bracket"`
	RoundNames   []string              `json:"round_names"`
	Champion     *brackets.Participant `json:"champion,omitempty"`
	Standings    []brackets.Standing   `json:"standings,omitempty"`
	GroupTables  []GroupTable          `json:"group_tables,omitempty"`
	SnapshotURL  string                `json:"snapshot_url,omitempty"`
}

func newBracketView(stored *models.StoredBracket) *BracketView {
	b := stored.Bracket
	view := &BracketView{
		TournamentID: stored.TournamentID,
		Version:      stored.Version,
		Bracket:      b,
		RoundNames:   brackets.RoundNames(b),
	}

	switch b.Type {
	case brackets.TypeRoundRobin:
		view.Standings = brackets.RoundRobinStandings(b)
		if b.IsComplete() && len(view.Standings) > 0 {
			champion := view.Standings[0].Participant
			view.Champion = &champion
		}
	case brackets.TypeGroupKnockout:
		for _, g := range b.Groups {
			view.GroupTables = append(view.GroupTables, GroupTable{Group: g.Name, Standings: brackets.ComputeStandings(g)})
		}
		view.Champion = b.Champion()
	default:
		view.Champion = b.Champion()
	}
	return view
}
