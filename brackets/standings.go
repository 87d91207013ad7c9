package brackets

import "sort"

const pointsPerWin = 3

type Standing struct {
	Participant  Participant `json:"participant"`
	Played       int         `json:"played"`
	Wins         int         `json:"wins"`
	Losses       int         `json:"losses"`
	Points       int         `json:"points"`
	ScoreFor     int         `json:"score_for"`
	ScoreAgainst int         `json:"score_against"`
}

func (s Standing) ScoreDifference() int {
	return s.ScoreFor - s.ScoreAgainst
}

// ComputeStandings ranks a group by points, then score difference, then
// scores for, then seed. Only completed matches count.
func ComputeStandings(g Group) []Standing {
	table := make([]Standing, len(g.Participants))
	index := make(map[string]int, len(g.Participants))
	for i, p := range g.Participants {
		table[i] = Standing{Participant: p}
		index[p.ID] = i
	}

	for _, m := range g.Matches {
		if m.Status != StatusCompleted || m.Winner == nil || m.ParticipantA == nil || m.ParticipantB == nil {
			continue
		}
		a, okA := index[m.ParticipantA.ID]
		b, okB := index[m.ParticipantB.ID]
		if !okA || !okB {
			continue
		}
		scoreA, scoreB := intOrZero(m.ScoreA), intOrZero(m.ScoreB)

		table[a].Played++
		table[b].Played++
		table[a].ScoreFor += scoreA
		table[a].ScoreAgainst += scoreB
		table[b].ScoreFor += scoreB
		table[b].ScoreAgainst += scoreA

		winner, loser := a, b
		if m.Winner.ID == m.ParticipantB.ID {
			winner, loser = b, a
		}
		table[winner].Wins++
		table[winner].Points += pointsPerWin
		table[loser].Losses++
	}

	sort.SliceStable(table, func(i, j int) bool {
		x, y := table[i], table[j]
		if x.Points != y.Points {
			return x.Points > y.Points
		}
		if x.ScoreDifference() != y.ScoreDifference() {
			return x.ScoreDifference() > y.ScoreDifference()
		}
		if x.ScoreFor != y.ScoreFor {
			return x.ScoreFor > y.ScoreFor
		}
		return x.Participant.Seed < y.Participant.Seed
	})
	return table
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// RoundRobinStandings ranks every participant of a ROUND_ROBIN bracket.
func RoundRobinStandings(b *Bracket) []Standing {
	var g Group
	seen := make(map[string]bool)
	for _, round := range b.Rounds {
		for _, m := range round {
			for _, p := range []*Participant{m.ParticipantA, m.ParticipantB} {
				if p != nil && !seen[p.ID] {
					seen[p.ID] = true
					g.Participants = append(g.Participants, *p)
				}
			}
			g.Matches = append(g.Matches, m)
		}
	}
	sort.SliceStable(g.Participants, func(i, j int) bool {
		return g.Participants[i].Seed < g.Participants[j].Seed
	})
	return ComputeStandings(g)
}
