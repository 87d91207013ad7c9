package brackets

import (
	"context"
	"fmt"
	"math/rand"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates the round robin schedule. With Legs == 2 every
// pairing is played a second time with the sides swapped.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return generateRoundRobin(params.TournamentID, params.Participants, params.SeedMethod, params.Legs, params.Rand)
}

// GenerateRoundRobin schedules every participant against every other exactly
// once using the circle method. method decides the seed order the rotation
// starts from.
func GenerateRoundRobin(tournamentID string, participants []Participant, method SeedMethod) (*Bracket, error) {
	return generateRoundRobin(tournamentID, participants, method, 1, nil)
}

func generateRoundRobin(tournamentID string, participants []Participant, method SeedMethod, legs int, rng *rand.Rand) (*Bracket, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: round robin needs at least 2 participants, got %d", ErrInvalidArgument, len(participants))
	}
	if legs == 0 {
		legs = 1
	}
	if legs != 1 && legs != 2 {
		return nil, fmt.Errorf("%w: round robin supports 1 or 2 legs, got %d", ErrInvalidArgument, legs)
	}

	seeded := AssignSeeds(participants, method, rng)
	players := make([]*Participant, len(seeded), len(seeded)+1)
	for i := range seeded {
		players[i] = &seeded[i]
	}
	if len(players)%2 == 1 {
		players = append(players, nil) // BYE slot
	}
	n := len(players)

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	matchID := 1
	rounds := make([][]Match, 0, (n-1)*legs)
	for round := 1; round < n; round++ {
		matches := make([]Match, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := players[idx[i]], players[idx[n-1-i]]
			if home == nil || away == nil {
				continue
			}
			matches = append(matches, Match{
				ID:           fmt.Sprintf("%s-r%d-m%d", tournamentID, round, matchID),
				Round:        round,
				MatchNumber:  len(matches) + 1,
				ParticipantA: cloneParticipant(home),
				ParticipantB: cloneParticipant(away),
				Status:       StatusPending,
			})
			matchID++
		}
		rounds = append(rounds, matches)

		// position 0 stays fixed, the last position moves to index 1
		last := idx[n-1]
		copy(idx[2:], idx[1:n-1])
		idx[1] = last
	}

	if legs == 2 {
		firstLeg := len(rounds)
		for r := 0; r < firstLeg; r++ {
			round := firstLeg + r + 1
			matches := make([]Match, 0, len(rounds[r]))
			for _, m := range rounds[r] {
				matches = append(matches, Match{
					ID:           fmt.Sprintf("%s-r%d-m%d", tournamentID, round, matchID),
					Round:        round,
					MatchNumber:  len(matches) + 1,
					ParticipantA: cloneParticipant(m.ParticipantB),
					ParticipantB: cloneParticipant(m.ParticipantA),
					Status:       StatusPending,
				})
				matchID++
			}
			rounds = append(rounds, matches)
		}
	}

	return &Bracket{
		TournamentID: tournamentID,
		Type:         TypeRoundRobin,
		Rounds:       rounds,
		TotalRounds:  len(rounds),
	}, nil
}
