package brackets

import (
	"context"
	"fmt"
	"math/bits"
	"math/rand"
)

// MaxEliminationParticipants bounds the size of a knockout bracket.
const MaxEliminationParticipants = 4096

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return generateSingleElimination(params.TournamentID, params.Participants, params.SeedMethod, params.Rand)
}

// GenerateSingleElimination seeds participants and builds a knockout bracket
// padded with BYEs up to the next power of two.
func GenerateSingleElimination(tournamentID string, participants []Participant, method SeedMethod) (*Bracket, error) {
	return generateSingleElimination(tournamentID, participants, method, nil)
}

func generateSingleElimination(tournamentID string, participants []Participant, method SeedMethod, rng *rand.Rand) (*Bracket, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: single elimination needs at least 2 participants, got %d", ErrInvalidArgument, len(participants))
	}

	seeded := AssignSeeds(participants, method, rng)
	rounds, err := buildEliminationRounds(tournamentID, seeded)
	if err != nil {
		return nil, err
	}

	return &Bracket{
		TournamentID: tournamentID,
		Type:         TypeSingleElimination,
		Rounds:       rounds,
		TotalRounds:  len(rounds),
	}, nil
}

// buildEliminationRounds lays out already seeded participants on the seed
// order slots and links every later round to its two source matches. BYE
// winners are copied straight into round two.
func buildEliminationRounds(tournamentID string, seeded []Participant) ([][]Match, error) {
	if len(seeded) > MaxEliminationParticipants {
		return nil, fmt.Errorf("%w: knockout supports at most %d participants, got %d", ErrInvalidArgument, MaxEliminationParticipants, len(seeded))
	}
	size := NextPowerOf2(len(seeded))
	totalRounds := bits.TrailingZeros(uint(size))

	slots := make([]*Participant, size)
	for i, seedIdx := range CreateSeedOrder(size) {
		if seedIdx < len(seeded) {
			slots[i] = cloneParticipant(&seeded[seedIdx])
		}
	}

	matchID := 1
	nextID := func() string {
		id := fmt.Sprintf("%s-m%d", tournamentID, matchID)
		matchID++
		return id
	}

	rounds := make([][]Match, 0, totalRounds)

	first := make([]Match, 0, size/2)
	for i := 0; i < size/2; i++ {
		a, b := slots[2*i], slots[2*i+1]
		m := Match{
			ID:           nextID(),
			Round:        1,
			MatchNumber:  i + 1,
			ParticipantA: a,
			ParticipantB: b,
			Status:       StatusPending,
		}
		switch {
		case a == nil && b == nil:
			return nil, fmt.Errorf("%w: first round slot %d has no participants", ErrConsistency, i+1)
		case b == nil:
			m.Status = StatusBye
			m.Winner = cloneParticipant(a)
		case a == nil:
			m.Status = StatusBye
			m.Winner = cloneParticipant(b)
		}
		first = append(first, m)
	}
	rounds = append(rounds, first)

	for round := 2; round <= totalRounds; round++ {
		prev := rounds[len(rounds)-1]
		current := make([]Match, 0, len(prev)/2)
		for i := 0; i < len(prev)/2; i++ {
			srcA, srcB := prev[2*i], prev[2*i+1]
			m := Match{
				ID:           nextID(),
				Round:        round,
				MatchNumber:  i + 1,
				Status:       StatusPending,
				SourceMatchA: cloneString(&srcA.ID),
				SourceMatchB: cloneString(&srcB.ID),
			}
			if srcA.Status == StatusBye {
				m.ParticipantA = cloneParticipant(srcA.Winner)
			}
			if srcB.Status == StatusBye {
				m.ParticipantB = cloneParticipant(srcB.Winner)
			}
			current = append(current, m)
		}
		rounds = append(rounds, current)
	}

	return rounds, nil
}
