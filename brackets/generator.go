package brackets

import (
	"context"
	"fmt"
	"math/rand"
)

type GenerateBracketParams struct {
	TournamentID string
	Participants []Participant
	SeedMethod   SeedMethod

	// GroupCount and AdvancePerGroup are used by GROUP_KNOCKOUT only.
	// AdvancePerGroup defaults to 2.
	GroupCount      int
	AdvancePerGroup int
	// Legs is 1 or 2 for ROUND_ROBIN; zero means 1.
	Legs int

	// Rand drives RANDOM seeding. Nil uses the package level source.
	Rand *rand.Rand
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error)

	GetName() string
}

// NewGenerator returns the generator for a bracket type.
func NewGenerator(bracketType BracketType) (BracketGenerator, error) {
	switch bracketType {
	case TypeSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case TypeRoundRobin:
		return NewRoundRobinGenerator(), nil
	case TypeGroupKnockout:
		return NewGroupKnockoutGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, bracketType)
	}
}
