package brackets

import (
	"context"
	"fmt"
	"math/rand"
)

const (
	maxGroups              = 26
	defaultAdvancePerGroup = 2
)

type GroupStage struct {
	TournamentID string  `json:"tournament_id"`
	Groups       []Group `json:"groups"`
}

// GenerateGroupStage distributes seeded participants into groups in snake
// order (A B C C B A A B C ...) and schedules every pairing inside each group.
func GenerateGroupStage(tournamentID string, participants []Participant, groupCount int, method SeedMethod) (*GroupStage, error) {
	return generateGroupStage(tournamentID, participants, groupCount, method, nil)
}

func generateGroupStage(tournamentID string, participants []Participant, groupCount int, method SeedMethod, rng *rand.Rand) (*GroupStage, error) {
	if groupCount < 1 || groupCount > maxGroups {
		return nil, fmt.Errorf("%w: group count must be between 1 and %d, got %d", ErrInvalidArgument, maxGroups, groupCount)
	}
	if len(participants) < 2*groupCount {
		return nil, fmt.Errorf("%w: %d participants cannot fill %d groups of at least 2", ErrInvalidArgument, len(participants), groupCount)
	}

	seeded := AssignSeeds(participants, method, rng)

	groups := make([]Group, groupCount)
	for i := range groups {
		groups[i].Name = string(rune('A' + i))
	}
	for i, p := range seeded {
		lap, pos := i/groupCount, i%groupCount
		if lap%2 == 1 {
			pos = groupCount - 1 - pos
		}
		groups[pos].Participants = append(groups[pos].Participants, p)
	}

	matchID := 1
	for gi := range groups {
		g := &groups[gi]
		for i := 0; i < len(g.Participants); i++ {
			for j := i + 1; j < len(g.Participants); j++ {
				g.Matches = append(g.Matches, Match{
					ID:           fmt.Sprintf("%s-g%s-m%d", tournamentID, g.Name, matchID),
					Round:        1,
					MatchNumber:  len(g.Matches) + 1,
					Group:        g.Name,
					ParticipantA: cloneParticipant(&g.Participants[i]),
					ParticipantB: cloneParticipant(&g.Participants[j]),
					Status:       StatusPending,
				})
				matchID++
			}
		}
	}

	return &GroupStage{TournamentID: tournamentID, Groups: groups}, nil
}

type GroupKnockoutGenerator struct{}

func NewGroupKnockoutGenerator() BracketGenerator {
	return &GroupKnockoutGenerator{}
}

func (g *GroupKnockoutGenerator) GetName() string {
	return "GroupKnockout"
}

func (g *GroupKnockoutGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*Bracket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return generateGroupKnockout(params.TournamentID, params.Participants, params.GroupCount, params.AdvancePerGroup, params.SeedMethod, params.Rand)
}

// GenerateGroupKnockout builds the group phase of a GROUP_KNOCKOUT bracket.
// The knockout rounds are added by SeedKnockoutFromGroups once every group
// match has a result.
func GenerateGroupKnockout(tournamentID string, participants []Participant, groupCount, advancePerGroup int, method SeedMethod) (*Bracket, error) {
	return generateGroupKnockout(tournamentID, participants, groupCount, advancePerGroup, method, nil)
}

func generateGroupKnockout(tournamentID string, participants []Participant, groupCount, advancePerGroup int, method SeedMethod, rng *rand.Rand) (*Bracket, error) {
	if advancePerGroup == 0 {
		advancePerGroup = defaultAdvancePerGroup
	}
	stage, err := generateGroupStage(tournamentID, participants, groupCount, method, rng)
	if err != nil {
		return nil, err
	}
	if advancePerGroup < 1 {
		return nil, fmt.Errorf("%w: advance per group must be positive, got %d", ErrInvalidArgument, advancePerGroup)
	}
	for _, g := range stage.Groups {
		if len(g.Participants) < advancePerGroup {
			return nil, fmt.Errorf("%w: group %s has %d participants, %d must advance", ErrInvalidArgument, g.Name, len(g.Participants), advancePerGroup)
		}
	}
	if advancePerGroup*groupCount < 2 {
		return nil, fmt.Errorf("%w: knockout needs at least 2 qualifiers", ErrInvalidArgument)
	}

	return &Bracket{
		TournamentID:    tournamentID,
		Type:            TypeGroupKnockout,
		Rounds:          [][]Match{},
		Groups:          stage.Groups,
		AdvancePerGroup: advancePerGroup,
	}, nil
}

// GroupsFinished reports whether every group match of b is completed.
func GroupsFinished(b *Bracket) bool {
	if len(b.Groups) == 0 {
		return false
	}
	for _, g := range b.Groups {
		for _, m := range g.Matches {
			if m.Status != StatusCompleted {
				return false
			}
		}
	}
	return true
}

// SeedKnockoutFromGroups returns a copy of b with the knockout rounds built
// from the top AdvancePerGroup finishers of each group. Group winners take the
// top seeds, followed by every runner-up, and so on.
func SeedKnockoutFromGroups(b *Bracket) (*Bracket, error) {
	if b == nil || b.Type != TypeGroupKnockout {
		return nil, fmt.Errorf("%w: bracket has no group stage", ErrInvalidArgument)
	}
	if len(b.Rounds) > 0 {
		return nil, fmt.Errorf("%w: knockout stage already seeded", ErrInvalidArgument)
	}
	advance := b.AdvancePerGroup
	if advance < 1 {
		return nil, fmt.Errorf("%w: advance per group must be positive, got %d", ErrInvalidArgument, advance)
	}

	standings := make([][]Standing, len(b.Groups))
	for i, g := range b.Groups {
		for _, m := range g.Matches {
			if m.Status != StatusCompleted {
				return nil, fmt.Errorf("%w: group %s has unfinished match %s", ErrInvalidArgument, g.Name, m.ID)
			}
		}
		if len(g.Participants) < advance {
			return nil, fmt.Errorf("%w: group %s has only %d participants", ErrInvalidArgument, g.Name, len(g.Participants))
		}
		standings[i] = ComputeStandings(g)
	}

	qualifiers := make([]Participant, 0, advance*len(b.Groups))
	for place := 0; place < advance; place++ {
		for _, table := range standings {
			qualifiers = append(qualifiers, table[place].Participant)
		}
	}
	if len(qualifiers) < 2 {
		return nil, fmt.Errorf("%w: knockout needs at least 2 qualifiers", ErrInvalidArgument)
	}

	rounds, err := buildEliminationRounds(b.TournamentID, AssignSeeds(qualifiers, SeedManual, nil))
	if err != nil {
		return nil, err
	}

	out := b.Clone()
	out.Rounds = rounds
	out.TotalRounds = len(rounds)
	return out, nil
}
