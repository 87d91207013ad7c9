package brackets

import (
	"fmt"
	"strings"
)

type MatchStatus string

const (
	StatusPending    MatchStatus = "PENDING"
	StatusInProgress MatchStatus = "IN_PROGRESS"
	StatusCompleted  MatchStatus = "COMPLETED"
	StatusBye        MatchStatus = "BYE"
)

type BracketType string

const (
	TypeSingleElimination BracketType = "SINGLE_ELIMINATION"
	TypeDoubleElimination BracketType = "DOUBLE_ELIMINATION"
	TypeRoundRobin        BracketType = "ROUND_ROBIN"
	TypeGroupKnockout     BracketType = "GROUP_KNOCKOUT"
)

func ParseBracketType(s string) (BracketType, error) {
	switch t := BracketType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeSingleElimination, TypeDoubleElimination, TypeRoundRobin, TypeGroupKnockout:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown bracket type %q", ErrInvalidArgument, s)
	}
}

type SeedMethod string

const (
	SeedByRating SeedMethod = "RATING"
	SeedRandom   SeedMethod = "RANDOM"
	SeedManual   SeedMethod = "MANUAL"
)

// ParseSeedMethod accepts any letter case; an empty string means RATING.
func ParseSeedMethod(s string) (SeedMethod, error) {
	if strings.TrimSpace(s) == "" {
		return SeedByRating, nil
	}
	switch m := SeedMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case SeedByRating, SeedRandom, SeedManual:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown seed method %q", ErrInvalidArgument, s)
	}
}

type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating *int   `json:"rating,omitempty"`
	Seed   int    `json:"seed,omitempty"` // 1-based, 0 until seeded
}

type Match struct {
	ID           string       `json:"id"`
	Round        int          `json:"round"`
	MatchNumber  int          `json:"match_number"`
	Group        string       `json:"group,omitempty"`
	ParticipantA *Participant `json:"participant_a"`
	ParticipantB *Participant `json:"participant_b"`
	Winner       *Participant `json:"winner"`
	ScoreA       *int         `json:"score_a,omitempty"`
	ScoreB       *int         `json:"score_b,omitempty"`
	SetsA        *int         `json:"sets_a,omitempty"`
	SetsB        *int         `json:"sets_b,omitempty"`
	Status       MatchStatus  `json:"status"`
	SourceMatchA *string      `json:"source_match_a"`
	SourceMatchB *string      `json:"source_match_b"`
}

type Group struct {
	Name         string        `json:"name"`
	Participants []Participant `json:"participants"`
	Matches      []Match       `json:"matches"`
}

// Bracket is the whole tournament structure. Elimination and round robin
// formats use Rounds; GROUP_KNOCKOUT keeps its group stage in Groups and fills
// Rounds once the knockout phase is seeded.
type Bracket struct {
	TournamentID    string      `json:"tournament_id"`
	Type            BracketType `json:"type"`
	Rounds          [][]Match   `json:"rounds"`
	TotalRounds     int         `json:"total_rounds"`
	Groups          []Group     `json:"groups,omitempty"`
	AdvancePerGroup int         `json:"advance_per_group,omitempty"` // finishers per group that reach the knockout
}

// Matches returns every match, group matches first, in a stable order.
func (b *Bracket) Matches() []*Match {
	var out []*Match
	for gi := range b.Groups {
		for mi := range b.Groups[gi].Matches {
			out = append(out, &b.Groups[gi].Matches[mi])
		}
	}
	for ri := range b.Rounds {
		for mi := range b.Rounds[ri] {
			out = append(out, &b.Rounds[ri][mi])
		}
	}
	return out
}

func (b *Bracket) FindMatch(id string) (*Match, bool) {
	for _, m := range b.Matches() {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// Champion returns the winner of the last elimination round, if decided.
func (b *Bracket) Champion() *Participant {
	if b.Type == TypeRoundRobin || len(b.Rounds) == 0 {
		return nil
	}
	final := b.Rounds[len(b.Rounds)-1]
	if len(final) != 1 || final[0].Status != StatusCompleted && final[0].Status != StatusBye {
		return nil
	}
	return final[0].Winner
}

// IsComplete reports whether every playable match has a result.
func (b *Bracket) IsComplete() bool {
	matches := b.Matches()
	if len(matches) == 0 {
		return false
	}
	if b.Type == TypeGroupKnockout && len(b.Rounds) == 0 {
		return false
	}
	for _, m := range matches {
		if m.Status != StatusCompleted && m.Status != StatusBye {
			return false
		}
	}
	return true
}

// Validate checks that match IDs are unique and every source reference
// points at an existing match.
func (b *Bracket) Validate() error {
	ids := make(map[string]struct{})
	matches := b.Matches()
	for _, m := range matches {
		if _, dup := ids[m.ID]; dup {
			return fmt.Errorf("%w: duplicate match id %q", ErrConsistency, m.ID)
		}
		ids[m.ID] = struct{}{}
	}
	for _, m := range matches {
		for _, src := range []*string{m.SourceMatchA, m.SourceMatchB} {
			if src == nil {
				continue
			}
			if _, ok := ids[*src]; !ok {
				return fmt.Errorf("%w: match %q references unknown source %q", ErrConsistency, m.ID, *src)
			}
		}
	}
	return nil
}

// Clone returns a deep copy sharing no memory with b.
func (b *Bracket) Clone() *Bracket {
	out := &Bracket{
		TournamentID:    b.TournamentID,
		Type:            b.Type,
		TotalRounds:     b.TotalRounds,
		AdvancePerGroup: b.AdvancePerGroup,
	}
	if b.Rounds != nil {
		out.Rounds = make([][]Match, len(b.Rounds))
		for i, round := range b.Rounds {
			out.Rounds[i] = cloneMatches(round)
		}
	}
	if b.Groups != nil {
		out.Groups = make([]Group, len(b.Groups))
		for i, g := range b.Groups {
			participants := make([]Participant, len(g.Participants))
			for j, p := range g.Participants {
				participants[j] = *cloneParticipant(&p)
			}
			out.Groups[i] = Group{Name: g.Name, Participants: participants, Matches: cloneMatches(g.Matches)}
		}
	}
	return out
}

func cloneMatches(in []Match) []Match {
	if in == nil {
		return nil
	}
	out := make([]Match, len(in))
	for i, m := range in {
		out[i] = m
		out[i].ParticipantA = cloneParticipant(m.ParticipantA)
		out[i].ParticipantB = cloneParticipant(m.ParticipantB)
		out[i].Winner = cloneParticipant(m.Winner)
		out[i].ScoreA = cloneInt(m.ScoreA)
		out[i].ScoreB = cloneInt(m.ScoreB)
		out[i].SetsA = cloneInt(m.SetsA)
		out[i].SetsB = cloneInt(m.SetsB)
		out[i].SourceMatchA = cloneString(m.SourceMatchA)
		out[i].SourceMatchB = cloneString(m.SourceMatchB)
	}
	return out
}

func cloneParticipant(p *Participant) *Participant {
	if p == nil {
		return nil
	}
	c := *p
	c.Rating = cloneInt(p.Rating)
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
