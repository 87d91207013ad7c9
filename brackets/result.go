package brackets

import "fmt"

// UpdateMatchResult returns a new bracket with the match completed and its
// winner placed into the slot of every match that names it as a source. The
// winner is matched by ID. A completed match may be resubmitted until a match
// fed by it completes; group matches lock once the knockout is seeded. The
// input bracket is never modified.
func UpdateMatchResult(b *Bracket, matchID string, winner Participant, scoreA, scoreB int, setsA, setsB *int) (*Bracket, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil bracket", ErrInvalidArgument)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	out := b.Clone()
	target, ok := out.FindMatch(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if target.Group != "" && out.Type == TypeGroupKnockout && len(out.Rounds) > 0 {
		return nil, fmt.Errorf("%w: group match %s is locked, the knockout is already seeded", ErrConsistency, target.ID)
	}
	if target.Status == StatusBye {
		return nil, fmt.Errorf("%w: match %s is a BYE", ErrInvalidArgument, target.ID)
	}
	if target.ParticipantA == nil || target.ParticipantB == nil {
		return nil, fmt.Errorf("%w: match %s is still waiting for participants", ErrInvalidArgument, target.ID)
	}

	var won *Participant
	switch winner.ID {
	case target.ParticipantA.ID:
		won = target.ParticipantA
	case target.ParticipantB.ID:
		won = target.ParticipantB
	default:
		return nil, fmt.Errorf("%w: %q is not playing in match %s", ErrInvalidArgument, winner.ID, target.ID)
	}

	var downstream []*Match
	for _, m := range out.Matches() {
		if isSource(m.SourceMatchA, target.ID) || isSource(m.SourceMatchB, target.ID) {
			if m.Status == StatusCompleted {
				return nil, fmt.Errorf("%w: match %s already completed downstream of %s", ErrConsistency, m.ID, target.ID)
			}
			downstream = append(downstream, m)
		}
	}

	target.Winner = cloneParticipant(won)
	target.ScoreA = &scoreA
	target.ScoreB = &scoreB
	target.SetsA = cloneInt(setsA)
	target.SetsB = cloneInt(setsB)
	target.Status = StatusCompleted

	for _, m := range downstream {
		if isSource(m.SourceMatchA, target.ID) {
			m.ParticipantA = cloneParticipant(won)
		} else {
			m.ParticipantB = cloneParticipant(won)
		}
	}

	return out, nil
}

// Loser returns the participant who did not win a completed match.
func (m Match) Loser() *Participant {
	if m.Status != StatusCompleted || m.Winner == nil || m.ParticipantA == nil || m.ParticipantB == nil {
		return nil
	}
	if m.Winner.ID == m.ParticipantA.ID {
		return m.ParticipantB
	}
	return m.ParticipantA
}

func isSource(ref *string, id string) bool {
	return ref != nil && *ref == id
}
