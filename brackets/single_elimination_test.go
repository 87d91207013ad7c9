package brackets

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func TestGenerateSingleElimination_Byes(t *testing.T) {
	b, err := GenerateSingleElimination("t1", ratedField(5), SeedByRating)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Type != TypeSingleElimination || b.TotalRounds != 3 || len(b.Rounds) != 3 {
		t.Fatalf("unexpected shape: type=%s total=%d rounds=%d", b.Type, b.TotalRounds, len(b.Rounds))
	}
	if len(b.Rounds[0]) != 4 || len(b.Rounds[1]) != 2 || len(b.Rounds[2]) != 1 {
		t.Fatalf("unexpected round sizes %d %d %d", len(b.Rounds[0]), len(b.Rounds[1]), len(b.Rounds[2]))
	}

	byes := 0
	for _, m := range b.Rounds[0] {
		if m.Status == StatusBye {
			byes++
			if m.Winner == nil {
				t.Errorf("BYE match %s has no winner", m.ID)
			}
		}
	}
	if byes != 3 {
		t.Errorf("expected 3 BYE matches, got %d", byes)
	}

	// seed 1 (a) receives a bye and waits in the first semi-final slot
	first := b.Rounds[0][0]
	if first.ID != "t1-m1" || first.ParticipantA.ID != "a" || first.ParticipantB != nil {
		t.Errorf("unexpected first match %+v", first)
	}
	semi := b.Rounds[1][0]
	if semi.ParticipantA == nil || semi.ParticipantA.ID != "a" {
		t.Errorf("BYE winner not copied into round two: %+v", semi.ParticipantA)
	}
	if semi.ParticipantB != nil {
		t.Errorf("slot fed by a real match must stay empty: %+v", semi.ParticipantB)
	}
	other := b.Rounds[1][1]
	if other.ParticipantA == nil || other.ParticipantB == nil || other.ParticipantA.ID != "b" || other.ParticipantB.ID != "c" {
		t.Errorf("two BYE winners should meet in round two: %+v vs %+v", other.ParticipantA, other.ParticipantB)
	}

	played := b.Rounds[0][1]
	if played.Status != StatusPending || played.ParticipantA.ID != "d" || played.ParticipantB.ID != "e" {
		t.Errorf("unexpected opening match %+v", played)
	}
}

func TestGenerateSingleElimination_Links(t *testing.T) {
	b, err := GenerateSingleElimination("t", ratedField(7), SeedByRating)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("generated bracket is invalid: %v", err)
	}

	for r := 1; r < len(b.Rounds); r++ {
		prev := b.Rounds[r-1]
		for i, m := range b.Rounds[r] {
			if m.SourceMatchA == nil || m.SourceMatchB == nil {
				t.Fatalf("round %d match %d lacks sources", r+1, i+1)
			}
			if *m.SourceMatchA != prev[2*i].ID || *m.SourceMatchB != prev[2*i+1].ID {
				t.Errorf("round %d match %d sources = %s,%s", r+1, i+1, *m.SourceMatchA, *m.SourceMatchB)
			}
			if m.MatchNumber != i+1 || m.Round != r+1 {
				t.Errorf("bad numbering on %+v", m)
			}
		}
	}
}

func TestGenerateSingleElimination_TopSeedsMeetInFinal(t *testing.T) {
	for _, n := range []int{4, 8, 16} {
		b, err := GenerateSingleElimination("t", ratedField(n), SeedByRating)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		half := len(b.Rounds[0]) / 2
		side := map[string]int{}
		for i, m := range b.Rounds[0] {
			for _, p := range []*Participant{m.ParticipantA, m.ParticipantB} {
				if p != nil {
					side[p.ID] = i / half
				}
			}
		}
		if side["a"] == side["b"] {
			t.Errorf("n=%d: seeds 1 and 2 are in the same half", n)
		}
	}
}

func TestGenerateSingleElimination_TwoPlayers(t *testing.T) {
	b, err := GenerateSingleElimination("t", ratedField(2), SeedByRating)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TotalRounds != 1 || len(b.Rounds[0]) != 1 {
		t.Fatalf("expected a single final, got %+v", b.Rounds)
	}
	if got := RoundNames(b); len(got) != 1 || got[0] != "final" {
		t.Errorf("round names = %v", got)
	}
}

func TestGenerateSingleElimination_TooFew(t *testing.T) {
	for _, n := range []int{0, 1} {
		if _, err := GenerateSingleElimination("t", ratedField(n), SeedByRating); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("n=%d: expected ErrInvalidArgument, got %v", n, err)
		}
	}
}

func TestGenerateSingleElimination_TooMany(t *testing.T) {
	field := make([]Participant, MaxEliminationParticipants+1)
	for i := range field {
		field[i] = Participant{ID: "p" + strconv.Itoa(i), Name: "P"}
	}
	if _, err := GenerateSingleElimination("t", field, SeedManual); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := GenerateSingleElimination("t", field[:MaxEliminationParticipants], SeedManual); err != nil {
		t.Errorf("largest allowed field rejected: %v", err)
	}
}

func TestNewGenerator(t *testing.T) {
	for _, bt := range []BracketType{TypeSingleElimination, TypeRoundRobin, TypeGroupKnockout} {
		g, err := NewGenerator(bt)
		if err != nil {
			t.Fatalf("%s: %v", bt, err)
		}
		b, err := g.GenerateBracket(context.Background(), GenerateBracketParams{
			TournamentID: "t",
			Participants: ratedField(8),
			GroupCount:   2,
		})
		if err != nil {
			t.Fatalf("%s (%s): %v", bt, g.GetName(), err)
		}
		if b.Type != bt {
			t.Errorf("generator %s produced %s", g.GetName(), b.Type)
		}
	}

	if _, err := NewGenerator(TypeDoubleElimination); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestGenerateBracket_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSingleEliminationGenerator().GenerateBracket(ctx, GenerateBracketParams{TournamentID: "t", Participants: ratedField(4)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
