package brackets

import (
	"errors"
	"reflect"
	"testing"
)

func fourPlayerBracket(t *testing.T) *Bracket {
	t.Helper()
	b, err := GenerateSingleElimination("t", ratedField(4), SeedByRating)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// t-m1: a vs d, t-m2: b vs c, t-m3: final
	return b
}

func TestUpdateMatchResult_PropagatesWinner(t *testing.T) {
	b := fourPlayerBracket(t)
	before := b.Clone()
	sets := 2

	out, err := UpdateMatchResult(b, "t-m2", Participant{ID: "c"}, 1, 3, nil, &sets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := out.Rounds[0][1]
	if done.Status != StatusCompleted || done.Winner == nil || done.Winner.ID != "c" {
		t.Errorf("match not completed: %+v", done)
	}
	if *done.ScoreA != 1 || *done.ScoreB != 3 || done.SetsA != nil || *done.SetsB != 2 {
		t.Errorf("scores not recorded: %+v", done)
	}
	if done.Loser() == nil || done.Loser().ID != "b" {
		t.Errorf("loser = %+v", done.Loser())
	}

	final := out.Rounds[1][0]
	if final.ParticipantB == nil || final.ParticipantB.ID != "c" {
		t.Errorf("winner should fill slot B of the final, got %+v", final.ParticipantB)
	}
	if final.ParticipantA != nil {
		t.Errorf("slot A of the final must stay empty, got %+v", final.ParticipantA)
	}
	if !reflect.DeepEqual(out.Rounds[0][0], before.Rounds[0][0]) {
		t.Error("unrelated match was modified")
	}
	if !reflect.DeepEqual(b, before) {
		t.Error("input bracket was modified")
	}

	sets = 9
	if *out.Rounds[0][1].SetsB != 2 {
		t.Error("result must not alias caller memory")
	}
}

func TestUpdateMatchResult_FullBracket(t *testing.T) {
	b := fourPlayerBracket(t)
	b = mustResult(t, b, "t-m1", "a", 3, 0)
	b = mustResult(t, b, "t-m2", "b", 3, 1)
	if b.Champion() != nil || b.IsComplete() {
		t.Fatal("bracket should not be finished yet")
	}
	b = mustResult(t, b, "t-m3", "b", 2, 3)

	if c := b.Champion(); c == nil || c.ID != "b" {
		t.Errorf("champion = %+v, want b", c)
	}
	if !b.IsComplete() {
		t.Error("bracket should be complete")
	}

	_, err := UpdateMatchResult(b, "t-m1", Participant{ID: "d"}, 0, 3, nil, nil)
	if !errors.Is(err, ErrConsistency) {
		t.Errorf("changing a result feeding a completed match should fail, got %v", err)
	}
}

func TestUpdateMatchResult_Correction(t *testing.T) {
	b := fourPlayerBracket(t)
	b = mustResult(t, b, "t-m1", "a", 3, 0)
	b = mustResult(t, b, "t-m1", "d", 1, 3)
	if got := b.Rounds[1][0].ParticipantA; got == nil || got.ID != "d" {
		t.Errorf("corrected winner should replace the old one, got %+v", got)
	}
}

func TestUpdateMatchResult_Errors(t *testing.T) {
	b := fourPlayerBracket(t)

	if _, err := UpdateMatchResult(b, "nope", Participant{ID: "a"}, 0, 0, nil, nil); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
	if _, err := UpdateMatchResult(b, "t-m1", Participant{ID: "b"}, 0, 0, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for an outside winner, got %v", err)
	}
	if _, err := UpdateMatchResult(b, "t-m3", Participant{ID: "a"}, 0, 0, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for an unfilled match, got %v", err)
	}
	if _, err := UpdateMatchResult(nil, "t-m1", Participant{ID: "a"}, 0, 0, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil bracket, got %v", err)
	}

	withByes, err := GenerateSingleElimination("b", ratedField(3), SeedByRating)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := UpdateMatchResult(withByes, "b-m1", Participant{ID: "a"}, 0, 0, nil, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a BYE match, got %v", err)
	}

	broken := b.Clone()
	dangling := "t-m99"
	broken.Rounds[1][0].SourceMatchA = &dangling
	if _, err := UpdateMatchResult(broken, "t-m1", Participant{ID: "a"}, 0, 0, nil, nil); !errors.Is(err, ErrConsistency) {
		t.Errorf("expected ErrConsistency for a dangling source, got %v", err)
	}
}

func TestBracketClone_Independent(t *testing.T) {
	b := fourPlayerBracket(t)
	c := b.Clone()
	c.Rounds[0][0].ParticipantA.Name = "changed"
	*c.Rounds[1][0].SourceMatchA = "x"
	if b.Rounds[0][0].ParticipantA.Name == "changed" || *b.Rounds[1][0].SourceMatchA == "x" {
		t.Error("clone shares memory with the original")
	}
}
