package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Dosada05/clubscore/brackets"
	"github.com/Dosada05/clubscore/models"
)

func createAndGenerate(t *testing.T, f *fixture, input CreateTournamentInput) (string, *BracketView) {
	t.Helper()
	ctx := context.Background()
	tournament, err := f.tournaments.CreateTournament(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	view, err := f.brackets.GenerateAndSaveBracket(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return tournament.ID, view
}

func record(t *testing.T, f *fixture, tournamentID, matchID, winnerID string, scoreA, scoreB int) *MatchResultOutcome {
	t.Helper()
	out, err := f.brackets.RecordMatchResult(context.Background(), tournamentID, MatchResultInput{
		MatchID: matchID, WinnerID: winnerID, ScoreA: scoreA, ScoreB: scoreB,
	})
	if err != nil {
		t.Fatalf("record %s: %v", matchID, err)
	}
	return out
}

func TestGenerateAndSaveBracket(t *testing.T) {
	f := newFixture()
	f.store.addPlayer("p3", 1900, 30)

	id, view := createAndGenerate(t, f, CreateTournamentInput{Name: "Cup", Format: "SINGLE_ELIMINATION", Participants: playersInput(4)})

	if view.Version != 1 || view.Bracket.Type != brackets.TypeSingleElimination || view.Bracket.TotalRounds != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
	// p3 has the highest rating and takes the first slot
	if first := view.Bracket.Rounds[0][0]; first.ParticipantA.ID != "p3" || first.ParticipantA.Seed != 1 {
		t.Errorf("top seed = %+v", first.ParticipantA)
	}
	if f.store.tournament(id).Status != models.StatusActive {
		t.Error("tournament should be active once the bracket exists")
	}
	if view.SnapshotURL == "" || f.publisher.calls != 1 {
		t.Errorf("snapshot not published: url=%q calls=%d", view.SnapshotURL, f.publisher.calls)
	}
	if got := f.notifier.types(); !reflect.DeepEqual(got, []string{brackets.MessageBracketUpdated}) {
		t.Errorf("notifications = %v", got)
	}

	if _, err := f.brackets.GenerateAndSaveBracket(context.Background(), id); !errors.Is(err, ErrBracketAlreadyExists) {
		t.Errorf("expected ErrBracketAlreadyExists, got %v", err)
	}
	if _, err := f.brackets.GenerateAndSaveBracket(context.Background(), "missing"); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("expected ErrTournamentNotFound, got %v", err)
	}
}

func TestGenerateAndSaveBracket_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.publisher.err = errPublishFailed

	_, view := createAndGenerate(t, f, CreateTournamentInput{Name: "Cup", Format: "ROUND_ROBIN", Participants: playersInput(4)})
	if view.SnapshotURL != "" {
		t.Errorf("snapshot url should stay empty, got %q", view.SnapshotURL)
	}
}

func TestGetBracket(t *testing.T) {
	f := newFixture()
	if _, err := f.brackets.GetBracket(context.Background(), "missing"); !errors.Is(err, ErrBracketNotFound) {
		t.Errorf("expected ErrBracketNotFound, got %v", err)
	}

	id, _ := createAndGenerate(t, f, CreateTournamentInput{Name: "League", Format: "ROUND_ROBIN", Participants: playersInput(4)})
	view, err := f.brackets.GetBracket(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.RoundNames) != 3 || len(view.Standings) != 4 || view.Champion != nil {
		t.Errorf("unexpected round robin view %+v", view)
	}
}

func TestRecordMatchResult_SingleElimination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id, _ := createAndGenerate(t, f, CreateTournamentInput{Name: "Cup", Format: "SINGLE_ELIMINATION", Participants: playersInput(4)})
	f.notifier.reset()

	// equal ratings keep registration order: m1 p1-p4, m2 p2-p3
	out := record(t, f, id, id+"-m1", "p4", 5, 11)

	if out.Ratings == nil {
		t.Fatal("first result should move ratings")
	}
	// new players use K=40; a 6 point margin adds the capped 25%
	if out.Ratings.Winner.PlayerID != "p4" || out.Ratings.Winner.Change != 25 || out.Ratings.Loser.Change != -20 {
		t.Errorf("unexpected ratings %+v", out.Ratings)
	}
	if p := f.store.player("p4"); p.Rating != 1525 || p.MatchCount != 1 {
		t.Errorf("winner stored as %+v", p)
	}
	if p := f.store.player("p1"); p.Rating != 1480 || p.MatchCount != 1 {
		t.Errorf("loser stored as %+v", p)
	}
	if f.store.historyLen() != 2 {
		t.Errorf("expected 2 history rows, got %d", f.store.historyLen())
	}
	if out.Bracket.Version != 2 {
		t.Errorf("version = %d, want 2", out.Bracket.Version)
	}
	if final := out.Bracket.Bracket.Rounds[1][0]; final.ParticipantA == nil || final.ParticipantA.ID != "p4" {
		t.Errorf("winner not propagated: %+v", final.ParticipantA)
	}
	want := []string{brackets.MessageMatchCompleted, brackets.MessageRatingsChanged, brackets.MessageBracketUpdated}
	if got := f.notifier.types(); !reflect.DeepEqual(got, want) {
		t.Errorf("notifications = %v, want %v", got, want)
	}

	t.Run("stale version", func(t *testing.T) {
		stale := 1
		_, err := f.brackets.RecordMatchResult(ctx, id, MatchResultInput{MatchID: id + "-m2", WinnerID: "p2", ScoreA: 2, ScoreB: 0, ExpectedVersion: &stale})
		if !errors.Is(err, ErrBracketVersionConflict) {
			t.Errorf("expected ErrBracketVersionConflict, got %v", err)
		}
	})

	t.Run("winner outside the match rolls back", func(t *testing.T) {
		_, err := f.brackets.RecordMatchResult(ctx, id, MatchResultInput{MatchID: id + "-m2", WinnerID: "p1", ScoreA: 2, ScoreB: 0})
		if !errors.Is(err, brackets.ErrInvalidArgument) {
			t.Errorf("expected brackets.ErrInvalidArgument, got %v", err)
		}
		if p := f.store.player("p2"); p.MatchCount != 0 {
			t.Errorf("failed result must not touch ratings: %+v", p)
		}
	})

	t.Run("correction with a new winner re-rates", func(t *testing.T) {
		fixed := record(t, f, id, id+"-m1", "p1", 11, 3)
		if fixed.Ratings == nil || !fixed.RatingsReverted {
			t.Fatalf("a changed winner should replace the old ratings: %+v", fixed)
		}
		if p := f.store.player("p1"); p.Rating != 1525 || p.MatchCount != 1 {
			t.Errorf("p1 stored as %+v", p)
		}
		if p := f.store.player("p4"); p.Rating != 1480 || p.MatchCount != 1 {
			t.Errorf("p4 stored as %+v", p)
		}
		if f.store.historyLen() != 2 {
			t.Errorf("expected 2 history rows, got %d", f.store.historyLen())
		}
		if final := fixed.Bracket.Bracket.Rounds[1][0]; final.ParticipantA.ID != "p1" {
			t.Errorf("final slot should hold the corrected winner, got %+v", final.ParticipantA)
		}
	})

	t.Run("rescore with the same winner keeps ratings", func(t *testing.T) {
		fixed := record(t, f, id, id+"-m1", "p1", 11, 9)
		if fixed.Ratings != nil || fixed.RatingsReverted {
			t.Errorf("same winner must not move ratings again: %+v", fixed.Ratings)
		}
		if p := f.store.player("p1"); p.Rating != 1525 {
			t.Errorf("p1 rating changed to %d", p.Rating)
		}
		if m, _ := fixed.Bracket.Bracket.FindMatch(id + "-m1"); *m.ScoreB != 9 {
			t.Errorf("score not rewritten: %+v", m)
		}
	})

	record(t, f, id, id+"-m2", "p2", 2, 0)
	f.notifier.reset()
	last := record(t, f, id, id+"-m3", "p2", 1, 3)

	if !last.Completed || last.Bracket.Champion == nil || last.Bracket.Champion.ID != "p2" {
		t.Errorf("tournament should be won by p2: %+v", last)
	}
	stored := f.store.tournament(id)
	if stored.Status != models.StatusCompleted || stored.ChampionID == nil || *stored.ChampionID != "p2" {
		t.Errorf("stored tournament = %+v", stored)
	}
	types := f.notifier.types()
	if len(types) == 0 || types[len(types)-2] != brackets.MessageTournamentEnded {
		t.Errorf("notifications = %v", types)
	}

	_, err := f.brackets.RecordMatchResult(ctx, id, MatchResultInput{MatchID: id + "-m3", WinnerID: "p1", ScoreA: 3, ScoreB: 0})
	if !errors.Is(err, ErrTournamentNotActive) {
		t.Errorf("expected ErrTournamentNotActive, got %v", err)
	}
}

func TestRecordMatchResult_WinnerCorrection(t *testing.T) {
	f := newFixture()
	id, _ := createAndGenerate(t, f, CreateTournamentInput{Name: "Cup", Format: "SINGLE_ELIMINATION", Participants: playersInput(4)})

	first := record(t, f, id, id+"-m1", "p1", 3, 0)
	if first.Ratings.Winner.Change != 23 {
		t.Fatalf("unexpected first ratings %+v", first.Ratings)
	}

	fixed := record(t, f, id, id+"-m1", "p4", 0, 3)
	if fixed.Ratings == nil || fixed.Ratings.Winner.PlayerID != "p4" {
		t.Fatalf("corrected result should be rated for p4: %+v", fixed.Ratings)
	}
	// both players are back at 1500 before the corrected result applies
	if fixed.Ratings.Winner.OldRating != 1500 || fixed.Ratings.Loser.OldRating != 1500 {
		t.Errorf("old ratings not reverted: %+v", fixed.Ratings)
	}

	tests := []struct {
		id         string
		rating     int
		matchCount int
	}{
		{"p4", 1523, 1},
		{"p1", 1480, 1},
	}
	for _, tt := range tests {
		if p := f.store.player(tt.id); p.Rating != tt.rating || p.MatchCount != tt.matchCount {
			t.Errorf("%s stored as %d/%d, want %d/%d", tt.id, p.Rating, p.MatchCount, tt.rating, tt.matchCount)
		}
	}

	history, err := memPlayerRepo{s: f.store}.ListMatchHistory(context.Background(), nil, id, id+"-m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows for the match, got %d", len(history))
	}
	for _, h := range history {
		if (h.PlayerID == "p4" && h.Change != 23) || (h.PlayerID == "p1" && h.Change != -20) {
			t.Errorf("history row %+v does not match the corrected result", h)
		}
	}
}

func TestRecordMatchResult_Validation(t *testing.T) {
	f := newFixture()
	id, _ := createAndGenerate(t, f, CreateTournamentInput{Name: "Cup", Format: "SINGLE_ELIMINATION", Participants: playersInput(4)})

	tests := []struct {
		name    string
		input   MatchResultInput
		wantErr error
	}{
		{"missing winner", MatchResultInput{MatchID: id + "-m1"}, ErrValidationFailed},
		{"negative score", MatchResultInput{MatchID: id + "-m1", WinnerID: "p1", ScoreA: -1}, ErrValidationFailed},
		{"unknown match", MatchResultInput{MatchID: id + "-m9", WinnerID: "p1"}, brackets.ErrMatchNotFound},
		{"final not ready", MatchResultInput{MatchID: id + "-m3", WinnerID: "p1"}, brackets.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.brackets.RecordMatchResult(context.Background(), id, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := f.brackets.RecordMatchResult(context.Background(), "missing", MatchResultInput{MatchID: "x", WinnerID: "y"}); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("expected ErrTournamentNotFound, got %v", err)
	}
}

func TestRecordMatchResult_GroupKnockout(t *testing.T) {
	f := newFixture()
	id, view := createAndGenerate(t, f, CreateTournamentInput{
		Name: "Groups", Format: "GROUP_KNOCKOUT", GroupCount: 2, AdvancePerGroup: 1, Participants: playersInput(4),
	})
	if len(view.GroupTables) != 2 || len(view.Bracket.Rounds) != 0 {
		t.Fatalf("unexpected group view %+v", view)
	}

	// A: p1 p4, B: p2 p3
	first := record(t, f, id, id+"-gA-m1", "p4", 0, 2)
	if first.KnockoutSeeded {
		t.Fatal("knockout must wait for every group")
	}
	f.notifier.reset()
	second := record(t, f, id, id+"-gB-m2", "p2", 2, 1)
	if !second.KnockoutSeeded {
		t.Fatal("knockout should be seeded once groups finish")
	}
	found := false
	for _, msg := range f.notifier.types() {
		if msg == brackets.MessageKnockoutSeeded {
			found = true
		}
	}
	if !found {
		t.Error("expected a knockout notification")
	}

	final := second.Bracket.Bracket.Rounds[0][0]
	if final.ParticipantA.ID != "p4" || final.ParticipantB.ID != "p2" {
		t.Fatalf("final = %s vs %s", final.ParticipantA.ID, final.ParticipantB.ID)
	}

	_, err := f.brackets.RecordMatchResult(context.Background(), id, MatchResultInput{MatchID: id + "-gA-m1", WinnerID: "p1", ScoreA: 2, ScoreB: 0})
	if !errors.Is(err, brackets.ErrConsistency) {
		t.Errorf("group match after seeding: expected brackets.ErrConsistency, got %v", err)
	}
	if p := f.store.player("p1"); p.MatchCount != 1 {
		t.Errorf("rejected correction must not touch ratings: %+v", p)
	}

	done := record(t, f, id, final.ID, "p2", 1, 2)
	if !done.Completed || done.Bracket.Champion.ID != "p2" {
		t.Errorf("expected p2 to win the tournament: %+v", done.Bracket.Champion)
	}
}

func TestRecordMatchResult_RoundRobinChampion(t *testing.T) {
	f := newFixture()
	id, view := createAndGenerate(t, f, CreateTournamentInput{Name: "League", Format: "ROUND_ROBIN", Participants: playersInput(3)})

	var last *MatchResultOutcome
	for _, round := range view.Bracket.Rounds {
		for _, m := range round {
			// the lower player id always wins
			winner := m.ParticipantA.ID
			if m.ParticipantB.ID < winner {
				winner = m.ParticipantB.ID
			}
			last = record(t, f, id, m.ID, winner, 3, 1)
		}
	}

	if last == nil || !last.Completed {
		t.Fatal("league should be complete")
	}
	if last.Bracket.Champion == nil || last.Bracket.Champion.ID != "p1" {
		t.Errorf("champion = %+v, want p1", last.Bracket.Champion)
	}
	if top := last.Bracket.Standings[0]; top.Wins != 2 || top.Points != 6 {
		t.Errorf("unexpected leader %+v", top)
	}
}
