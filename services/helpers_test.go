package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/clubscore/models"
)

func TestIsValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to models.TournamentStatus
		want     bool
	}{
		{models.StatusDraft, models.StatusActive, true},
		{models.StatusDraft, models.StatusCompleted, false},
		{models.StatusActive, models.StatusCompleted, true},
		{models.StatusActive, models.StatusDraft, false},
		{models.StatusCompleted, models.StatusActive, false},
		{models.StatusCanceled, models.StatusCanceled, true},
	}
	for _, tt := range tests {
		if got := isValidStatusTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransitionStatus(t *testing.T) {
	store := newMemStore()
	repo := memTournamentRepo{store}
	tournament := &models.Tournament{ID: "t1", Status: models.StatusCompleted}
	if err := repo.Create(context.Background(), nil, tournament); err != nil {
		t.Fatal(err)
	}

	err := transitionStatus(context.Background(), repo, nil, tournament, models.StatusActive)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if store.tournament("t1").Status != models.StatusCompleted {
		t.Error("a rejected transition must not be stored")
	}
}
