package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/clubscore/models"
	"github.com/Dosada05/clubscore/repositories"
)

var allowedTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusDraft:     {models.StatusActive, models.StatusCanceled},
	models.StatusActive:    {models.StatusCompleted, models.StatusCanceled},
	models.StatusCompleted: {},
	models.StatusCanceled:  {},
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// transitionStatus moves t to next inside the caller's transaction.
func transitionStatus(ctx context.Context, repo repositories.TournamentRepository, exec repositories.SQLExecutor, t *models.Tournament, next models.TournamentStatus) error {
	if !isValidStatusTransition(t.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, t.Status, next)
	}
	if err := repo.UpdateStatus(ctx, exec, t.ID, next); err != nil {
		return handleRepositoryError(err)
	}
	t.Status = next
	return nil
}
