package services

import (
	"errors"

	"github.com/Dosada05/clubscore/repositories"
)

var (
	ErrValidationFailed        = errors.New("validation failed")
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrBracketNotFound         = errors.New("bracket not found")
	ErrPlayerNotFound          = errors.New("player not found")
	ErrBracketAlreadyExists    = errors.New("bracket already generated for this tournament")
	ErrBracketVersionConflict  = errors.New("bracket changed since it was read")
	ErrTournamentNotActive     = errors.New("tournament is not accepting results")
	ErrDuplicateParticipant    = errors.New("participant listed more than once")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")
)

// handleRepositoryError translates repository sentinels into service ones and
// passes everything else through unchanged.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrBracketNotFound):
		return ErrBracketNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound), errors.Is(err, repositories.ErrTournamentInvalidPlayer):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrBracketExists):
		return ErrBracketAlreadyExists
	case errors.Is(err, repositories.ErrBracketVersionConflict):
		return ErrBracketVersionConflict
	case errors.Is(err, repositories.ErrTournamentParticipantExists):
		return ErrDuplicateParticipant
	default:
		return err
	}
}
