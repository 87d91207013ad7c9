package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/clubscore/brackets"
	"github.com/Dosada05/clubscore/models"
	"github.com/Dosada05/clubscore/rating"
	"github.com/Dosada05/clubscore/repositories"
	"github.com/Dosada05/clubscore/storage"
)

// BracketNotifier pushes live updates to viewers of a tournament.
type BracketNotifier interface {
	Publish(tournamentID, msgType string, payload interface{})
}

type MatchResultInput struct {
	MatchID   string `json:"-"`
	WinnerID  string `json:"winner_id"`
	ScoreA    int    `json:"score_a"`
	ScoreB    int    `json:"score_b"`
	SetsA     *int   `json:"sets_a,omitempty"`
	SetsB     *int   `json:"sets_b,omitempty"`
	IsForfeit bool   `json:"is_forfeit"`
	// ExpectedVersion rejects the write when the bracket moved on since the
	// caller last read it.
	ExpectedVersion *int `json:"expected_version,omitempty"`
}

type MatchResultOutcome struct {
	Match          brackets.Match         `json:"match"`
	Ratings        *rating.MatchOutcome   `json:"ratings,omitempty"`
	Bracket        *BracketView           `json:"bracket"`
	KnockoutSeeded bool                   `json:"knockout_seeded"`
	Completed      bool                   `json:"tournament_completed"`
	History        []models.RatingHistory `json:"-"`

	// RatingsReverted is set when a corrected winner replaced an earlier result.
	RatingsReverted bool `json:"ratings_reverted,omitempty"`
}

type BracketService interface {
	GenerateAndSaveBracket(ctx context.Context, tournamentID string) (*BracketView, error)
	GetBracket(ctx context.Context, tournamentID string) (*BracketView, error)
	RecordMatchResult(ctx context.Context, tournamentID string, input MatchResultInput) (*MatchResultOutcome, error)
}

type bracketService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	bracketRepo    repositories.BracketRepository
	playerRepo     repositories.PlayerRepository
	notifier       BracketNotifier
	publisher      storage.SnapshotPublisher
	logger         *slog.Logger
}

func NewBracketService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	bracketRepo repositories.BracketRepository,
	playerRepo repositories.PlayerRepository,
	notifier BracketNotifier,
	publisher storage.SnapshotPublisher,
	logger *slog.Logger,
) BracketService {
	if publisher == nil {
		publisher = storage.NewNoopSnapshotPublisher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		bracketRepo:    bracketRepo,
		playerRepo:     playerRepo,
		notifier:       notifier,
		publisher:      publisher,
		logger:         logger,
	}
}

func (s *bracketService) GenerateAndSaveBracket(ctx context.Context, tournamentID string) (*BracketView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if tournament.Status != models.StatusDraft {
		return nil, ErrBracketAlreadyExists
	}

	registered, err := s.tournamentRepo.ListParticipants(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %s: %w", tournamentID, err)
	}
	participants := make([]brackets.Participant, len(registered))
	for i, p := range registered {
		participants[i] = p.ToBracket()
	}

	generator, err := brackets.NewGenerator(tournament.Format)
	if err != nil {
		return nil, err
	}

	s.logger.Info("generating bracket",
		"tournament_id", tournamentID,
		"generator", generator.GetName(),
		"seed_method", tournament.SeedMethod,
		"participants", len(participants),
	)

	bracket, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID:    tournamentID,
		Participants:    participants,
		SeedMethod:      tournament.SeedMethod,
		GroupCount:      tournament.GroupCount,
		AdvancePerGroup: tournament.AdvancePerGroup,
		Legs:            tournament.Legs,
	})
	if err != nil {
		return nil, err
	}

	var stored *models.StoredBracket
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var txErr error
		stored, txErr = s.bracketRepo.Create(ctx, exec, tournamentID, bracket)
		if txErr != nil {
			return handleRepositoryError(txErr)
		}
		return transitionStatus(ctx, s.tournamentRepo, exec, tournament, models.StatusActive)
	})
	if err != nil {
		return nil, err
	}

	view := newBracketView(stored)
	s.afterCommit(ctx, view, brackets.MessageBracketUpdated, view)
	return view, nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID string) (*BracketView, error) {
	stored, err := s.bracketRepo.Get(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return newBracketView(stored), nil
}

// RecordMatchResult applies a result to the stored bracket and moves both
// players' ratings. Everything happens in one transaction guarded by the
// bracket version.
//
// A completed match can be corrected until a match it feeds completes, and a
// group match only until the knockout is seeded. A correction with the same
// winner only rewrites the score. When the winner changes, the rating rows of
// the earlier result are reverted and the corrected result is rated instead.
func (s *bracketService) RecordMatchResult(ctx context.Context, tournamentID string, input MatchResultInput) (*MatchResultOutcome, error) {
	if input.MatchID == "" || input.WinnerID == "" {
		return nil, fmt.Errorf("%w: match id and winner id are required", ErrValidationFailed)
	}
	if input.ScoreA < 0 || input.ScoreB < 0 {
		return nil, fmt.Errorf("%w: scores must not be negative", ErrValidationFailed)
	}

	outcome := &MatchResultOutcome{}
	var championID *string

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if tournament.Status != models.StatusActive {
			return ErrTournamentNotActive
		}

		stored, err := s.bracketRepo.Get(ctx, exec, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if input.ExpectedVersion != nil && *input.ExpectedVersion != stored.Version {
			return ErrBracketVersionConflict
		}

		previous, ok := stored.Bracket.FindMatch(input.MatchID)
		if !ok {
			return fmt.Errorf("%w: %s", brackets.ErrMatchNotFound, input.MatchID)
		}
		firstResult := previous.Status != brackets.StatusCompleted

		updated, err := brackets.UpdateMatchResult(stored.Bracket, input.MatchID,
			brackets.Participant{ID: input.WinnerID}, input.ScoreA, input.ScoreB, input.SetsA, input.SetsB)
		if err != nil {
			return err
		}

		if updated.Type == brackets.TypeGroupKnockout && len(updated.Rounds) == 0 && brackets.GroupsFinished(updated) {
			updated, err = brackets.SeedKnockoutFromGroups(updated)
			if err != nil {
				return err
			}
			outcome.KnockoutSeeded = true
		}

		match, _ := updated.FindMatch(input.MatchID)
		outcome.Match = *match

		winnerChanged := !firstResult && previous.Winner != nil && previous.Winner.ID != input.WinnerID
		if winnerChanged {
			if err := s.revertRatings(ctx, exec, tournamentID, input.MatchID); err != nil {
				return err
			}
			outcome.RatingsReverted = true
		}

		if firstResult || winnerChanged {
			ratings, history, err := s.applyRatings(ctx, exec, tournamentID, *match, input.IsForfeit)
			if err != nil {
				return err
			}
			outcome.Ratings = ratings
			outcome.History = history
		}

		saved, err := s.bracketRepo.Update(ctx, exec, tournamentID, updated, stored.Version)
		if err != nil {
			return handleRepositoryError(err)
		}
		outcome.Bracket = newBracketView(saved)

		if updated.IsComplete() {
			if champion := outcome.Bracket.Champion; champion != nil {
				id := champion.ID
				championID = &id
				if err := s.tournamentRepo.SetChampion(ctx, exec, tournamentID, championID); err != nil {
					return handleRepositoryError(err)
				}
			}
			if err := transitionStatus(ctx, s.tournamentRepo, exec, tournament, models.StatusCompleted); err != nil {
				return err
			}
			outcome.Completed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		"tournament_id", tournamentID,
		"match_id", input.MatchID,
		"winner_id", input.WinnerID,
		"version", outcome.Bracket.Version,
		"ratings_applied", outcome.Ratings != nil,
		"ratings_reverted", outcome.RatingsReverted,
	)

	if s.notifier != nil {
		s.notifier.Publish(tournamentID, brackets.MessageMatchCompleted, outcome.Match)
		if outcome.Ratings != nil {
			s.notifier.Publish(tournamentID, brackets.MessageRatingsChanged, outcome.Ratings)
		}
		if outcome.KnockoutSeeded {
			s.notifier.Publish(tournamentID, brackets.MessageKnockoutSeeded, outcome.Bracket.Bracket.Rounds)
		}
		if outcome.Completed {
			s.notifier.Publish(tournamentID, brackets.MessageTournamentEnded, map[string]interface{}{
				"tournament_id": tournamentID,
				"champion_id":   championID,
			})
		}
	}
	s.afterCommit(ctx, outcome.Bracket, brackets.MessageBracketUpdated, outcome.Bracket)
	return outcome, nil
}

// applyRatings locks both players in a fixed order, runs the ELO update and
// writes the new ratings with their history rows.
func (s *bracketService) applyRatings(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, match brackets.Match, forfeit bool) (*rating.MatchOutcome, []models.RatingHistory, error) {
	loserSide := match.Loser()
	if match.Winner == nil || loserSide == nil {
		return nil, nil, fmt.Errorf("%w: match %s has no decided players", brackets.ErrConsistency, match.ID)
	}

	ids := []string{match.Winner.ID, loserSide.ID}
	sort.Strings(ids)
	players := make(map[string]*models.Player, 2)
	for _, id := range ids {
		p, err := s.playerRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return nil, nil, handleRepositoryError(err)
		}
		players[id] = p
	}

	winnerScore, loserScore := *match.ScoreA, *match.ScoreB
	if match.Winner.ID == match.ParticipantB.ID {
		winnerScore, loserScore = loserScore, winnerScore
	}

	winner, loser := players[match.Winner.ID].ToRating(), players[loserSide.ID].ToRating()
	result, err := rating.ApplyResult(rating.MatchResult{
		WinnerID:    winner.ID,
		LoserID:     loser.ID,
		WinnerScore: winnerScore,
		LoserScore:  loserScore,
		IsForfeit:   forfeit,
	}, winner, loser)
	if err != nil {
		return nil, nil, err
	}

	for _, pair := range []struct {
		player rating.Player
		change rating.RatingChange
	}{{winner, result.Winner}, {loser, result.Loser}} {
		next := pair.player.Apply(pair.change)
		if err := s.playerRepo.UpdateRating(ctx, exec, next.ID, next.Rating, next.MatchCount); err != nil {
			return nil, nil, handleRepositoryError(err)
		}
	}

	history := []models.RatingHistory{
		models.NewRatingHistory(tournamentID, match.ID, result.Winner),
		models.NewRatingHistory(tournamentID, match.ID, result.Loser),
	}
	if err := s.playerRepo.AddHistory(ctx, exec, history...); err != nil {
		return nil, nil, handleRepositoryError(err)
	}
	return &result, history, nil
}

// revertRatings takes back the rating changes a match wrote and drops its
// history rows. Players are locked in the same order applyRatings uses.
func (s *bracketService) revertRatings(ctx context.Context, exec repositories.SQLExecutor, tournamentID, matchID string) error {
	history, err := s.playerRepo.ListMatchHistory(ctx, exec, tournamentID, matchID)
	if err != nil {
		return handleRepositoryError(err)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].PlayerID < history[j].PlayerID })

	for _, h := range history {
		p, err := s.playerRepo.GetForUpdate(ctx, exec, h.PlayerID)
		if err != nil {
			return handleRepositoryError(err)
		}
		restored := p.Rating - h.Change
		if restored < rating.MinRating {
			restored = rating.MinRating
		}
		matchCount := p.MatchCount - 1
		if matchCount < 0 {
			matchCount = 0
		}
		if err := s.playerRepo.UpdateRating(ctx, exec, p.ID, restored, matchCount); err != nil {
			return handleRepositoryError(err)
		}
	}

	if err := s.playerRepo.DeleteMatchHistory(ctx, exec, tournamentID, matchID); err != nil {
		return handleRepositoryError(err)
	}
	return nil
}

// afterCommit pushes the bracket to live viewers and publishes the public
// snapshot. Failures here are logged only; the write already succeeded.
func (s *bracketService) afterCommit(ctx context.Context, view *BracketView, msgType string, payload interface{}) {
	url, err := s.publisher.Publish(ctx, view.TournamentID, view)
	if err != nil {
		s.logger.Error("failed to publish bracket snapshot", "tournament_id", view.TournamentID, "error", err)
	} else {
		view.SnapshotURL = url
	}
	if s.notifier != nil {
		s.notifier.Publish(view.TournamentID, msgType, payload)
	}
}
