package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/clubscore/models"
	"github.com/Dosada05/clubscore/rating"
	"github.com/Dosada05/clubscore/repositories"
	"golang.org/x/sync/errgroup"
)

const defaultHistoryLimit = 20

type PlayerRating struct {
	Player   *models.Player         `json:"player"`
	Tier     rating.TierInfo        `json:"tier"`
	Progress rating.TierProgress    `json:"progress"`
	History  []models.RatingHistory `json:"history"`
}

type RatingService interface {
	Simulate(myRating, opponentRating, matchCount int) (rating.Simulation, error)
	Tiers() []rating.TierInfo
	Progress(r int) (rating.TierProgress, error)
	GetPlayerRating(ctx context.Context, playerID string) (*PlayerRating, error)
}

type ratingService struct {
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewRatingService(playerRepo repositories.PlayerRepository, logger *slog.Logger) RatingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ratingService{playerRepo: playerRepo, logger: logger}
}

func (s *ratingService) Simulate(myRating, opponentRating, matchCount int) (rating.Simulation, error) {
	if myRating < 0 || opponentRating < 0 {
		return rating.Simulation{}, fmt.Errorf("%w: ratings must not be negative", ErrValidationFailed)
	}
	if matchCount < 0 {
		return rating.Simulation{}, fmt.Errorf("%w: match count must not be negative", ErrValidationFailed)
	}
	return rating.SimulateMatch(myRating, opponentRating, matchCount), nil
}

func (s *ratingService) Tiers() []rating.TierInfo {
	return rating.Tiers()
}

func (s *ratingService) Progress(r int) (rating.TierProgress, error) {
	if r < 0 {
		return rating.TierProgress{}, fmt.Errorf("%w: rating must not be negative", ErrValidationFailed)
	}
	return rating.GetProgressToNextTier(r), nil
}

func (s *ratingService) GetPlayerRating(ctx context.Context, playerID string) (*PlayerRating, error) {
	var (
		player  *models.Player
		history []models.RatingHistory
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.playerRepo.GetByID(gCtx, nil, playerID)
		if err != nil {
			return handleRepositoryError(err)
		}
		player = p
		return nil
	})
	g.Go(func() error {
		h, err := s.playerRepo.ListHistory(gCtx, nil, playerID, defaultHistoryLimit)
		if err != nil {
			return fmt.Errorf("failed to load rating history for player %s: %w", playerID, err)
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PlayerRating{
		Player:   player,
		Tier:     rating.GetTierInfo(player.Rating),
		Progress: rating.GetProgressToNextTier(player.Rating),
		History:  history,
	}, nil
}
