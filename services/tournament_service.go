package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/clubscore/brackets"
	"github.com/Dosada05/clubscore/models"
	"github.com/Dosada05/clubscore/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ParticipantInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateTournamentInput struct {
	Name            string             `json:"name"`
	Format          string             `json:"format"`
	SeedMethod      string             `json:"seed_method"`
	GroupCount      int                `json:"group_count"`
	AdvancePerGroup int                `json:"advance_per_group"`
	Legs            int                `json:"legs"`
	Participants    []ParticipantInput `json:"participants"`
}

type TournamentView struct {
	Tournament *models.Tournament `json:"tournament"`
	Bracket    *BracketView       `json:"bracket,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentView(ctx context.Context, tournamentID string) (*TournamentView, error)
}

type tournamentService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	bracketRepo    repositories.BracketRepository
	playerRepo     repositories.PlayerRepository
	logger         *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	bracketRepo repositories.BracketRepository,
	playerRepo repositories.PlayerRepository,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		bracketRepo:    bracketRepo,
		playerRepo:     playerRepo,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	tournament, err := validateTournamentInput(input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		playerIDs := make([]string, len(input.Participants))
		for i, p := range input.Participants {
			player, err := s.playerRepo.Ensure(ctx, exec, p.ID, strings.TrimSpace(p.Name))
			if err != nil {
				return handleRepositoryError(err)
			}
			playerIDs[i] = player.ID
			tournament.Participants = append(tournament.Participants, models.TournamentParticipant{
				TournamentID: tournament.ID,
				PlayerID:     player.ID,
				Name:         player.Name,
				Rating:       player.Rating,
				Position:     i + 1,
			})
		}

		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return handleRepositoryError(err)
		}
		return handleRepositoryError(s.tournamentRepo.AddParticipants(ctx, exec, tournament.ID, playerIDs))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament created",
		"tournament_id", tournament.ID,
		"format", tournament.Format,
		"participants", len(tournament.Participants),
	)
	return tournament, nil
}

func validateTournamentInput(input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}

	format, err := brackets.ParseBracketType(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if _, err := brackets.NewGenerator(format); err != nil {
		return nil, err
	}
	method, err := brackets.ParseSeedMethod(input.SeedMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if len(input.Participants) < 2 {
		return nil, fmt.Errorf("%w: at least 2 participants are required", ErrValidationFailed)
	}
	seen := make(map[string]bool, len(input.Participants))
	for _, p := range input.Participants {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("%w: every participant needs an id and a name", ErrValidationFailed)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.ID)
		}
		seen[p.ID] = true
	}

	if format == brackets.TypeGroupKnockout {
		if input.GroupCount < 1 {
			return nil, fmt.Errorf("%w: group_count is required for %s", ErrValidationFailed, format)
		}
		if len(input.Participants) < 2*input.GroupCount {
			return nil, fmt.Errorf("%w: %d participants cannot fill %d groups", ErrValidationFailed, len(input.Participants), input.GroupCount)
		}
	}
	if input.Legs < 0 || input.Legs > 2 {
		return nil, fmt.Errorf("%w: legs must be 1 or 2", ErrValidationFailed)
	}

	return &models.Tournament{
		ID:              uuid.NewString(),
		Name:            name,
		Format:          format,
		SeedMethod:      method,
		GroupCount:      input.GroupCount,
		AdvancePerGroup: input.AdvancePerGroup,
		Legs:            input.Legs,
		Status:          models.StatusDraft,
	}, nil
}

// GetTournamentView loads the tournament, its participants and its bracket
// concurrently. A tournament without a bracket yet has a nil Bracket.
func (s *tournamentService) GetTournamentView(ctx context.Context, tournamentID string) (*TournamentView, error) {
	if _, err := uuid.Parse(tournamentID); err != nil {
		return nil, ErrTournamentNotFound
	}

	var (
		tournament   *models.Tournament
		participants []models.TournamentParticipant
		stored       *models.StoredBracket
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		tournament = t
		return nil
	})

	g.Go(func() error {
		list, err := s.tournamentRepo.ListParticipants(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list participants for tournament %s: %w", tournamentID, err)
		}
		participants = list
		return nil
	})

	g.Go(func() error {
		b, err := s.bracketRepo.Get(gCtx, nil, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load bracket for tournament %s: %w", tournamentID, err)
		}
		stored = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Participants = participants
	view := &TournamentView{Tournament: tournament}
	if stored != nil {
		view.Bracket = newBracketView(stored)
	}
	return view, nil
}
