package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/clubscore/brackets"
	"github.com/Dosada05/clubscore/models"
)

var (
	ErrBracketNotFound        = errors.New("bracket not found")
	ErrBracketExists          = errors.New("bracket already exists for this tournament")
	ErrBracketVersionConflict = errors.New("bracket was modified concurrently")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournamentID string, bracket *brackets.Bracket) (*models.StoredBracket, error)
	Get(ctx context.Context, exec SQLExecutor, tournamentID string) (*models.StoredBracket, error)
	// Update replaces the snapshot if the stored version still equals
	// expectedVersion and returns the new version.
	Update(ctx context.Context, exec SQLExecutor, tournamentID string, bracket *brackets.Bracket, expectedVersion int) (*models.StoredBracket, error)
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, tournamentID string, bracket *brackets.Bracket) (*models.StoredBracket, error) {
	executor := r.getExecutor(exec)
	snapshot, err := json.Marshal(bracket)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bracket for tournament %s: %w", tournamentID, err)
	}

	query := `
		INSERT INTO brackets (tournament_id, type, snapshot, version)
		VALUES ($1, $2, $3, 1)
		RETURNING version, updated_at`

	stored := &models.StoredBracket{TournamentID: tournamentID, Bracket: bracket}
	err = executor.QueryRowContext(ctx, query, tournamentID, bracket.Type, snapshot).Scan(&stored.Version, &stored.UpdatedAt)
	if err != nil {
		switch pqErrorCode(err) {
		case pqUniqueViolation:
			return nil, ErrBracketExists
		case pqForeignKeyViolation:
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to insert bracket for tournament %s: %w", tournamentID, err)
	}
	return stored, nil
}

func (r *postgresBracketRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID string) (*models.StoredBracket, error) {
	executor := r.getExecutor(exec)
	query := `SELECT tournament_id, snapshot, version, updated_at FROM brackets WHERE tournament_id = $1`

	var (
		stored   models.StoredBracket
		snapshot []byte
	)
	err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&stored.TournamentID, &snapshot, &stored.Version, &stored.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to load bracket for tournament %s: %w", tournamentID, err)
	}

	var b brackets.Bracket
	if err := json.Unmarshal(snapshot, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bracket for tournament %s: %w", tournamentID, err)
	}
	stored.Bracket = &b
	return &stored, nil
}

func (r *postgresBracketRepository) Update(ctx context.Context, exec SQLExecutor, tournamentID string, bracket *brackets.Bracket, expectedVersion int) (*models.StoredBracket, error) {
	executor := r.getExecutor(exec)
	snapshot, err := json.Marshal(bracket)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bracket for tournament %s: %w", tournamentID, err)
	}

	query := `
		UPDATE brackets
		SET snapshot = $1, version = version + 1, updated_at = NOW()
		WHERE tournament_id = $2 AND version = $3
		RETURNING version, updated_at`

	stored := &models.StoredBracket{TournamentID: tournamentID, Bracket: bracket}
	err = executor.QueryRowContext(ctx, query, snapshot, tournamentID, expectedVersion).Scan(&stored.Version, &stored.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// либо версия устарела, либо сетки нет
			return nil, ErrBracketVersionConflict
		}
		return nil, fmt.Errorf("failed to update bracket for tournament %s: %w", tournamentID, err)
	}
	return stored, nil
}
