package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/clubscore/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	// Ensure inserts the player with the default rating unless it exists.
	// The stored row is returned either way.
	Ensure(ctx context.Context, exec SQLExecutor, id, name string) (*models.Player, error)
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Player, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Player, error)
	UpdateRating(ctx context.Context, exec SQLExecutor, id string, rating, matchCount int) error
	AddHistory(ctx context.Context, exec SQLExecutor, entries ...models.RatingHistory) error
	ListHistory(ctx context.Context, exec SQLExecutor, playerID string, limit int) ([]models.RatingHistory, error)
	// ListMatchHistory returns the rows one match wrote, oldest first.
	ListMatchHistory(ctx context.Context, exec SQLExecutor, tournamentID, matchID string) ([]models.RatingHistory, error)
	DeleteMatchHistory(ctx context.Context, exec SQLExecutor, tournamentID, matchID string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Ensure(ctx context.Context, exec SQLExecutor, id, name string) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`
	if _, err := executor.ExecContext(ctx, query, id, name); err != nil {
		return nil, fmt.Errorf("failed to ensure player %s: %w", id, err)
	}
	return r.get(ctx, executor, id, false)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Player, error) {
	return r.get(ctx, r.getExecutor(exec), id, false)
}

func (r *postgresPlayerRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Player, error) {
	return r.get(ctx, r.getExecutor(exec), id, true)
}

func (r *postgresPlayerRepository) get(ctx context.Context, executor SQLExecutor, id string, lock bool) (*models.Player, error) {
	query := `SELECT id, name, rating, match_count, created_at, updated_at FROM players WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	p := &models.Player{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Rating, &p.MatchCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) UpdateRating(ctx context.Context, exec SQLExecutor, id string, rating, matchCount int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET rating = $1, match_count = $2, updated_at = NOW() WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, rating, matchCount, id)
	if err != nil {
		return fmt.Errorf("failed to update rating of player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) AddHistory(ctx context.Context, exec SQLExecutor, entries ...models.RatingHistory) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rating_history (player_id, tournament_id, match_id, old_rating, new_rating, change)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	for i := range entries {
		e := &entries[i]
		err := executor.QueryRowContext(ctx, query,
			e.PlayerID, e.TournamentID, e.MatchID, e.OldRating, e.NewRating, e.Change,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			if pqErrorCode(err) == pqForeignKeyViolation {
				return fmt.Errorf("%w: %s", ErrPlayerNotFound, e.PlayerID)
			}
			return fmt.Errorf("failed to insert rating history for player %s: %w", e.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresPlayerRepository) ListHistory(ctx context.Context, exec SQLExecutor, playerID string, limit int) ([]models.RatingHistory, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, player_id, tournament_id, match_id, old_rating, new_rating, change, created_at
		FROM rating_history
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{playerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rating history of player %s: %w", playerID, err)
	}
	return scanHistory(rows)
}

func (r *postgresPlayerRepository) ListMatchHistory(ctx context.Context, exec SQLExecutor, tournamentID, matchID string) ([]models.RatingHistory, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, player_id, tournament_id, match_id, old_rating, new_rating, change, created_at
		FROM rating_history
		WHERE tournament_id = $1 AND match_id = $2
		ORDER BY id`

	rows, err := executor.QueryContext(ctx, query, tournamentID, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rating history of match %s: %w", matchID, err)
	}
	return scanHistory(rows)
}

func (r *postgresPlayerRepository) DeleteMatchHistory(ctx context.Context, exec SQLExecutor, tournamentID, matchID string) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM rating_history WHERE tournament_id = $1 AND match_id = $2`
	if _, err := executor.ExecContext(ctx, query, tournamentID, matchID); err != nil {
		return fmt.Errorf("failed to delete rating history of match %s: %w", matchID, err)
	}
	return nil
}

func scanHistory(rows *sql.Rows) ([]models.RatingHistory, error) {
	defer rows.Close()

	history := make([]models.RatingHistory, 0)
	for rows.Next() {
		var h models.RatingHistory
		if err := rows.Scan(&h.ID, &h.PlayerID, &h.TournamentID, &h.MatchID, &h.OldRating, &h.NewRating, &h.Change, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating history: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
