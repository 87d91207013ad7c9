package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/clubscore/models"
)

var (
	ErrTournamentNotFound          = errors.New("tournament not found")
	ErrTournamentParticipantExists = errors.New("player is already registered for this tournament")
	ErrTournamentInvalidPlayer     = errors.New("invalid player reference")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error
	SetChampion(ctx context.Context, exec SQLExecutor, id string, playerID *string) error
	AddParticipants(ctx context.Context, exec SQLExecutor, tournamentID string, playerIDs []string) error
	ListParticipants(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.TournamentParticipant, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (
			id, name, format, seed_method, group_count, advance_per_group, legs, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Format, t.SeedMethod, t.GroupCount, t.AdvancePerGroup, t.Legs, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tournament %s: %w", t.ID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, format, seed_method, group_count, advance_per_group, legs, status,
			champion_player_id, created_at, updated_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Format, &t.SeedMethod, &t.GroupCount, &t.AdvancePerGroup, &t.Legs, &t.Status,
		&t.ChampionID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetChampion(ctx context.Context, exec SQLExecutor, id string, playerID *string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET champion_player_id = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, playerID, id)
	if err != nil {
		if pqErrorCode(err) == pqForeignKeyViolation {
			return ErrTournamentInvalidPlayer
		}
		return fmt.Errorf("failed to set champion of tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// AddParticipants registers players in the given order; position drives
// MANUAL seeding.
func (r *postgresTournamentRepository) AddParticipants(ctx context.Context, exec SQLExecutor, tournamentID string, playerIDs []string) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO tournament_participants (tournament_id, player_id, position) VALUES ($1, $2, $3)`
	for i, playerID := range playerIDs {
		if _, err := executor.ExecContext(ctx, query, tournamentID, playerID, i+1); err != nil {
			switch pqErrorCode(err) {
			case pqUniqueViolation:
				return fmt.Errorf("%w: %s", ErrTournamentParticipantExists, playerID)
			case pqForeignKeyViolation:
				return fmt.Errorf("%w: %s", ErrTournamentInvalidPlayer, playerID)
			}
			return fmt.Errorf("failed to register player %s for tournament %s: %w", playerID, tournamentID, err)
		}
	}
	return nil
}

func (r *postgresTournamentRepository) ListParticipants(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.TournamentParticipant, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT tp.tournament_id, tp.player_id, p.name, p.rating, tp.position
		FROM tournament_participants tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.tournament_id = $1
		ORDER BY tp.position`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]models.TournamentParticipant, 0)
	for rows.Next() {
		var p models.TournamentParticipant
		if err := rows.Scan(&p.TournamentID, &p.PlayerID, &p.Name, &p.Rating, &p.Position); err != nil {
			return nil, fmt.Errorf("failed to scan tournament participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}
