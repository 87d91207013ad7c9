package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/clubscore/brackets"
	"github.com/Dosada05/clubscore/models"
	"github.com/Dosada05/clubscore/rating"
	"github.com/Dosada05/clubscore/repositories"
)

// memStore backs the in-memory repositories. WithinTx snapshots it and
// restores the snapshot when fn fails.
type memStore struct {
	mu           sync.Mutex
	tournaments  map[string]models.Tournament
	participants map[string][]string
	brackets     map[string]models.StoredBracket
	players      map[string]models.Player
	history      []models.RatingHistory
}

func newMemStore() *memStore {
	return &memStore{
		tournaments:  make(map[string]models.Tournament),
		participants: make(map[string][]string),
		brackets:     make(map[string]models.StoredBracket),
		players:      make(map[string]models.Player),
	}
}

type memState struct {
	tournaments  map[string]models.Tournament
	participants map[string][]string
	brackets     map[string]models.StoredBracket
	players      map[string]models.Player
	history      []models.RatingHistory
}

func (s *memStore) snapshot() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := memState{
		tournaments:  make(map[string]models.Tournament, len(s.tournaments)),
		participants: make(map[string][]string, len(s.participants)),
		brackets:     make(map[string]models.StoredBracket, len(s.brackets)),
		players:      make(map[string]models.Player, len(s.players)),
		history:      append([]models.RatingHistory(nil), s.history...),
	}
	for k, v := range s.tournaments {
		st.tournaments[k] = v
	}
	for k, v := range s.participants {
		st.participants[k] = append([]string(nil), v...)
	}
	for k, v := range s.brackets {
		v.Bracket = v.Bracket.Clone()
		st.brackets[k] = v
	}
	for k, v := range s.players {
		st.players[k] = v
	}
	return st
}

func (s *memStore) restore(st memState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments, s.participants, s.brackets, s.players, s.history = st.tournaments, st.participants, st.brackets, st.players, st.history
}

func (s *memStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	before := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

func (s *memStore) addPlayer(id string, r, matchCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[id] = models.Player{ID: id, Name: "Player " + id, Rating: r, MatchCount: matchCount}
}

func (s *memStore) player(id string) models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[id]
}

func (s *memStore) tournament(id string) models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tournaments[id]
}

func (s *memStore) historyLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

type memTournamentRepo struct{ s *memStore }

func (r memTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	stored := *t
	stored.Participants = nil
	r.s.tournaments[t.ID] = stored
	return nil
}

func (r memTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r memTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.s.tournaments[id] = t
	return nil
}

func (r memTournamentRepo) SetChampion(_ context.Context, _ repositories.SQLExecutor, id string, playerID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.ChampionID = playerID
	r.s.tournaments[id] = t
	return nil
}

func (r memTournamentRepo) AddParticipants(_ context.Context, _ repositories.SQLExecutor, tournamentID string, playerIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range playerIDs {
		if _, ok := r.s.players[id]; !ok {
			return repositories.ErrTournamentInvalidPlayer
		}
		for _, existing := range r.s.participants[tournamentID] {
			if existing == id {
				return repositories.ErrTournamentParticipantExists
			}
		}
		r.s.participants[tournamentID] = append(r.s.participants[tournamentID], id)
	}
	return nil
}

func (r memTournamentRepo) ListParticipants(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.TournamentParticipant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.TournamentParticipant, 0)
	for i, id := range r.s.participants[tournamentID] {
		p := r.s.players[id]
		out = append(out, models.TournamentParticipant{
			TournamentID: tournamentID, PlayerID: id, Name: p.Name, Rating: p.Rating, Position: i + 1,
		})
	}
	return out, nil
}

type memBracketRepo struct{ s *memStore }

func (r memBracketRepo) Create(_ context.Context, _ repositories.SQLExecutor, tournamentID string, b *brackets.Bracket) (*models.StoredBracket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.brackets[tournamentID]; ok {
		return nil, repositories.ErrBracketExists
	}
	stored := models.StoredBracket{TournamentID: tournamentID, Bracket: b.Clone(), Version: 1, UpdatedAt: time.Now()}
	r.s.brackets[tournamentID] = stored
	stored.Bracket = b
	return &stored, nil
}

func (r memBracketRepo) Get(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (*models.StoredBracket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.brackets[tournamentID]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	stored.Bracket = stored.Bracket.Clone()
	return &stored, nil
}

func (r memBracketRepo) Update(_ context.Context, _ repositories.SQLExecutor, tournamentID string, b *brackets.Bracket, expectedVersion int) (*models.StoredBracket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.brackets[tournamentID]
	if !ok || stored.Version != expectedVersion {
		return nil, repositories.ErrBracketVersionConflict
	}
	stored.Bracket = b.Clone()
	stored.Version++
	stored.UpdatedAt = time.Now()
	r.s.brackets[tournamentID] = stored
	stored.Bracket = b
	return &stored, nil
}

type memPlayerRepo struct{ s *memStore }

func (r memPlayerRepo) Ensure(_ context.Context, _ repositories.SQLExecutor, id, name string) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		p = models.Player{ID: id, Name: name, Rating: rating.DefaultRating}
		r.s.players[id] = p
	}
	return &p, nil
}

func (r memPlayerRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r memPlayerRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Player, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memPlayerRepo) UpdateRating(_ context.Context, _ repositories.SQLExecutor, id string, newRating, matchCount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.Rating, p.MatchCount = newRating, matchCount
	r.s.players[id] = p
	return nil
}

func (r memPlayerRepo) AddHistory(_ context.Context, _ repositories.SQLExecutor, entries ...models.RatingHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range entries {
		e.ID = 1
		if n := len(r.s.history); n > 0 {
			e.ID = r.s.history[n-1].ID + 1
		}
		e.CreatedAt = time.Now()
		r.s.history = append(r.s.history, e)
	}
	return nil
}

func (r memPlayerRepo) ListHistory(_ context.Context, _ repositories.SQLExecutor, playerID string, limit int) ([]models.RatingHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.RatingHistory, 0)
	for _, h := range r.s.history {
		if h.PlayerID == playerID {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memPlayerRepo) ListMatchHistory(_ context.Context, _ repositories.SQLExecutor, tournamentID, matchID string) ([]models.RatingHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.RatingHistory, 0, 2)
	for _, h := range r.s.history {
		if h.TournamentID == tournamentID && h.MatchID == matchID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r memPlayerRepo) DeleteMatchHistory(_ context.Context, _ repositories.SQLExecutor, tournamentID, matchID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := make([]models.RatingHistory, 0, len(r.s.history))
	for _, h := range r.s.history {
		if h.TournamentID != tournamentID || h.MatchID != matchID {
			kept = append(kept, h)
		}
	}
	r.s.history = kept
	return nil
}

type sentMessage struct {
	tournamentID, msgType string
	payload               interface{}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []sentMessage
}

func (n *recordingNotifier) Publish(tournamentID, msgType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, sentMessage{tournamentID, msgType, payload})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.messages {
		out = append(out, m.msgType)
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = nil
}

type countingPublisher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingPublisher) Publish(_ context.Context, tournamentID string, _ interface{}) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return fmt.Sprintf("https://cdn.example.com/brackets/%s/latest.json", tournamentID), nil
}

var errPublishFailed = errors.New("publish failed")

type fixture struct {
	store       *memStore
	notifier    *recordingNotifier
	publisher   *countingPublisher
	tournaments TournamentService
	brackets    BracketService
	ratings     RatingService
}

func newFixture() *fixture {
	store := newMemStore()
	notifier := &recordingNotifier{}
	publisher := &countingPublisher{}
	tRepo, bRepo, pRepo := memTournamentRepo{store}, memBracketRepo{store}, memPlayerRepo{store}
	return &fixture{
		store:       store,
		notifier:    notifier,
		publisher:   publisher,
		tournaments: NewTournamentService(store, tRepo, bRepo, pRepo, nil),
		brackets:    NewBracketService(store, tRepo, bRepo, pRepo, notifier, publisher, nil),
		ratings:     NewRatingService(pRepo, nil),
	}
}
