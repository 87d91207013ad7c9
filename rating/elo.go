// Package rating implements the club ELO rating engine: K-factor selection,
// expected scores, per-match rating deltas and the "what if" simulator used by
// the rating preview screens. Everything here is pure and safe for concurrent use.
package rating

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultRating = 1500
	MinRating     = 100

	KFactorNew     = 40 // fewer than NewPlayerMatches games played
	KFactorNormal  = 20
	KFactorVeteran = 10 // rating at or above VeteranRating

	NewPlayerMatches = 10
	VeteranRating    = 2400

	marginStep     = 0.05
	marginBonusCap = 0.25

	// DefaultSimulationMatchCount is the match count assumed for both sides of a
	// simulation when the caller does not know its own.
	DefaultSimulationMatchCount = 30
)

var ErrResultMismatch = errors.New("match result does not belong to the given players")

type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Rating     int    `json:"rating"`
	MatchCount int    `json:"match_count"`
}

// NewPlayer returns a player at the default rating with no matches played.
func NewPlayer(id, name string) Player {
	return Player{ID: id, Name: name, Rating: DefaultRating}
}

// Apply returns a copy of p with the change applied and one more match counted.
func (p Player) Apply(change RatingChange) Player {
	p.Rating = change.NewRating
	p.MatchCount++
	return p
}

type MatchResult struct {
	WinnerID    string `json:"winner_id"`
	LoserID     string `json:"loser_id"`
	WinnerScore int    `json:"winner_score"`
	LoserScore  int    `json:"loser_score"`
	IsForfeit   bool   `json:"is_forfeit,omitempty"`
}

type RatingChange struct {
	PlayerID  string `json:"player_id"`
	OldRating int    `json:"old_rating"`
	NewRating int    `json:"new_rating"`
	Change    int    `json:"change"`
}

type MatchOutcome struct {
	Winner RatingChange `json:"winner"`
	Loser  RatingChange `json:"loser"`
}

// GetKFactor evaluates the pre-match state of the player.
func GetKFactor(p Player) int {
	if p.MatchCount < NewPlayerMatches {
		return KFactorNew
	}
	if p.Rating >= VeteranRating {
		return KFactorVeteran
	}
	return KFactorNormal
}

// CalculateExpectedScore returns the logistic ELO expectation of A against B.
func CalculateExpectedScore(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
}

// CalculateRatingChange returns the signed deltas for a win without a margin bonus.
func CalculateRatingChange(winner, loser Player) (winnerChange, loserChange int) {
	return ratingChange(winner, loser, 1)
}

// CalculateRatingChangeWithMargin scales the winner's gain by
// 1 + min(margin*0.05, 0.25) when scoreMargin is positive. The loser's loss is
// never scaled.
func CalculateRatingChangeWithMargin(winner, loser Player, scoreMargin int) (winnerChange, loserChange int) {
	return ratingChange(winner, loser, marginBonus(scoreMargin))
}

func marginBonus(scoreMargin int) float64 {
	if scoreMargin <= 0 {
		return 1
	}
	return 1 + math.Min(float64(scoreMargin)*marginStep, marginBonusCap)
}

func ratingChange(winner, loser Player, bonus float64) (int, int) {
	expectedWin := CalculateExpectedScore(winner.Rating, loser.Rating)
	expectedLose := CalculateExpectedScore(loser.Rating, winner.Rating)

	kWinner := float64(GetKFactor(winner))
	kLoser := float64(GetKFactor(loser))

	winnerChange := roundHalfUp(kWinner * (1 - expectedWin) * bonus)
	loserChange := roundHalfUp(kLoser * (0 - expectedLose))
	return winnerChange, loserChange
}

// roundHalfUp rounds .5 towards positive infinity so -2.5 becomes -2.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ProcessMatch derives the score margin and returns both players' changes.
// New ratings are floored at MinRating.
func ProcessMatch(winner, loser Player, winnerScore, loserScore int) MatchOutcome {
	winnerChange, loserChange := CalculateRatingChangeWithMargin(winner, loser, winnerScore-loserScore)
	return MatchOutcome{
		Winner: newChange(winner, winnerChange),
		Loser:  newChange(loser, loserChange),
	}
}

// ApplyResult checks that result describes a match between winner and loser and
// processes it. A forfeit carries no margin bonus since no score was played out.
func ApplyResult(result MatchResult, winner, loser Player) (MatchOutcome, error) {
	if result.WinnerID != winner.ID || result.LoserID != loser.ID {
		return MatchOutcome{}, fmt.Errorf("%w: result %s/%s, players %s/%s",
			ErrResultMismatch, result.WinnerID, result.LoserID, winner.ID, loser.ID)
	}
	if result.IsForfeit {
		winnerChange, loserChange := CalculateRatingChange(winner, loser)
		return MatchOutcome{
			Winner: newChange(winner, winnerChange),
			Loser:  newChange(loser, loserChange),
		}, nil
	}
	return ProcessMatch(winner, loser, result.WinnerScore, result.LoserScore), nil
}

func newChange(p Player, change int) RatingChange {
	newRating := p.Rating + change
	if newRating < MinRating {
		newRating = MinRating
	}
	return RatingChange{
		PlayerID:  p.ID,
		OldRating: p.Rating,
		NewRating: newRating,
		Change:    change,
	}
}

type Simulation struct {
	WinPoints       int `json:"win_points"`
	LosePoints      int `json:"lose_points"`
	ExpectedWinRate int `json:"expected_win_rate"`
	UpsetBonus      int `json:"upset_bonus"`
}

// SimulateMatch previews the points at stake against an opponent with a normal
// K-factor. LosePoints is taken from the swapped pairing (opponent wins), so it
// uses the opponent's expectation and K-factor on the winning side; it is an
// approximation and can differ from a real loss when match counts differ.
// UpsetBonus only flags an underdog win; it is not added to any rating.
func SimulateMatch(myRating, opponentRating, myMatchCount int) Simulation {
	me := Player{ID: "me", Name: "Me", Rating: myRating, MatchCount: myMatchCount}
	opponent := Player{ID: "opponent", Name: "Opponent", Rating: opponentRating, MatchCount: DefaultSimulationMatchCount}

	winPoints, _ := CalculateRatingChange(me, opponent)
	_, losePoints := CalculateRatingChange(opponent, me)

	upsetBonus := 0
	if myRating < opponentRating {
		upsetBonus = winPoints
	}

	return Simulation{
		WinPoints:       winPoints,
		LosePoints:      absInt(losePoints),
		ExpectedWinRate: roundHalfUp(CalculateExpectedScore(myRating, opponentRating) * 100),
		UpsetBonus:      upsetBonus,
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
