package rating

var streakBonusTable = [...]int{0, 0, 0, 5, 10, 15, 20, 25, 30}

const minStreak = 3

// GetStreakBonus returns the display bonus for a run of consecutive results.
// Losing streaks get half the bonus, negated and rounded down.
func GetStreakBonus(streak int, isWinStreak bool) int {
	if streak < minStreak {
		return 0
	}
	idx := streak
	if idx > len(streakBonusTable)-1 {
		idx = len(streakBonusTable) - 1
	}
	bonus := streakBonusTable[idx]
	if isWinStreak {
		return bonus
	}
	return -(bonus / 2)
}
