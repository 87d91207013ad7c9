package rating

import "math"

type Tier string

const (
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
)

// TierInfo describes one inclusive rating band.
type TierInfo struct {
	Tier      Tier   `json:"tier"`
	Name      string `json:"name"`
	MinRating int    `json:"min_rating"`
	MaxRating int    `json:"max_rating"`
	Color     string `json:"color"`
}

// topTierMax stands in for "no upper bound".
const topTierMax = 9999

var tiers = []TierInfo{
	{TierBronze, "Bronze", 0, 1199, "#CD7F32"},
	{TierSilver, "Silver", 1200, 1399, "#C0C0C0"},
	{TierGold, "Gold", 1400, 1599, "#FFD700"},
	{TierPlatinum, "Platinum", 1600, 1799, "#00CED1"},
	{TierDiamond, "Diamond", 1800, 1999, "#B9F2FF"},
	{TierMaster, "Master", 2000, 2199, "#9932CC"},
	{TierGrandmaster, "Grandmaster", 2200, topTierMax, "#FF4500"},
}

// Tiers returns the tier table in ascending order.
func Tiers() []TierInfo {
	out := make([]TierInfo, len(tiers))
	copy(out, tiers)
	return out
}

// GetTierInfo returns the band containing rating, or Bronze when none does.
func GetTierInfo(rating int) TierInfo {
	_, info := tierIndex(rating)
	return info
}

func tierIndex(rating int) (int, TierInfo) {
	for i, t := range tiers {
		if rating >= t.MinRating && rating <= t.MaxRating {
			return i, t
		}
	}
	return 0, tiers[0]
}

type TierProgress struct {
	CurrentTier     TierInfo  `json:"current_tier"`
	NextTier        *TierInfo `json:"next_tier"`
	PointsNeeded    int       `json:"points_needed"`
	ProgressPercent int       `json:"progress_percent"`
}

func GetProgressToNextTier(rating int) TierProgress {
	idx, current := tierIndex(rating)
	if idx == len(tiers)-1 {
		return TierProgress{CurrentTier: current, PointsNeeded: 0, ProgressPercent: 100}
	}

	next := tiers[idx+1]
	span := float64(current.MaxRating - current.MinRating + 1)
	inTier := float64(rating - current.MinRating)

	return TierProgress{
		CurrentTier:     current,
		NextTier:        &next,
		PointsNeeded:    next.MinRating - rating,
		ProgressPercent: int(math.Floor(inTier/span*100 + 0.5)),
	}
}
