package brackets

import (
	"math/bits"
	"math/rand"
	"sort"
)

// largestPowerOf2 is the biggest power of two an int can hold.
const largestPowerOf2 = 1 << (bits.UintSize - 2)

// NextPowerOf2 returns the smallest power of two that is >= n. Values <= 1
// map to 1; values above the largest int power of two return 0.
func NextPowerOf2(n int) int {
	if n > largestPowerOf2 {
		return 0
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// CreateSeedOrder returns the slot order for a bracket of the given size so
// that seed 1 and seed 2 can only meet in the final. Element i is the 0-based
// seed index placed at slot i; adjacent slots are paired in round one.
func CreateSeedOrder(size int) []int {
	if size <= 1 {
		return []int{0}
	}
	if size == 2 {
		return []int{0, 1}
	}
	half := CreateSeedOrder(size / 2)
	order := make([]int, 0, size)
	for _, s := range half {
		order = append(order, s, size-1-s)
	}
	return order
}

// AssignSeeds returns a copy of participants ordered by method with Seed set
// to the 1-based position. A nil rng uses the package level source.
func AssignSeeds(participants []Participant, method SeedMethod, rng *rand.Rand) []Participant {
	out := make([]Participant, len(participants))
	for i := range participants {
		out[i] = *cloneParticipant(&participants[i])
	}

	switch method {
	case SeedRandom:
		shuffle := rand.Shuffle
		if rng != nil {
			shuffle = rng.Shuffle
		}
		shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	case SeedManual:
		// keep caller order
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return ratingOrZero(out[i]) > ratingOrZero(out[j])
		})
	}

	for i := range out {
		out[i].Seed = i + 1
	}
	return out
}

func ratingOrZero(p Participant) int {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}
