package brackets

import "fmt"

// GetRoundName labels a round by how far it is from the final.
func GetRoundName(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "final"
	case 1:
		return "semifinal"
	case 2:
		return "quarterfinal"
	case 3:
		return "round of 16"
	case 4:
		return "round of 32"
	default:
		return fmt.Sprintf("round %d", round)
	}
}

// RoundNames returns the label of every round in b. Round robin rounds are
// numbered only.
func RoundNames(b *Bracket) []string {
	names := make([]string, len(b.Rounds))
	for i := range b.Rounds {
		if b.Type == TypeRoundRobin {
			names[i] = fmt.Sprintf("round %d", i+1)
			continue
		}
		names[i] = GetRoundName(i+1, b.TotalRounds)
	}
	return names
}
