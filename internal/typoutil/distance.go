// Package typoutil measures edit distance between phrases so near misses can be suggested.
package typoutil

// Distance returns the optimal string alignment distance between a and b:
// insertions, deletions, substitutions and adjacent transpositions each cost 1.
// Runes are compared, so accented letters count as one character.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Three rolling rows: two back (transpositions), previous and current.
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				curr[j] = min(curr[j], prev2[j-2]+1)
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[len(rb)]
}

// Within reports whether Distance(a, b) <= maxDistance.
// It skips the full computation when the length gap alone exceeds maxDistance.
func Within(a, b string, maxDistance int) bool {
	if maxDistance < 0 {
		return false
	}
	gap := len([]rune(a)) - len([]rune(b))
	if gap < 0 {
		gap = -gap
	}
	if gap > maxDistance {
		return false
	}
	return Distance(a, b) <= maxDistance
}

// MaxDistanceFor returns the typo budget for a query of the given rune length:
// none below 4 runes, one below 8, two otherwise.
func MaxDistanceFor(length int) int {
	switch {
	case length < 4:
		return 0
	case length < 8:
		return 1
	default:
		return 2
	}
}
