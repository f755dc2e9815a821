package textmatch

// Fuzzy similarity scores on a 0-100 scale, mirroring the classic
// ratio/partial-ratio pair. Inputs are folded before comparison.

// Ratio scores the whole-string similarity of a and b.
func Ratio(a, b string) int {
	fa, fb := []rune(Fold(a)), []rune(Fold(b))
	if len(fa) == 0 && len(fb) == 0 {
		return 100
	}
	if len(fa) == 0 || len(fb) == 0 {
		return 0
	}
	dist := levenshtein(fa, fb)
	total := len(fa) + len(fb)
	return (100*(total-2*dist) + total/2) / total
}

// PartialRatio scores the shorter string against the best-matching
// equally sized window of the longer string.
func PartialRatio(a, b string) int {
	fa, fb := []rune(Fold(a)), []rune(Fold(b))
	if len(fa) > len(fb) {
		fa, fb = fb, fa
	}
	if len(fa) == 0 {
		if len(fb) == 0 {
			return 100
		}
		return 0
	}

	best := 0
	for start := 0; start+len(fa) <= len(fb); start++ {
		window := fb[start : start+len(fa)]
		dist := levenshtein(fa, window)
		score := (100*(len(fa)-dist) + len(fa)/2) / len(fa)
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// Score is the best of whole-string and partial matching.
func Score(query, candidate string) int {
	whole := Ratio(query, candidate)
	partial := PartialRatio(query, candidate)
	if partial > whole {
		return partial
	}
	return whole
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
