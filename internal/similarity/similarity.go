// Package similarity scores how textually alike two strings are.
//
// The score is the classic recursive longest-common-substring measure: find
// the longest common substring, count it, then recurse into the parts left of
// it and right of it in both strings. Ties on length go to the occurrence that
// starts first in a, then first in b. Because of that tie-break the measure is
// not symmetric: Percent(a, b) and Percent(b, a) can differ. Callers that rank
// candidates must always pass the strings in the same order.
//
// Strings are compared byte by byte. Cost is O(len(a)*len(b)) per level, so
// scoring is meant for small template libraries and documents of a few KB.
package similarity

// span is a pair of byte ranges still to be compared.
type span struct {
	a, b string
}

// MatchLength returns the total number of bytes the recursive longest common
// substring decomposition of a and b accounts for.
func MatchLength(a, b string) int {
	total := 0
	stack := []span{{a: a, b: b}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		posA, posB, n := longestCommon(cur.a, cur.b)
		if n == 0 {
			continue
		}
		total += n

		if posA > 0 && posB > 0 {
			stack = append(stack, span{a: cur.a[:posA], b: cur.b[:posB]})
		}
		if posA+n < len(cur.a) && posB+n < len(cur.b) {
			stack = append(stack, span{a: cur.a[posA+n:], b: cur.b[posB+n:]})
		}
	}

	return total
}

// Percent returns MatchLength scaled to [0, 100] against the combined length.
// Two empty strings score 0.
func Percent(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return float64(MatchLength(a, b)) * 2 * 100 / float64(total)
}

// longestCommon finds the first longest common substring of a and b, scanning
// a left to right and b left to right for each position in a.
func longestCommon(a, b string) (posA, posB, length int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// prev[j] and cur[j] hold the common suffix length of a[:i] and b[:j].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > length {
				length = cur[j]
				posA = i - length
				posB = j - length
			}
		}
		prev, cur = cur, prev
	}

	return posA, posB, length
}
