package dedup

import "strings"

// Similarity returns a normalized likeness score in [0,1] for two texts,
// 1.0 meaning identical after lowercasing and trimming. It is the
// Ratcliff/Obershelp ratio: twice the matched character count over the
// total length of both strings.
func Similarity(text1, text2 string) float64 {
	a := strings.ToLower(strings.TrimSpace(text1))
	b := strings.ToLower(strings.TrimSpace(text2))

	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}

	return 2.0 * float64(matchingChars(a, b)) / float64(total)
}

// matchingChars counts characters in matching blocks: find the longest
// common substring, then recurse on the pieces to its left and right.
func matchingChars(a, b string) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return matchingChars(a[:i], b[:j]) + size + matchingChars(a[i+size:], b[j+size:])
}

// longestMatch finds the longest common substring of a and b,
// returning its start in a, start in b, and length.
func longestMatch(a, b string) (int, int, int) {
	// Index positions of each byte in b
	b2j := make(map[byte][]int)
	for j := 0; j < len(b); j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	var besti, bestj, bestsize int
	j2len := make(map[int]int)

	for i := 0; i < len(a); i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}
