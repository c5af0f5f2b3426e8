package pkg

// LCS returns the index pairs of a longest common subsequence of a and b under
// eq, in increasing order. When several subsequences are equally long, the one
// keeping the later elements of a is returned, so results are deterministic.
func LCS[A, B any](a []A, b []B, eq func(A, B) bool) [][2]int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	// lengths[i][j] is the LCS length of a[i:] and b[j:].
	lengths := make([][]int, n+1)
	for i := range lengths {
		lengths[i] = make([]int, m+1)
	}

	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case eq(a[i], b[j]):
				lengths[i][j] = lengths[i+1][j+1] + 1
			case lengths[i+1][j] >= lengths[i][j+1]:
				lengths[i][j] = lengths[i+1][j]
			default:
				lengths[i][j] = lengths[i][j+1]
			}
		}
	}

	pairs := make([][2]int, 0, lengths[0][0])

	for i, j := 0, 0; i < n && j < m; {
		switch {
		case eq(a[i], b[j]):
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		case lengths[i+1][j] >= lengths[i][j+1]:
			i++
		default:
			j++
		}
	}

	return pairs
}
