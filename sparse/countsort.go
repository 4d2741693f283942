package sparse

// countingSortPerm builds, for a mode of size n over nnz nonzeros, a
// stable permutation perm of [0,nnz) such that keyAt(perm[i]) is
// non-decreasing in i, plus the CSR-style row-pointer array rowptr of
// length n+1 (rowptr[r] is the first position in perm whose key is r).
//
// This is the counting-sort / cumsum / scatter technique from the pack's
// james-bowman/sparse COO-to-CSR converter (coordinate.go's cumsum and
// compress): one counting pass, one prefix-sum pass, one scatter pass, all
// O(nnz+n). Scattering in ascending original-index order makes the result
// stable, which is what gives §4.1's "ties broken by ascending original
// nonzero index" determinism for free.
func countingSortPerm(nnz int, n int, keyAt func(i int) uint64) (perm []int, rowptr []int) {
	rowptr = make([]int, n+1)
	for i := 0; i < nnz; i++ {
		rowptr[keyAt(i)+1]++
	}
	for r := 0; r < n; r++ {
		rowptr[r+1] += rowptr[r]
	}

	cursor := make([]int, n)
	copy(cursor, rowptr[:n])

	perm = make([]int, nnz)
	for i := 0; i < nnz; i++ {
		k := keyAt(i)
		perm[cursor[k]] = i
		cursor[k]++
	}
	return perm, rowptr
}
