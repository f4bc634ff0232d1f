package rle

// Decode expands n boundaries of rlc back into a row of zeros and ones.
// dst must be as long as the coded row.
func Decode(rlc []int16, n int, dst []uint8) {
	col := 0
	for k := 0; k < n; k += 2 {
		s, e := int(rlc[k]), int(rlc[k+1])
		for ; col < s; col++ {
			dst[col] = 0
		}
		for ; col < e; col++ {
			dst[col] = 1
		}
	}
	for ; col < len(dst); col++ {
		dst[col] = 0
	}
}

// CountForeground returns the number of foreground voxels covered by the
// n boundaries of rlc.
func CountForeground(rlc []int16, n int) int {
	total := 0
	for k := 0; k < n; k += 2 {
		total += int(rlc[k+1]) - int(rlc[k])
	}
	return total
}

// CountIntersections returns how many segment pairs of two coded rows
// share at least one column. The rows are walked like a merge, so the
// cost is linear in the number of segments.
func CountIntersections(a []int16, na int, b []int16, nb int) int {
	count := 0
	i, j := 0, 0
	for i < na && j < nb {
		a0, a1 := a[i], a[i+1]
		b0, b1 := b[j], b[j+1]
		if a0 < b1 && b0 < a1 {
			count++
		}
		if a1 <= b1 {
			i += 2
		} else {
			j += 2
		}
	}
	return count
}
