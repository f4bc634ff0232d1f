package volume

import (
	"fmt"
	"math/rand/v2"
)

// SamePartition reports whether a and b label the same voxels as
// background and group the foreground identically, up to renaming of
// the labels. The error names the first voxel where they disagree.
func SamePartition(a, b *Labels) error {
	if a.Width != b.Width || a.Height != b.Height || a.Depth != b.Depth {
		return fmt.Errorf("dimensions differ: %dx%dx%d vs %dx%dx%d",
			a.Width, a.Height, a.Depth, b.Width, b.Height, b.Depth)
	}
	ab := make(map[int32]int32)
	ba := make(map[int32]int32)
	for z := 0; z < a.Depth; z++ {
		for y := 0; y < a.Height; y++ {
			ra, rb := a.LabelRow(y, z), b.LabelRow(y, z)
			for x := range ra {
				la, lb := ra[x], rb[x]
				if (la == 0) != (lb == 0) {
					return fmt.Errorf("voxel (%d,%d,%d): background mismatch %d vs %d", x, y, z, la, lb)
				}
				if la == 0 {
					continue
				}
				if m, ok := ab[la]; ok && m != lb {
					return fmt.Errorf("voxel (%d,%d,%d): label %d maps to both %d and %d", x, y, z, la, m, lb)
				}
				if m, ok := ba[lb]; ok && m != la {
					return fmt.Errorf("voxel (%d,%d,%d): label %d maps to both %d and %d", x, y, z, lb, m, la)
				}
				ab[la], ba[lb] = lb, la
			}
		}
	}
	return nil
}

// FillRandom sets every voxel of v to foreground with probability p.
func FillRandom(v *Binary, rng *rand.Rand, p float64) {
	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			row := v.Row(y, z)
			for x := range row {
				if rng.Float64() < p {
					row[x] = 1
				} else {
					row[x] = 0
				}
			}
		}
	}
}
