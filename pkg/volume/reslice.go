package volume

import (
	"fmt"
)

// Axis names the axis a scan walks rows along.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Reslice returns a copy of v whose rows run along axis. Reslicing along
// x returns an identical copy; along y the new volume has extents
// (height, width, depth) and along z (depth, height, width).
// Connectivity is preserved, so labeling the result yields the same
// components as labeling v.
func Reslice(v *Binary, axis Axis) (*Binary, error) {
	var w, h, d int
	var at func(x, y, z int) uint8

	switch axis {
	case AxisX, "X":
		w, h, d = v.Width, v.Height, v.Depth
		at = func(x, y, z int) uint8 { return v.At(x, y, z) }
	case AxisY, "Y":
		// swap x and y
		w, h, d = v.Height, v.Width, v.Depth
		at = func(x, y, z int) uint8 { return v.At(y, x, z) }
	case AxisZ, "Z":
		// swap x and z
		w, h, d = v.Depth, v.Height, v.Width
		at = func(x, y, z int) uint8 { return v.At(z, y, x) }
	default:
		return nil, fmt.Errorf("unknown axis %q", axis)
	}

	out, err := NewBinary(w, h, d)
	if err != nil {
		return nil, err
	}
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			row := out.Row(y, z)
			for x := range row {
				row[x] = at(x, y, z)
			}
		}
	}
	return out, nil
}

// ExtractRegion copies the box starting at (x0, y0, z0) with the given
// size into a new volume.
func ExtractRegion(v *Binary, x0, y0, z0, sizeX, sizeY, sizeZ int) (*Binary, error) {
	if x0 < 0 || y0 < 0 || z0 < 0 {
		return nil, fmt.Errorf("region start must be non-negative")
	}
	if x0+sizeX > v.Width || y0+sizeY > v.Height || z0+sizeZ > v.Depth {
		return nil, fmt.Errorf("region exceeds volume dimensions")
	}
	out, err := NewBinary(sizeX, sizeY, sizeZ)
	if err != nil {
		return nil, err
	}
	for z := 0; z < sizeZ; z++ {
		for y := 0; y < sizeY; y++ {
			copy(out.Row(y, z), v.Row(y0+y, z0+z)[x0:x0+sizeX])
		}
	}
	return out, nil
}
