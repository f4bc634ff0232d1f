// Package volume provides the dense 3D buffers a labeling scan reads from
// and writes to.
package volume

import (
	"fmt"
)

// Source is a binary volume read one row at a time. Row must return at
// least width values; only the low bit of each value is used.
type Source interface {
	Dims() (width, height, depth int)
	Row(row, slice int) []uint8
}

// Sink receives one label per voxel, 0 for background.
type Sink interface {
	Dims() (width, height, depth int)
	LabelRow(row, slice int) []int32
}

// Binary is a dense foreground mask. Voxel (x, y, z) is at
// Data[z*SliceStride + y*RowStride + x].
type Binary struct {
	// Data holds the voxels, 1 for foreground.
	Data []uint8

	// Width, Height and Depth are the extents along x, y and z.
	Width, Height, Depth int

	// RowStride and SliceStride are the distances between consecutive
	// rows and slices in Data.
	RowStride, SliceStride int
}

// NewBinary allocates a background-only volume with packed strides.
func NewBinary(width, height, depth int) (*Binary, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("invalid volume dimensions %dx%dx%d", width, height, depth)
	}
	return &Binary{
		Data:        make([]uint8, width*height*depth),
		Width:       width,
		Height:      height,
		Depth:       depth,
		RowStride:   width,
		SliceStride: width * height,
	}, nil
}

// Dims implements Source.
func (v *Binary) Dims() (int, int, int) {
	return v.Width, v.Height, v.Depth
}

// Row implements Source.
func (v *Binary) Row(row, slice int) []uint8 {
	off := slice*v.SliceStride + row*v.RowStride
	return v.Data[off : off+v.Width]
}

// At returns the voxel at (x, y, z).
func (v *Binary) At(x, y, z int) uint8 {
	return v.Data[z*v.SliceStride+y*v.RowStride+x]
}

// Set stores value at (x, y, z).
func (v *Binary) Set(x, y, z int, value uint8) {
	v.Data[z*v.SliceStride+y*v.RowStride+x] = value
}

// Count returns the number of foreground voxels.
func (v *Binary) Count() int {
	n := 0
	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			for _, b := range v.Row(y, z) {
				n += int(b & 1)
			}
		}
	}
	return n
}

// Labels is a dense label volume laid out like Binary.
type Labels struct {
	Data []int32

	Width, Height, Depth int

	RowStride, SliceStride int
}

// NewLabels allocates a zeroed label volume with packed strides.
func NewLabels(width, height, depth int) (*Labels, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("invalid volume dimensions %dx%dx%d", width, height, depth)
	}
	return &Labels{
		Data:        make([]int32, width*height*depth),
		Width:       width,
		Height:      height,
		Depth:       depth,
		RowStride:   width,
		SliceStride: width * height,
	}, nil
}

// Dims implements Sink.
func (l *Labels) Dims() (int, int, int) {
	return l.Width, l.Height, l.Depth
}

// LabelRow implements Sink.
func (l *Labels) LabelRow(row, slice int) []int32 {
	off := slice*l.SliceStride + row*l.RowStride
	return l.Data[off : off+l.Width]
}

// At returns the label at (x, y, z).
func (l *Labels) At(x, y, z int) int32 {
	return l.Data[z*l.SliceStride+y*l.RowStride+x]
}
