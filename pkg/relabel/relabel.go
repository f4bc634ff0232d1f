// Package relabel writes final labels into the output volume from the
// coded rows of a finished scan.
package relabel

import (
	"fmt"

	"lsl3d/internal/models"
	"lsl3d/pkg/volume"
)

// Resolver maps a provisional label to its final label.
type Resolver interface {
	GetLabel(label int32) int32
}

// Writer fills a label volume. Every writer except Nothing produces the
// same output.
type Writer interface {
	Name() string
	Relabel(store *models.Store, uf Resolver, dst volume.Sink)
}

// Kind selects a writer by name.
type Kind string

const (
	KindScalar  Kind = "scalar"
	KindBlock   Kind = "block"
	KindNothing Kind = "nothing"
)

// New returns the writer for kind.
func New(kind Kind) (Writer, error) {
	switch kind {
	case KindScalar, "":
		return Scalar{}, nil
	case KindBlock:
		return Block{}, nil
	case KindNothing:
		return Nothing{}, nil
	}
	return nil, fmt.Errorf("unknown relabel writer %q", kind)
}

// Scalar writes one voxel at a time.
type Scalar struct{}

// Name implements Writer.
func (Scalar) Name() string { return string(KindScalar) }

// Relabel implements Writer.
func (Scalar) Relabel(store *models.Store, uf Resolver, dst volume.Sink) {
	relabel(store, uf, dst, fillScalar)
}

// Block writes runs eight labels at a time.
type Block struct{}

// Name implements Writer.
func (Block) Name() string { return string(KindBlock) }

// Relabel implements Writer.
func (Block) Relabel(store *models.Store, uf Resolver, dst volume.Sink) {
	relabel(store, uf, dst, fillBlock)
}

// Nothing leaves the output untouched. It is used to time a scan
// without the write-back.
type Nothing struct{}

// Name implements Writer.
func (Nothing) Name() string { return string(KindNothing) }

// Relabel implements Writer.
func (Nothing) Relabel(*models.Store, Resolver, volume.Sink) {}

// relabel writes every column of every row exactly once: 0 between
// segments, the final label inside them.
func relabel(store *models.Store, uf Resolver, dst volume.Sink, fill func([]int32, int32)) {
	for z := 0; z < store.Depth; z++ {
		for y := 0; y < store.Height; y++ {
			out := dst.LabelRow(y, z)[:store.Width]
			line := store.Line(y, z)
			prev := 0
			for k := 0; k < line.Segments(); k++ {
				s, e := int(line.RLC[2*k]), int(line.RLC[2*k+1])
				fill(out[prev:s], 0)
				fill(out[s:e], uf.GetLabel(line.Label(k)))
				prev = e
			}
			fill(out[prev:], 0)
		}
	}
}

func fillScalar(dst []int32, v int32) {
	for i := range dst {
		dst[i] = v
	}
}

func fillBlock(dst []int32, v int32) {
	i := 0
	for ; i+8 <= len(dst); i += 8 {
		b := (*[8]int32)(dst[i : i+8])
		*b = [8]int32{v, v, v, v, v, v, v, v}
	}
	for ; i < len(dst); i++ {
		dst[i] = v
	}
}
