// Package unionfind resolves equivalences between provisional component
// labels. Label 0 is reserved for background and always maps to itself.
//
// The table keeps the smallest label of every equivalence class as its
// root, so after Flatten the final labels are ordered by the scan
// position of each component's first voxel.
package unionfind

import "fmt"

// UnionFind is a parent-pointer table over labels 0..Cap()-1.
type UnionFind struct {
	parent []int32
	next   int32

	// final holds the compact label of every provisional label once
	// Flatten has run.
	final     []int32
	flattened bool
	count     int32
}

// New returns a table able to hand out capacity-1 labels.
func New(capacity int) *UnionFind {
	if capacity < 1 {
		capacity = 1
	}
	uf := &UnionFind{
		parent: make([]int32, capacity),
		next:   1,
	}
	return uf
}

// NewLabel allocates the next label as a singleton class.
// It panics if the table is full, which means the caller sized it wrong.
func (uf *UnionFind) NewLabel() int32 {
	l := uf.next
	if int(l) >= len(uf.parent) {
		panic(fmt.Sprintf("unionfind: label capacity %d exhausted", len(uf.parent)))
	}
	uf.parent[l] = l
	uf.next++
	return l
}

// FindRoot returns the representative of label. Paths are compressed on
// the way up.
func (uf *UnionFind) FindRoot(label int32) int32 {
	root := label
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[label] != root {
		label, uf.parent[label] = uf.parent[label], root
	}
	return root
}

// UpdateTable records that higher and lower belong to the same class,
// with lower (the smaller label) winning. Callers normally pass two roots;
// if higher is not a root its root is redirected instead.
func (uf *UnionFind) UpdateTable(higher, lower int32) {
	if uf.parent[higher] == higher && uf.parent[lower] == lower {
		uf.parent[higher] = lower
		return
	}
	rh, rl := uf.FindRoot(higher), uf.FindRoot(lower)
	switch {
	case rh > rl:
		uf.parent[rh] = rl
	case rl > rh:
		uf.parent[rl] = rh
	}
}

// Flatten points every label at its root and assigns compact final labels
// 1..K to the roots in ascending order. It returns K.
func (uf *UnionFind) Flatten() int {
	n := uf.next
	if cap(uf.final) < int(n) {
		uf.final = make([]int32, n)
	}
	uf.final = uf.final[:n]
	uf.final[0] = 0

	var k int32
	for l := int32(1); l < n; l++ {
		p := uf.parent[l]
		if p == l {
			k++
			uf.final[l] = k
		} else {
			// roots are smaller than their members, so p is already final
			uf.parent[l] = uf.parent[p]
			uf.final[l] = uf.final[p]
		}
	}
	uf.count = k
	uf.flattened = true
	return int(k)
}

// GetLabel returns the final label of a provisional label. It is only
// valid after Flatten.
func (uf *UnionFind) GetLabel(label int32) int32 {
	return uf.final[label]
}

// Root returns the flattened root of a provisional label without
// compaction. It is only valid after Flatten.
func (uf *UnionFind) Root(label int32) int32 {
	return uf.parent[label]
}

// Roots calls fn for every root with its final label, in ascending order.
func (uf *UnionFind) Roots(fn func(root, final int32)) {
	for l := int32(1); l < uf.next; l++ {
		if uf.parent[l] == l {
			fn(l, uf.final[l])
		}
	}
}

// Len returns the number of labels handed out, background included.
func (uf *UnionFind) Len() int {
	return int(uf.next)
}

// Cap returns the capacity the table was created with.
func (uf *UnionFind) Cap() int {
	return len(uf.parent)
}

// Count returns the number of components found by the last Flatten.
func (uf *UnionFind) Count() int {
	return int(uf.count)
}

// Flattened reports whether Flatten has run since the last Reset.
func (uf *UnionFind) Flattened() bool {
	return uf.flattened
}

// Reset forgets every label while keeping the allocation.
func (uf *UnionFind) Reset() {
	uf.next = 1
	uf.count = 0
	uf.flattened = false
	uf.final = uf.final[:0]
}
