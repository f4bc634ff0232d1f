// Package unify merges the segments of the current row with the
// segments of already-labeled neighbor rows.
//
// Every strategy produces the same partition of the foreground; they
// differ in how many passes they make over the rows and in which tables
// they need. Strategies keep per-scan scratch state and must not be
// shared between concurrent scans.
package unify

import (
	"errors"
	"fmt"
	"math"

	"lsl3d/internal/models"
	"lsl3d/pkg/features"
	"lsl3d/pkg/rle"
	"lsl3d/pkg/unionfind"
)

// TempLabel marks a segment that has not met any labeled neighbor yet.
const TempLabel int32 = math.MaxInt32

// ErrUnsupported is returned for strategy and connectivity combinations
// that cannot label correctly.
var ErrUnsupported = errors.New("unify: unsupported")

// Context carries the shared resolution state of a scan.
type Context struct {
	Resolver *unionfind.UnionFind

	// Features receives on-the-fly statistics. A table with no groups
	// enabled turns every update into a no-op.
	Features *features.Table

	// Observer is optional.
	Observer Observer
}

func (c *Context) move(from, to State) State {
	if c.Observer != nil {
		c.Observer.Transition(from, to)
	}
	return to
}

// unite joins the classes of a and b and returns the surviving root.
// The higher root is folded into the lower one.
func (c *Context) unite(a, b int32) int32 {
	a = c.Resolver.FindRoot(a)
	b = c.Resolver.FindRoot(b)
	if a == b {
		return a
	}
	if b < a {
		a, b = b, a
	}
	c.Resolver.UpdateTable(b, a)
	c.Features.Merge(b, a)
	return a
}

// Neighborhood holds the neighbor rows of the current row. Rows outside
// the volume are empty lines.
type Neighborhood struct {
	Rows [numNeighbors]models.Line
}

// Row returns the line of neighbor n.
func (nb *Neighborhood) Row(n Neighbor) *models.Line {
	return &nb.Rows[n]
}

// Requirements describes the tables a strategy reads.
type Requirements struct {
	Layout models.Layout
	ER     bool
}

// Strategy labels the segments of one row.
type Strategy interface {
	// Name identifies the strategy.
	Name() string

	// Requires lists the tables the driver must keep.
	Requires() Requirements

	// Unify assigns provisional labels to every segment of cur. Rows are
	// visited slice by slice, row by row.
	Unify(c *Context, nb *Neighborhood, cur *models.Line, row, slice int)
}

// Kind selects a strategy by name.
type Kind string

const (
	KindSeparate Kind = "separate"
	KindEager    Kind = "eager"
	KindDouble   Kind = "double"
	KindPipeline Kind = "pipeline"
	KindER       Kind = "er"
	KindNoERA    Kind = "noera"
)

// Kinds lists every strategy.
var Kinds = []Kind{KindSeparate, KindEager, KindDouble, KindPipeline, KindER, KindNoERA}

// New builds a strategy for rows of the given width.
//
// The strategies trade memory for merge work:
//   - separate defers new labels until every neighbor row has been merged
//   - eager allocates in the first pass and only unions afterwards
//   - noera gives every segment a label and stores one offset per row
//   - er probes the edge-rank rows instead of walking neighbor segments
//   - double and pipeline merge the previous slice into scratch lines
//     first; they only support 8 and 26 connectivity
//
// Returns:
//   - The strategy, or an error wrapping ErrUnsupported for an unknown
//     kind or connectivity, or a combination that cannot label correctly
func New(kind Kind, conn Connectivity, width int) (Strategy, error) {
	passes, err := conn.Passes()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSeparate:
		return newSeparate(passes, false), nil
	case KindEager:
		return newSeparate(passes, true), nil
	case KindNoERA:
		return &noERA{passes: passes}, nil
	case KindER:
		return &erStrategy{passes: passes}, nil
	case KindDouble, KindPipeline:
		if !conn.Diagonal() {
			return nil, fmt.Errorf("%w: %s strategy needs 8 or 26 connectivity, got %d", ErrUnsupported, kind, int(conn))
		}
		return newDouble(width, kind == KindPipeline), nil
	}
	return nil, fmt.Errorf("%w: strategy %q", ErrUnsupported, string(kind))
}

// seg returns segment k of l. Past the end it returns the sentinels.
func seg(l *models.Line, k int) (int32, int32) {
	return int32(l.RLC[2*k]), int32(l.RLC[2*k+1])
}

const sentinel = int32(rle.Sentinel)
