package unify

import (
	"lsl3d/internal/models"
)

// erStrategy finds the neighbors of each segment directly from the
// edge-rank rows instead of walking the neighbor rows in step.
type erStrategy struct {
	passes []Pass
}

func (s *erStrategy) Name() string { return string(KindER) }

func (s *erStrategy) Requires() Requirements {
	return Requirements{Layout: models.LabelPerSegment, ER: true}
}

// erRange returns the first and last odd edge rank of the segments of a
// row that reach the columns [x0-r, x1-1+r]. er is padded: er[c+1] is the
// rank at column c. The range is empty when last < first.
func erRange(er []int16, x0, x1, r int32) (int32, int32) {
	first := int32(er[x0-r+1])
	if first&1 == 0 {
		first++
	}
	last := int32(er[x1+r])
	if last&1 == 0 {
		last--
	}
	return first, last
}

func (s *erStrategy) Unify(c *Context, nb *Neighborhood, cur *models.Line, row, slice int) {
	n := cur.Segments()
	for k := 0; k < n; k++ {
		a0, a1 := seg(cur, k)
		a := TempLabel
		st := StateMain
		for _, p := range s.passes {
			b := nb.Row(p.Neighbor)
			first, last := erRange(b.ER, a0, a1, p.Reach)
			for e := first; e <= last; e += 2 {
				l := b.Label(int(e-1) / 2)
				if a == TempLabel {
					a = c.Resolver.FindRoot(l)
					c.Features.AddSegment(a, row, slice, int(a0), int(a1))
					st = c.move(st, StateMerge)
				} else {
					a = c.unite(a, l)
					st = c.move(st, StateUnion)
				}
			}
		}
		if a == TempLabel {
			a = c.Resolver.NewLabel()
			c.Features.NewComponent(a, row, slice, int(a0), int(a1))
			st = c.move(st, StateNewLabel)
		}
		cur.ERA[k] = a
		c.move(st, StateWriteERA)
	}
}
