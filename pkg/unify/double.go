package unify

import (
	"lsl3d/internal/models"
)

// double first merges the current row with the same row of the previous
// slice into a temporary row of clusters, then merges that temporary row
// with the one built for the previous row. A cluster is a maximal run of
// touching segments from either row and carries their common label.
//
// Corner contacts between the current row and rows r-1/r+1 of the
// previous slice are found through the temporary rows, so the strategy
// is only valid when all four neighbor rows have reach 1.
//
// The pipeline variant merges each cluster into the previous temporary
// row as soon as it is closed instead of in a second pass.
type double struct {
	t0, t1   *models.TempLine
	pipeline bool
}

func newDouble(width int, pipeline bool) *double {
	return &double{
		t0:       models.NewTempLine(width),
		t1:       models.NewTempLine(width),
		pipeline: pipeline,
	}
}

func (d *double) Name() string {
	if d.pipeline {
		return string(KindPipeline)
	}
	return string(KindDouble)
}

func (d *double) Requires() Requirements {
	return Requirements{Layout: models.LabelPerSegment}
}

func (d *double) Unify(c *Context, nb *Neighborhood, cur *models.Line, row, slice int) {
	if row == 0 {
		d.t0.Reset()
	}
	d.t1.Reset()
	d.clusters(c, nb.Row(Back), cur, row, slice)
	d.t1.Close()
	if !d.pipeline {
		d.combine(c)
	}
	d.t0, d.t1 = d.t1, d.t0
}

// clusters merges cur with b and writes the clusters to t1. Segments of
// cur get the label of their cluster; a cluster without any segment of
// b gets a new label.
func (d *double) clusters(c *Context, b *models.Line, cur *models.Line, row, slice int) {
	if cur.Len == 0 && b.Len == 0 {
		return
	}
	ia, ib := 0, 0
	a0, a1 := seg(cur, 0)
	b0, b1 := seg(b, 0)

	var (
		open     bool
		ts, te   int32
		lab      int32
		pend     int
		p0, p1   int32
		prevNext int
	)

	st := StateMain
	for {
		switch st {
		case StateMain:
			fromA := a0 <= b0
			x0 := b0
			if fromA {
				x0 = a0
			}
			switch {
			case open && x0 <= te:
				if fromA {
					st = c.move(st, StateMerge)
				} else {
					st = c.move(st, StateUnion)
				}
			case open:
				st = c.move(st, StateTail)
			case x0 == sentinel:
				c.move(st, StateEnd)
				return
			case fromA:
				st = c.move(st, StateTempLabel)
			default:
				st = c.move(st, StateNextERB0)
			}

		case StateTempLabel:
			// cluster opened by a segment of cur; its label is decided
			// by the first segment of b that joins
			open, ts, te = true, a0, a1
			lab, pend, p0, p1 = TempLabel, ia, a0, a1
			st = c.move(st, StateNextERA)

		case StateNextERB0:
			// cluster opened by a segment of b
			open, ts, te = true, b0, b1
			lab = c.Resolver.FindRoot(b.Label(ib))
			st = c.move(st, StateNextERB1)

		case StateMerge:
			// a joins a cluster that already holds a segment of b
			te = max(te, a1)
			cur.ERA[ia] = lab
			c.Features.AddSegment(lab, row, slice, int(a0), int(a1))
			st = c.move(st, StateNextERA)

		case StateUnion:
			te = max(te, b1)
			if lab == TempLabel {
				lab = c.Resolver.FindRoot(b.Label(ib))
				cur.ERA[pend] = lab
				c.Features.AddSegment(lab, row, slice, int(p0), int(p1))
			} else {
				lab = c.unite(lab, b.Label(ib))
			}
			st = c.move(st, StateNextERB1)

		case StateNextERA:
			ia++
			a0, a1 = seg(cur, ia)
			st = c.move(st, StateMain)

		case StateNextERB1:
			ib++
			b0, b1 = seg(b, ib)
			st = c.move(st, StateMain)

		case StateTail:
			if lab == TempLabel {
				st = c.move(st, StateNewLabel)
				continue
			}
			if d.pipeline {
				lab = d.mergePrevious(c, ts, te, lab, &prevNext)
			}
			d.t1.Push(int16(ts), int16(te), lab)
			open = false
			st = c.move(st, StateMain)

		case StateNewLabel:
			lab = c.Resolver.NewLabel()
			cur.ERA[pend] = lab
			c.Features.NewComponent(lab, row, slice, int(p0), int(p1))
			st = c.move(st, StateTail)
		}
	}
}

// mergePrevious unites the cluster [ts, te) with every touching cluster
// of t0, starting at *next, and returns the surviving label.
func (d *double) mergePrevious(c *Context, ts, te, lab int32, next *int) int32 {
	prev := &d.t0.Line
	for {
		q0, q1 := seg(prev, *next)
		switch {
		case q1+1 <= ts:
			*next++
			c.move(StateTail, StateNextERA2)
		case te+1 <= q0:
			return lab
		default:
			lab = c.unite(lab, prev.Label(*next))
			c.move(StateTail, StateUnion)
			if te <= q1 {
				return lab
			}
			*next++
		}
	}
}

// combine unites every touching pair of clusters of t0 and t1.
func (d *double) combine(c *Context) {
	prev, next := &d.t0.Line, &d.t1.Line
	i, j := 0, 0
	st := StateMain
	for {
		q0, q1 := seg(prev, i)
		r0, r1 := seg(next, j)
		if q0 == sentinel || r0 == sentinel {
			c.move(st, StateEnd)
			return
		}
		switch {
		case q1+1 <= r0:
			i++
			st = c.move(st, StateNextERA)
		case r1+1 <= q0:
			j++
			st = c.move(st, StateNextERB0)
		default:
			c.unite(prev.Label(i), next.Label(j))
			st = c.move(st, StateUnion)
			if q1 <= r1 {
				i++
			} else {
				j++
			}
		}
	}
}
