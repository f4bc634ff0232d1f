package unify

import (
	"lsl3d/internal/models"
)

// passMode selects how a merge pass treats the current row.
type passMode int

const (
	// modeFirst leaves unmatched segments on TempLabel.
	modeFirst passMode = iota
	// modeSingle allocates labels for unmatched segments right away.
	modeSingle
	// modeMiddle only merges segments that already carry a label.
	modeMiddle
	// modeLast is modeMiddle that also commits the remaining TempLabels.
	modeLast
)

// separate runs one merge pass per neighbor row. The lazy variant
// defers label allocation to the last pass; the eager variant allocates
// in the first pass and only unions afterwards.
type separate struct {
	passes []Pass
	modes  []passMode
	eager  bool
}

func newSeparate(passes []Pass, eager bool) *separate {
	s := &separate{passes: passes, eager: eager}
	s.modes = make([]passMode, len(passes))
	for i := range passes {
		switch {
		case i == 0 && (eager || len(passes) == 1):
			s.modes[i] = modeSingle
		case i == 0:
			s.modes[i] = modeFirst
		case i == len(passes)-1 && !eager:
			s.modes[i] = modeLast
		default:
			s.modes[i] = modeMiddle
		}
	}
	return s
}

func (s *separate) Name() string {
	if s.eager {
		return string(KindEager)
	}
	return string(KindSeparate)
}

func (s *separate) Requires() Requirements {
	return Requirements{Layout: models.LabelPerSegment}
}

func (s *separate) Unify(c *Context, nb *Neighborhood, cur *models.Line, row, slice int) {
	if cur.Len == 0 {
		return
	}
	for i, p := range s.passes {
		mergeRow(c, nb.Row(p.Neighbor), p.Reach, cur, row, slice, s.modes[i])
	}
}

// mergeRow walks the segments of cur and b in column order and merges
// every touching pair.
func mergeRow(c *Context, b *models.Line, r int32, cur *models.Line, row, slice int, mode passMode) {
	na := cur.Segments()
	ia, ib := 0, 0
	a0, a1 := seg(cur, 0)
	b0, b1 := seg(b, 0)
	var a int32

	st := StateMain
	for {
		switch st {
		case StateMain:
			switch {
			case b1+r <= a0:
				st = c.move(st, StateNextERB0)
			case a1+r <= b0:
				switch mode {
				case modeFirst:
					st = c.move(st, StateTempLabel)
				case modeSingle:
					st = c.move(st, StateNewLabel)
				case modeLast:
					if cur.Label(ia) == TempLabel {
						st = c.move(st, StateNewLabel)
					} else {
						st = c.move(st, StateNextERA)
					}
				default:
					st = c.move(st, StateNextERA)
				}
			case mode == modeFirst || mode == modeSingle:
				st = c.move(st, StateMerge)
			default:
				a = cur.Label(ia)
				if a == TempLabel {
					st = c.move(st, StateMerge)
				} else {
					st = c.move(st, StateUnion)
				}
			}

		case StateNextERB0:
			ib++
			b0, b1 = seg(b, ib)
			st = c.move(st, StateMain)

		case StateMerge:
			a = c.Resolver.FindRoot(b.Label(ib))
			c.Features.AddSegment(a, row, slice, int(a0), int(a1))
			if a1 <= b1 {
				st = c.move(st, StateWriteERA)
			} else {
				st = c.move(st, StateNextERB1)
			}

		case StateNextERB1:
			ib++
			b0, b1 = seg(b, ib)
			if a1+r <= b0 {
				st = c.move(st, StateWriteERA)
			} else {
				st = c.move(st, StateUnion)
			}

		case StateUnion:
			a = c.unite(a, b.Label(ib))
			if a1 <= b1 {
				st = c.move(st, StateWriteERA)
			} else {
				st = c.move(st, StateNextERB1)
			}

		case StateTempLabel:
			a = TempLabel
			st = c.move(st, StateWriteERA)

		case StateNewLabel:
			a = c.Resolver.NewLabel()
			c.Features.NewComponent(a, row, slice, int(a0), int(a1))
			st = c.move(st, StateWriteERA)

		case StateWriteERA:
			if cur.ERA != nil {
				cur.ERA[ia] = a
			}
			st = c.move(st, StateNextERA)

		case StateNextERA:
			ia++
			if ia >= na {
				c.move(st, StateEnd)
				return
			}
			a0, a1 = seg(cur, ia)
			st = c.move(st, StateMain)
		}
	}
}

// noERA gives segment k of every row the label offset+k, allocated in
// scan order, and only stores the offset. Every pass is a pure union.
type noERA struct {
	passes []Pass
}

func (s *noERA) Name() string { return string(KindNoERA) }

func (s *noERA) Requires() Requirements {
	return Requirements{Layout: models.LabelPerRow}
}

func (s *noERA) Unify(c *Context, nb *Neighborhood, cur *models.Line, row, slice int) {
	if cur.Len == 0 {
		return
	}
	n := cur.Segments()
	for k := 0; k < n; k++ {
		l := c.Resolver.NewLabel()
		if k == 0 {
			cur.Offset = l
		}
		a0, a1 := seg(cur, k)
		c.Features.NewComponent(l, row, slice, int(a0), int(a1))
	}
	for _, p := range s.passes {
		mergeRow(c, nb.Row(p.Neighbor), p.Reach, cur, row, slice, modeMiddle)
	}
}
