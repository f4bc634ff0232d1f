package unify

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lsl3d/internal/models"
	"lsl3d/pkg/features"
	"lsl3d/pkg/rle"
	"lsl3d/pkg/unionfind"
)

// scanImage labels a single-slice picture drawn with '#' for foreground
// and returns the final label of every segment, row by row.
func scanImage(t *testing.T, kind Kind, conn Connectivity, picture []string, obs Observer) [][]int32 {
	t.Helper()
	width, height := len(picture[0]), len(picture)

	s, err := New(kind, conn, width)
	if err != nil {
		t.Fatalf("New(%s, %d): %v", kind, conn, err)
	}
	req := s.Requires()
	store := models.NewStore(width, height, 1, req.Layout, req.ER)
	uf := unionfind.New(height*(width+1)/2 + 2)
	ctx := &Context{
		Resolver: uf,
		Features: features.NewTable(features.Config{Dims: 2}, 0),
		Observer: obs,
	}

	for r, line := range picture {
		row := make([]uint8, width)
		for x, ch := range line {
			if ch == '#' {
				row[x] = 1
			}
		}
		var n int
		if req.ER {
			n = rle.Scalar{}.EncodeER(row, store.RLC(r, 0), store.ER(r, 0))
		} else {
			n = rle.Scalar{}.Encode(row, store.RLC(r, 0))
		}
		store.SetLen(r, 0, n)

		var nb Neighborhood
		nb.Rows[Prev] = store.Line(r-1, 0)
		for _, nbr := range []Neighbor{Back, BackUp, BackDown} {
			nb.Rows[nbr] = store.Empty()
		}
		cur := store.Line(r, 0)
		s.Unify(ctx, &nb, &cur, r, 0)
		store.SetOffset(r, 0, cur.Offset)
	}

	uf.Flatten()
	out := make([][]int32, height)
	for r := range picture {
		l := store.Line(r, 0)
		for k := 0; k < l.Segments(); k++ {
			out[r] = append(out[r], uf.GetLabel(l.Label(k)))
		}
	}
	return out
}

// TestStrategiesOnPicture verifies labels of a small picture for every strategy
func TestStrategiesOnPicture(t *testing.T) {
	picture := []string{
		"##..#..#",
		"..#..#..",
		"#......#",
		"#.####.#",
	}
	eight := [][]int32{{1, 2, 3}, {1, 2}, {4, 5}, {4, 6, 5}}
	four := [][]int32{{1, 2, 3}, {4, 5}, {6, 7}, {6, 8, 7}}

	for _, kind := range Kinds {
		t.Run(string(kind)+"/8", func(t *testing.T) {
			got := scanImage(t, kind, Conn8, picture, nil)
			if diff := cmp.Diff(eight, got); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}
		})
		if kind == KindDouble || kind == KindPipeline {
			continue
		}
		t.Run(string(kind)+"/4", func(t *testing.T) {
			got := scanImage(t, kind, Conn4, picture, nil)
			if diff := cmp.Diff(four, got); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestUShape verifies that two branches found separately are joined later
func TestUShape(t *testing.T) {
	picture := []string{
		"#...#.#",
		"#...#.#",
		"#####.#",
	}
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			got := scanImage(t, kind, Conn8, picture, nil)
			want := [][]int32{{1, 1, 2}, {1, 1, 2}, {1, 2}}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("labels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestStateCounters verifies that transitions are observed
func TestStateCounters(t *testing.T) {
	var sc StateCounters
	scanImage(t, KindSeparate, Conn8, []string{"#.#", ".#."}, &sc)

	if sc.Total() == 0 {
		t.Fatal("no transitions recorded")
	}
	if n := sc.Entered(StateNewLabel); n != 2 {
		t.Errorf("NEW_LABEL entered %d times, want 2", n)
	}
	if n := sc.Entered(StateUnion); n != 1 {
		t.Errorf("UNION entered %d times, want 1", n)
	}
	if !strings.Contains(sc.String(), "MAIN -> NEW_LABEL") {
		t.Errorf("unexpected dump:\n%s", sc.String())
	}
	sc.Reset()
	if sc.Total() != 0 {
		t.Error("Reset kept counts")
	}
}

// TestERRange verifies neighbor lookups through edge ranks
func TestERRange(t *testing.T) {
	// row ".##..#.", segments [1,3) and [5,6)
	er := []int16{0, 0, 1, 1, 2, 2, 3, 4, 4}

	tests := []struct {
		name        string
		x0, x1, r   int32
		first, last int32
	}{
		{"overlaps first", 0, 2, 0, 1, 1},
		{"corner of first", 3, 4, 1, 1, 1},
		{"corners of both", 3, 5, 1, 1, 3},
		{"gap without reach", 3, 5, 0, 3, 1},
		{"both", 0, 7, 0, 1, 3},
		{"right border", 6, 7, 1, 3, 3},
		{"left border", 0, 1, 1, 1, 1},
		{"left border without reach", 0, 1, 0, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := erRange(er, tt.x0, tt.x1, tt.r)
			if first != tt.first || last != tt.last {
				t.Errorf("erRange = [%d, %d], want [%d, %d]", first, last, tt.first, tt.last)
			}
		})
	}
}

// TestNewRejectsCombinations verifies strategy and connectivity checks
func TestNewRejectsCombinations(t *testing.T) {
	if _, err := New(KindDouble, Conn6, 8); !errors.Is(err, ErrUnsupported) {
		t.Errorf("double with 6-connectivity: %v", err)
	}
	if _, err := New(KindPipeline, Conn18, 8); !errors.Is(err, ErrUnsupported) {
		t.Errorf("pipeline with 18-connectivity: %v", err)
	}
	if _, err := New("nothing", Conn26, 8); !errors.Is(err, ErrUnsupported) {
		t.Errorf("unknown strategy: %v", err)
	}
	if _, err := New(KindSeparate, Connectivity(10), 8); !errors.Is(err, ErrUnsupported) {
		t.Errorf("unknown connectivity: %v", err)
	}
}
