package ccl

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lsl3d/pkg/features"
	"lsl3d/pkg/relabel"
	"lsl3d/pkg/rle"
	"lsl3d/pkg/unify"
	"lsl3d/pkg/volume"
)

// floodFill labels v by breadth-first search, numbering components in
// scan order of their first voxel.
func floodFill(v *volume.Binary, conn unify.Connectivity) (*volume.Labels, int) {
	maxDist := map[unify.Connectivity]int{4: 1, 8: 2, 6: 1, 18: 2, 26: 3}[conn]
	var offsets [][3]int
	for dz := -1; dz <= 1; dz++ {
		if conn.Is2D() && dz != 0 {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				dist := abs(dx) + abs(dy) + abs(dz)
				if dist > 0 && dist <= maxDist {
					offsets = append(offsets, [3]int{dx, dy, dz})
				}
			}
		}
	}

	out, _ := volume.NewLabels(v.Width, v.Height, v.Depth)
	var next int32
	var queue [][3]int
	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			for x := 0; x < v.Width; x++ {
				if v.At(x, y, z)&1 == 0 || out.At(x, y, z) != 0 {
					continue
				}
				next++
				out.LabelRow(y, z)[x] = next
				queue = append(queue[:0], [3]int{x, y, z})
				for len(queue) > 0 {
					p := queue[len(queue)-1]
					queue = queue[:len(queue)-1]
					for _, o := range offsets {
						qx, qy, qz := p[0]+o[0], p[1]+o[1], p[2]+o[2]
						if qx < 0 || qy < 0 || qz < 0 || qx >= v.Width || qy >= v.Height || qz >= v.Depth {
							continue
						}
						if v.At(qx, qy, qz)&1 == 0 || out.At(qx, qy, qz) != 0 {
							continue
						}
						out.LabelRow(qy, qz)[qx] = next
						queue = append(queue, [3]int{qx, qy, qz})
					}
				}
			}
		}
	}
	return out, int(next)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// referenceFeatures accumulates every voxel of ref into a table.
func referenceFeatures(v *volume.Binary, ref *volume.Labels, n int) *features.Table {
	tab := features.NewTable(features.DefaultConfig(), n+1)
	tab.Init(0, n+1)
	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			for x := 0; x < v.Width; x++ {
				if l := ref.At(x, y, z); l != 0 {
					tab.AddPoint(l, x, y, z)
				}
			}
		}
	}
	return tab
}

func randomVolume(t *testing.T, seed uint64, w, h, d int, p float64) *volume.Binary {
	t.Helper()
	v, err := volume.NewBinary(w, h, d)
	require.NoError(t, err)
	volume.FillRandom(v, rand.New(rand.NewPCG(seed, seed^0x9e3779b9)), p)
	return v
}

func strategiesFor(conn unify.Connectivity) []unify.Kind {
	var out []unify.Kind
	for _, k := range unify.Kinds {
		if (k == unify.KindDouble || k == unify.KindPipeline) && !conn.Diagonal() {
			continue
		}
		out = append(out, k)
	}
	return out
}

// TestMatchesFloodFill verifies every strategy against a breadth-first reference
func TestMatchesFloodFill(t *testing.T) {
	shapes := []struct {
		conns   []unify.Connectivity
		w, h, d int
	}{
		{[]unify.Connectivity{unify.Conn6, unify.Conn18, unify.Conn26}, 13, 9, 7},
		{[]unify.Connectivity{unify.Conn6, unify.Conn18, unify.Conn26}, 1, 6, 5},
		{[]unify.Connectivity{unify.Conn6, unify.Conn26}, 17, 1, 4},
		{[]unify.Connectivity{unify.Conn4, unify.Conn8, unify.Conn26}, 37, 23, 1},
	}

	seed := uint64(1)
	for _, shape := range shapes {
		for _, p := range []float64{0.2, 0.5, 0.8} {
			seed++
			v := randomVolume(t, seed, shape.w, shape.h, shape.d, p)
			for _, conn := range shape.conns {
				ref, n := floodFill(v, conn)
				refFeatures := referenceFeatures(v, ref, n)

				for _, kind := range strategiesFor(conn) {
					for _, mode := range []FeatureMode{FeaturesOnTheFly, FeaturesPostPass} {
						name := fmt.Sprintf("%dx%dx%d/p%.1f/c%d/%s/%s", shape.w, shape.h, shape.d, p, conn, kind, mode)
						t.Run(name, func(t *testing.T) {
							cfg := DefaultConfig()
							cfg.Connectivity = conn
							cfg.Strategy = kind
							cfg.FeatureMode = mode

							out, err := volume.NewLabels(shape.w, shape.h, shape.d)
							require.NoError(t, err)
							res, err := RunScan(v, out, cfg)
							require.NoError(t, err)
							require.Equal(t, n, res.Components)

							if diff := cmp.Diff(ref.Data, out.Data); diff != "" {
								t.Fatalf("labels differ from flood fill (-want +got):\n%s", diff)
							}
							require.NoError(t, res.Features.Equal(refFeatures, 0, n+1))
						})
					}
				}
			}
		}
	}
}

// TestVariantsAgree verifies that encoders and writers do not change the output
func TestVariantsAgree(t *testing.T) {
	v := randomVolume(t, 42, 70, 11, 6, 0.45)

	want, _ := volume.NewLabels(70, 11, 6)
	_, err := RunScan(v, want, DefaultConfig())
	require.NoError(t, err)

	for _, enc := range []rle.Kind{rle.KindScalar, rle.KindBranchy, rle.KindWord, rle.KindAuto} {
		for _, w := range []relabel.Kind{relabel.KindScalar, relabel.KindBlock} {
			t.Run(string(enc)+"/"+string(w), func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.Encoder = enc
				cfg.Relabel = w
				got, _ := volume.NewLabels(70, 11, 6)
				_, err := RunScan(v, got, cfg)
				require.NoError(t, err)
				require.Equal(t, want.Data, got.Data)
			})
		}
	}
}

// TestScenarios verifies hand-built volumes
func TestScenarios(t *testing.T) {
	type voxel [3]int
	tests := []struct {
		name   string
		dims   voxel
		voxels []voxel
		counts map[unify.Connectivity]int
	}{
		{"single voxel", voxel{3, 3, 3}, []voxel{{1, 1, 1}}, map[unify.Connectivity]int{6: 1, 18: 1, 26: 1}},
		{"corner contact", voxel{2, 2, 2}, []voxel{{0, 0, 0}, {1, 1, 1}}, map[unify.Connectivity]int{6: 2, 18: 2, 26: 1}},
		{"edge contact", voxel{2, 2, 1}, []voxel{{0, 0, 0}, {1, 1, 0}}, map[unify.Connectivity]int{4: 2, 8: 1, 6: 2, 18: 1, 26: 1}},
		{"overlapping runs", voxel{3, 2, 1}, []voxel{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {2, 1, 0}}, map[unify.Connectivity]int{4: 1, 8: 1, 6: 1, 18: 1, 26: 1}},
		{"back down", voxel{3, 3, 2}, []voxel{{1, 2, 0}, {1, 1, 1}}, map[unify.Connectivity]int{6: 2, 18: 1, 26: 1}},
		{"back up", voxel{3, 3, 2}, []voxel{{1, 0, 0}, {1, 1, 1}}, map[unify.Connectivity]int{6: 2, 18: 1, 26: 1}},
		{"body diagonal", voxel{3, 3, 2}, []voxel{{1, 2, 0}, {2, 1, 1}}, map[unify.Connectivity]int{6: 2, 18: 2, 26: 1}},
		{"background", voxel{5, 4, 3}, nil, map[unify.Connectivity]int{6: 0, 26: 0}},
	}

	for _, tt := range tests {
		for conn, want := range tt.counts {
			for _, kind := range strategiesFor(conn) {
				t.Run(fmt.Sprintf("%s/%d/%s", tt.name, conn, kind), func(t *testing.T) {
					v, err := volume.NewBinary(tt.dims[0], tt.dims[1], tt.dims[2])
					require.NoError(t, err)
					for _, p := range tt.voxels {
						v.Set(p[0], p[1], p[2], 1)
					}
					out, _ := volume.NewLabels(tt.dims[0], tt.dims[1], tt.dims[2])
					for i := range out.Data {
						out.Data[i] = -1
					}

					cfg := DefaultConfig()
					cfg.Connectivity = conn
					cfg.Strategy = kind
					res, err := RunScan(v, out, cfg)
					require.NoError(t, err)
					require.Equal(t, want, res.Components)

					for i, l := range out.Data {
						if v.Data[i] == 0 {
							require.Zero(t, l, "background voxel %d labeled", i)
						} else {
							require.Positive(t, l)
						}
					}
				})
			}
		}
	}
}

// TestSingleVoxelFeatures verifies statistics of a lone voxel
func TestSingleVoxelFeatures(t *testing.T) {
	v, _ := volume.NewBinary(3, 3, 3)
	v.Set(1, 1, 1, 1)

	res, err := RunScan(v, nil, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 1, res.Components)

	c := res.Features.Component(1)
	require.Equal(t, uint32(1), c.Volume)
	require.Equal(t, [3]int64{1, 1, 1}, c.Sum)
	require.Equal(t, [3]int32{1, 1, 1}, c.Min)
	require.Equal(t, [3]int32{2, 2, 2}, c.Max)

	centroid, err := res.Features.Centroid(1)
	require.NoError(t, err)
	require.Equal(t, [3]float64{1, 1, 1}, centroid)
}

// TestFullSlab verifies a volume that is entirely foreground
func TestFullSlab(t *testing.T) {
	v, _ := volume.NewBinary(9, 4, 3)
	for i := range v.Data {
		v.Data[i] = 1
	}
	for _, kind := range unify.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strategy = kind
			out, _ := volume.NewLabels(9, 4, 3)
			res, err := RunScan(v, out, cfg)
			require.NoError(t, err)
			require.Equal(t, 1, res.Components)
			require.Equal(t, 12, res.Segments)
			for _, l := range out.Data {
				require.Equal(t, int32(1), l)
			}

			s, err := res.Summary()
			require.NoError(t, err)
			require.Equal(t, uint64(9*4*3), s.Voxels)
			f, err := res.Features.FillRatio(1)
			require.NoError(t, err)
			require.Equal(t, 1.0, f)
		})
	}
}

// TestCheckerboard verifies the worst case for label allocation
func TestCheckerboard(t *testing.T) {
	v, _ := volume.NewBinary(11, 7, 5)
	for z := 0; z < 5; z++ {
		for y := 0; y < 7; y++ {
			for x := 0; x < 11; x++ {
				v.Set(x, y, z, uint8((x+y+z+1)%2))
			}
		}
	}
	fg := v.Count()

	for _, kind := range strategiesFor(unify.Conn6) {
		t.Run(string(kind), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Connectivity = unify.Conn6
			cfg.Strategy = kind
			res, err := RunScan(v, nil, cfg)
			require.NoError(t, err)
			require.Equal(t, fg, res.Components)
			require.LessOrEqual(t, res.Labels+1, Capacity(11, 7, 5))
		})
	}

	res, err := RunScan(v, nil, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 1, res.Components)
}

// TestResliceInvariance verifies that the scan axis does not change the components
func TestResliceInvariance(t *testing.T) {
	v := randomVolume(t, 99, 10, 8, 6, 0.35)
	base, err := RunScan(v, nil, DefaultConfig())
	require.NoError(t, err)

	for _, axis := range []volume.Axis{volume.AxisY, volume.AxisZ} {
		r, err := volume.Reslice(v, axis)
		require.NoError(t, err)
		res, err := RunScan(r, nil, DefaultConfig())
		require.NoError(t, err)
		require.Equal(t, base.Components, res.Components, "axis %s", axis)

		a, err := base.Summary()
		require.NoError(t, err)
		b, err := res.Summary()
		require.NoError(t, err)
		require.Equal(t, a.Voxels, b.Voxels)
		require.Equal(t, a.Max, b.Max)
	}
}

// TestStateCounting verifies that counters are attached on request
func TestStateCounting(t *testing.T) {
	v := randomVolume(t, 5, 8, 8, 8, 0.5)
	cfg := DefaultConfig()

	res, err := RunScan(v, nil, cfg)
	require.NoError(t, err)
	require.Nil(t, res.States)

	cfg.CountStates = true
	res, err = RunScan(v, nil, cfg)
	require.NoError(t, err)
	require.NotNil(t, res.States)
	require.NotZero(t, res.States.Total())
	require.NotZero(t, res.States.Entered(unify.StateNewLabel))
}

// TestFeaturesNone verifies that statistics can be skipped
func TestFeaturesNone(t *testing.T) {
	v := randomVolume(t, 6, 8, 8, 2, 0.5)
	cfg := DefaultConfig()
	cfg.FeatureMode = FeaturesNone
	res, err := RunScan(v, nil, cfg)
	require.NoError(t, err)
	require.Nil(t, res.Features)

	_, err = res.Summary()
	require.ErrorIs(t, err, features.ErrMissingStatistic)

	// no tracked group behaves like FeaturesNone in every mode
	for _, mode := range []FeatureMode{FeaturesOnTheFly, FeaturesPostPass} {
		cfg := DefaultConfig()
		cfg.FeatureMode = mode
		cfg.Features = features.Config{Dims: 3}
		untracked, err := RunScan(v, nil, cfg)
		require.NoError(t, err)
		require.Nil(t, untracked.Features, string(mode))
		require.Equal(t, res.Components, untracked.Components)
	}
}

// TestLogging verifies the debug entries of a scan
func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	v := randomVolume(t, 8, 6, 6, 6, 0.5)

	s := NewScanner(DefaultConfig(), WithLogger(zap.New(core)))
	res, err := s.Run(v, nil)
	require.NoError(t, err)

	require.Equal(t, 1, logs.FilterMessage("scan state allocated").Len())
	done := logs.FilterMessage("scan complete").All()
	require.Len(t, done, 1)
	require.Equal(t, int64(res.Components), done[0].ContextMap()["components"])
}

type shortRows struct{ w int }

func (s shortRows) Dims() (int, int, int)      { return s.w, 2, 2 }
func (s shortRows) Row(row, slice int) []uint8 { return make([]uint8, s.w-1) }

// TestValidation verifies rejected inputs and configurations
func TestValidation(t *testing.T) {
	v, _ := volume.NewBinary(4, 4, 2)

	cfg := DefaultConfig()
	cfg.Connectivity = unify.Conn8
	_, err := RunScan(v, nil, cfg)
	require.ErrorIs(t, err, ErrMisconfigured)

	cfg = DefaultConfig()
	cfg.Connectivity = unify.Conn18
	cfg.Strategy = unify.KindDouble
	_, err = RunScan(v, nil, cfg)
	require.ErrorIs(t, err, ErrMisconfigured)
	require.ErrorIs(t, err, unify.ErrUnsupported)

	cfg = DefaultConfig()
	cfg.Features.Moments = false
	_, err = RunScan(v, nil, cfg)
	require.ErrorIs(t, err, features.ErrMisconfigured)

	cfg = DefaultConfig()
	cfg.Encoder = "avx512"
	cfg.FeatureMode = "later"
	err = cfg.Validate(4, 4, 2)
	require.ErrorIs(t, err, ErrMisconfigured)
	require.Contains(t, err.Error(), "avx512")
	require.Contains(t, err.Error(), "later")

	require.ErrorIs(t, DefaultConfig().Validate(rle.MaxWidth+1, 1, 1), ErrInvalidDimensions)
	require.ErrorIs(t, DefaultConfig().Validate(0, 1, 1), ErrInvalidDimensions)

	small, _ := volume.NewLabels(4, 4, 1)
	_, err = RunScan(v, small, DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = RunScan(shortRows{w: 5}, nil, DefaultConfig())
	require.True(t, errors.Is(err, ErrInvalidDimensions), "short rows: %v", err)
}

// BenchmarkRunScan measures a half-full volume per strategy
func BenchmarkRunScan(b *testing.B) {
	v, _ := volume.NewBinary(128, 128, 32)
	volume.FillRandom(v, rand.New(rand.NewPCG(1, 1)), 0.5)
	out, _ := volume.NewLabels(128, 128, 32)

	for _, kind := range unify.Kinds {
		b.Run(string(kind), func(b *testing.B) {
			cfg := DefaultConfig()
			cfg.Strategy = kind
			for i := 0; i < b.N; i++ {
				if _, err := RunScan(v, out, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
