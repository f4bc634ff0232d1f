// Package ccl labels the connected components of a binary volume with a
// single light-speed scan: rows are run-length coded, segments are
// merged with the already-scanned neighbor rows, and final labels are
// written back once every equivalence is resolved.
package ccl

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"lsl3d/internal/models"
	"lsl3d/pkg/features"
	"lsl3d/pkg/relabel"
	"lsl3d/pkg/rle"
	"lsl3d/pkg/unify"
	"lsl3d/pkg/unionfind"
	"lsl3d/pkg/volume"
)

// Result describes a finished scan.
type Result struct {
	// Components is the number of connected components. Final labels run
	// from 1 to Components in order of each component's first voxel.
	Components int

	// Labels is the number of provisional labels allocated.
	Labels int

	// Segments is the number of foreground runs found.
	Segments int

	// Features is indexed by final label. It is nil when statistics were
	// not requested.
	Features *features.Table

	// States holds the merge state transitions when counting was enabled.
	States *unify.StateCounters
}

// Summary returns size statistics over every component.
func (r *Result) Summary() (features.Summary, error) {
	if r.Features == nil {
		return features.Summary{}, fmt.Errorf("%w: no statistics were computed", features.ErrMissingStatistic)
	}
	return features.Summarize(r.Features, r.Components)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for scan diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// Scanner runs scans with a fixed configuration. A Scanner may be used
// by several goroutines; every Run allocates its own state.
type Scanner struct {
	cfg    Config
	logger *zap.Logger
}

// NewScanner returns a scanner for cfg. The configuration is validated
// on every Run, against the dimensions of the volume.
func NewScanner(cfg Config, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunScan labels src into dst with cfg. It is shorthand for a Scanner
// with the default no-op logger.
//
// Parameters:
//   - src: the binary volume; a voxel is foreground when its low bit is set
//   - dst: the label volume, with the dimensions of src, or nil when only
//     the component count and statistics are needed
//   - cfg: connectivity, strategy, encoder, writer and statistics to use
//
// Returns:
//   - The component count, allocation counters and, unless statistics
//     were disabled, a feature table indexed by final label
//   - An error wrapping ErrInvalidDimensions or ErrMisconfigured when the
//     configuration does not fit the volume
func RunScan(src volume.Source, dst volume.Sink, cfg Config) (*Result, error) {
	return NewScanner(cfg).Run(src, dst)
}

// Run labels src into dst. dst may be nil.
//
// A scan consists of these steps:
// 1. Validating the configuration against the dimensions of src
// 2. Sizing the label table and row store once, for the worst case
// 3. Coding each row into segments, in raster order, and merging them
//    with the already-scanned neighbor rows
// 4. Flattening the label table into final labels 1..K
// 5. Compacting the on-the-fly statistics, or computing them in a second
//    pass over the segments
// 6. Writing final labels into dst
//
// Statistics are skipped when the feature configuration tracks no group,
// whatever the feature mode.
func (s *Scanner) Run(src volume.Source, dst volume.Sink) (*Result, error) {
	w, h, d := src.Dims()
	if err := s.cfg.Validate(w, h, d); err != nil {
		return nil, err
	}
	if dst != nil {
		if dw, dh, dd := dst.Dims(); dw != w || dh != h || dd != d {
			return nil, fmt.Errorf("%w: output is %dx%dx%d, input is %dx%dx%d", ErrInvalidDimensions, dw, dh, dd, w, h, d)
		}
	}

	enc, _ := rle.New(s.cfg.Encoder)
	writer, _ := relabel.New(s.cfg.Relabel)
	strategy, err := unify.New(s.cfg.Strategy, s.cfg.Connectivity, w)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMisconfigured, err)
	}
	req := strategy.Requires()

	capacity := Capacity(w, h, d)
	uf := unionfind.New(capacity)
	store := models.NewStore(w, h, d, req.Layout, req.ER)

	mode := s.cfg.FeatureMode
	if !s.cfg.Features.Enabled() {
		mode = FeaturesNone
	}

	// an empty table turns every on-the-fly update into a no-op
	otf := features.NewTable(features.Config{Dims: s.cfg.Features.Dims}, 0)
	if mode == FeaturesOnTheFly {
		otf = features.NewTable(s.cfg.Features, capacity)
	}
	ctx := &unify.Context{Resolver: uf, Features: otf}

	var states *unify.StateCounters
	if s.cfg.CountStates {
		states = &unify.StateCounters{}
		ctx.Observer = states
	}

	s.logger.Debug("scan state allocated",
		zap.String("strategy", strategy.Name()),
		zap.String("encoder", enc.Name()),
		zap.String("features", string(mode)),
		zap.Int("connectivity", int(s.cfg.Connectivity)),
		zap.String("label_capacity", humanize.Comma(int64(capacity))),
		zap.String("memory", humanize.Bytes(uint64(store.Bytes()+4*capacity))),
	)

	start := time.Now()
	var nb unify.Neighborhood
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			row := src.Row(y, z)
			if len(row) < w {
				return nil, fmt.Errorf("%w: row %d of slice %d has %d voxels, want %d", ErrInvalidDimensions, y, z, len(row), w)
			}

			var n int
			if req.ER {
				n = enc.EncodeER(row[:w], store.RLC(y, z), store.ER(y, z))
			} else {
				n = enc.Encode(row[:w], store.RLC(y, z))
			}
			store.SetLen(y, z, n)

			nb.Rows[unify.Prev] = store.Line(y-1, z)
			nb.Rows[unify.Back] = store.Line(y, z-1)
			nb.Rows[unify.BackUp] = store.Line(y-1, z-1)
			nb.Rows[unify.BackDown] = store.Line(y+1, z-1)

			cur := store.Line(y, z)
			strategy.Unify(ctx, &nb, &cur, y, z)
			store.SetOffset(y, z, cur.Offset)
		}
	}
	scanned := time.Since(start)

	res := &Result{
		Components: uf.Flatten(),
		Labels:     uf.Len() - 1,
		Segments:   store.Segments(),
		States:     states,
	}

	switch mode {
	case FeaturesOnTheFly:
		res.Features = features.NewTable(s.cfg.Features, res.Components+1)
		res.Features.NormalizeFrom(otf, uf)
	case FeaturesPostPass:
		res.Features = features.NewTable(s.cfg.Features, res.Components+1)
		res.Features.Init(0, res.Components+1)
		computeFeatures(store, uf, res.Features)
	}

	if dst != nil {
		writer.Relabel(store, uf, dst)
	}

	s.logger.Debug("scan complete",
		zap.Int("components", res.Components),
		zap.Int("provisional_labels", res.Labels),
		zap.Int("segments", res.Segments),
		zap.Duration("scan", scanned),
		zap.Duration("total", time.Since(start)),
	)
	if states != nil {
		s.logger.Debug("merge transitions", zap.Uint64("total", states.Total()))
	}
	return res, nil
}

// computeFeatures accumulates every segment into the entry of its final
// label.
func computeFeatures(store *models.Store, uf *unionfind.UnionFind, tab *features.Table) {
	for z := 0; z < store.Depth; z++ {
		for y := 0; y < store.Height; y++ {
			line := store.Line(y, z)
			for k := 0; k < line.Segments(); k++ {
				s, e := int(line.RLC[2*k]), int(line.RLC[2*k+1])
				tab.AddSegment(uf.GetLabel(line.Label(k)), y, z, s, e)
			}
		}
	}
}
