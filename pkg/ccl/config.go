package ccl

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"lsl3d/pkg/features"
	"lsl3d/pkg/relabel"
	"lsl3d/pkg/rle"
	"lsl3d/pkg/unify"
)

var (
	// ErrInvalidDimensions is returned for volumes the scan cannot
	// represent.
	ErrInvalidDimensions = errors.New("ccl: invalid dimensions")

	// ErrMisconfigured is returned for inconsistent scan settings.
	ErrMisconfigured = errors.New("ccl: misconfigured")
)

// FeatureMode selects when component statistics are computed.
type FeatureMode string

const (
	// FeaturesOnTheFly accumulates statistics while labels are merged.
	FeaturesOnTheFly FeatureMode = "otf"
	// FeaturesPostPass recomputes statistics from the coded rows once
	// labels are final.
	FeaturesPostPass FeatureMode = "postpass"
	// FeaturesNone skips statistics.
	FeaturesNone FeatureMode = "none"
)

// Config selects the variant of every stage of a scan.
type Config struct {
	// Connectivity is 4 or 8 for single-slice volumes, 6, 18 or 26 for
	// volumes.
	Connectivity unify.Connectivity

	// Strategy merges each row with its neighbors.
	Strategy unify.Kind

	// Encoder codes the rows.
	Encoder rle.Kind

	// Relabel writes the output volume.
	Relabel relabel.Kind

	// FeatureMode and Features control component statistics.
	FeatureMode FeatureMode
	Features    features.Config

	// CountStates attaches transition counters to the merge state
	// machines.
	CountStates bool
}

// DefaultConfig returns a 26-connected scan with every statistic.
func DefaultConfig() Config {
	return Config{
		Connectivity: unify.Conn26,
		Strategy:     unify.KindSeparate,
		Encoder:      rle.KindAuto,
		Relabel:      relabel.KindScalar,
		FeatureMode:  FeaturesOnTheFly,
		Features:     features.DefaultConfig(),
	}
}

// Validate checks the configuration against a volume of the given size
// and reports every problem found.
func (c Config) Validate(width, height, depth int) error {
	var err error

	if width <= 0 || height <= 0 || depth <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, width, height, depth))
	} else {
		if width > rle.MaxWidth {
			err = multierr.Append(err, fmt.Errorf("%w: width %d exceeds %d", ErrInvalidDimensions, width, rle.MaxWidth))
		}
		if int64(height)*int64(depth)*int64((width+1)/2)+2 >= math.MaxInt32 {
			err = multierr.Append(err, fmt.Errorf("%w: %dx%dx%d may need more than 2^31 labels", ErrInvalidDimensions, width, height, depth))
		}
		if c.Connectivity.Is2D() && depth != 1 {
			err = multierr.Append(err, fmt.Errorf("%w: %d-connectivity needs a single slice, got depth %d", ErrMisconfigured, int(c.Connectivity), depth))
		}
	}

	if _, e := unify.New(c.Strategy, c.Connectivity, 1); e != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrMisconfigured, e))
	}
	if _, ok := rle.New(c.Encoder); !ok {
		err = multierr.Append(err, fmt.Errorf("%w: unknown encoder %q", ErrMisconfigured, c.Encoder))
	}
	if _, e := relabel.New(c.Relabel); e != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %w", ErrMisconfigured, e))
	}

	switch c.FeatureMode {
	case FeaturesOnTheFly, FeaturesPostPass:
		if e := c.Features.Validate(); e != nil {
			err = multierr.Append(err, fmt.Errorf("%w: %w", ErrMisconfigured, e))
		}
		if c.Features.Dims == 2 && depth > 1 {
			err = multierr.Append(err, fmt.Errorf("%w: 2D statistics on a volume of depth %d", ErrMisconfigured, depth))
		}
	case FeaturesNone:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: unknown feature mode %q", ErrMisconfigured, c.FeatureMode))
	}
	return err
}

// Capacity returns the number of label slots a scan of the given size
// needs, background included. Every allocated label belongs to a distinct
// segment, and a row of width w holds at most (w+1)/2 segments.
func Capacity(width, height, depth int) int {
	return height*depth*((width+1)/2) + 2
}
