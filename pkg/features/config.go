package features

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrMisconfigured is returned when a Config asks for something that
	// cannot be computed with the groups it enables.
	ErrMisconfigured = errors.New("features: misconfigured")

	// ErrMissingStatistic is returned when a derived value needs a group
	// the table does not track.
	ErrMissingStatistic = errors.New("features: statistic not tracked")
)

// Config selects which statistics are accumulated per component.
type Config struct {
	// Dims is 2 for images and 3 for volumes. 2D tables skip every
	// slice-axis statistic.
	Dims int `yaml:"dims" toml:"dims"`

	// Moments tracks first-order sums of the voxel coordinates.
	Moments bool `yaml:"moments" toml:"moments"`

	// Volume tracks the voxel count.
	Volume bool `yaml:"volume" toml:"volume"`

	// BoundingBox tracks the axis-aligned box, high bounds exclusive.
	BoundingBox bool `yaml:"boundingBox" toml:"boundingBox"`

	// Centroids requests centroid output; needs Moments and Volume.
	Centroids bool `yaml:"centroids" toml:"centroids"`

	// FillRatio requests voxel count over box volume; needs BoundingBox
	// and Volume.
	FillRatio bool `yaml:"fillRatio" toml:"fillRatio"`
}

// DefaultConfig tracks every group for volumes.
func DefaultConfig() Config {
	return Config{
		Dims:        3,
		Moments:     true,
		Volume:      true,
		BoundingBox: true,
		Centroids:   true,
		FillRatio:   true,
	}
}

// Enabled reports whether any group is tracked.
func (c Config) Enabled() bool {
	return c.Moments || c.Volume || c.BoundingBox
}

// Validate reports every inconsistency in c.
func (c Config) Validate() error {
	var err error
	if c.Dims != 2 && c.Dims != 3 {
		err = multierr.Append(err, fmt.Errorf("%w: dims must be 2 or 3, got %d", ErrMisconfigured, c.Dims))
	}
	if c.Centroids && !(c.Moments && c.Volume) {
		err = multierr.Append(err, fmt.Errorf("%w: centroids need moments and volume", ErrMisconfigured))
	}
	if c.FillRatio && !(c.BoundingBox && c.Volume) {
		err = multierr.Append(err, fmt.Errorf("%w: fill ratio needs bounding box and volume", ErrMisconfigured))
	}
	return err
}
