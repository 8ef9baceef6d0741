// Package config loads and validates the planner's Configuration (§3 of the
// specification) from YAML, in the teacher's permissive, default-filling
// tradition: any field the file omits falls back to a sane default rather
// than failing the load.
package config

import (
	"github.com/golang/geo/r3"
	"github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Frustum is an unordered collection of inward-facing bound normals (in
// body frame) describing one camera's view volume.
type Frustum struct {
	Normals []r3.Vector
}

// Config is the planner's Configuration, §3 of the specification.
type Config struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64

	SoftBounds bool

	BoundingBox r3.Vector

	ExtensionRange float64
	DOvershoot     float64

	GainRange  float64
	IGUnmapped float64
	IGOccupied float64
	IGFree     float64
	IGArea     float64

	CamBoundNormals []Frustum

	DegressiveCoeff float64
	ZeroGain        float64

	Dt       float64
	VMax     float64
	DyawMax  float64
	ExactRoot bool

	LogThrottle        float64
	InspectionThrottle float64
	Log                bool
	LogDir             string

	// Expansion fields (§3 of SPEC_FULL.md).
	ZSampleRange     float64
	NumPeers         int
	Seed             int64
	NavigationFrame  string
	MaxSampleRetries int
	GeoOrigin        *geo.Point
}

// Default returns a Config populated with the reference implementation's
// defaults, suitable as a base to override fields on top of, or to use
// directly in tests.
func Default() *Config {
	return &Config{
		MinX: -10, MaxX: 10,
		MinY: -10, MaxY: 10,
		MinZ: -10, MaxZ: 10,
		SoftBounds:         false,
		BoundingBox:        r3.Vector{X: 0.5, Y: 0.5, Z: 0.3},
		ExtensionRange:     1.0,
		DOvershoot:         0.5,
		GainRange:          3.0,
		IGUnmapped:         1.0,
		IGOccupied:         0.3,
		IGFree:             0.0,
		IGArea:             0.0,
		CamBoundNormals:    nil,
		DegressiveCoeff:    0.1,
		ZeroGain:           0.0,
		Dt:                 0.1,
		VMax:               1.0,
		DyawMax:            1.0,
		ExactRoot:          true,
		LogThrottle:        0.5,
		InspectionThrottle: 0.25,
		Log:                false,
		LogDir:             "./nbv-logs",
		ZSampleRange:       2.0,
		NumPeers:           4,
		Seed:               1,
		NavigationFrame:    "world",
		MaxSampleRetries:   10000,
	}
}

// Load reads a YAML file at path, merging it over Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading config file %q", path)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config file %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports whether the Configuration is internally consistent.
func (c *Config) Validate() error {
	if c.MinX >= c.MaxX || c.MinY >= c.MaxY || c.MinZ >= c.MaxZ {
		return errors.New("workspace bounds must satisfy min < max on every axis")
	}
	if c.ExtensionRange <= 0 {
		return errors.New("extensionRange must be positive")
	}
	if c.GainRange <= 0 {
		return errors.New("gainRange must be positive")
	}
	if c.Dt <= 0 || c.VMax <= 0 || c.DyawMax <= 0 {
		return errors.New("dt, vMax, and dyawMax must be positive")
	}
	if c.MaxSampleRetries <= 0 {
		return errors.New("maxSampleRetries must be positive")
	}
	if c.NumPeers < 1 {
		return errors.New("numPeers must be at least 1")
	}
	return nil
}

// Radius returns the sampling sphere radius R used by the sampler (§4.2
// step 1): the diagonal of the workspace AABB.
func (c *Config) Radius() float64 {
	dx := c.MaxX - c.MinX
	dy := c.MaxY - c.MinY
	dz := c.MaxZ - c.MinZ
	return r3.Vector{X: dx, Y: dy, Z: dz}.Norm()
}
