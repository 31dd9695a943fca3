package algorithms

import (
	"runtime"

	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/metrics"
	"github.com/dd0wney/cluso-graphalgo/pkg/parallel"
	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

// Default configuration values.
const (
	DefaultMaxLevels     = 10
	DefaultMaxIterations = 10
	DefaultTolerance     = 1e-4
	DefaultWeight        = 1.0
	MaxConcurrency       = 1024
)

// DefaultConcurrency is the worker count used when none is configured.
func DefaultConcurrency() int {
	return validation.ClampInt(runtime.GOMAXPROCS(0), 1, MaxConcurrency)
}

// RunOptions are the ambient collaborators shared by every algorithm.
// Zero values are valid.
type RunOptions struct {
	Logger   logging.Logger         `validate:"-" yaml:"-"`
	Progress logging.ProgressLogger `validate:"-" yaml:"-"`
	Metrics  *metrics.Registry      `validate:"-" yaml:"-"`
}

func (o RunOptions) logger() logging.Logger {
	return logging.OrNop(o.Logger)
}

func (o RunOptions) progress() logging.ProgressLogger {
	if o.Progress == nil {
		return logging.NopProgress{}
	}
	return o.Progress
}

// LouvainConfig configures a Louvain run.
type LouvainConfig struct {
	Concurrency  int   `yaml:"concurrency" validate:"gte=1,lte=1024"`
	MinBatchSize int64 `yaml:"minBatchSize" validate:"gte=1"`
	MaxLevels    int   `yaml:"maxLevels" validate:"gte=1"`
	// MaxIterations caps the sweeps of one local-moving phase.
	MaxIterations int     `yaml:"maxIterations" validate:"gte=1"`
	Tolerance     float64 `yaml:"tolerance" validate:"gte=0"`

	IncludeIntermediateCommunities bool `yaml:"includeIntermediateCommunities"`
	ConsecutiveIDs                 bool `yaml:"consecutiveIds"`

	// RelationshipWeightProperty and SeedProperty name the properties the
	// caller resolved into the graph weights and the seed values.
	RelationshipWeightProperty string  `yaml:"relationshipWeightProperty"`
	DefaultWeight              float64 `yaml:"defaultWeight"`
	SeedProperty               string  `yaml:"seedProperty"`

	// RandomNeighbor shuffles the order in which candidate communities are
	// evaluated, reproducibly for a given RandomSeed.
	RandomNeighbor bool   `yaml:"randomNeighbor"`
	RandomSeed     uint64 `yaml:"randomSeed"`

	RunOptions `yaml:"-"`
}

// DefaultLouvainConfig returns the default Louvain configuration.
func DefaultLouvainConfig() LouvainConfig {
	return LouvainConfig{
		Concurrency:   DefaultConcurrency(),
		MinBatchSize:  parallel.DefaultMinBatchSize,
		MaxLevels:     DefaultMaxLevels,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		DefaultWeight: DefaultWeight,
	}
}

// Validate checks parameter bounds and option combinations.
func (c LouvainConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	return validation.NewConfigValidator("LouvainConfig").
		Finite("Tolerance", c.Tolerance).
		Finite("DefaultWeight", c.DefaultWeight).
		MutuallyExclusive("SeedProperty", c.SeedProperty != "", "ConsecutiveIDs", c.ConsecutiveIDs).
		Custom("SeedProperty", validation.OptionalPropertyKey(c.SeedProperty)).
		Custom("RelationshipWeightProperty", validation.OptionalPropertyKey(c.RelationshipWeightProperty)).
		Validate()
}

// WccConfig configures a weakly connected components run.
type WccConfig struct {
	Concurrency  int   `yaml:"concurrency" validate:"gte=1,lte=1024"`
	MinBatchSize int64 `yaml:"minBatchSize" validate:"gte=1"`

	RelationshipWeightProperty string  `yaml:"relationshipWeightProperty"`
	DefaultWeight              float64 `yaml:"defaultWeight"`
	// Threshold keeps only relationships whose weight is at least the
	// threshold. Requires RelationshipWeightProperty.
	Threshold *float64 `yaml:"threshold"`

	SeedProperty   string `yaml:"seedProperty"`
	ConsecutiveIDs bool   `yaml:"consecutiveIds"`

	RunOptions `yaml:"-"`
}

// DefaultWccConfig returns the default WCC configuration.
func DefaultWccConfig() WccConfig {
	return WccConfig{
		Concurrency:   DefaultConcurrency(),
		MinBatchSize:  parallel.DefaultMinBatchSize,
		DefaultWeight: DefaultWeight,
	}
}

// Validate checks parameter bounds and option combinations.
func (c WccConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	cv := validation.NewConfigValidator("WccConfig").
		Finite("DefaultWeight", c.DefaultWeight).
		Requires("Threshold", c.Threshold != nil, "RelationshipWeightProperty", c.RelationshipWeightProperty != "").
		MutuallyExclusive("SeedProperty", c.SeedProperty != "", "ConsecutiveIDs", c.ConsecutiveIDs).
		Custom("SeedProperty", validation.OptionalPropertyKey(c.SeedProperty)).
		Custom("RelationshipWeightProperty", validation.OptionalPropertyKey(c.RelationshipWeightProperty))
	if c.Threshold != nil {
		cv.Finite("Threshold", *c.Threshold)
	}
	return cv.Validate()
}
