package procedures

import (
	"github.com/dd0wney/cluso-graphalgo/pkg/algorithms"
	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

// Request holds the options every procedure shares.
type Request struct {
	// GraphName selects the graph from the runner's catalog.
	GraphName string `yaml:"graph"`
	Mode      Mode   `yaml:"mode"`
	// WriteProperty names the node property produced in Write and Mutate
	// modes.
	WriteProperty string `yaml:"writeProperty"`
	// Orientation and Aggregation override the projection. Empty values use
	// the algorithm's default orientation and keep parallel relationships.
	Orientation string `yaml:"orientation"`
	Aggregation string `yaml:"aggregation"`
}

// validate rejects mode options before any graph is resolved.
func (r Request) validate(algorithm string) error {
	cv := validation.NewConfigValidator(algorithm)
	cv.When(r.Mode == ModeWrite || r.Mode == ModeMutate, func(cv *validation.ConfigValidator) {
		cv.Custom("WriteProperty", func() error { return validation.ValidatePropertyKey(r.WriteProperty) })
	})
	cv.Custom("Mode", func() error {
		if _, ok := modeNames[r.Mode]; !ok {
			return &algorithms.ConfigError{Algorithm: algorithm, Parameter: "mode", Value: int(r.Mode), Reason: "unknown mode"}
		}
		return nil
	})
	cv.Custom("Orientation", func() error {
		_, err := graph.ParseOrientation(r.Orientation)
		return err
	})
	cv.Custom("Aggregation", func() error {
		_, err := graph.ParseAggregation(r.Aggregation)
		return err
	})
	return cv.Validate()
}

// projection builds the projection config for a run. Orientation falls
// back to fallback when unset.
func (r Request) projection(fallback graph.Orientation, weightProperty string, defaultWeight float64) graph.ProjectionConfig {
	cfg := graph.DefaultProjectionConfig()
	cfg.Orientation = fallback
	if r.Orientation != "" {
		cfg.Orientation, _ = graph.ParseOrientation(r.Orientation)
	}
	cfg.Aggregation, _ = graph.ParseAggregation(r.Aggregation)
	cfg.RelationshipProperty = weightProperty
	cfg.DefaultWeight = defaultWeight
	return cfg
}

// LouvainRequest runs Louvain.
type LouvainRequest struct {
	Request `yaml:",inline"`
	Config  algorithms.LouvainConfig `yaml:"config"`
}

// WccRequest runs weakly connected components.
type WccRequest struct {
	Request `yaml:",inline"`
	Config  algorithms.WccConfig `yaml:"config"`
}

// LabelPropagationRequest runs label propagation.
type LabelPropagationRequest struct {
	Request `yaml:",inline"`
	Config  algorithms.LabelPropagationConfig `yaml:"config"`
}

// PageRankRequest runs PageRank. Mutate mode is not supported because node
// properties hold integer values.
type PageRankRequest struct {
	Request `yaml:",inline"`
	Config  algorithms.PageRankConfig `yaml:"config"`
}
