package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphalgo/pkg/algorithms"
	"github.com/dd0wney/cluso-graphalgo/pkg/procedures"
)

// FileConfig is the YAML configuration file. Algorithm sections start
// from the library defaults, so a file only lists what it changes.
type FileConfig struct {
	procedures.Request `yaml:",inline"`

	Louvain          algorithms.LouvainConfig          `yaml:"louvain"`
	Wcc              algorithms.WccConfig              `yaml:"wcc"`
	LabelPropagation algorithms.LabelPropagationConfig `yaml:"labelPropagation"`
	PageRank         algorithms.PageRankConfig         `yaml:"pageRank"`

	// WeightColumn names the relationship property that receives the third
	// edge-list column.
	WeightColumn string `yaml:"weightColumn"`
	// Remap assigns dense node ids in first-encounter order.
	Remap bool `yaml:"remap"`
}

// defaultFileConfig returns the configuration used without a file.
func defaultFileConfig() FileConfig {
	return FileConfig{
		Louvain:          algorithms.DefaultLouvainConfig(),
		Wcc:              algorithms.DefaultWccConfig(),
		LabelPropagation: algorithms.DefaultLabelPropagationConfig(),
		PageRank:         algorithms.DefaultPageRankConfig(),
		WeightColumn:     "weight",
	}
}

// loadFileConfig reads path over the defaults. An empty path returns the
// defaults.
func loadFileConfig(path string) (FileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
