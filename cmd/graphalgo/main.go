// Command graphalgo loads an edge list and runs a graph algorithm on it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/metrics"
	"github.com/dd0wney/cluso-graphalgo/pkg/procedures"
	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

const graphName = "input"

var algorithmNames = []string{"louvain", "wcc", "labelpropagation", "pagerank"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "graphalgo: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line flags. Flags win over the config file.
type options struct {
	configPath  string
	input       string
	algorithm   string
	mode        string
	output      string
	property    string
	compress    bool
	logLevel    string
	metricsPath string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("graphalgo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.input, "input", "", "Edge list file (source,target[,weight])")
	fs.StringVar(&opts.algorithm, "algo", "louvain", "Algorithm: "+strings.Join(algorithmNames, "|"))
	fs.StringVar(&opts.mode, "mode", "", "Mode: stream|write|mutate|stats (default from config, else stream)")
	fs.StringVar(&opts.output, "output", ".", "Directory for write mode exports")
	fs.StringVar(&opts.property, "property", "", "Property written in write and mutate modes")
	fs.BoolVar(&opts.compress, "compress", false, "Snappy-compress write mode exports")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.StringVar(&opts.metricsPath, "metrics", "", "Write Prometheus metrics to this file after the run")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.input == "" {
		return opts, errors.New("-input is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := loadFileConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg.GraphName = graphName
	cfg.WeightColumn = validation.DefaultOr(cfg.WeightColumn, "weight")
	if opts.mode != "" {
		if cfg.Mode, err = procedures.ParseMode(opts.mode); err != nil {
			return err
		}
	}
	if opts.property != "" {
		cfg.WriteProperty = opts.property
	}

	logger := logging.NewJSONLogger(stderr, logging.ParseLevel(opts.logLevel))
	timer := logging.StartTimer(logger, "edge list loaded", logging.Path(opts.input))
	loaded, err := graph.LoadEdgeList(opts.input, graph.LoadOptions{WeightProperty: cfg.WeightColumn, Remap: cfg.Remap})
	if err != nil {
		timer.EndError(err)
		return err
	}
	timer.End(logging.NodeCount(loaded.Store.NodeCount()), logging.RelationshipCount(loaded.Store.RelationshipCount()))

	catalog := graph.NewCatalog()
	if err := catalog.Set(graphName, loaded.Store); err != nil {
		return err
	}
	registry := metrics.NewRegistry()
	runner := procedures.NewRunner(catalog)
	runner.Logger = logger
	runner.Metrics = registry
	runner.Exporter = procedures.NewFileExporter(opts.output, opts.compress)

	result, err := dispatch(ctx, runner, opts.algorithm, cfg)
	if err != nil {
		return err
	}

	if opts.metricsPath != "" {
		registry.UpdateSystemMetrics()
		if err := prometheus.WriteToTextfile(opts.metricsPath, registry.GetPrometheusRegistry()); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return report(ctx, stdout, result, loaded.OriginalIDs)
}

func dispatch(ctx context.Context, runner *procedures.Runner, algorithm string, cfg FileConfig) (*procedures.Result, error) {
	switch strings.ToLower(algorithm) {
	case "louvain":
		return runner.Louvain(ctx, procedures.LouvainRequest{Request: cfg.Request, Config: cfg.Louvain})
	case "wcc":
		return runner.WCC(ctx, procedures.WccRequest{Request: cfg.Request, Config: cfg.Wcc})
	case "labelpropagation", "lpa":
		return runner.LabelPropagation(ctx, procedures.LabelPropagationRequest{Request: cfg.Request, Config: cfg.LabelPropagation})
	case "pagerank":
		return runner.PageRank(ctx, procedures.PageRankRequest{Request: cfg.Request, Config: cfg.PageRank})
	}
	return nil, fmt.Errorf("unknown algorithm %q (supported: %s)", algorithm, strings.Join(algorithmNames, ", "))
}

// report prints streamed rows as CSV with the ids read from the input
// file, or the summary as JSON for the other modes.
func report(ctx context.Context, stdout io.Writer, result *procedures.Result, originalIDs []int64) error {
	if result.Summary.Mode != procedures.ModeStream {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Summary)
	}

	out := procedures.NewWriterExporter(stdout, false)
	if result.Scores != nil {
		rows := make([]procedures.ScoreRow, len(result.Scores))
		for i, r := range result.Scores {
			rows[i] = procedures.ScoreRow{NodeID: originalIDs[r.NodeID], Score: r.Score}
		}
		_, err := out.ExportScores(ctx, "score", rows)
		return err
	}
	rows := make([]procedures.Row, len(result.Rows))
	for i, r := range result.Rows {
		r.NodeID = originalIDs[r.NodeID]
		rows[i] = r
	}
	_, err := out.ExportCommunities(ctx, "communityId", rows)
	return err
}
