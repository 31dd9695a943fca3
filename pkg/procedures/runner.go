package procedures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dd0wney/cluso-graphalgo/pkg/algorithms"
	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/metrics"
)

const tracerName = "github.com/dd0wney/cluso-graphalgo/pkg/procedures"

// DefaultTimeout bounds a run started by a runner from NewRunner.
const DefaultTimeout = 30 * time.Minute

var (
	// ErrNoCatalog is returned when a runner has no catalog to resolve
	// graphs from.
	ErrNoCatalog = errors.New("runner has no graph catalog")
	// ErrNoExporter is returned by Write mode runs without an exporter.
	ErrNoExporter = errors.New("runner has no exporter")
)

// Runner resolves graphs from its catalog, runs algorithms and delivers
// their results. All fields but Catalog are optional.
type Runner struct {
	Catalog  *graph.Catalog
	Logger   logging.Logger
	Metrics  *metrics.Registry
	Tracer   trace.Tracer
	Exporter Exporter
	// Timeout bounds every run; zero disables it.
	Timeout time.Duration
	// ProgressStep is the percentage between two progress messages.
	ProgressStep int
}

// NewRunner creates a runner over catalog with the default logger, the
// global tracer provider and DefaultTimeout.
func NewRunner(catalog *graph.Catalog) *Runner {
	return &Runner{
		Catalog: catalog,
		Logger:  logging.DefaultLogger(),
		Tracer:  otel.Tracer(tracerName),
		Timeout: DefaultTimeout,
	}
}

// job tracks one procedure run from start to finish.
type job struct {
	runner    *Runner
	algorithm string
	req       Request
	logger    logging.Logger
	span      trace.Span
	cancel    context.CancelFunc
	inFlight  func()
	start     time.Time
	phase     time.Time
	summary   Summary
}

func (r *Runner) begin(ctx context.Context, algorithm string, req Request) (context.Context, *job) {
	id := uuid.NewString()

	var cancel context.CancelFunc
	if r.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	tracer := r.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ctx, span := tracer.Start(ctx, "graphalgo."+algorithm, trace.WithAttributes(
		attribute.String("graphalgo.job_id", id),
		attribute.String("graphalgo.algorithm", algorithm),
		attribute.String("graphalgo.mode", req.Mode.String()),
		attribute.String("graphalgo.graph", req.GraphName),
	))

	logger := logging.OrNop(r.Logger).With(
		logging.JobID(id),
		logging.Algorithm(algorithm),
		logging.Mode(req.Mode.String()),
		logging.GraphName(req.GraphName))
	logger.Info("procedure started")

	now := time.Now()
	return ctx, &job{
		runner:    r,
		algorithm: algorithm,
		req:       req,
		logger:    logger,
		span:      span,
		cancel:    cancel,
		inFlight:  r.Metrics.RunStarted(algorithm),
		start:     now,
		phase:     now,
		summary:   Summary{JobID: id, Algorithm: algorithm, Mode: req.Mode},
	}
}

// runOptions hands the job's logger and the runner's metrics to an
// algorithm.
func (j *job) runOptions() algorithms.RunOptions {
	return algorithms.RunOptions{
		Logger:   j.logger,
		Progress: logging.NewProgressLogger(j.logger, j.runner.ProgressStep),
		Metrics:  j.runner.Metrics,
	}
}

func (j *job) projected(g graph.Graph) {
	now := time.Now()
	j.summary.NodeCount = g.NodeCount()
	j.summary.RelationshipCount = g.RelationshipCount()
	j.summary.PreProcessingTime = now.Sub(j.phase)
	j.phase = now
	j.span.AddEvent("graph projected", trace.WithAttributes(
		attribute.Int64("graphalgo.node_count", j.summary.NodeCount),
		attribute.Int64("graphalgo.relationship_count", j.summary.RelationshipCount),
	))
}

func (j *job) computed() {
	now := time.Now()
	j.summary.ComputeTime = now.Sub(j.phase)
	j.phase = now
}

func (j *job) status(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, algorithms.ErrAborted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return metrics.StatusAborted
	}
	return metrics.StatusError
}

// finish records the outcome of the run and returns err annotated with
// the job id.
func (j *job) finish(err error) error {
	defer j.cancel()
	defer j.inFlight()
	defer j.span.End()

	elapsed := time.Since(j.start)
	status := j.status(err)
	j.runner.Metrics.RecordRun(j.algorithm, j.req.Mode.String(), status, elapsed, j.summary.NodeCount)

	if err != nil {
		j.span.RecordError(err)
		j.span.SetStatus(codes.Error, err.Error())
		j.span.SetAttributes(attribute.String("graphalgo.status", status))
		j.logger.Error("procedure failed", logging.Error(err), logging.String("status", status), logging.Latency(elapsed))
		return fmt.Errorf("job %s: %w", j.summary.JobID, err)
	}

	j.span.SetAttributes(
		attribute.String("graphalgo.status", status),
		attribute.Int64("graphalgo.community_count", j.summary.CommunityCount),
		attribute.Int64("graphalgo.properties_written", j.summary.PropertiesWritten),
	)
	j.span.SetStatus(codes.Ok, "")
	j.logger.Info("procedure finished",
		logging.NodeCount(j.summary.NodeCount),
		logging.CommunityCount(j.summary.CommunityCount),
		logging.Int64("propertiesWritten", j.summary.PropertiesWritten),
		logging.Latency(elapsed))
	return nil
}

// resolved is the input of one run.
type resolved struct {
	store *graph.GraphStore
	graph *graph.CSRGraph
	seeds *graph.NodeProperty
}

// resolve looks up the graph, projects it and reads the seed property.
// Missing graphs and properties are configuration errors naming what is
// missing.
func (r *Runner) resolve(j *job, projection graph.ProjectionConfig, seedProperty string) (*resolved, error) {
	if r.Catalog == nil {
		return nil, ErrNoCatalog
	}
	store, err := r.Catalog.Get(j.req.GraphName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", algorithms.ErrInvalidConfig, err)
	}
	if j.req.Mode == ModeMutate && store.HasNodeProperty(j.req.WriteProperty) {
		return nil, &algorithms.ConfigError{
			Algorithm: j.algorithm,
			Parameter: "writeProperty",
			Value:     j.req.WriteProperty,
			Reason:    "node property already exists",
		}
	}

	g, err := store.Project(projection)
	if err != nil {
		if errors.Is(err, graph.ErrPropertyNotFound) {
			return nil, fmt.Errorf("%w: %w", algorithms.ErrInvalidConfig, err)
		}
		return nil, err
	}

	var seeds *graph.NodeProperty
	if seedProperty != "" {
		if seeds, err = store.NodeProperty(seedProperty); err != nil {
			return nil, fmt.Errorf("%w: %w", algorithms.ErrInvalidConfig, err)
		}
	}

	j.projected(g)
	return &resolved{store: store, graph: g, seeds: seeds}, nil
}

// payload is an algorithm's output ready for delivery. Community
// algorithms set ids and rows, centrality algorithms set scores.
type payload struct {
	ids    []int64
	rows   func() []Row
	scores []float64
}

// deliver dispatches on the request mode.
func (r *Runner) deliver(ctx context.Context, j *job, in *resolved, out payload) (*Result, error) {
	j.computed()
	result := &Result{}
	var written int64

	switch j.req.Mode {
	case ModeStream:
		if out.scores != nil {
			result.Scores = scoreRows(out.scores)
		} else {
			result.Rows = out.rows()
		}
	case ModeStats:
	case ModeMutate:
		if out.ids == nil {
			return nil, unsupportedMode(j)
		}
		if err := in.store.SetNodeProperty(j.req.WriteProperty, graph.NodePropertyFromSlice(out.ids)); err != nil {
			return nil, err
		}
		written = int64(len(out.ids))
	case ModeWrite:
		if r.Exporter == nil {
			return nil, ErrNoExporter
		}
		var err error
		if out.scores != nil {
			written, err = r.Exporter.ExportScores(ctx, j.req.WriteProperty, scoreRows(out.scores))
		} else {
			written, err = r.Exporter.ExportCommunities(ctx, j.req.WriteProperty, out.rows())
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, unsupportedMode(j)
	}

	if written > 0 {
		r.Metrics.RecordWrittenProperties(j.algorithm, j.req.Mode.String(), written)
	}
	j.summary.PropertiesWritten = written
	j.summary.WriteTime = time.Since(j.phase)
	result.Summary = j.summary
	return result, nil
}

func unsupportedMode(j *job) error {
	return &algorithms.ConfigError{
		Algorithm: j.algorithm,
		Parameter: "mode",
		Value:     j.req.Mode.String(),
		Reason:    "not supported by this algorithm",
	}
}
