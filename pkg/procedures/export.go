package procedures

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-graphalgo/pkg/algorithms"
)

// Exporter receives the rows of Write mode runs.
type Exporter interface {
	ExportCommunities(ctx context.Context, property string, rows []Row) (int64, error)
	ExportScores(ctx context.Context, property string, rows []ScoreRow) (int64, error)
}

// exportCheckRows is how many rows are written between two cancellation
// checks.
const exportCheckRows = 10_000

// CSVExporter writes one CSV document per exported property, optionally
// wrapped in the snappy framing format.
type CSVExporter struct {
	open     func(property string) (io.WriteCloser, error)
	compress bool
}

// NewFileExporter writes <dir>/<property>.csv, or <property>.csv.sz when
// compress is set.
func NewFileExporter(dir string, compress bool) *CSVExporter {
	return &CSVExporter{
		compress: compress,
		open: func(property string) (io.WriteCloser, error) {
			name := property + ".csv"
			if compress {
				name += ".sz"
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create export dir: %w", err)
			}
			return os.Create(filepath.Join(dir, name))
		},
	}
}

// NewWriterExporter writes every export to w. w is not closed.
func NewWriterExporter(w io.Writer, compress bool) *CSVExporter {
	return &CSVExporter{
		compress: compress,
		open: func(string) (io.WriteCloser, error) {
			return nopWriteCloser{w}, nil
		},
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// ExportCommunities writes "nodeId,<property>" rows. When any row carries
// intermediate ids, a third column lists them separated by ';'.
func (e *CSVExporter) ExportCommunities(ctx context.Context, property string, rows []Row) (int64, error) {
	intermediate := false
	for _, r := range rows {
		if r.IntermediateCommunityIDs != nil {
			intermediate = true
			break
		}
	}
	header := []string{"nodeId", property}
	if intermediate {
		header = append(header, "intermediateCommunityIds")
	}
	return e.export(ctx, property, header, len(rows), func(i int) []string {
		r := rows[i]
		record := []string{strconv.FormatInt(r.NodeID, 10), strconv.FormatInt(r.CommunityID, 10)}
		if intermediate {
			levels := make([]string, len(r.IntermediateCommunityIDs))
			for l, id := range r.IntermediateCommunityIDs {
				levels[l] = strconv.FormatInt(id, 10)
			}
			record = append(record, strings.Join(levels, ";"))
		}
		return record
	})
}

// ExportScores writes "nodeId,<property>" rows.
func (e *CSVExporter) ExportScores(ctx context.Context, property string, rows []ScoreRow) (int64, error) {
	return e.export(ctx, property, []string{"nodeId", property}, len(rows), func(i int) []string {
		return []string{strconv.FormatInt(rows[i].NodeID, 10), strconv.FormatFloat(rows[i].Score, 'g', -1, 64)}
	})
}

func (e *CSVExporter) export(ctx context.Context, property string, header []string, count int, record func(i int) []string) (written int64, err error) {
	out, err := e.open(property)
	if err != nil {
		return 0, fmt.Errorf("open export %s: %w", property, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export %s: %w", property, cerr)
		}
	}()

	var sink io.Writer = out
	var framed *snappy.Writer
	if e.compress {
		framed = snappy.NewBufferedWriter(out)
		sink = framed
	}

	w := csv.NewWriter(sink)
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}
	for i := 0; i < count; i++ {
		if i%exportCheckRows == 0 && ctx.Err() != nil {
			return written, fmt.Errorf("%w: %w", algorithms.ErrAborted, context.Cause(ctx))
		}
		if err := w.Write(record(i)); err != nil {
			return written, fmt.Errorf("write export row %d: %w", i, err)
		}
		written++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return written, fmt.Errorf("flush export: %w", err)
	}
	if framed != nil {
		if err := framed.Close(); err != nil {
			return written, fmt.Errorf("flush snappy frame: %w", err)
		}
	}
	return written, nil
}
