package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"
)

// Without Remap raw ids index a dense array, so the largest id may exceed
// the number of distinct ids by at most this factor plus slack.
const (
	sparseIDFactor = 16
	sparseIDSlack  = 1024
)

// LoadOptions configures edge-list parsing.
type LoadOptions struct {
	// WeightProperty names the relationship property that receives the
	// optional third column. Defaults to "weight".
	WeightProperty string
	// Remap assigns dense ids in first-encounter order instead of using the
	// raw ids as node indexes.
	Remap bool
}

// LoadedGraph is the result of loading an edge list.
type LoadedGraph struct {
	Store *GraphStore
	// OriginalIDs maps node index to the id read from the file.
	OriginalIDs []int64
}

type rawEdge struct {
	source, target int64
	weight         float64
	weighted       bool
}

// LoadEdgeList reads a "source,target[,weight]" edge list. Fields may be
// separated by commas, tabs or spaces; blank lines and lines starting with
// '#' are skipped. The file is read through a read-only memory map.
func LoadEdgeList(path string, opts LoadOptions) (*LoadedGraph, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open edge list: %w", err)
	}
	defer func() { _ = reader.Close() }()

	return ReadEdgeList(io.NewSectionReader(reader, 0, int64(reader.Len())), opts)
}

// ReadEdgeList parses an edge list from r.
func ReadEdgeList(r io.Reader, opts LoadOptions) (*LoadedGraph, error) {
	if opts.WeightProperty == "" {
		opts.WeightProperty = "weight"
	}

	var (
		edges  []rawEdge
		index  = make(map[int64]int64)
		ids    []int64
		maxID  = int64(-1)
		lineNo int
	)

	intern := func(raw int64) int64 {
		if !opts.Remap {
			if raw > maxID {
				maxID = raw
			}
			index[raw] = raw
			return raw
		}
		if idx, ok := index[raw]; ok {
			return idx
		}
		idx := int64(len(ids))
		index[raw] = idx
		ids = append(ids, raw)
		return idx
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == '\t' || r == ' '
		})
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("line %d: %w: expected 2 or 3 fields, got %d", lineNo, ErrMalformedInput, len(fields))
		}
		src, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || src < 0 {
			return nil, fmt.Errorf("line %d: %w: bad source %q", lineNo, ErrMalformedInput, fields[0])
		}
		tgt, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || tgt < 0 {
			return nil, fmt.Errorf("line %d: %w: bad target %q", lineNo, ErrMalformedInput, fields[1])
		}
		e := rawEdge{source: intern(src), target: intern(tgt)}
		if len(fields) == 3 {
			w, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: bad weight %q", lineNo, ErrMalformedInput, fields[2])
			}
			e.weight, e.weighted = w, true
		}
		edges = append(edges, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}

	if !opts.Remap && maxID > sparseIDSlack+sparseIDFactor*int64(len(index)) {
		return nil, fmt.Errorf("%w: node id %d is too sparse for %d distinct ids, load with Remap",
			ErrMalformedInput, maxID, len(index))
	}

	nodeCount := maxID + 1
	if opts.Remap {
		nodeCount = int64(len(ids))
	} else {
		ids = make([]int64, nodeCount)
		for i := range ids {
			ids[i] = int64(i)
		}
	}

	store := NewGraphStore(nodeCount)
	for _, e := range edges {
		var props map[string]float64
		if e.weighted {
			props = map[string]float64{opts.WeightProperty: e.weight}
		}
		if err := store.AddRelationship(e.source, e.target, props); err != nil {
			return nil, err
		}
	}
	return &LoadedGraph{Store: store, OriginalIDs: ids}, nil
}
