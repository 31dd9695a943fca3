package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component names the emitting subsystem.
func Component(name string) Field {
	return String("component", name)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}

// Algorithm-run fields

func Algorithm(name string) Field {
	return String("algorithm", name)
}

func JobID(id string) Field {
	return String("job_id", id)
}

func GraphName(name string) Field {
	return String("graph", name)
}

func Mode(mode string) Field {
	return String("mode", mode)
}

func NodeID(id int64) Field {
	return Int64("node_id", id)
}

func NodeCount(n int64) Field {
	return Int64("node_count", n)
}

func RelationshipCount(n int64) Field {
	return Int64("relationship_count", n)
}

// HierarchyLevel is the Louvain level being computed.
func HierarchyLevel(level int) Field {
	return Int("level", level)
}

func Iteration(i int) Field {
	return Int("iteration", i)
}

func Modularity(q float64) Field {
	return Float64("modularity", q)
}

func CommunityCount(n int64) Field {
	return Int64("community_count", n)
}

func Concurrency(n int) Field {
	return Int("concurrency", n)
}
