// Package procedures runs graph algorithms against named graphs and
// delivers their results in one of four modes.
package procedures

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-graphalgo/pkg/algorithms"
)

// Mode selects how a procedure delivers its result.
type Mode int

const (
	// ModeStream returns one row per node.
	ModeStream Mode = iota
	// ModeWrite hands the rows to the runner's Exporter.
	ModeWrite
	// ModeMutate stores the result as a node property of the graph.
	ModeMutate
	// ModeStats returns the summary only.
	ModeStats
)

var modeNames = map[Mode]string{
	ModeStream: "stream",
	ModeWrite:  "write",
	ModeMutate: "mutate",
	ModeStats:  "stats",
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream", "":
		return ModeStream, nil
	case "write":
		return ModeWrite, nil
	case "mutate":
		return ModeMutate, nil
	case "stats":
		return ModeStats, nil
	}
	return ModeStream, &algorithms.ConfigError{
		Algorithm: "procedure",
		Parameter: "mode",
		Value:     s,
		Reason:    "expected stream, write, mutate or stats",
	}
}

// UnmarshalText lets modes be read from YAML.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalText writes the mode name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
