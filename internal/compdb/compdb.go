// Package compdb reads JSON compilation databases and derives the parser
// arguments for each entry.
package compdb

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one compilation database record. Either Command or Arguments
// is present; see the JSON Compilation Database format.
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command"`
	Arguments []string `json:"arguments"`
}

// Load reads a compilation database from path. A path not ending in
// ".json" is treated as a single source file and wrapped in a one-entry
// database with no compiler command.
func Load(path string) ([]Entry, error) {
	if !strings.HasSuffix(path, ".json") {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("compdb: source file: %w", err)
		}
		return []Entry{{File: path}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compdb: read %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("compdb: parse %s: %w", path, err)
	}
	return entries, nil
}

// Args returns the entry's parser arguments: the compiler command line
// filtered down to include paths, language standard, and macro defines,
// with extra user flags appended after the filtered set.
func (e Entry) Args(extra []string) []string {
	raw := e.Arguments
	if len(raw) == 0 && e.Command != "" {
		raw = strings.Fields(e.Command)
	}
	var args []string
	for _, a := range raw {
		if KeepArg(a) {
			args = append(args, a)
		}
	}
	return append(args, extra...)
}

// KeepArg reports whether a compiler flag is relevant to parsing. Only
// -I*, -std=* and -D* survive; warning flags, optimization levels and the
// like are discarded.
func KeepArg(arg string) bool {
	return strings.HasPrefix(arg, "-I") ||
		strings.HasPrefix(arg, "-std=") ||
		strings.HasPrefix(arg, "-D")
}
