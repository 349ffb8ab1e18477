package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jward/liana"
)

const usageMessage = `
Usage:
    @ ignore keyword1 [keyword2] ...    add ignore keywords
    @ filter keyword1 [keyword2] ...    add filter keywords
    @ del_ig keyword1 [keyword2] ...    del ignore keywords
    @ del_fi keyword1 [keyword2] ...    del filter keywords
    @ depth  n                          set print depth (0 < n < max)
    @ show                              show query config
    @ reset                             reset query config
    ? name                              paths from name to filter keywords
    ! name                              call tree without ignore keywords
    & name                              callers of name, recursively
    name                                call tree (or prefix search)`

// repl reads one command per line and dispatches it against the session.
// Malformed commands print usage or an inline error; the loop only ends
// on EOF.
func repl(s *liana.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ">>> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		dispatch(s, line, out)
	}
}

func dispatch(s *liana.Session, line string, out io.Writer) {
	switch {
	case strings.HasPrefix(line, "@"):
		command(s, line, out)
	case strings.HasPrefix(line, "?"):
		printBlock(out, s.FilteredTo(queryArg(line)))
	case strings.HasPrefix(line, "!"):
		printBlock(out, s.WithoutKeywords(queryArg(line)))
	case strings.HasPrefix(line, "&"):
		printBlock(out, s.ReferencesOf(queryArg(line)))
	default:
		printBlock(out, s.Direct(line))
	}
}

// queryArg strips the one-character query prefix.
func queryArg(line string) string {
	return strings.TrimSpace(line[1:])
}

func printBlock(out io.Writer, block string) {
	if block != "" {
		fmt.Fprintln(out, block)
	}
}

func command(s *liana.Session, line string, out io.Writer) {
	fields := strings.Fields(line)
	// Accept both "@ show" and "@show".
	if fields[0] == "@" {
		fields = fields[1:]
	} else {
		fields[0] = strings.TrimPrefix(fields[0], "@")
	}
	if len(fields) == 0 {
		fmt.Fprintln(out, usageMessage)
		return
	}

	switch fields[0] {
	case "reset":
		s.Reset()
		fmt.Fprintln(out, "reset finish")
	case "show":
		fmt.Fprintln(out, s.Show())
	case "filter":
		if len(fields) < 2 {
			fmt.Fprintln(out, usageMessage)
			return
		}
		s.AddFilters(fields[1:]...)
		fmt.Fprintln(out, s.Show())
	case "ignore":
		if len(fields) < 2 {
			fmt.Fprintln(out, usageMessage)
			return
		}
		s.AddIgnores(fields[1:]...)
		fmt.Fprintln(out, s.Show())
	case "del_fi":
		if err := s.RemoveFilters(fields[1:]...); err != nil {
			fmt.Fprintln(out, err)
		}
	case "del_ig":
		if err := s.RemoveIgnores(fields[1:]...); err != nil {
			fmt.Fprintln(out, err)
		}
	case "depth":
		if len(fields) != 2 {
			fmt.Fprintln(out, usageMessage)
			return
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintln(out, usageMessage)
			return
		}
		if err := s.SetDepth(n); err != nil {
			fmt.Fprintln(out, usageMessage)
		}
	default:
		fmt.Fprintln(out, usageMessage)
	}
}
