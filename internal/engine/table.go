package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-testeng/internal/seq"
)

// ParseLevels parses a '|' separated list of fullness levels, such as
// "brief|full". "all" selects every level.
func ParseLevels(s string) (Fullness, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return AllLevels, nil
	}

	var f Fullness

	for _, part := range strings.Split(s, "|") {
		l, err := ParseFullness(part)
		if err != nil {
			return 0, err
		}

		f |= l
	}

	return f, nil
}

func (m Mode) String() string {
	switch m {
	case 0, ModeOutOfPlace | ModeInPlace:
		return "-"
	case ModeOutOfPlace:
		return "out"
	case ModeInPlace:
		return "in"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses "out", "in", "in|out" or "-" for both.
func ParseMode(s string) (Mode, error) {
	var m Mode

	if s == "-" {
		return 0, nil
	}

	for _, part := range strings.Split(s, "|") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "out":
			m |= ModeOutOfPlace
		case "in":
			m |= ModeInPlace
		default:
			return 0, fmt.Errorf("engine: unknown call mode %q", s)
		}
	}

	return m, nil
}

// ReadTable reads a table file. Each row names a function, its SEQ file,
// the levels it runs at, its call modes and a block exponent override:
//
//	<function> <file> <levels> <modes> <blockExp>
//
// Relative file names are resolved against the table's directory.
func ReadTable(path string) (Table, error) {
	t := Table{Dir: filepath.Dir(path)}

	rd, err := seq.Open(path)
	if err != nil {
		return t, err
	}
	defer rd.Close()

	for {
		var (
			row            TableRow
			levels, modes string
		)

		_, err := rd.Scan("%s %s %s %s %d", &row.Function, &row.File, &levels, &modes, &row.Desc.BlockExp)
		if errors.Is(err, io.EOF) {
			return t, nil
		}

		if err != nil {
			return t, fmt.Errorf("%w: %w", ErrMalformedSeq, err)
		}

		if row.Levels, err = ParseLevels(levels); err != nil {
			return t, fmt.Errorf("%w: %s:%d: %w", ErrMalformedSeq, path, rd.Line(), err)
		}

		if row.Desc.Modes, err = ParseMode(modes); err != nil {
			return t, fmt.Errorf("%w: %s:%d: %w", ErrMalformedSeq, path, rd.Line(), err)
		}

		t.Rows = append(t.Rows, row)
	}
}

// WriteTable writes t in the format ReadTable reads.
func WriteTable(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)

	fmt.Fprintln(w, "; function file levels modes blockExp")

	for _, r := range t.Rows {
		fmt.Fprintf(w, "%s %s %s %s %d\n", r.Function, r.File, r.Levels, r.Desc.Modes, r.Desc.BlockExp)
	}

	if err := w.Flush(); err != nil {
		return errors.Join(err, f.Close())
	}

	return f.Close()
}
