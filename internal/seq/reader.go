// Package seq reads SEQ test files: line-oriented text with ';' comments,
// scanf-style header fields and flat sequences of per-element tokens that
// hydrate vectors. Floating-point tokens carry raw IEEE-754 bit patterns in
// hex so test files can encode exact NaN payloads.
package seq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Errors returned by the reader.
var (
	// ErrMalformed indicates a token or field that does not match its format.
	ErrMalformed = errors.New("seq: malformed file")

	// ErrUnexpectedEOF indicates the file ended before the required data.
	ErrUnexpectedEOF = errors.New("seq: unexpected end of file")
)

// Reader scans a SEQ file. It implements io.RuneScanner so fmt scanning
// stops exactly where the requested fields end.
type Reader struct {
	name   string
	br     *bufio.Reader
	closer io.Closer

	// pending holds content pushed back after comment skipping.
	pending []byte
	pos     int

	line     int
	scanLine int
	lastSize int
	lastRune rune
	fromPend bool
}

// Open opens a SEQ file for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seq: failed to open %s: %w", path, err)
	}

	r := NewReader(f, path)
	r.closer = f

	return r, nil
}

// NewReader wraps rd. name labels diagnostics.
func NewReader(rd io.Reader, name string) *Reader {
	return &Reader{
		name: name,
		br:   bufio.NewReader(rd),
		line: 1,
	}
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}

	err := r.closer.Close()
	r.closer = nil

	return err
}

// Name returns the label given at construction.
func (r *Reader) Name() string {
	return r.name
}

// Line returns the 1-based line of the next unread character.
func (r *Reader) Line() int {
	return r.line
}

// ReadRune implements io.RuneReader.
func (r *Reader) ReadRune() (rune, int, error) {
	var (
		c    rune
		size int
	)

	if r.pos < len(r.pending) {
		c, size = utf8.DecodeRune(r.pending[r.pos:])
		r.pos += size
		r.fromPend = true
	} else {
		var err error

		c, size, err = r.br.ReadRune()
		if err != nil {
			r.lastSize = 0
			return 0, 0, err
		}

		r.fromPend = false
	}

	r.lastRune, r.lastSize = c, size
	if c == '\n' {
		r.line++
	}

	return c, size, nil
}

// UnreadRune implements io.RuneScanner. Only the last rune can be unread.
func (r *Reader) UnreadRune() error {
	if r.lastSize == 0 {
		return bufio.ErrInvalidUnreadRune
	}

	if r.fromPend {
		r.pos -= r.lastSize
	} else if err := r.br.UnreadRune(); err != nil {
		return err
	}

	if r.lastRune == '\n' {
		r.line--
	}

	r.lastSize = 0

	return nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	r.lastSize = 0

	if r.pos < len(r.pending) {
		n := copy(p, r.pending[r.pos:])
		r.line += strings.Count(string(r.pending[r.pos:r.pos+n]), "\n")
		r.pos += n

		return n, nil
	}

	n, err := r.br.Read(p)
	r.line += strings.Count(string(p[:n]), "\n")

	return n, err
}

// readLine returns the rest of the current line, newline included.
func (r *Reader) readLine() (string, error) {
	var sb strings.Builder

	for {
		c, _, err := r.ReadRune()
		if err != nil {
			return sb.String(), err
		}

		sb.WriteRune(c)

		if c == '\n' {
			return sb.String(), nil
		}
	}
}

// pushBack makes s the next content returned by the reader.
func (r *Reader) pushBack(s string) {
	rest := r.pending[r.pos:]
	r.pending = append([]byte(s), rest...)
	r.pos = 0
	r.lastSize = 0
	r.line -= strings.Count(s, "\n")
}

// SkipComments discards blank lines and lines whose first non-blank
// character is ';'. The first line with content is pushed back starting at
// its first non-blank character. It returns io.EOF when no content remains.
func (r *Reader) SkipComments() error {
	for {
		line, err := r.readLine()

		trimmed := strings.TrimSpace(line)
		if trimmed != "" && trimmed[0] != ';' {
			r.pushBack(strings.TrimLeft(line, " \t\r\v\f"))
			return nil
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}

			return err
		}
	}
}

// Scan skips comments and then scans whitespace-delimited fields according
// to format, as fmt.Sscanf does. It returns the number of fields assigned;
// a short count comes with an error. A file that is already exhausted
// returns 0 and io.EOF.
func (r *Reader) Scan(format string, args ...any) (int, error) {
	if err := r.SkipComments(); err != nil {
		return 0, err
	}

	line := r.line
	r.scanLine = line

	n, err := fmt.Fscanf(r, format, args...)
	if err == nil {
		return n, nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fmt.Errorf("%w: %s:%d: %d of %d fields", ErrUnexpectedEOF, r.name, line, n, len(args))
	}

	return n, fmt.Errorf("%w: %s:%d: %v", ErrMalformed, r.name, line, err)
}

// SkipLine discards the rest of the line the last Scan started on, so a
// caller can resume at the next row after a short or malformed one.
func (r *Reader) SkipLine() error {
	for r.line == r.scanLine {
		if _, _, err := r.ReadRune(); err != nil {
			return err
		}
	}

	return nil
}
