package engine

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Sample is the record type of a reference data stream: int16 PCM for
// inputs, float64 for golden outputs.
type Sample interface {
	int16 | float64
}

// stream reads fixed-size little-endian frames from a binary file.
type stream[T Sample] struct {
	name  string
	f     *os.File
	r     *bufio.Reader
	frame int
}

func openStream[T Sample](path string) (*stream[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSeq, err)
	}

	return &stream[T]{name: path, f: f, r: bufio.NewReader(f)}, nil
}

// next fills dst with the next frame. It returns false at a clean end of
// file; a partial frame is malformed.
func (s *stream[T]) next(dst []T) (bool, error) {
	err := binary.Read(s.r, binary.LittleEndian, dst)

	switch {
	case err == nil:
		s.frame++
		return true, nil
	case errors.Is(err, io.EOF):
		return false, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return false, fmt.Errorf("%w: %s: frame %d is short", ErrMalformedSeq, s.name, s.frame)
	default:
		return false, fmt.Errorf("%s: %w", s.name, err)
	}
}

func (s *stream[T]) Close() error {
	if s == nil || s.f == nil {
		return nil
	}

	err := s.f.Close()
	s.f = nil

	return err
}

// WriteStream appends data to w in the layout the driver reads.
func WriteStream[T Sample](w io.Writer, data []T) error {
	return binary.Write(w, binary.LittleEndian, data)
}

// WriteStreamFile creates path holding data.
func WriteStreamFile[T Sample](path string, data []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)

	if err := WriteStream(bw, data); err != nil {
		return errors.Join(err, f.Close())
	}

	if err := bw.Flush(); err != nil {
		return errors.Join(err, f.Close())
	}

	return f.Close()
}
