package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when a read is interrupted by its context.
var ErrInputCancelled = errors.New("input canceled")

type lineResult struct {
	line string
	err  error
}

// LineReader reads trimmed lines and gives up when the context is done. A
// single goroutine owns the underlying reader; a line that arrives after a
// cancelled read is kept for the next one.
type LineReader struct {
	reader *bufio.Reader
	once   sync.Once
	lines  chan lineResult
	err    error
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		reader: bufio.NewReader(r),
		lines:  make(chan lineResult),
	}
}

func (r *LineReader) loop() {
	defer close(r.lines)
	for {
		line, err := r.reader.ReadString('\n')
		if line != "" {
			r.lines <- lineResult{line: line}
		}
		if err != nil {
			r.err = err
			return
		}
	}
}

// ReadLine returns the next line without surrounding whitespace. A last line
// without newline is returned with a nil error; the read error follows.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	r.once.Do(func() { go r.loop() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res, ok := <-r.lines:
		if !ok {
			return "", r.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
