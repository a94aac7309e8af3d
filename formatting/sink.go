package formatting

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// ErrSinkClosed is returned by Write after the sink has been closed.
var ErrSinkClosed = errors.New("formatting: write to closed sink")

// StreamError reports a failure while producing or collecting document
// bytes. Op is "encode", "write" or "finalize".
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("formatting: document stream %s: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// Sink accumulates written chunks and concatenates them on demand. Each
// instance belongs to a single render call and is not safe for concurrent use.
type Sink struct {
	chunks [][]byte
	size   int
	closed bool
}

func (s *Sink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrSinkClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	s.chunks = append(s.chunks, chunk)
	s.size += len(p)
	return len(p), nil
}

func (s *Sink) Close() error {
	s.closed = true
	return nil
}

func (s *Sink) Len() int { return s.size }

func (s *Sink) Chunks() int { return len(s.chunks) }

// Bytes returns every chunk written so far, in order, as one buffer.
func (s *Sink) Bytes() []byte {
	out := make([]byte, 0, s.size)
	for _, c := range s.chunks {
		out = append(out, c...)
	}
	return out
}

// streamInto runs produce in its own goroutine, writing through a buffered
// writer into a pipe, and copies the pipe into dst until the producer
// finishes. It returns only after the producer goroutine has exited. A
// producer error is reported with Op "encode", a dst error with Op "write".
func streamInto(dst io.Writer, bufSize int, produce func(w io.Writer) error) error {
	pr, pw := io.Pipe()
	defer pr.Close()

	var g errgroup.Group
	g.Go(func() error {
		bw := bufio.NewWriterSize(pw, bufSize)
		err := produce(bw)
		if err == nil {
			err = bw.Flush()
		}
		// A nil error closes the pipe with io.EOF.
		pw.CloseWithError(err)
		return err
	})

	buf := make([]byte, bufSize)
	for {
		n, rerr := pr.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				pr.CloseWithError(werr)
				_ = g.Wait()
				return &StreamError{Op: "write", Err: werr}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = g.Wait()
			return &StreamError{Op: "encode", Err: rerr}
		}
	}

	if err := g.Wait(); err != nil {
		return &StreamError{Op: "encode", Err: err}
	}
	return nil
}
