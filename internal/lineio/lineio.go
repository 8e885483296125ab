// Package lineio reads newline-terminated records and writes them back out
// one write per line.
package lineio

import (
	"bufio"
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const (
	DefaultRetries = 3
	retryBackoff   = time.Millisecond
)

// Reader returns lines without their trailing newline. A final line without
// a newline is still returned.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// ReadLine returns the next line or io.EOF once input is exhausted. The
// returned slice is owned by the caller.
func (r *Reader) ReadLine() ([]byte, error) {
	line, err := r.br.ReadBytes('\n')
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return line[:len(line)-1], nil
	}
	if err == io.EOF && len(line) > 0 {
		return line, nil
	}
	return line, err
}

// Writer writes each line followed by a newline in a single write call,
// retrying transient failures a bounded number of times.
type Writer struct {
	w       io.Writer
	retries int
	buf     []byte
}

// NewWriter wraps w. retries < 0 means DefaultRetries.
func NewWriter(w io.Writer, retries int) *Writer {
	if retries < 0 {
		retries = DefaultRetries
	}
	return &Writer{w: w, retries: retries}
}

// WriteLine writes line and a newline.
func (w *Writer) WriteLine(line []byte) error {
	w.buf = append(append(w.buf[:0], line...), '\n')

	p := w.buf
	backoff := retryBackoff
	failed := 0
	for {
		n, err := w.w.Write(p)
		p = p[n:]
		if len(p) == 0 {
			return nil
		}
		if err == nil {
			if n == 0 {
				return io.ErrShortWrite
			}
			// Partial progress is not a failure.
			continue
		}
		if !Transient(err) || failed >= w.retries {
			return err
		}
		failed++
		time.Sleep(backoff)
		backoff *= 2
	}
}

// Transient reports whether a write error is worth retrying.
func Transient(err error) bool {
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.ENOBUFS) ||
		errors.Is(err, os.ErrDeadlineExceeded)
}

// Unrecoverable reports whether a write error means the sink is gone.
func Unrecoverable(err error) bool {
	return errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, unix.EPIPE) ||
		errors.Is(err, unix.EBADF)
}
