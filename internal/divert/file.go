package divert

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/SmitUplenchwar2687/relval/internal/lineio"
)

// fileSink writes to an inherited descriptor or an opened path.
type fileSink struct {
	f     *os.File
	w     *lineio.Writer
	close bool
}

func (s *fileSink) WriteLine(_ context.Context, line []byte) error {
	return s.w.WriteLine(line)
}

func (s *fileSink) Close() error {
	if !s.close {
		return nil
	}
	return s.f.Close()
}

// openDescriptor adopts an inherited descriptor after checking that it is
// open for writing. The standard streams are never closed.
func openDescriptor(fd, retries int) (Sink, error) {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, fmt.Errorf("descriptor %d is not open: %w", fd, err)
	}
	if flags&unix.O_ACCMODE == unix.O_RDONLY {
		return nil, fmt.Errorf("descriptor %d is not open for writing", fd)
	}
	f := os.NewFile(uintptr(fd), fmt.Sprintf("fd%d", fd))
	return &fileSink{f: f, w: lineio.NewWriter(f, retries), close: fd > 2}, nil
}

// openPath creates or truncates path for writing.
func openPath(path string, retries int) (Sink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f, w: lineio.NewWriter(f, retries), close: true}, nil
}
