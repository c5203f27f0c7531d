package filesink

import (
	"errors"
	"os"
	"syscall"

	"github.com/relex/otlp-export/base"
	"golang.org/x/sys/unix"
)

// classifyIOError maps a filesystem error to the sink error taxonomy: disk pressure and
// interruptions are retriable, path and permission problems are not
func classifyIOError(op string, err error) *base.SinkError {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.ENOSPC, unix.EDQUOT, unix.EINTR, unix.EAGAIN, unix.EBUSY:
			return base.NewTransientSinkError(op, err)
		case unix.EACCES, unix.EPERM, unix.EROFS, unix.ENOENT, unix.ENOTDIR, unix.EISDIR, unix.EBADF:
			return base.NewPermanentSinkError(op, err)
		}
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrClosed) {
		return base.NewPermanentSinkError(op, err)
	}
	return base.NewTransientSinkError(op, err)
}
