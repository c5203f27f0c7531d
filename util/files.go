package util

import (
	"os"

	"golang.org/x/sys/unix"
)

// FileIdentity identifies a file on disk independently of its path
//
// Two names refer to the same file iff their identities are equal; used to detect
// when the file under a watched path has been renamed or replaced, e.g. by logrotate.
type FileIdentity struct {
	Dev uint64
	Ino uint64
}

// GetFileIdentity queries the identity of the file at the given path
func GetFileIdentity(path string) (FileIdentity, error) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return FileIdentity{}, err
	}
	return FileIdentity{Dev: uint64(stat.Dev), Ino: uint64(stat.Ino)}, nil
}

// GetOpenFileIdentity queries the identity of an open file
func GetOpenFileIdentity(file *os.File) (FileIdentity, error) {
	var stat unix.Stat_t
	if err := unix.Fstat(int(file.Fd()), &stat); err != nil {
		return FileIdentity{}, err
	}
	return FileIdentity{Dev: uint64(stat.Dev), Ino: uint64(stat.Ino)}, nil
}

// Fdatasync flushes written data of an open file to storage, without flushing unneeded metadata
func Fdatasync(file *os.File) error {
	return unix.Fdatasync(int(file.Fd()))
}
