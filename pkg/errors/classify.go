package errors

import (
	"os"
	"syscall"
)

// ClassifyFileOpenError inspects the underlying system error from opening or
// sizing the backing file and returns a StorageError with the most specific
// code it can determine, instead of a generic I/O failure.
func ClassifyFileOpenError(err error, path string) error {
	if os.IsPermission(err) {
		return NewStorageError(
			err, ErrorCodePermissionDenied, "insufficient permissions to open backing file",
		).WithPath(path).WithDetail("suggestion", "check file permissions or run with elevated privileges")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewStorageError(
					err, ErrorCodeDiskFull, "insufficient disk space to size backing file",
				).WithPath(path).WithDetail("suggestion", "free up disk space")
			case syscall.EROFS:
				return NewStorageError(
					err, ErrorCodeFilesystemReadonly, "cannot open backing file on read-only filesystem",
				).WithPath(path).WithDetail("suggestion", "remount filesystem with write permissions")
			}
		}
	}

	return NewStorageError(err, ErrorCodeIO, "failed to open backing file").WithPath(path)
}

// ClassifyMmapError wraps a failing mmap(2) syscall with the file context
// that makes the failure actionable.
func ClassifyMmapError(err error, path string, size int) error {
	return NewStorageError(err, ErrorCodeMapFailed, "failed to map backing file into memory").
		WithPath(path).
		WithDetail("size", size)
}
