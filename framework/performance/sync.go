package performance

import (
	"errors"
	"syscall"
)

// isSyncNoise reports errors returned by fsync on terminals and pipes.
func isSyncNoise(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF)
}
