//go:build !windows

package config

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// openConfigFile opens path with O_NOFOLLOW so a symlinked config is rejected.
func openConfigFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NOFOLLOW, 0)
	if err != nil {
		if errors.Is(err, syscall.ELOOP) {
			return nil, ErrConfigSymlink
		}
		return nil, err
	}
	return f, nil
}

// checkFileSecurity rejects a config writable by group or others or owned
// by another user.
func checkFileSecurity(info os.FileInfo) error {
	if perm := info.Mode().Perm(); perm&0022 != 0 {
		return fmt.Errorf("%w: %o", ErrInsecureConfig, perm)
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if ok && stat.Uid != uint32(os.Getuid()) {
		return ErrConfigNotOwnedByUser
	}
	return nil
}
