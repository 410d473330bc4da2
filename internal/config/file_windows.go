//go:build windows

package config

import (
	"os"
)

// openConfigFile opens path. Windows has no O_NOFOLLOW; creating symlinks
// there requires elevated privileges.
func openConfigFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY, 0)
}

// checkFileSecurity is a no-op on Windows, which uses ACLs instead of
// permission bits and uids.
func checkFileSecurity(_ os.FileInfo) error {
	return nil
}
