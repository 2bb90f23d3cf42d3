//go:build !darwin

package crypto

import (
	"errors"
	"fmt"
)

// envOnly is used where no system keyring is wired; the key lives only in BILLBOOK_DB_KEY,
// which envFirst has already consulted.
type envOnly struct{}

func newPlatformKeyring() Keyring {
	return &envOnly{}
}

func (k *envOnly) GetKey() (string, error) {
	return "", fmt.Errorf("%w: set the %s environment variable", ErrKeyNotFound, EnvKey)
}

// SetKey cannot persist anything; the caller is told to export the variable
func (k *envOnly) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	return fmt.Errorf("keyring not available on this platform: export %s before running billbook", EnvKey)
}

func (k *envOnly) IsAvailable() bool {
	return false
}
