package crypto

import (
	"errors"
	"fmt"
	"os"
)

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	IsAvailable() bool
}

const (
	// EnvKey holds the store key where no system keyring is available
	EnvKey = "BILLBOOK_DB_KEY"

	ServiceName = "billbook"
	KeyName     = "store-encryption-key"
)

// ErrKeyNotFound is returned when no store key has been configured yet
var ErrKeyNotFound = errors.New("store encryption key not found")

// NewKeyring returns the best available keyring implementation. BILLBOOK_DB_KEY,
// when set, takes precedence over the platform keyring.
func NewKeyring() Keyring {
	return &envFirst{platform: newPlatformKeyring()}
}

type envFirst struct {
	platform Keyring
}

func (k *envFirst) GetKey() (string, error) {
	if key := os.Getenv(EnvKey); key != "" {
		return key, nil
	}
	return k.platform.GetKey()
}

func (k *envFirst) SetKey(password string) error {
	return k.platform.SetKey(password)
}

func (k *envFirst) IsAvailable() bool {
	return os.Getenv(EnvKey) != "" || k.platform.IsAvailable()
}

// Resolve returns the stored key. When none exists it asks prompt for a new one
// and stores it. A keyring that cannot store keys fails the first run without prompting.
func Resolve(kr Keyring, prompt func() (string, error)) (string, error) {
	key, err := kr.GetKey()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return "", err
	}
	if !kr.IsAvailable() {
		return "", err
	}

	key, err = prompt()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}
	if err := kr.SetKey(key); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return key, nil
}
