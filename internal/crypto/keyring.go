package crypto

import "os"

// Keyring provides secure key storage abstraction
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "invoicer"
	KeyName     = "store-encryption-key"

	// EnvKey overrides any stored key when set
	EnvKey = "INVOICER_DB_KEY"
)

// NewKeyring returns the best available keyring implementation.
// A key in INVOICER_DB_KEY always wins over the platform store.
func NewKeyring() Keyring {
	platform := newPlatformKeyring()
	if os.Getenv(EnvKey) != "" {
		return &envKeyring{next: platform}
	}
	return platform
}

// envKeyring reads the key from the environment and delegates writes
type envKeyring struct {
	next Keyring
}

func (k *envKeyring) GetKey() (string, error) {
	return os.Getenv(EnvKey), nil
}

func (k *envKeyring) SetKey(password string) error {
	return k.next.SetKey(password)
}

func (k *envKeyring) DeleteKey() error {
	return k.next.DeleteKey()
}

func (k *envKeyring) IsAvailable() bool {
	return true
}
