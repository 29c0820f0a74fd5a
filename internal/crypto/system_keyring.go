package crypto

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// systemKeyring keeps the store key in the OS credential store under the
// invoicer service. Every failure names INVOICER_DB_KEY, the way out on
// machines without a usable credential store.
type systemKeyring struct {
	store string // user-facing name of the credential store
}

func (k *systemKeyring) GetKey() (string, error) {
	key, err := keyring.Get(ServiceName, KeyName)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no invoice store key in the %s (first run, or set %s): %w", k.store, EnvKey, err)
		}
		return "", fmt.Errorf("failed to read invoice store key from the %s (set %s to bypass it): %w", k.store, EnvKey, err)
	}
	if key == "" {
		return "", errors.New("invoice store key is empty")
	}
	return key, nil
}

func (k *systemKeyring) SetKey(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if err := keyring.Set(ServiceName, KeyName, password); err != nil {
		return fmt.Errorf("failed to save invoice store key in the %s (set %s instead): %w", k.store, EnvKey, err)
	}
	return nil
}

func (k *systemKeyring) DeleteKey() error {
	if err := keyring.Delete(ServiceName, KeyName); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no invoice store key in the %s: %w", k.store, err)
		}
		return fmt.Errorf("failed to delete invoice store key from the %s: %w", k.store, err)
	}
	return nil
}

func (k *systemKeyring) IsAvailable() bool {
	checkKey := KeyName + ".availability"
	if err := keyring.Set(ServiceName, checkKey, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(ServiceName, checkKey)
	return true
}
