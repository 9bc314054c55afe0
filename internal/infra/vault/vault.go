package vault

import (
	"errors"
	"os"
	"strings"
)

// ErrSecretNotFound is returned when no candidate variable holds a value.
var ErrSecretNotFound = errors.New("vault: secret not found")

// SecretStore resolves credentials by key.
type SecretStore interface {
	Get(key string) (string, error)
}

// EnvStore reads secrets from the process environment. A key is looked up as
// PREFIX_KEY first and then as KEY, so FLIGHTROUTE_API_KEY wins over API_KEY.
type EnvStore struct {
	Prefix string
}

func (e EnvStore) Get(key string) (string, error) {
	if e.Prefix != "" {
		if v := strings.TrimSpace(os.Getenv(e.Prefix + "_" + key)); v != "" {
			return v, nil
		}
	}
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v, nil
	}
	return "", ErrSecretNotFound
}
