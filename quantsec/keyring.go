package quantsec

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// Keyring resolves a key id to key bytes.
type Keyring interface {
	Get(keyID string) ([]byte, error)
}

type StaticKeyring map[string][]byte

func (s StaticKeyring) Get(keyID string) ([]byte, error) {
	k, ok := s[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, keyID)
	}
	return k, nil
}

// EnvKeyring reads hex keys from environment variables named Prefix + key id, so
// key "k1" with prefix "QUANT_KEY_" comes from QUANT_KEY_K1.
type EnvKeyring struct{ Prefix string }

func (e EnvKeyring) Get(keyID string) ([]byte, error) {
	v, ok := os.LookupEnv(e.Prefix + strings.ToUpper(keyID))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, keyID)
	}
	k, err := hex.DecodeString(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("quantsec: key %q is not hex: %w", keyID, err)
	}
	return k, nil
}
