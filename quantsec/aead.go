package quantsec

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Alg names the AEAD used to seal a record.
type Alg string

const (
	AlgXChaCha20Poly1305 Alg = "XCHACHA20-POLY1305"
	AlgAES256GCM         Alg = "AES-256-GCM"
)

type aeadSuite struct {
	alg      Alg
	keyLen   int
	nonceLen int
	newAEAD  func(key []byte) (cipher.AEAD, error)
}

var suites = map[Alg]aeadSuite{
	AlgXChaCha20Poly1305: {
		alg:      AlgXChaCha20Poly1305,
		keyLen:   chacha20poly1305.KeySize,
		nonceLen: chacha20poly1305.NonceSizeX,
		newAEAD:  func(key []byte) (cipher.AEAD, error) { return chacha20poly1305.NewX(key) },
	},
	AlgAES256GCM: {
		alg:      AlgAES256GCM,
		keyLen:   32,
		nonceLen: 12,
		newAEAD: func(key []byte) (cipher.AEAD, error) {
			block, err := aes.NewCipher(key)
			if err != nil {
				return nil, err
			}
			return cipher.NewGCM(block)
		},
	},
}

// ParseAlg accepts the names used in headers and on the command line.
func ParseAlg(s string) (Alg, error) {
	if _, ok := suites[Alg(s)]; ok {
		return Alg(s), nil
	}
	switch s {
	case "xchacha", "xchacha20poly1305":
		return AlgXChaCha20Poly1305, nil
	case "aes", "aesgcm", "aes256gcm":
		return AlgAES256GCM, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAlg, s)
}

func suiteFor(alg Alg) (aeadSuite, error) {
	s, ok := suites[alg]
	if !ok {
		return aeadSuite{}, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
	return s, nil
}
