// Package quantsec seals encoded quantity records with an AEAD. The sealed form is
//
//	"QSEC" | version | alg | key id | nonce | header JSON | ciphertext
//
// with every field after the version length-prefixed by a uvarint. The header JSON is
// the additional authenticated data, so the key id and algorithm cannot be swapped.
package quantsec

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

const (
	magic = "QSEC"
	ver01 = 0x01
)

var (
	ErrUnsupportedAlg = errors.New("quantsec: unsupported AEAD algorithm")
	ErrKeyNotFound    = errors.New("quantsec: key not found")
	ErrBadKey         = errors.New("quantsec: key length mismatch")
	ErrBadMagic       = errors.New("quantsec: not a sealed record")
	ErrHeaderMismatch = errors.New("quantsec: AAD/header mismatch")
	ErrDecrypt        = errors.New("quantsec: decryption failed")
)

type Header struct {
	Alg   Alg               `json:"alg"`
	KeyID string            `json:"kid"`
	Extra map[string]string `json:"extra,omitempty"`
}

// Seal encodes v with the binary codec and encrypts it.
func Seal(v any, hdr Header, kr Keyring) ([]byte, error) {
	pt, err := quant.EncodeBinary(v)
	if err != nil {
		return nil, err
	}
	return SealBytes(pt, hdr, kr)
}

// SealBytes encrypts an already encoded payload.
func SealBytes(pt []byte, hdr Header, kr Keyring) ([]byte, error) {
	suite, err := suiteFor(hdr.Alg)
	if err != nil {
		return nil, err
	}
	key, err := kr.Get(hdr.KeyID)
	if err != nil {
		return nil, err
	}
	if len(key) != suite.keyLen {
		return nil, fmt.Errorf("%w: %d bytes for %s", ErrBadKey, len(key), hdr.Alg)
	}
	nonce := make([]byte, suite.nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return seal(suite, key, nonce, pt, hdr)
}

func seal(suite aeadSuite, key, nonce, pt []byte, hdr Header) ([]byte, error) {
	a, err := suite.newAEAD(key)
	if err != nil {
		return nil, err
	}
	if hdr.Extra == nil {
		hdr.Extra = map[string]string{}
	}
	aad, err := json.Marshal(hdr)
	if err != nil {
		return nil, err
	}
	ct := a.Seal(nil, nonce, pt, aad)

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(ver01)
	for _, b := range [][]byte{[]byte(hdr.Alg), []byte(hdr.KeyID), nonce, aad, ct} {
		writeVarBytes(&buf, b)
	}
	return buf.Bytes(), nil
}

// Open decrypts a sealed record and decodes the payload.
func Open(sealed []byte, kr Keyring) (any, Header, error) {
	pt, hdr, err := OpenBytes(sealed, kr)
	if err != nil {
		return nil, Header{}, err
	}
	v, err := quant.DecodeBinary(pt)
	return v, hdr, err
}

// OpenEnvelope is Open for payloads that must be a record envelope.
func OpenEnvelope(sealed []byte, kr Keyring) (quant.Envelope, Header, error) {
	v, hdr, err := Open(sealed, kr)
	if err != nil {
		return quant.Envelope{}, Header{}, err
	}
	env, ok := v.(quant.Envelope)
	if !ok {
		return quant.Envelope{}, Header{}, fmt.Errorf("%w: payload is %T", quant.ErrBadEnvelope, v)
	}
	return env, hdr, nil
}

// IsSealed reports whether b starts with the sealed-record magic.
func IsSealed(b []byte) bool { return bytes.HasPrefix(b, []byte(magic)) }

// OpenBytes decrypts a sealed record and returns the raw payload.
func OpenBytes(sealed []byte, kr Keyring) ([]byte, Header, error) {
	rd := bufio.NewReader(bytes.NewReader(sealed))
	m := make([]byte, len(magic))
	if _, err := io.ReadFull(rd, m); err != nil {
		return nil, Header{}, err
	}
	if string(m) != magic {
		return nil, Header{}, ErrBadMagic
	}
	ver, err := rd.ReadByte()
	if err != nil {
		return nil, Header{}, err
	}
	if ver != ver01 {
		return nil, Header{}, fmt.Errorf("quantsec: unsupported version %d", ver)
	}
	var fields [5][]byte
	for i := range fields {
		if fields[i], err = readVarBytes(rd, len(sealed)); err != nil {
			return nil, Header{}, err
		}
	}
	alg, keyID, nonce, aad, ct := fields[0], fields[1], fields[2], fields[3], fields[4]

	var hdr Header
	if err := json.Unmarshal(aad, &hdr); err != nil {
		return nil, Header{}, err
	}
	if hdr.KeyID != string(keyID) || string(alg) != string(hdr.Alg) {
		return nil, Header{}, ErrHeaderMismatch
	}
	suite, err := suiteFor(hdr.Alg)
	if err != nil {
		return nil, Header{}, err
	}
	key, err := kr.Get(hdr.KeyID)
	if err != nil {
		return nil, Header{}, err
	}
	if len(key) != suite.keyLen {
		return nil, Header{}, ErrBadKey
	}
	a, err := suite.newAEAD(key)
	if err != nil {
		return nil, Header{}, err
	}
	pt, err := a.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return pt, hdr, nil
}

func writeVarBytes(w *bytes.Buffer, b []byte) {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(b)))
	w.Write(hdr[:n])
	w.Write(b)
}

func readVarBytes(r *bufio.Reader, max int) ([]byte, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(max) {
		return nil, fmt.Errorf("quantsec: field of %d bytes in a %d byte record", n, max)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
