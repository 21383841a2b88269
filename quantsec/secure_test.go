package quantsec_test

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/quantsec"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func sampleRecord() quant.Envelope {
	return quant.NewEnvelope("measurement", map[string]any{
		"length": quant.MakeQuantity(quant.MustDec("4.52"), quant.Metre, quant.MustDec("0.02")),
		"runs":   int64(3),
	})
}

func TestSealOpen(t *testing.T) {
	for _, alg := range []quantsec.Alg{quantsec.AlgXChaCha20Poly1305, quantsec.AlgAES256GCM} {
		t.Run(string(alg), func(t *testing.T) {
			env := sampleRecord()
			kr := quantsec.StaticKeyring{"k1": testKey()}
			hdr := quantsec.Header{Alg: alg, KeyID: "k1", Extra: map[string]string{"ctx": "demo"}}

			blob, err := quantsec.Seal(env, hdr, kr)
			require.NoError(t, err)
			require.True(t, quantsec.IsSealed(blob))

			out, outHdr, err := quantsec.OpenEnvelope(blob, kr)
			require.NoError(t, err)
			require.Equal(t, "k1", outHdr.KeyID)
			require.Equal(t, "demo", outHdr.Extra["ctx"])

			js1, _ := quant.MarshalJSONCompat(env, true)
			js2, _ := quant.MarshalJSONCompat(out, true)
			require.JSONEq(t, string(js1), string(js2))
		})
	}
}

func TestOpenFailures(t *testing.T) {
	kr := quantsec.StaticKeyring{"k1": testKey()}
	hdr := quantsec.Header{Alg: quantsec.AlgXChaCha20Poly1305, KeyID: "k1"}
	blob, err := quantsec.Seal(sampleRecord(), hdr, kr)
	require.NoError(t, err)

	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xff
	_, _, err = quantsec.Open(tampered, kr)
	require.ErrorIs(t, err, quantsec.ErrDecrypt)

	other := quantsec.StaticKeyring{"k1": make([]byte, 32)}
	_, _, err = quantsec.Open(blob, other)
	require.ErrorIs(t, err, quantsec.ErrDecrypt)

	_, _, err = quantsec.Open(blob, quantsec.StaticKeyring{})
	require.ErrorIs(t, err, quantsec.ErrKeyNotFound)

	_, _, err = quantsec.Open([]byte("JSEC\x01"), kr)
	require.ErrorIs(t, err, quantsec.ErrBadMagic)

	_, err = quantsec.Seal(sampleRecord(), quantsec.Header{Alg: "ROT13", KeyID: "k1"}, kr)
	require.ErrorIs(t, err, quantsec.ErrUnsupportedAlg)

	_, err = quantsec.Seal(sampleRecord(), hdr, quantsec.StaticKeyring{"k1": []byte("short")})
	require.ErrorIs(t, err, quantsec.ErrBadKey)
}

func TestEnvKeyring(t *testing.T) {
	t.Setenv("QUANT_KEY_K1", strings.Repeat("ab", 32))
	kr := quantsec.EnvKeyring{Prefix: "QUANT_KEY_"}
	k, err := kr.Get("k1")
	require.NoError(t, err)
	require.Len(t, k, 32)

	_, err = kr.Get("missing")
	require.ErrorIs(t, err, quantsec.ErrKeyNotFound)

	alg, err := quantsec.ParseAlg("aes")
	require.NoError(t, err)
	require.Equal(t, quantsec.AlgAES256GCM, alg)
}

// Deterministic golden using a fixed nonce of 24 zero bytes. Not for production.
func TestGoldenSealed(t *testing.T) {
	pt, err := quant.EncodeBinary(map[string]any{
		"length": quant.Metre.Of("4.52"),
		"runs":   int64(3),
	})
	require.NoError(t, err)

	key := testKey()
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	aead, err := chacha20poly1305.NewX(key)
	require.NoError(t, err)

	hdr := quantsec.Header{Alg: quantsec.AlgXChaCha20Poly1305, KeyID: "k1", Extra: map[string]string{"ctx": "golden"}}
	aad, err := json.Marshal(hdr)
	require.NoError(t, err)
	ct := aead.Seal(nil, nonce, pt, aad)

	var buf bytes.Buffer
	buf.WriteString("QSEC")
	buf.WriteByte(0x01)
	for _, b := range [][]byte{[]byte(hdr.Alg), []byte(hdr.KeyID), nonce, aad, ct} {
		writeVarBytes(&buf, b)
	}
	sec := buf.Bytes()

	path := filepath.Join("testdata", "measurement.sec.golden.b64")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = os.MkdirAll(filepath.Dir(path), 0o755)
		require.NoError(t, os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(sec)+"\n"), 0o644))
	}
	wantB64, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(wantB64)))
	require.NoError(t, err)
	require.Equal(t, want, sec, "sealed golden mismatch")

	out, hdr2, err := quantsec.Open(sec, quantsec.StaticKeyring{"k1": key})
	require.NoError(t, err)
	require.Equal(t, "k1", hdr2.KeyID)
	q := out.(map[string]any)["length"].(quant.Quantity)
	require.Equal(t, "4.52 m", q.String())
}

func writeVarBytes(w *bytes.Buffer, b []byte) {
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(b)))
	w.Write(hdr[:n])
	w.Write(b)
}
