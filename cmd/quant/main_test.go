package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command line against an empty config file so that a quant.toml
// lying around the checkout cannot change the output.
func run(t *testing.T, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "quant.toml")
	require.NoError(t, os.WriteFile(cfg, nil, 0o644))
	return runWith(t, cfg, stdin, args...)
}

func runWith(t *testing.T, cfg string, stdin []byte, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"convert", []string{"convert", "1 mi", "ft"}, "5280 ft"},
		{"convert prefixed", []string{"convert", "1 km", "m"}, "1000 m"},
		{"convert scale", []string{"convert", "--scale", "100 °C", "°F"}, "212.00 °F"},
		{"convert to log", []string{"convert", "1 W", "dBm"}, "30 dBm"},
		{"base", []string{"--ascii", "base", "1 kW h"}, "3600000 m2 kg s-2"},
		{"round figures", []string{"round", "--method", "figures", "--digits", "2", "9.8765 m"}, "9.9 m"},
		{"calc divide", []string{"calc", "3 m", "/", "2 s"}, "1.5 m s⁻¹"},
		{"calc power", []string{"calc", "2 m", "^", "2"}, "4 m²"},
		{"parens", []string{"--parens", "base", "4.52 ± 0.02 m"}, "4.52(2) m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, nil, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestCommandErrors(t *testing.T) {
	for _, args := range [][]string{
		{"convert", "1 m", "s"},
		{"convert", "1 m", "furlongs per fortnight"},
		{"calc", "1 m", "%", "2 m"},
		{"calc", "1 m", "+", "2 s"},
		{"round", "--method", "sideways", "1 m"},
		{"convert", "--scale", "1 m", "°C"},
	} {
		_, err := run(t, nil, args...)
		assert.Error(t, err, "%v", args)
	}
	_, err := run(t, nil, "calc", "1 m", "%", "2 m")
	require.ErrorIs(t, err, errUnknownOp)
}

func TestUnitsSearch(t *testing.T) {
	out, err := run(t, nil, "units", "metre")
	require.NoError(t, err)
	assert.Contains(t, out, "metre")
	assert.NotContains(t, out, "second")

	out, err = run(t, nil, "units")
	require.NoError(t, err)
	assert.Contains(t, out, "speed of light")
	assert.Contains(t, out, "logarithmic")
}

const doc = `{
  // a measured rod
  "label": "rod",
  "length": {"@type": "quantity", "number": "4.52", "unit": "m", "uncertainty": "0.02"}
}`

func TestEncodeDecode(t *testing.T) {
	bin, err := run(t, []byte(doc), "encode", "--envelope", "batch")
	require.NoError(t, err)
	require.NotEmpty(t, bin)

	js, err := run(t, []byte(bin), "decode")
	require.NoError(t, err)
	assert.Contains(t, js, `"4.52"`)
	assert.Contains(t, js, `"quantity"`)
	assert.Contains(t, js, `"batch"`)
}

func TestSealOpen(t *testing.T) {
	key := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(key, []byte("0123456789abcdef0123456789abcdef\n"), 0o600))

	sealed, err := run(t, []byte(doc), "seal", "--keyfile", key, "--aad-path", "/records")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "QSEC"))

	js, err := run(t, []byte(sealed), "open", "--keyfile", key)
	require.NoError(t, err)
	assert.Contains(t, js, `"4.52"`)

	_, err = run(t, []byte(sealed), "open", "--keyfile", key, "--kid", "k2")
	require.Error(t, err)
	_, err = run(t, []byte(doc), "seal")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "quant.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
[config.printing]
UNCERTAINTY_STYLE = "PARENTHESES"

[units.derived]
smoot.symbol = "smoot"
smoot.value.number = "1.7018"
smoot.value.unit = "m"
`), 0o644))

	out, err := runWith(t, cfg, nil, "convert", "2 smoot", "m")
	require.NoError(t, err)
	assert.Equal(t, "3.4036 m", strings.TrimSpace(out))

	out, err = runWith(t, cfg, nil, "base", "4.52 ± 0.02 m")
	require.NoError(t, err)
	assert.Equal(t, "4.52(2) m", strings.TrimSpace(out))

	_, err = runWith(t, filepath.Join(t.TempDir(), "missing.toml"), nil, "base", "1 m")
	require.Error(t, err)
}

func TestBench(t *testing.T) {
	out, err := run(t, []byte(doc), "bench", "--rounds", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "binary:")
	assert.Contains(t, out, "binary_decode:")

	_, err = run(t, []byte("{not json"), "bench")
	require.Error(t, err)
}
