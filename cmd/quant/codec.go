package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/quantsec"
)

// readDocument reads JSON (comments allowed) from stdin and replaces value
// objects with quantities, temperatures and log quantities.
func (a *app) readDocument(cmd *cobra.Command) (any, error) {
	data, err := readInput(cmd)
	if err != nil {
		return nil, err
	}
	var v any
	if err := quant.UnmarshalJSONWithComments(data, &v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return a.reg.Resolve(v)
}

func writeJSON(cmd *cobra.Command, v any, indent bool) error {
	js, err := quant.MarshalJSONCompat(v, indent)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(js); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}

func (a *app) encodeCmd() *cobra.Command {
	var envelope string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Read JSON on stdin, write the binary encoding to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.readDocument(cmd)
			if err != nil {
				return err
			}
			if envelope != "" {
				v = quant.NewEnvelope(envelope, v)
			}
			b, err := quant.EncodeBinary(v)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&envelope, "envelope", "", "wrap the document in an envelope of this type")
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Read the binary encoding on stdin, write JSON to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := readInput(cmd)
			if err != nil {
				return err
			}
			v, err := quant.DecodeBinary(b)
			if err != nil {
				return err
			}
			return writeJSON(cmd, v, indent)
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", true, "pretty-print JSON")
	return cmd
}

type keyFlags struct {
	file   string
	envPfx string
	kid    string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&k.file, "keyfile", "", "path to a 32-byte key file")
	cmd.Flags().StringVar(&k.envPfx, "key-env", "", "read hex keys from $<prefix><KID> instead of a file")
	cmd.Flags().StringVar(&k.kid, "kid", "k1", "key id")
}

func (k *keyFlags) keyring() (quantsec.Keyring, error) {
	switch {
	case k.file != "":
		key, err := readKey(k.file)
		if err != nil {
			return nil, err
		}
		return quantsec.StaticKeyring{k.kid: key}, nil
	case k.envPfx != "":
		return quantsec.EnvKeyring{Prefix: k.envPfx}, nil
	}
	return nil, fmt.Errorf("missing --keyfile or --key-env")
}

func (a *app) sealCmd() *cobra.Command {
	var keys keyFlags
	var alg, aadMethod, aadPath string
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt a JSON document from stdin into the sealed format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kr, err := keys.keyring()
			if err != nil {
				return err
			}
			suite, err := quantsec.ParseAlg(alg)
			if err != nil {
				return err
			}
			v, err := a.readDocument(cmd)
			if err != nil {
				return err
			}
			extra := map[string]string{"tool": "quant"}
			if aadMethod != "" {
				extra["m"] = aadMethod
			}
			if aadPath != "" {
				extra["p"] = aadPath
			}
			sealed, err := quantsec.Seal(v, quantsec.Header{Alg: suite, KeyID: keys.kid, Extra: extra}, kr)
			if err != nil {
				return fmt.Errorf("seal: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(sealed)
			return err
		},
	}
	keys.register(cmd)
	cmd.Flags().StringVar(&alg, "alg", "xchacha", "xchacha | aesgcm")
	cmd.Flags().StringVar(&aadMethod, "aad-method", "", "HTTP method to bind in the header (e.g. POST)")
	cmd.Flags().StringVar(&aadPath, "aad-path", "", "HTTP path to bind in the header (e.g. /records)")
	return cmd
}

func (a *app) openCmd() *cobra.Command {
	var keys keyFlags
	var indent, header bool
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt a sealed document from stdin and write it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kr, err := keys.keyring()
			if err != nil {
				return err
			}
			sealed, err := readInput(cmd)
			if err != nil {
				return err
			}
			v, hdr, err := quantsec.Open(sealed, kr)
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			if header {
				fmt.Fprintf(cmd.ErrOrStderr(), "alg=%s kid=%s extra=%v\n", hdr.Alg, hdr.KeyID, hdr.Extra)
			}
			return writeJSON(cmd, v, indent)
		},
	}
	keys.register(cmd)
	cmd.Flags().BoolVar(&indent, "indent", true, "pretty-print JSON")
	cmd.Flags().BoolVar(&header, "header", false, "print the sealed header to stderr")
	return cmd
}

func (a *app) benchCmd() *cobra.Command {
	var rounds int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare JSON and binary sizes and timings for a document on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := readInput(cmd)
			if err != nil {
				return err
			}
			if rounds < 1 {
				rounds = 1
			}
			var v any
			jsonDec := timeIt(rounds, func() error {
				var raw any
				if err := quant.UnmarshalJSONWithComments(input, &raw); err != nil {
					return err
				}
				v, err = a.reg.Resolve(raw)
				return err
			})
			if jsonDec.err != nil {
				return jsonDec.err
			}
			var bin []byte
			binEnc := timeIt(rounds, func() (err error) {
				bin, err = quant.EncodeBinary(v)
				return err
			})
			if binEnc.err != nil {
				return binEnc.err
			}
			binDec := timeIt(rounds, func() error {
				_, err := quant.DecodeBinary(bin)
				return err
			})
			jsonEnc := timeIt(rounds, func() error {
				_, err := quant.MarshalJSONCompat(v, false)
				return err
			})
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sizes:\n  json:   %d B\n  binary: %d B\n\n", len(input), len(bin))
			fmt.Fprintf(out, "Timings per round (µs, %d rounds):\n", rounds)
			fmt.Fprintf(out, "  json_decode:   %.1f\n  json_encode:   %.1f\n  binary_encode: %.1f\n  binary_decode: %.1f\n",
				jsonDec.per, jsonEnc.per, binEnc.per, binDec.per)
			return binDec.err
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 100, "repetitions per measurement")
	return cmd
}

type timing struct {
	per float64 // microseconds per round
	err error
}

func timeIt(rounds int, f func() error) timing {
	start := time.Now()
	for i := 0; i < rounds; i++ {
		if err := f(); err != nil {
			return timing{err: err}
		}
	}
	return timing{per: float64(time.Since(start).Microseconds()) / float64(rounds)}
}
