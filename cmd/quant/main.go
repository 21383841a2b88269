// Command quant converts, rounds and combines physical quantities, and moves
// records between JSON, the binary format and the sealed format.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/quantconf"
	"github.com/chandan-cmd-dev/quant-go/quantfmt"
	"github.com/chandan-cmd-dev/quant-go/units"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("quant: ")
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

// app is the state shared by the subcommands once the config has been read.
type app struct {
	reg  *units.Registry
	cfg  quant.Config
	fmt  []quantfmt.Option
	conf string

	cfgFile string
	ascii   bool
	parens  bool
	sci     bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "quant",
		Short: "Exact arithmetic on physical quantities",
		Long: `quant works on quantities written as text: "9.81 m s-2", "4.52(2) m",
"(25 ± 0.5) °C". Unit definitions and rounding settings are read from quant.toml
when one is found, or from the file named by --config or $QUANT_CONFIG.

Examples:
  quant convert "1 mi" ft
  quant convert --scale "100 °C" °F
  quant calc "3 m" / "2 s"
  quant round --method figures --digits 2 "9.8765 m"
  quant units metre`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup() },
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (toml, yaml or json)")
	root.PersistentFlags().BoolVar(&a.ascii, "ascii", false, "write exponents as m s-1")
	root.PersistentFlags().BoolVar(&a.parens, "parens", false, "write uncertainties as 4.52(2)")
	root.PersistentFlags().BoolVar(&a.sci, "sci", false, "allow exponent notation in numbers")

	root.AddCommand(
		a.convertCmd(),
		a.baseCmd(),
		a.roundCmd(),
		a.calcCmd(),
		a.unitsCmd(),
		a.encodeCmd(),
		a.decodeCmd(),
		a.sealCmd(),
		a.openCmd(),
		a.benchCmd(),
	)
	return root
}

func (a *app) setup() error {
	a.reg = units.Default()
	a.cfg = quant.DefaultConfig()
	path := a.cfgFile
	if path == "" {
		path, _ = quantconf.Find()
	}
	if path != "" {
		f, err := quantconf.Load(path)
		if err != nil {
			return err
		}
		if err := f.Register(a.reg); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		a.cfg = f.Quant()
		a.fmt = f.FormatOptions()
		a.conf = path
	}
	if a.ascii {
		a.fmt = append(a.fmt, quantfmt.WithASCII())
	}
	if a.parens {
		a.fmt = append(a.fmt, quantfmt.WithUncertaintyStyle(quantfmt.Parentheses))
	}
	if !a.sci {
		a.fmt = append(a.fmt, quantfmt.WithPlain())
	}
	return nil
}

func (a *app) opts(extra ...quant.Option) []quant.Option {
	return append([]quant.Option{quant.WithConfig(a.cfg)}, extra...)
}

func (a *app) print(cmd *cobra.Command, v quant.Value) {
	fmt.Fprintln(cmd.OutOrStdout(), quantfmt.Format(v, a.fmt...))
}

// parseValue reads a quantity, or a number followed by a logarithmic unit such as
// "30 dBm".
func (a *app) parseValue(text string) (quant.Value, error) {
	q, err := a.reg.ParseQuantity(text)
	if err == nil {
		return q, nil
	}
	num, unit, ok := strings.Cut(strings.TrimSpace(text), " ")
	if !ok {
		return nil, err
	}
	lu, lerr := a.reg.LogUnit(strings.TrimSpace(unit))
	if lerr != nil {
		return nil, err
	}
	x, derr := quant.DecFromString(num)
	if derr != nil {
		return nil, err
	}
	return quant.NewLogQuantity(x, lu), nil
}

func (a *app) parseQuantity(text string) (quant.Quantity, error) {
	v, err := a.parseValue(text)
	if err != nil {
		return quant.Quantity{}, err
	}
	switch v := v.(type) {
	case quant.Quantity:
		return v, nil
	case quant.LogQuantity:
		return v.Absolute()
	}
	return quant.Quantity{}, fmt.Errorf("%w: %s is not a quantity", quant.ErrParse, text)
}

func readInput(cmd *cobra.Command) ([]byte, error) {
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return b, nil
}

func readKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	return trimNewlines(key), nil
}

func trimNewlines(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
