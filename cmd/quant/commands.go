package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/quantfmt"
	"github.com/chandan-cmd-dev/quant-go/units"
)

func (a *app) convertCmd() *cobra.Command {
	var scale bool
	cmd := &cobra.Command{
		Use:   "convert <quantity> <unit>",
		Short: "Express a quantity in another unit",
		Long: `Converts a quantity to another unit of the same dimension. With --scale the
quantity is read as a point on a temperature scale, so 100 °C becomes 212 °F
rather than the difference 180 °F. A logarithmic target such as dBm gives the
level of the quantity on that scale.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.parseQuantity(args[0])
			if err != nil {
				return err
			}
			if scale {
				return a.convertScale(cmd, q, args[1])
			}
			target, uerr := a.reg.ParseUnit(args[1])
			if uerr == nil && target.Dimensions() == q.Dimensions() {
				r, err := q.To(target)
				if err != nil {
					return err
				}
				a.print(cmd, r)
				return nil
			}
			if lu, err := a.reg.LogUnit(args[1]); err == nil {
				l, err := q.OnLogScale(lu)
				if err != nil {
					return err
				}
				a.print(cmd, l)
				return nil
			}
			if uerr != nil {
				return uerr
			}
			_, err = q.To(target)
			return err
		},
	}
	cmd.Flags().BoolVar(&scale, "scale", false, "treat the quantity as a temperature reading")
	return cmd
}

func (a *app) convertScale(cmd *cobra.Command, q quant.Quantity, to string) error {
	target, err := a.reg.ParseUnit(to)
	if err != nil {
		return err
	}
	var t quant.Temperature
	if q.Unit().IsTemperatureScale() {
		t, err = quant.NewTemperature(q.Number(), q.Unit())
		t = t.WithUncertainty(q.UncertaintyNumber())
	} else {
		t, err = q.OnScale(quant.Kelvin)
	}
	if err != nil {
		return err
	}
	r, err := t.OnScale(target)
	if err != nil {
		return err
	}
	a.print(cmd, r)
	return nil
}

func (a *app) baseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "base <quantity>",
		Short: "Express a quantity in SI base units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.parseQuantity(args[0])
			if err != nil {
				return err
			}
			b, err := q.Base()
			if err != nil {
				return err
			}
			a.print(cmd, b)
			return nil
		},
	}
}

func (a *app) roundCmd() *cobra.Command {
	var method string
	var digits int
	var uncertaintyOnly bool
	cmd := &cobra.Command{
		Use:   "round <quantity>",
		Short: "Round a quantity",
		Long: `Rounds to decimal places, significant figures or the uncertainty. Without
--method the configured method for exact or uncertain quantities is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.parseQuantity(args[0])
			if err != nil {
				return err
			}
			m, err := quant.ParseMethod(method)
			if err != nil {
				return err
			}
			opts := a.opts(quant.WithMethod(m))
			if cmd.Flags().Changed("digits") {
				opts = append(opts, quant.WithDigits(digits))
			}
			if uncertaintyOnly {
				q, err = q.RoundUncertainty(opts...)
			} else {
				q, err = q.Round(opts...)
			}
			if err != nil {
				return err
			}
			a.print(cmd, q)
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "auto", "auto | places | figures | uncertainty")
	cmd.Flags().IntVar(&digits, "digits", 0, "number of places or figures")
	cmd.Flags().BoolVar(&uncertaintyOnly, "uncertainty-only", false, "round only the uncertainty")
	return cmd
}

func (a *app) calcCmd() *cobra.Command {
	var correlation string
	var round bool
	cmd := &cobra.Command{
		Use:   "calc <a> <op> <b>",
		Short: "Combine two quantities",
		Long: `Applies one of + - * / ^ to two values. Uncertainties propagate; --correlation
sets the correlation coefficient between the operands. A temperature reading
can be shifted with + and -, and two readings subtracted.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := a.parseValue(args[0])
			if err != nil {
				return err
			}
			y, err := a.parseValue(args[2])
			if err != nil {
				return err
			}
			opts := a.opts()
			if correlation != "" {
				r, err := quant.DecFromString(correlation)
				if err != nil {
					return err
				}
				opts = append(opts, quant.WithCorrelation(r))
			}
			v, err := calc(x, args[1], y, opts)
			if err != nil {
				return err
			}
			if q, ok := v.(quant.Quantity); ok && round {
				if v, err = q.Round(opts...); err != nil {
					return err
				}
			}
			a.print(cmd, v)
			return nil
		},
	}
	cmd.Flags().StringVar(&correlation, "correlation", "", "correlation between the operands (-1 to 1)")
	cmd.Flags().BoolVar(&round, "round", false, "round the result")
	return cmd
}

var errUnknownOp = errors.New("unknown operator")

func calc(x quant.Value, op string, y quant.Value, opts []quant.Option) (quant.Value, error) {
	switch op {
	case "+":
		return quant.Add(x, y, opts...)
	case "-":
		return quant.Sub(x, y, opts...)
	case "*", "x", "×":
		return quant.Mul(x, y, opts...)
	case "/", "÷":
		return quant.Div(x, y, opts...)
	case "^", "**":
		b, ok := x.(quant.Quantity)
		e, eok := y.(quant.Quantity)
		if !ok || !eok {
			return nil, fmt.Errorf("%w: %s ^ %s", quant.ErrMismatchedUnits, x, y)
		}
		return b.PowQuantity(e, opts...)
	}
	return nil, fmt.Errorf("%w %q (use + - * / ^)", errUnknownOp, op)
}

func (a *app) unitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "units [search]",
		Short: "List units, logarithmic units and constants",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.reg.Names()
			if len(args) == 1 {
				names = a.reg.Search(args[0])
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, n := range names {
				v, err := a.reg.Lookup(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", n, a.describe(v))
			}
			return w.Flush()
		},
	}
}

func (a *app) describe(v any) string {
	switch v := v.(type) {
	case quant.Unit:
		s := v.Name()
		m, b, err := quant.Base(v)
		if err == nil && !b.IsUnitless() && !b.Identical(v) {
			s += fmt.Sprintf("\t1 %s = %s %s", v.Symbol(), quantfmt.Number(m, a.fmt...), quantfmt.Unit(b, a.fmt...))
		}
		if off, ok := v.Offset(); ok && !off.IsZero() {
			s += fmt.Sprintf("\t0 K reads %s %s", quantfmt.Number(off, a.fmt...), v.Symbol())
		}
		return s
	case quant.LogUnit:
		if v.HasReference() {
			return v.Name() + "\tre " + quantfmt.Format(v.Reference(), a.fmt...)
		}
		return v.Name() + "\tlogarithmic"
	case units.Constant:
		return v.Name + "\t" + quantfmt.Format(v.Value, a.fmt...)
	}
	return fmt.Sprint(v)
}
