// Package quant does exact arithmetic on physical quantities: decimal magnitudes
// with units, dimensions and standard uncertainties, temperatures on offset scales,
// and logarithmic quantities.
package quant

import "fmt"

// Value is one of Quantity, Temperature or LogQuantity. The package functions Add,
// Sub, Mul and Div dispatch on the pair of concrete types and refuse the
// combinations that have no physical meaning.
type Value interface {
	Dimensions() Dimensions
	String() string
	isValue()
}

var (
	_ Value = Quantity{}
	_ Value = Temperature{}
	_ Value = LogQuantity{}
)

func mismatched(a, b Value) error {
	return fmt.Errorf("%w: %s and %s", ErrMismatchedUnits, a, b)
}

func invalidTemperature(op string, a, b Value) error {
	return fmt.Errorf("%w: %s %s %s", ErrInvalidTemperatureOperation, a, op, b)
}

// Add returns a + b. A temperature plus a difference is a temperature; two
// temperatures cannot be added.
func Add(a, b Value, opts ...Option) (Value, error) {
	switch a := a.(type) {
	case Quantity:
		switch b := b.(type) {
		case Quantity:
			return a.Add(b, opts...)
		case Temperature:
			return b.Add(a, opts...)
		}
	case Temperature:
		switch b := b.(type) {
		case Quantity:
			return a.Add(b, opts...)
		case Temperature:
			return nil, invalidTemperature("+", a, b)
		}
	case LogQuantity:
		if b, ok := b.(LogQuantity); ok {
			return a.Add(b, opts...)
		}
	}
	return nil, mismatched(a, b)
}

// Sub returns a − b. The difference of two temperatures is a Quantity in the unit
// of a's scale.
func Sub(a, b Value, opts ...Option) (Value, error) {
	switch a := a.(type) {
	case Quantity:
		switch b := b.(type) {
		case Quantity:
			return a.Sub(b, opts...)
		case Temperature:
			return nil, invalidTemperature("-", a, b)
		}
	case Temperature:
		switch b := b.(type) {
		case Quantity:
			return a.Sub(b, opts...)
		case Temperature:
			return a.Diff(b, opts...)
		}
	case LogQuantity:
		if b, ok := b.(LogQuantity); ok {
			return a.Sub(b, opts...)
		}
	}
	return nil, mismatched(a, b)
}

// Mul returns a × b. Temperatures cannot be multiplied; use Absolute first.
func Mul(a, b Value, opts ...Option) (Value, error) {
	return product(a, b, "×", opts)
}

// Div returns a / b.
func Div(a, b Value, opts ...Option) (Value, error) {
	return product(a, b, "/", opts)
}

func product(a, b Value, op string, opts []Option) (Value, error) {
	_, at := a.(Temperature)
	_, bt := b.(Temperature)
	if at || bt {
		return nil, invalidTemperature(op, a, b)
	}
	switch a := a.(type) {
	case Quantity:
		if b, ok := b.(Quantity); ok {
			if op == "/" {
				return a.Div(b, opts...)
			}
			return a.Mul(b, opts...)
		}
	case LogQuantity:
		if b, ok := b.(LogQuantity); ok {
			if op == "/" {
				return a.Div(b, opts...)
			}
			return a.Mul(b, opts...)
		}
	}
	return nil, mismatched(a, b)
}

// Equal compares two values of the same kind. Values of different kinds are never
// equal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Quantity:
		b, ok := b.(Quantity)
		return ok && a.Equal(b)
	case Temperature:
		b, ok := b.(Temperature)
		return ok && a.Equal(b)
	case LogQuantity:
		b, ok := b.(LogQuantity)
		return ok && a.Equal(b)
	}
	return false
}
