package quant

import "errors"

var (
	ErrMismatchedDimensions        = errors.New("quant: mismatched dimensions")
	ErrMismatchedUnits             = errors.New("quant: mismatched units")
	ErrNotDimensionless            = errors.New("quant: quantity is not dimensionless")
	ErrDivisionByZero              = errors.New("quant: division by zero")
	ErrComplexResult               = errors.New("quant: result would be complex")
	ErrUndefinedResult             = errors.New("quant: result is not a finite number")
	ErrFractionalDimension         = errors.New("quant: fractional dimension exponent")
	ErrInvalidTemperatureOperation = errors.New("quant: invalid operation on temperatures")
	ErrAlreadyPrefixed             = errors.New("quant: unit cannot be prefixed")
	ErrParse                       = errors.New("quant: parse error")
)
