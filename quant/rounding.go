package quant

// RoundToPlaces rounds x to n digits after the decimal point; a negative n rounds to
// tens, hundreds and so on. When x has fewer places than n it is padded with zeros,
// or returned unchanged if pad is false.
func RoundToPlaces(x Decimal, n int, mode RoundingMode, pad bool) (Decimal, error) {
	if -int(x.Exponent()) < n && !pad {
		return x, nil
	}
	return x.Quantize(int32(-n), mode.rounder())
}

// RoundToFigures rounds x to n significant figures. Zero, and n < 1, leave x as is.
func RoundToFigures(x Decimal, n int, mode RoundingMode, pad bool) (Decimal, error) {
	if n < 1 || x.IsZero() {
		return x, nil
	}
	cur := int(x.NumDigits())
	if n > cur {
		if !pad {
			return x, nil
		}
		return x.Quantize(x.Exponent()-int32(n-cur), mode.rounder())
	}
	exp := int32(x.Adjusted()) - int32(n-1)
	r, err := x.Quantize(exp, mode.rounder())
	if err != nil {
		return Decimal{}, err
	}
	if int(r.NumDigits()) > n {
		// Rounding carried into a new digit, as 9.96 → 10.0; drop the last one.
		return r.Quantize(exp+1, mode.rounder())
	}
	return r, nil
}

// RoundToUncertainty rounds u to n significant figures, never padding it, then
// rounds x to the same decimal place. An exact x (u = 0) is returned unchanged.
func RoundToUncertainty(x, u Decimal, n int, mode RoundingMode, pad bool) (Decimal, Decimal, error) {
	if u.IsZero() {
		return x, u, nil
	}
	ur, err := RoundToFigures(u, n, mode, false)
	if err != nil {
		return Decimal{}, Decimal{}, err
	}
	xr, err := RoundToPlaces(x, -int(ur.Exponent()), mode, pad)
	if err != nil {
		return Decimal{}, Decimal{}, err
	}
	return xr, ur, nil
}

// Round rounds the magnitude with the method the configuration selects:
// RoundIfUncertainty when q has an uncertainty, RoundIfExact otherwise. WithMethod
// and WithDigits override the configured method and digit count.
func (q Quantity) Round(opts ...Option) (Quantity, error) {
	o := collect(opts)
	m := o.method
	if m == MethodAuto {
		m = o.cfg.RoundIfExact
		if q.HasUncertainty() {
			m = o.cfg.RoundIfUncertainty
		}
	}
	n := o.cfg.digitsFor(m)
	if o.hasDigits {
		n = o.digits
	}
	return q.roundWith(m, n, o.cfg)
}

func (q Quantity) roundWith(m Method, n int, cfg Config) (Quantity, error) {
	var err error
	switch m {
	case MethodPlaces:
		q.number, err = RoundToPlaces(q.number, n, cfg.RoundingMode, cfg.Pad)
	case MethodUncertainty:
		q.number, q.uncertainty, err = RoundToUncertainty(q.number, q.uncertainty, n, cfg.RoundingMode, cfg.Pad)
	default:
		q.number, err = RoundToFigures(q.number, n, cfg.RoundingMode, cfg.Pad)
	}
	if err != nil {
		return Quantity{}, err
	}
	return q, nil
}

// RoundToPlaces rounds the magnitude to n decimal places. The uncertainty is kept.
func (q Quantity) RoundToPlaces(n int, opts ...Option) (Quantity, error) {
	return q.roundWith(MethodPlaces, n, collect(opts).cfg)
}

// RoundToFigures rounds the magnitude to n significant figures.
func (q Quantity) RoundToFigures(n int, opts ...Option) (Quantity, error) {
	return q.roundWith(MethodFigures, n, collect(opts).cfg)
}

// RoundToUncertainty rounds the uncertainty to n significant figures and the
// magnitude to the same place.
func (q Quantity) RoundToUncertainty(n int, opts ...Option) (Quantity, error) {
	return q.roundWith(MethodUncertainty, n, collect(opts).cfg)
}

// RoundToResolutionOf rounds the magnitude to the last significant place of r.
func (q Quantity) RoundToResolutionOf(r Quantity, opts ...Option) (Quantity, error) {
	return q.RoundToPlaces(-int(r.number.Exponent()), opts...)
}

// RoundUncertainty rounds only the uncertainty, by the method Round would pick for
// an exact quantity. The uncertainty is never padded.
func (q Quantity) RoundUncertainty(opts ...Option) (Quantity, error) {
	if !q.HasUncertainty() {
		return q, nil
	}
	o := collect(opts)
	o.cfg.Pad = false
	m := o.method
	if m == MethodAuto || m == MethodUncertainty {
		m = o.cfg.RoundIfExact
	}
	n := o.cfg.digitsFor(m)
	if o.hasDigits {
		n = o.digits
	}
	u, err := Quantity{number: q.uncertainty, unit: q.unit}.roundWith(m, n, o.cfg)
	if err != nil {
		return Quantity{}, err
	}
	q.uncertainty = u.number
	return q, nil
}
