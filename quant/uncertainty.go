package quant

// Propagation of standard uncertainties. Every function takes magnitudes and absolute
// uncertainties and returns the absolute uncertainty of the result. Exact operands
// (zero uncertainty) give an exact result.

// sumUncertainty is sqrt(ua² + ub² ± 2·r·ua·ub); sign is +1 for addition and −1 for
// subtraction.
func sumUncertainty(ua, ub, r Decimal, sign int) (Decimal, error) {
	switch {
	case ua.IsZero():
		return ub.Abs(), nil
	case ub.IsZero():
		return ua.Abs(), nil
	}
	var c calc
	v := c.add(c.sq(ua), c.sq(ub))
	if !r.IsZero() {
		cross := c.mul(c.mul(c.mul(decTwo, r), ua), ub)
		if sign < 0 {
			v = c.sub(v, cross)
		} else {
			v = c.add(v, cross)
		}
	}
	if c.err == nil && v.Sign() < 0 {
		v = decZero
	}
	out := c.sqrt(v)
	return out, c.err
}

// productUncertainty propagates through result = a·b (sign +1) or a/b (sign −1):
// the relative uncertainties combine as sqrt((ua/a)² + (ub/b)² ± 2·r·(ua/a)·(ub/b)).
func productUncertainty(a, ua, b, ub, result, r Decimal, sign int) (Decimal, error) {
	if ua.IsZero() && ub.IsZero() {
		return decZero, nil
	}
	var c calc
	if a.IsZero() || b.IsZero() {
		// Relative uncertainty is undefined at zero; use the absolute form.
		if sign < 0 {
			// a is zero here, since b = 0 was rejected as a division by zero.
			out := c.quo(ua, b).Abs()
			return out, c.err
		}
		v := c.add(c.sq(c.mul(b, ua)), c.sq(c.mul(a, ub)))
		out := c.sqrt(v)
		return out, c.err
	}
	ra := c.quo(ua, a)
	rb := c.quo(ub, b)
	v := c.add(c.sq(ra), c.sq(rb))
	if !r.IsZero() {
		cross := c.mul(c.mul(c.mul(decTwo, r), ra), rb)
		if sign < 0 {
			v = c.sub(v, cross)
		} else {
			v = c.add(v, cross)
		}
	}
	if c.err == nil && v.Sign() < 0 {
		v = decZero
	}
	out := c.mul(result.Abs(), c.sqrt(v))
	return out, c.err
}

// scaleUncertainty propagates through result = x·a for an exact x.
func scaleUncertainty(ua, x Decimal) (Decimal, error) {
	if ua.IsZero() {
		return decZero, nil
	}
	out, err := ua.Mul(x)
	return out.Abs(), err
}

// powerUncertainty propagates through result = a^n for an exact n: |n·result·ua/a|.
func powerUncertainty(a, ua, n, result Decimal) (Decimal, error) {
	if ua.IsZero() {
		return decZero, nil
	}
	if a.IsZero() {
		switch n.Cmp(decOne) {
		case 0:
			return ua.Abs(), nil
		case 1:
			return decZero, nil
		}
		return Decimal{}, ErrDivisionByZero
	}
	var c calc
	out := c.quo(c.mul(c.mul(result, n), ua), a).Abs()
	return out, c.err
}

// reciprocalUncertainty propagates through result = x/a for an exact x: |result·ua/a|.
func reciprocalUncertainty(a, ua, result Decimal) (Decimal, error) {
	if ua.IsZero() {
		return decZero, nil
	}
	var c calc
	out := c.quo(c.mul(result, ua), a).Abs()
	return out, c.err
}

// expUncertainty propagates through result = e^a: |result|·ua.
func expUncertainty(ua, result Decimal) (Decimal, error) {
	if ua.IsZero() {
		return decZero, nil
	}
	out, err := result.Abs().Mul(ua)
	return out, err
}

// logUncertainty propagates through result = log_b(a): |ua / (ln b · a)|. A zero
// lnBase means the natural logarithm.
func logUncertainty(a, ua, lnBase Decimal) (Decimal, error) {
	if ua.IsZero() {
		return decZero, nil
	}
	var c calc
	d := a
	if !lnBase.IsZero() {
		d = c.mul(lnBase, a)
	}
	out := c.quo(ua, d).Abs()
	return out, c.err
}

// expBaseUncertainty propagates through result = x^a for an exact base x:
// |result·ln(x)·ua|.
func expBaseUncertainty(x, ua, result Decimal) (Decimal, error) {
	if ua.IsZero() {
		return decZero, nil
	}
	var c calc
	out := c.mul(c.mul(result, c.ln(x)), ua).Abs()
	return out, c.err
}

// powUncertainty propagates through result = a^b with both uncertain:
// |result|·sqrt((b·ua/a)² + (ln a·ub)² + 2·r·(b·ua/a)·(ln a·ub)).
func powUncertainty(a, ua, b, ub, result, r Decimal) (Decimal, error) {
	switch {
	case ua.IsZero() && ub.IsZero():
		return decZero, nil
	case ub.IsZero():
		return powerUncertainty(a, ua, b, result)
	case ua.IsZero():
		return expBaseUncertainty(a, ub, result)
	}
	var c calc
	x := c.quo(c.mul(b, ua), a)
	y := c.mul(c.ln(a), ub)
	v := c.add(c.sq(x), c.sq(y))
	if !r.IsZero() {
		v = c.add(v, c.mul(c.mul(c.mul(decTwo, r), x), y))
	}
	if c.err == nil && v.Sign() < 0 {
		v = decZero
	}
	out := c.mul(result.Abs(), c.sqrt(v))
	return out, c.err
}
