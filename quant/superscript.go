package quant

import (
	"strconv"
	"strings"
)

var (
	superDigits = []rune("⁰¹²³⁴⁵⁶⁷⁸⁹")
	subDigits   = []rune("₀₁₂₃₄₅₆₇₈₉")
)

// Superscript renders an exponent for a unit symbol: "" for 1, "⁻¹", "²", "¹⁄₂".
func Superscript(e Ratio) string {
	if e.IsInt() && e.Num() == 1 {
		return ""
	}
	var b strings.Builder
	n := e.Num()
	if n < 0 {
		b.WriteRune('⁻')
		n = -n
	}
	for _, c := range strconv.FormatInt(n, 10) {
		b.WriteRune(superDigits[c-'0'])
	}
	if !e.IsInt() {
		b.WriteRune('⁄')
		for _, c := range strconv.FormatInt(e.Den(), 10) {
			b.WriteRune(subDigits[c-'0'])
		}
	}
	return b.String()
}

// ASCIIExponent renders an exponent as plain text: "" for 1, "-1", "2", "1/2".
func ASCIIExponent(e Ratio) string {
	if e.IsInt() && e.Num() == 1 {
		return ""
	}
	return e.String()
}
