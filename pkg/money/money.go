// Package money renders integer minor-unit amounts as display strings.
package money

import (
	"strconv"
	"strings"
)

// Format describes how a currency is written.
type Format struct {
	Symbol       string
	ThousandsSep string
	DecimalSep   string
	// Exponent is the number of minor-unit digits (0 for whole pesos).
	Exponent int
}

// ARS writes whole-peso amounts as "$1.234.567".
var ARS = Format{Symbol: "$", ThousandsSep: ".", DecimalSep: ",", Exponent: 0}

// Amount formats minor units, e.g. ARS.Amount(100000) == "$100.000".
func (f Format) Amount(minor int64) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}

	digits := strconv.FormatInt(minor, 10)
	var frac string
	if f.Exponent > 0 {
		if len(digits) <= f.Exponent {
			digits = strings.Repeat("0", f.Exponent-len(digits)+1) + digits
		}
		cut := len(digits) - f.Exponent
		digits, frac = digits[:cut], digits[cut:]
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3*len(f.ThousandsSep) + len(frac) + len(f.Symbol) + 2)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(f.Symbol)

	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(f.ThousandsSep)
		b.WriteString(digits[i : i+3])
	}

	if frac != "" {
		b.WriteString(f.DecimalSep)
		b.WriteString(frac)
	}
	return b.String()
}

// ParseFormat returns the named preset: "ARS", "COP" or "USD". Unknown names
// fall back to ARS.
func ParseFormat(name string) Format {
	f, ok := LookupFormat(name)
	if !ok {
		return ARS
	}
	return f
}

// LookupFormat returns the preset for a currency code, ignoring case and
// surrounding space, and whether one exists.
func LookupFormat(name string) (Format, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ARS":
		return ARS, true
	case "COP":
		return Format{Symbol: "$", ThousandsSep: ".", DecimalSep: ",", Exponent: 0}, true
	case "USD":
		return Format{Symbol: "US$", ThousandsSep: ",", DecimalSep: ".", Exponent: 2}, true
	default:
		return Format{}, false
	}
}
