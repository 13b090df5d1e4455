package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currencies whose minor unit is not 1/100 of the major unit.
var minorUnitExponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// MinorUnitExponent returns the number of decimal places of currency.
func MinorUnitExponent(currency string) int32 {
	if exp, ok := minorUnitExponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return 2
}

// ToMajorUnits converts an integer minor-unit amount to a decimal in major
// units, e.g. 1050 INR -> 10.50.
func ToMajorUnits(amount int64, currency string) decimal.Decimal {
	return decimal.New(amount, -MinorUnitExponent(currency))
}

// FromMajorUnits converts a major-unit decimal back to integer minor units,
// rounding half away from zero.
func FromMajorUnits(value decimal.Decimal, currency string) int64 {
	return value.Shift(MinorUnitExponent(currency)).Round(0).IntPart()
}
