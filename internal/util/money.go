package util

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts travel over the wire as decimal reais but are stored as integer
// centavos. Conversion goes through shopspring/decimal so client values like
// 0.1 never round through binary floats.

// ReaisToCentavos converts a decimal amount in reais to centavos.
// Amounts with more than two decimal places are rejected.
func ReaisToCentavos(valor float64) (int64, error) {
	d := decimal.NewFromFloat(valor)
	cents := d.Mul(decimal.NewFromInt(100))
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("valor %v has more than two decimal places", valor)
	}
	return cents.IntPart(), nil
}

// CentavosToReais converts stored centavos back to a decimal amount.
func CentavosToReais(centavos int64) float64 {
	f, _ := decimal.New(centavos, -2).Float64()
	return f
}

// FormatCentavos renders centavos as a fixed two-decimal string, e.g. "12.34".
func FormatCentavos(centavos int64) string {
	return decimal.New(centavos, -2).StringFixed(2)
}
