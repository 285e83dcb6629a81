package models

import (
	"math"
	"strings"
)

// Common constants
const (
	// CustomerCancelDays is the window after order completion during which a
	// customer may request a cancel/refund.
	CustomerCancelDays = 7

	// FreightTolerance is the accepted divergence in BRL between the freight
	// value sent by the client and the carrier quote.
	FreightTolerance = 0.15

	// Default single-package dimensions used for freight quotes until
	// per-product dimensions exist (aligned with the storefront).
	DefaultPackageWidthCM  = 16.0
	DefaultPackageHeightCM = 12.0
	DefaultPackageLengthCM = 20.0
	DefaultPackageWeightKG = 0.3
)

// Round2 rounds a monetary value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeCEP strips formatting from a CEP and reports whether the
// result has the required 8 digits.
func NormalizeCEP(v string) (string, bool) {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cep := b.String()
	return cep, len(cep) == 8
}
