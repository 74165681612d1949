// chart_views contains the balance chart hook and the views derived from ledger snapshots.
package chart_views

import (
	"strconv"
)

// Presentation is the fixed, declarative look of a balance chart.
type Presentation struct {
	CurrencySymbol string
	XAxisTitle     string
	YAxisTitle     string
	// TooltipTitle prefixes the x value in tooltip titles, e.g. "Day 12".
	TooltipTitle string
	// Tension is the line smoothing, 0 for straight segments.
	Tension     float64
	PointRadius float64
	HoverRadius float64
	// Width and Height size the drawing surface, as css lengths.
	Width  string
	Height string
}

// DefaultPresentation mirrors the balance chart of the accounts page.
func DefaultPresentation() Presentation {
	return Presentation{
		CurrencySymbol: "€",
		XAxisTitle:     "Day of Month",
		YAxisTitle:     "Balance (EUR)",
		TooltipTitle:   "Day",
		Tension:        0.4,
		PointRadius:    2,
		HoverRadius:    6,
		Width:          "100%",
		Height:         "360px",
	}
}

// FormatCurrency prefixes the currency symbol. It is the single formatting policy used by
// axis ticks and tooltips.
func (p Presentation) FormatCurrency(v float64) string {
	return p.CurrencySymbol + strconv.FormatFloat(v, 'f', -1, 64)
}
