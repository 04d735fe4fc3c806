package planner

import (
	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/demand"
)

// Trace is the structured derivation record for one material line. It is the
// audit artifact purchasing staff use to justify or contest a line, so every
// intermediate figure is retrievable on its own rather than baked into
// display text. A presentation layer renders it as a one-line summary or an
// expanded detail view.
type Trace struct {
	Material     string          `json:"material"`
	Unit         string          `json:"unit"`
	ShrinkFactor decimal.Decimal `json:"shrink_factor"`
	HorizonWeeks int             `json:"horizon_weeks"`

	// Packaging is nil when the material has no registered presentation, in
	// which case NoPackaging is set and FallbackUnitPrice was used.
	Packaging         *PackagingChoice `json:"packaging,omitempty"`
	NoPackaging       bool             `json:"no_packaging,omitempty"`
	FallbackUnitPrice decimal.Decimal  `json:"fallback_unit_price,omitempty"`

	Contributions []ProductContribution `json:"contributions,omitempty"`

	RawTotal      decimal.Decimal `json:"raw_total"`      // base units, before shrinkage
	AdjustedTotal decimal.Decimal `json:"adjusted_total"` // base units, after shrinkage
	ExactPackages decimal.Decimal `json:"exact_packages"` // unrounded package count
	PurchaseQty   int64           `json:"purchase_qty"`   // ceiling-rounded
	PurchaseUnit  string          `json:"purchase_unit"`  // presentation name or base unit
	Cost          decimal.Decimal `json:"cost"`

	// Failure marks a material whose line could not be computed (for example
	// invalid packaging). The run proceeds without it.
	Failure string `json:"failure,omitempty"`

	// ManualNote replaces the computed fields on lines a user edited or added
	// by hand; such lines are excluded from recalculation.
	ManualNote string `json:"manual_note,omitempty"`
}

// PackagingChoice records the presentation a line was priced against.
type PackagingChoice struct {
	Name    string          `json:"name"`
	Content decimal.Decimal `json:"content"`
	Price   decimal.Decimal `json:"price"`
}

// ProductContribution is one product's share of a material's requirement.
type ProductContribution struct {
	ProductCode    string          `json:"product_code"`
	ProductName    string          `json:"product_name"`
	Week           demand.Week     `json:"week,omitempty"` // averaged units per weekday
	ProjectedUnits decimal.Decimal `json:"projected_units"`
	QtyPerUnit     decimal.Decimal `json:"qty_per_unit"`
	Contribution   decimal.Decimal `json:"contribution"` // base units over the horizon
}

// Manual returns true for traces that mark manually entered or edited lines.
func (t *Trace) Manual() bool {
	return t != nil && t.ManualNote != ""
}

// Failed returns true for traces that mark a per-material failure.
func (t *Trace) Failed() bool {
	return t != nil && t.Failure != ""
}
