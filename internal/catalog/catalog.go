// Package catalog defines the read-only catalog entities the planning engine
// consumes: materials, purchase presentations, products, and recipe lines.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/demand"
)

// Material is a purchasable raw ingredient tracked in a base unit.
type Material struct {
	ID           int64
	Name         string
	BaseUnit     string // unit abbreviation, e.g. "kg"
	Category     string
	ShrinkFactor decimal.Decimal // waste/safety multiplier; non-positive means unset
	UnitCost     decimal.Decimal // fallback per-base-unit price when no presentation exists
}

// Presentation is a supplier packaging option for a material: how much of the
// base unit one package contains and what it costs.
type Presentation struct {
	ID         int64
	MaterialID int64
	Name       string
	Content    decimal.Decimal // in the material's base unit
	Price      decimal.Decimal
}

// Product is a sellable menu item identified by its sales-report code.
type Product struct {
	ID   int64
	Code string
	Name string
}

// RecipeLine links a product to one material with the quantity consumed per
// unit sold, in the material's base unit.
type RecipeLine struct {
	ProductCode string
	MaterialID  int64
	QtyPerUnit  decimal.Decimal
}

// Snapshot is the batched catalog read for one planning run. The engine works
// entirely from a snapshot so that no storage lookups happen mid-pipeline.
type Snapshot struct {
	Materials     []Material             // ordered by name
	Presentations map[int64]Presentation // first registered presentation per material
	Products      map[string]Product     // by product code
	Recipes       map[string][]RecipeLine

	byID map[int64]*Material
}

// Material returns the snapshot material with the given ID.
func (s *Snapshot) Material(id int64) (Material, bool) {
	if s.byID == nil {
		s.byID = make(map[int64]*Material, len(s.Materials))
		for i := range s.Materials {
			s.byID[s.Materials[i].ID] = &s.Materials[i]
		}
	}
	m, ok := s.byID[id]
	if !ok {
		return Material{}, false
	}
	return *m, true
}

// ProductName resolves a product code to its display name, falling back to
// the code itself for products missing from the catalog.
func (s *Snapshot) ProductName(code string) string {
	if p, ok := s.Products[code]; ok && p.Name != "" {
		return p.Name
	}
	return code
}

// Accessor is the engine's window onto whatever storage layer the surrounding
// application uses. Implementations must treat all reads as side-effect free.
type Accessor interface {
	// Snapshot loads the catalog scoped to one material category
	// ("" = all categories) in a single batched read.
	Snapshot(ctx context.Context, category string) (*Snapshot, error)

	// ProductsUsingCategory lists products whose recipes consume at least one
	// material of the given category. Used to pre-scope simulation input.
	ProductsUsingCategory(ctx context.Context, category string) ([]Product, error)

	// HistoricalDemand returns per-product weekly demand averaged across the
	// selected sales reports. A nil or empty reportIDs selects all reports.
	HistoricalDemand(ctx context.Context, reportIDs []int64) (demand.Set, error)
}
