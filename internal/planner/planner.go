// Package planner turns projected sales demand into per-material purchase
// quantities and estimated costs: recipe explosion, shrinkage adjustment,
// conversion to purchase packaging with ceiling rounding, and a structured
// calculation trace per material.
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/catalog"
	"github.com/dgcastano/provision/internal/demand"
)

// MaterialReport is one material's line in a planning run.
type MaterialReport struct {
	MaterialID   int64
	Material     string
	Category     string
	Unit         string          // base unit abbreviation
	WeeklyQty    decimal.Decimal // adjusted requirement per week, base units
	TotalQty     decimal.Decimal // adjusted requirement over the horizon, base units
	PurchaseQty  int64           // whole packages (or base units on the fallback path)
	PurchaseUnit string          // presentation name, or base unit when NoPackaging
	Cost         decimal.Decimal
	NoPackaging  bool // priced against the fallback per-unit cost
	Trace        *Trace

	// Err is set when this material's line failed (invalid packaging). The
	// remaining fields besides Trace are zero; the run carries on without it.
	Err error
}

// Engine runs the planning pipeline over a catalog accessor. A run is a pure,
// synchronous computation; concurrent runs against the same catalog are safe
// because the engine only reads.
type Engine struct {
	cat   catalog.Accessor
	weeks int
}

// New returns an engine with the given planning horizon in weeks;
// horizonWeeks <= 0 selects the default of four.
func New(cat catalog.Accessor, horizonWeeks int) *Engine {
	if horizonWeeks <= 0 {
		horizonWeeks = demand.DefaultHorizonWeeks
	}
	return &Engine{cat: cat, weeks: horizonWeeks}
}

// HorizonWeeks reports the engine's planning horizon.
func (e *Engine) HorizonWeeks() int { return e.weeks }

// ComputeRequirements runs the pipeline in ephemeral mode. With a nil
// override it uses historical demand averaged over all ingested reports;
// otherwise the override set is used as-is (what-if simulation). An empty
// result slice means the run found nothing purchasable, which is a normal
// outcome, not an error.
func (e *Engine) ComputeRequirements(ctx context.Context, category string, override demand.Set) ([]MaterialReport, error) {
	set := override
	if set == nil {
		var err error
		set, err = e.cat.HistoricalDemand(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("loading historical demand: %w", err)
		}
	}
	return e.run(ctx, category, set)
}

// ComputeFromReports runs the pipeline against demand averaged across the
// selected sales reports.
func (e *Engine) ComputeFromReports(ctx context.Context, category string, reportIDs []int64) ([]MaterialReport, error) {
	set, err := e.cat.HistoricalDemand(ctx, reportIDs)
	if err != nil {
		return nil, fmt.Errorf("loading demand for reports %v: %w", reportIDs, err)
	}
	return e.run(ctx, category, set)
}

func (e *Engine) run(ctx context.Context, category string, set demand.Set) ([]MaterialReport, error) {
	snap, err := e.cat.Snapshot(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("loading catalog snapshot: %w", err)
	}
	return e.compute(snap, set), nil
}

// accumulator collects a material's raw requirement during explosion.
type accumulator struct {
	raw      decimal.Decimal
	contribs []ProductContribution
}

// compute is the shared pipeline body: projection, explosion, shrinkage,
// packaging, trace. It is deterministic for identical inputs: products are
// exploded in code order and materials reported in snapshot (name) order.
func (e *Engine) compute(snap *catalog.Snapshot, set demand.Set) []MaterialReport {
	projections := demand.Project(set, e.weeks)

	codes := make([]string, 0, len(projections))
	for code := range projections {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	acc := make(map[int64]*accumulator)
	for _, code := range codes {
		proj := projections[code]
		name := snap.ProductName(code)
		for _, line := range snap.Recipes[code] {
			contribution := proj.Units.Mul(line.QtyPerUnit)
			if !contribution.IsPositive() {
				continue
			}
			a := acc[line.MaterialID]
			if a == nil {
				a = &accumulator{}
				acc[line.MaterialID] = a
			}
			a.raw = a.raw.Add(contribution)
			a.contribs = append(a.contribs, ProductContribution{
				ProductCode:    code,
				ProductName:    name,
				Week:           proj.Week,
				ProjectedUnits: proj.Units,
				QtyPerUnit:     line.QtyPerUnit,
				Contribution:   contribution,
			})
		}
	}

	weeksDiv := decimal.NewFromInt(int64(e.weeks))
	one := decimal.NewFromInt(1)

	var reports []MaterialReport
	for _, mat := range snap.Materials {
		a := acc[mat.ID]
		if a == nil || !a.raw.IsPositive() {
			continue // no demand for this material
		}

		factor := mat.ShrinkFactor
		if !factor.IsPositive() {
			factor = one
		}
		adjusted := a.raw.Mul(factor)

		trace := &Trace{
			Material:      mat.Name,
			Unit:          mat.BaseUnit,
			ShrinkFactor:  factor,
			HorizonWeeks:  e.weeks,
			Contributions: a.contribs,
			RawTotal:      a.raw,
			AdjustedTotal: adjusted,
		}
		report := MaterialReport{
			MaterialID: mat.ID,
			Material:   mat.Name,
			Category:   mat.Category,
			Unit:       mat.BaseUnit,
			WeeklyQty:  adjusted.Div(weeksDiv),
			TotalQty:   adjusted,
			Trace:      trace,
		}

		pres, hasPres := snap.Presentations[mat.ID]
		switch {
		case hasPres && pres.Content.IsPositive():
			exact := adjusted.Div(pres.Content)
			qty := exact.Ceil().IntPart()
			cost := decimal.NewFromInt(qty).Mul(pres.Price)

			trace.Packaging = &PackagingChoice{Name: pres.Name, Content: pres.Content, Price: pres.Price}
			trace.ExactPackages = exact
			trace.PurchaseQty = qty
			trace.PurchaseUnit = pres.Name
			trace.Cost = cost

			report.PurchaseQty = qty
			report.PurchaseUnit = pres.Name
			report.Cost = cost

		case hasPres:
			// Non-positive content is a configuration error, never a silent
			// fallback to per-unit pricing.
			err := &InvalidPackagingError{Material: mat.Name, Presentation: pres.Name, Content: pres.Content}
			trace.Failure = err.Error()
			report.Err = err

		default:
			exact := adjusted
			qty := exact.Ceil().IntPart()
			cost := decimal.NewFromInt(qty).Mul(mat.UnitCost)

			trace.NoPackaging = true
			trace.FallbackUnitPrice = mat.UnitCost
			trace.ExactPackages = exact
			trace.PurchaseQty = qty
			trace.PurchaseUnit = mat.BaseUnit
			trace.Cost = cost

			report.NoPackaging = true
			report.PurchaseQty = qty
			report.PurchaseUnit = mat.BaseUnit
			report.Cost = cost
		}

		reports = append(reports, report)
	}

	return reports
}
