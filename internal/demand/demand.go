// Package demand normalizes per-product, per-weekday sales observations into
// projected unit counts for a planning horizon.
package demand

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHorizonWeeks is the planning horizon used when none is configured.
const DefaultHorizonWeeks = 4

// Observation is one (product, weekday) sales quantity, either averaged from
// historical reports or supplied by a simulation.
type Observation struct {
	ProductCode string
	ProductName string
	Weekday     time.Weekday
	Quantity    decimal.Decimal
}

// Week holds one quantity per weekday. Absent weekdays count as zero.
type Week map[time.Weekday]decimal.Decimal

// Total sums the quantities across all weekdays present.
func (w Week) Total() decimal.Decimal {
	var total decimal.Decimal
	for _, q := range w {
		total = total.Add(q)
	}
	return total
}

// Set maps product codes to weekly demand curves.
type Set map[string]Week

// Collect folds observations into a Set, summing duplicate
// (product, weekday) entries. Observations with an empty product code are
// dropped; partial data is the normal case.
func Collect(obs []Observation) Set {
	set := make(Set)
	for _, o := range obs {
		code := strings.TrimSpace(o.ProductCode)
		if code == "" {
			continue
		}
		week, ok := set[code]
		if !ok {
			week = make(Week)
			set[code] = week
		}
		week[o.Weekday] = week[o.Weekday].Add(o.Quantity)
	}
	return set
}

// Projection is the projected demand for one product over the horizon.
type Projection struct {
	Code        string
	Week        Week
	WeeklyUnits decimal.Decimal
	Units       decimal.Decimal // WeeklyUnits × horizon weeks
}

// Project converts a demand set into per-product projections over the given
// horizon. Products absent from the set produce no projection (no demand
// means no purchase need), and zero-total products are likewise dropped.
func Project(set Set, weeks int) map[string]Projection {
	if weeks <= 0 {
		weeks = DefaultHorizonWeeks
	}
	factor := decimal.NewFromInt(int64(weeks))

	projections := make(map[string]Projection, len(set))
	for code, week := range set {
		if strings.TrimSpace(code) == "" {
			continue
		}
		weekly := week.Total()
		if !weekly.IsPositive() {
			continue
		}
		projections[code] = Projection{
			Code:        code,
			Week:        week,
			WeeklyUnits: weekly,
			Units:       weekly.Mul(factor),
		}
	}
	return projections
}
