// Package budget manages persisted procurement budgets: generation from a
// planning run, line-level manual edits, and total recomputation.
package budget

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/planner"
)

// Budget is a procurement plan for one month, composed of material lines.
// Its total is always the sum of its current lines' costs.
type Budget struct {
	ID          int64
	Number      int // sequential, assigned at creation
	Month       int // 1-12
	Year        int
	Description string
	Total       decimal.Decimal
	CreatedAt   time.Time
	ReportIDs   []int64 // sales reports the generation run was based on
	Lines       []Line
}

// Period formats the budget's month/year.
func (b Budget) Period() string {
	return time.Month(b.Month).String() + " " + itoa(b.Year)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Line is one material entry of a budget. System-generated lines carry the
// full calculation trace; manually edited or added lines carry a manual
// marker instead and are never touched by recalculation.
type Line struct {
	ID       int64
	BudgetID int64
	Category string
	Material string
	Unit     string          // purchase unit label (presentation name or base unit)
	Quantity decimal.Decimal // whole number on generated lines
	Cost     decimal.Decimal
	Products string // free-text summary of contributing products
	Trace    *planner.Trace
	Manual   bool
}

// Repository is the storage surface the budget service needs. Every line
// mutation must recompute the owning budget's total in the same transaction,
// so a budget's line set and its total never disagree.
type Repository interface {
	CreateBudget(ctx context.Context, b Budget) (int64, error)
	Budget(ctx context.Context, id int64) (Budget, error)
	Budgets(ctx context.Context) ([]Budget, error)
	Line(ctx context.Context, lineID int64) (Line, error)
	InsertLine(ctx context.Context, line Line) (int64, error)
	UpdateLine(ctx context.Context, line Line) error
	DeleteLine(ctx context.Context, lineID int64) error
	BudgetTotal(ctx context.Context, budgetID int64) (decimal.Decimal, error)
}
