package budget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/planner"
)

// ErrNoDemand is returned when a generation run produces no purchasable
// materials, so callers can report "nothing to buy" instead of failing.
var ErrNoDemand = errors.New("no purchasable items found for the selected reports")

const (
	manualEditNote = "Values on this line were entered by hand, replacing the original automatic calculation."
	manualAddNote  = "This line does not come from the automatic calculation; it was added to the budget by hand."
)

// Service generates budgets from planning runs and applies line-level edits.
type Service struct {
	repo   Repository
	engine *planner.Engine
}

// NewService wires the budget service to its storage and planning engine.
func NewService(repo Repository, engine *planner.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// Generate runs the planning pipeline against the selected sales reports and
// persists the result as a new budget. Materials whose line failed (invalid
// packaging) are skipped; the budget covers the remaining materials. Returns
// ErrNoDemand when nothing survives the run.
func (s *Service) Generate(ctx context.Context, month, year int, description string, reportIDs []int64) (int64, error) {
	if len(reportIDs) == 0 {
		return 0, errors.New("at least one sales report must be selected")
	}

	reports, err := s.engine.ComputeFromReports(ctx, "", reportIDs)
	if err != nil {
		return 0, err
	}

	var lines []Line
	for _, r := range reports {
		if r.Err != nil {
			continue
		}
		lines = append(lines, Line{
			Category: r.Category,
			Material: r.Material,
			Unit:     r.PurchaseUnit,
			Quantity: decimal.NewFromInt(r.PurchaseQty),
			Cost:     r.Cost,
			Products: contributorsSummary(r.Trace, r.Unit),
			Trace:    r.Trace,
		})
	}
	if len(lines) == 0 {
		return 0, ErrNoDemand
	}

	b := Budget{
		Month:       month,
		Year:        year,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		ReportIDs:   reportIDs,
		Lines:       lines,
	}
	id, err := s.repo.CreateBudget(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("persisting budget: %w", err)
	}
	return id, nil
}

// contributorsSummary renders the per-product contributions as the short
// free-text breakdown shown next to a budget line.
func contributorsSummary(t *planner.Trace, unit string) string {
	if t == nil || len(t.Contributions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(t.Contributions))
	for _, c := range t.Contributions {
		parts = append(parts, fmt.Sprintf("%s (%s %s)", c.ProductName, c.Contribution.Round(2), unit))
	}
	return strings.Join(parts, ", ")
}

// EditLine overrides a line's quantity and/or cost. The calculation trace is
// discarded in favor of a manual marker, which permanently excludes the line
// from any future recalculation. The budget total is re-derived from the
// current line set, never by re-running the pipeline.
func (s *Service) EditLine(ctx context.Context, lineID int64, quantity, cost *decimal.Decimal) error {
	if quantity == nil && cost == nil {
		return errors.New("nothing to edit: provide a quantity or a cost")
	}

	line, err := s.repo.Line(ctx, lineID)
	if err != nil {
		return err
	}
	if quantity != nil {
		line.Quantity = *quantity
	}
	if cost != nil {
		line.Cost = *cost
	}
	line.Manual = true
	line.Trace = &planner.Trace{
		Material:   line.Material,
		Unit:       line.Unit,
		ManualNote: manualEditNote,
	}
	return s.repo.UpdateLine(ctx, line)
}

// AddManualLine appends a line with no recipe backing to an existing budget.
func (s *Service) AddManualLine(ctx context.Context, budgetID int64, category, material, unit string, quantity, cost decimal.Decimal) (int64, error) {
	if material == "" || unit == "" {
		return 0, errors.New("material and unit are required")
	}
	if category == "" {
		category = "Uncategorized"
	}

	line := Line{
		BudgetID: budgetID,
		Category: category,
		Material: material,
		Unit:     unit,
		Quantity: quantity,
		Cost:     cost,
		Products: "Added by hand",
		Manual:   true,
		Trace: &planner.Trace{
			Material:   material,
			Unit:       unit,
			ManualNote: manualAddNote,
		},
	}
	return s.repo.InsertLine(ctx, line)
}

// RemoveLine deletes a line from its budget.
func (s *Service) RemoveLine(ctx context.Context, lineID int64) error {
	return s.repo.DeleteLine(ctx, lineID)
}

// Total returns the budget's current total, which the repository keeps equal
// to the sum of its lines' costs.
func (s *Service) Total(ctx context.Context, budgetID int64) (decimal.Decimal, error) {
	return s.repo.BudgetTotal(ctx, budgetID)
}
