package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgcastano/provision/internal/planner"
)

// TraceSummary renders a one-line derivation summary for a budget line's
// trace, suitable for a table cell or list view.
func TraceSummary(currency string, t *planner.Trace) string {
	switch {
	case t == nil:
		return ""
	case t.Manual():
		return t.ManualNote
	case t.Failed():
		return "failed: " + t.Failure
	case t.NoPackaging:
		return fmt.Sprintf("%s %s @ %s/%s (no presentation)",
			FormatNumber(t.PurchaseQty), t.PurchaseUnit,
			FormatMoney(currency, t.FallbackUnitPrice), t.Unit)
	default:
		return fmt.Sprintf("%s × %s (%s %s) @ %s",
			FormatNumber(t.PurchaseQty), t.PurchaseUnit,
			FormatQty(t.Packaging.Content), t.Unit,
			FormatMoney(currency, t.Packaging.Price))
	}
}

// RenderTrace renders the expanded audit view of a trace: per-product
// contributions, the shrinkage step, and the packaging conversion.
func RenderTrace(currency string, t *planner.Trace) string {
	if t == nil {
		return Muted("no trace recorded")
	}
	if t.Manual() {
		return Warn(t.ManualNote)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s), %d-week horizon\n",
		headerStyle.Render(t.Material), t.Unit, t.HorizonWeeks)

	if len(t.Contributions) > 0 {
		ct := Table{
			Headers: []string{"Product", "Weekly avg", "Projected", "Per unit", "Needs"},
		}
		for _, c := range t.Contributions {
			label := c.ProductName
			if label == "" {
				label = c.ProductCode
			}
			ct.Rows = append(ct.Rows, []string{
				label,
				weekSummary(c),
				FormatQty(c.ProjectedUnits),
				FormatQty(c.QtyPerUnit),
				FormatQty(c.Contribution) + " " + t.Unit,
			})
		}
		b.WriteString(RenderTable(ct))
	}

	fmt.Fprintf(&b, "  raw %s %s × shrink %s = %s %s\n",
		FormatQty(t.RawTotal), t.Unit,
		FormatQty(t.ShrinkFactor),
		FormatQty(t.AdjustedTotal), t.Unit)

	if t.Failed() {
		b.WriteString("  " + Error(t.Failure) + "\n")
		return b.String()
	}

	if t.NoPackaging {
		fmt.Fprintf(&b, "  %s ceil(%s) = %s %s @ %s each\n",
			Warn("no presentation:"),
			FormatQty(t.ExactPackages),
			FormatNumber(t.PurchaseQty), t.PurchaseUnit,
			FormatMoney(currency, t.FallbackUnitPrice))
	} else {
		fmt.Fprintf(&b, "  %s holds %s %s: ceil(%s) = %s @ %s each\n",
			t.Packaging.Name,
			FormatQty(t.Packaging.Content), t.Unit,
			FormatQty(t.ExactPackages),
			FormatNumber(t.PurchaseQty),
			FormatMoney(currency, t.Packaging.Price))
	}
	fmt.Fprintf(&b, "  cost %s\n", FormatMoney(currency, t.Cost))
	return b.String()
}

// weekSummary compacts a contribution's weekday curve into "Mon 10, Tue 12".
// Weekdays run Monday first to match how sales reports are laid out.
func weekSummary(c planner.ProductContribution) string {
	if len(c.Week) == 0 {
		return ""
	}
	days := make([]time.Weekday, 0, len(c.Week))
	for d := range c.Week {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return mondayIndex(days[i]) < mondayIndex(days[j]) })

	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, FormatWeekday(d)+" "+FormatQty(c.Week[d]))
	}
	return strings.Join(parts, ", ")
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
