package planner

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidPackagingError reports a purchase presentation whose content
// quantity is not positive. This is a catalog configuration error: the line
// fails rather than silently falling back to the per-unit price, so staff fix
// the presentation instead of trusting a wrong cost.
type InvalidPackagingError struct {
	Material     string
	Presentation string
	Content      decimal.Decimal
}

func (e *InvalidPackagingError) Error() string {
	return fmt.Sprintf("presentation %q of material %q has non-positive content %s",
		e.Presentation, e.Material, e.Content)
}
