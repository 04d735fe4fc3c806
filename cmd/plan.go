package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dgcastano/provision/internal/catalog"
	"github.com/dgcastano/provision/internal/cli"
	"github.com/dgcastano/provision/internal/demand"
	"github.com/dgcastano/provision/internal/ingest"
	"github.com/dgcastano/provision/internal/planner"
)

var (
	flagSimulate string
	flagReports  []int64
	flagDetail   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute purchase requirements without persisting anything",
	Long: "Run the planning pipeline over historical demand (or a simulated\n" +
		"demand file) and print per-material purchase quantities and costs.\n" +
		"Nothing is written to the database.",
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&flagSimulate, "simulate", "", "CSV demand override instead of historical sales")
	planCmd.Flags().Int64SliceVar(&flagReports, "reports", nil, "Restrict historical demand to these report IDs")
	planCmd.Flags().BoolVar(&flagDetail, "detail", false, "Show the full calculation trace per material")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	engine := planner.New(st, flagWeeks)
	ctx := cmd.Context()

	var reports []planner.MaterialReport
	switch {
	case flagSimulate != "":
		if len(flagReports) > 0 {
			return fmt.Errorf("--simulate and --reports are mutually exclusive")
		}
		set, err := loadSimulation(flagSimulate)
		if err != nil {
			return err
		}
		if flagCategory != "" {
			// Restrict the simulation to products whose recipes touch the
			// selected category, so a broad demand file can drive a narrow run.
			relevant, err := st.ProductsUsingCategory(ctx, flagCategory)
			if err != nil {
				return err
			}
			set = scopeToProducts(set, relevant)
		}
		reports, err = engine.ComputeRequirements(ctx, flagCategory, set)
		if err != nil {
			return err
		}
	case len(flagReports) > 0:
		reports, err = engine.ComputeFromReports(ctx, flagCategory, flagReports)
		if err != nil {
			return err
		}
	default:
		reports, err = engine.ComputeRequirements(ctx, flagCategory, nil)
		if err != nil {
			return err
		}
	}

	if len(reports) == 0 {
		fmt.Println(cli.Muted("Nothing to buy: no demand found for the selected inputs."))
		return nil
	}

	renderPlan(reports, engine.HorizonWeeks())
	return nil
}

// loadSimulation parses a demand-override CSV and folds it into a demand set.
func loadSimulation(path string) (demand.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening simulation file: %w", err)
	}
	defer f.Close()

	res, err := ingest.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing simulation file: %w", err)
	}
	if res.Skipped > 0 {
		progress("  %d rows skipped in %s\n", res.Skipped, path)
	}
	return demand.Collect(res.Observations), nil
}

func scopeToProducts(set demand.Set, products []catalog.Product) demand.Set {
	keep := make(map[string]bool, len(products))
	for _, p := range products {
		keep[p.Code] = true
	}
	scoped := make(demand.Set, len(set))
	for code, week := range set {
		if keep[code] {
			scoped[code] = week
		}
	}
	return scoped
}

func renderPlan(reports []planner.MaterialReport, weeks int) {
	cur := currency()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("Purchase Plan (%d-week horizon)", weeks)))

	t := cli.Table{
		Headers: []string{"Material", "Weekly", "Total", "Buy", "Cost"},
	}
	var total decimal.Decimal
	var failures []planner.MaterialReport
	for _, r := range reports {
		if r.Err != nil {
			failures = append(failures, r)
			continue
		}
		buy := fmt.Sprintf("%s %s", cli.FormatNumber(r.PurchaseQty), r.PurchaseUnit)
		if r.NoPackaging {
			buy += " *"
		}
		t.Rows = append(t.Rows, []string{
			r.Material,
			cli.FormatQty(r.WeeklyQty) + " " + r.Unit,
			cli.FormatQty(r.TotalQty) + " " + r.Unit,
			buy,
			cli.FormatMoney(cur, r.Cost),
		})
		total = total.Add(r.Cost)
	}
	t.Rows = append(t.Rows, []string{"---"})
	t.Rows = append(t.Rows, []string{"Total", "", "", "", cli.FormatMoney(cur, total)})
	fmt.Print(cli.RenderTable(t))

	if hasNoPackaging(reports) {
		fmt.Println(cli.Muted("  * no presentation registered; priced per base unit"))
	}
	for _, r := range failures {
		fmt.Println(cli.Error(fmt.Sprintf("  skipped %s: %v", r.Material, r.Err)))
	}

	if flagDetail {
		for _, r := range reports {
			fmt.Println()
			fmt.Print(cli.RenderTrace(cur, r.Trace))
		}
	}
}

func hasNoPackaging(reports []planner.MaterialReport) bool {
	for _, r := range reports {
		if r.Err == nil && r.NoPackaging {
			return true
		}
	}
	return false
}
