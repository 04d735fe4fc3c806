package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dgcastano/provision/internal/budget"
	"github.com/dgcastano/provision/internal/cli"
	"github.com/dgcastano/provision/internal/planner"
	"github.com/dgcastano/provision/internal/store"
)

var (
	flagBudgetMonth    int
	flagBudgetYear     int
	flagBudgetDesc     string
	flagBudgetReports  []int64
	flagEditQty        string
	flagEditCost       string
	flagAddCategory    string
	flagAddMaterial    string
	flagAddUnit        string
	flagAddQty         string
	flagAddCost        string
	flagShowDetail     bool
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Create and manage persisted procurement budgets",
}

var budgetCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a budget from selected sales reports",
	RunE:  runBudgetCreate,
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets with their totals",
	RunE:  runBudgetList,
}

var budgetShowCmd = &cobra.Command{
	Use:   "show <budget-id>",
	Short: "Show a budget's lines grouped by category",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetShow,
}

var budgetEditLineCmd = &cobra.Command{
	Use:   "edit-line <line-id>",
	Short: "Override a line's quantity and/or cost by hand",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetEditLine,
}

var budgetAddLineCmd = &cobra.Command{
	Use:   "add-line <budget-id>",
	Short: "Append a manual line to a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetAddLine,
}

var budgetRemoveLineCmd = &cobra.Command{
	Use:   "remove-line <line-id>",
	Short: "Delete a line from its budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetRemoveLine,
}

var budgetDeleteCmd = &cobra.Command{
	Use:   "delete <budget-id>",
	Short: "Delete a budget and all its lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetDelete,
}

func init() {
	now := time.Now()
	budgetCreateCmd.Flags().IntVar(&flagBudgetMonth, "month", int(now.Month()), "Budget month (1-12)")
	budgetCreateCmd.Flags().IntVar(&flagBudgetYear, "year", now.Year(), "Budget year")
	budgetCreateCmd.Flags().StringVar(&flagBudgetDesc, "description", "", "Free-text description")
	budgetCreateCmd.Flags().Int64SliceVar(&flagBudgetReports, "reports", nil, "Sales report IDs to base the budget on (required)")

	budgetEditLineCmd.Flags().StringVar(&flagEditQty, "quantity", "", "New quantity")
	budgetEditLineCmd.Flags().StringVar(&flagEditCost, "cost", "", "New cost")

	budgetAddLineCmd.Flags().StringVar(&flagAddCategory, "category", "", "Material category (default Uncategorized)")
	budgetAddLineCmd.Flags().StringVar(&flagAddMaterial, "material", "", "Material name (required)")
	budgetAddLineCmd.Flags().StringVar(&flagAddUnit, "unit", "", "Unit label (required)")
	budgetAddLineCmd.Flags().StringVar(&flagAddQty, "quantity", "0", "Quantity")
	budgetAddLineCmd.Flags().StringVar(&flagAddCost, "cost", "0", "Cost")

	budgetShowCmd.Flags().BoolVar(&flagShowDetail, "detail", false, "Show the full calculation trace per line")

	budgetCmd.AddCommand(budgetCreateCmd, budgetListCmd, budgetShowCmd,
		budgetEditLineCmd, budgetAddLineCmd, budgetRemoveLineCmd, budgetDeleteCmd)
	rootCmd.AddCommand(budgetCmd)
}

func budgetService(st *store.Store) *budget.Service {
	return budget.NewService(st, planner.New(st, flagWeeks))
}

func runBudgetCreate(cmd *cobra.Command, args []string) error {
	if len(flagBudgetReports) == 0 {
		return errors.New("--reports is required: select the sales reports to average")
	}
	if flagBudgetMonth < 1 || flagBudgetMonth > 12 {
		return fmt.Errorf("month %d out of range", flagBudgetMonth)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := budgetService(st)
	id, err := svc.Generate(cmd.Context(), flagBudgetMonth, flagBudgetYear, flagBudgetDesc, flagBudgetReports)
	if err != nil {
		if errors.Is(err, budget.ErrNoDemand) {
			fmt.Println(cli.Muted("Nothing to buy: the selected reports produced no purchasable lines."))
			return nil
		}
		return err
	}

	b, err := st.Budget(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("Budget #%d created for %s: %d lines, total %s\n",
		b.Number, b.Period(), len(b.Lines), cli.FormatMoney(currency(), b.Total))
	return nil
}

func runBudgetList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	budgets, err := st.Budgets(cmd.Context())
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Println(cli.Muted("No budgets yet. Create one with: provision budget create"))
		return nil
	}

	cur := currency()
	t := cli.Table{
		Title:   "Budgets",
		Headers: []string{"ID", "No.", "Period", "Description", "Total", "Created"},
	}
	for _, b := range budgets {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", b.ID),
			fmt.Sprintf("%d", b.Number),
			cli.FormatPeriod(b.Month, b.Year),
			b.Description,
			cli.FormatMoney(cur, b.Total),
			b.CreatedAt.Format("2006-01-02"),
		})
	}
	fmt.Print(cli.RenderTable(t))
	return nil
}

func runBudgetShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	b, err := st.Budget(cmd.Context(), id)
	if err != nil {
		return err
	}

	cur := currency()
	title := fmt.Sprintf("Budget #%d, %s", b.Number, b.Period())
	if b.Description != "" {
		title += ": " + b.Description
	}
	fmt.Println(cli.RenderTitle(title))

	// Lines arrive ordered by category then material; emit a separator at
	// each category boundary, mirroring the grouped detail view.
	t := cli.Table{
		Headers: []string{"Line", "Material", "Qty", "Unit", "Cost", "Source"},
	}
	lastCategory := ""
	for i, l := range b.Lines {
		if l.Category != lastCategory {
			if i > 0 {
				t.Rows = append(t.Rows, []string{"---"})
			}
			t.Rows = append(t.Rows, []string{"» " + l.Category})
			lastCategory = l.Category
		}
		source := cli.TraceSummary(cur, l.Trace)
		if l.Manual {
			source = "manual"
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", l.ID),
			l.Material,
			cli.FormatQty(l.Quantity),
			l.Unit,
			cli.FormatMoney(cur, l.Cost),
			source,
		})
	}
	t.Rows = append(t.Rows, []string{"---"})
	t.Rows = append(t.Rows, []string{"Total", "", "", "", cli.FormatMoney(cur, b.Total), ""})
	fmt.Print(cli.RenderTable(t))

	if flagShowDetail {
		for _, l := range b.Lines {
			fmt.Println()
			fmt.Print(cli.RenderTrace(cur, l.Trace))
		}
	}
	return nil
}

func runBudgetEditLine(cmd *cobra.Command, args []string) error {
	lineID, err := parseID(args[0])
	if err != nil {
		return err
	}

	qty, err := optionalDecimal(flagEditQty, "quantity")
	if err != nil {
		return err
	}
	cost, err := optionalDecimal(flagEditCost, "cost")
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := budgetService(st)
	if err := svc.EditLine(cmd.Context(), lineID, qty, cost); err != nil {
		return err
	}

	line, err := st.Line(cmd.Context(), lineID)
	if err != nil {
		return err
	}
	total, err := svc.Total(cmd.Context(), line.BudgetID)
	if err != nil {
		return err
	}
	fmt.Printf("Line %d updated. Budget total is now %s\n", lineID, cli.FormatMoney(currency(), total))
	return nil
}

func runBudgetAddLine(cmd *cobra.Command, args []string) error {
	budgetID, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(flagAddQty)
	if err != nil {
		return fmt.Errorf("bad quantity %q: %w", flagAddQty, err)
	}
	cost, err := decimal.NewFromString(flagAddCost)
	if err != nil {
		return fmt.Errorf("bad cost %q: %w", flagAddCost, err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := budgetService(st)
	lineID, err := svc.AddManualLine(cmd.Context(), budgetID, flagAddCategory, flagAddMaterial, flagAddUnit, qty, cost)
	if err != nil {
		return err
	}
	total, err := svc.Total(cmd.Context(), budgetID)
	if err != nil {
		return err
	}
	fmt.Printf("Line %d added. Budget total is now %s\n", lineID, cli.FormatMoney(currency(), total))
	return nil
}

func runBudgetRemoveLine(cmd *cobra.Command, args []string) error {
	lineID, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	line, err := st.Line(cmd.Context(), lineID)
	if err != nil {
		return err
	}

	svc := budgetService(st)
	if err := svc.RemoveLine(cmd.Context(), lineID); err != nil {
		return err
	}
	total, err := svc.Total(cmd.Context(), line.BudgetID)
	if err != nil {
		return err
	}
	fmt.Printf("Line %d removed. Budget total is now %s\n", lineID, cli.FormatMoney(currency(), total))
	return nil
}

func runBudgetDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteBudget(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("Budget %d deleted\n", id)
	return nil
}

func parseID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return id, nil
}

func optionalDecimal(s, label string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q: %w", label, s, err)
	}
	return &d, nil
}
