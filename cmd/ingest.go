package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgcastano/provision/internal/cli"
	"github.com/dgcastano/provision/internal/ingest"
)

var (
	flagPeriodStart string
	flagPeriodEnd   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <report.csv>",
	Short: "Load a weekly sales report into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List ingested sales reports",
	RunE:  runReports,
}

func init() {
	ingestCmd.Flags().StringVar(&flagPeriodStart, "start", "", "Period start (YYYY-MM-DD)")
	ingestCmd.Flags().StringVar(&flagPeriodEnd, "end", "", "Period end (YYYY-MM-DD)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reportsCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	res, err := ingest.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, reason := range res.SkipReasons {
		progress("  skipped %s\n", reason)
	}

	start, end, err := reportPeriod()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.SaveReport(cmd.Context(), start, end, res.Observations)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}

	fmt.Printf("Report #%d saved: %d observations", id, len(res.Observations))
	if res.Skipped > 0 {
		fmt.Printf(", %d rows skipped", res.Skipped)
	}
	fmt.Println()
	return nil
}

// reportPeriod resolves the report's covered week. Defaults to the week
// ending yesterday when no dates are given.
func reportPeriod() (start, end time.Time, err error) {
	now := time.Now()
	end = now.AddDate(0, 0, -1)
	start = end.AddDate(0, 0, -6)

	if flagPeriodStart != "" {
		start, err = time.Parse("2006-01-02", flagPeriodStart)
		if err != nil {
			return start, end, fmt.Errorf("bad --start date: %w", err)
		}
	}
	if flagPeriodEnd != "" {
		end, err = time.Parse("2006-01-02", flagPeriodEnd)
		if err != nil {
			return start, end, fmt.Errorf("bad --end date: %w", err)
		}
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("period end %s precedes start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return start, end, nil
}

func runReports(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	reports, err := st.Reports(cmd.Context())
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println(cli.Muted("No sales reports loaded yet."))
		return nil
	}

	t := cli.Table{
		Title:   "Sales Reports",
		Headers: []string{"ID", "Period", "Loaded", "Lines"},
	}
	for _, r := range reports {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.PeriodStart.Format("2006-01-02") + " to " + r.PeriodEnd.Format("2006-01-02"),
			r.LoadedAt.Format("2006-01-02"),
			fmt.Sprintf("%d", r.LineCount),
		})
	}
	fmt.Print(cli.RenderTable(t))
	return nil
}
