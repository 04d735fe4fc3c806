package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dgcastano/provision/internal/demand"
)

// ReportInfo describes one ingested sales report.
type ReportInfo struct {
	ID          int64
	PeriodStart time.Time
	PeriodEnd   time.Time
	LoadedAt    time.Time
	LineCount   int
}

// SaveReport persists a parsed weekly sales report as a unit and returns its
// ID.
func (s *Store) SaveReport(ctx context.Context, periodStart, periodEnd time.Time, obs []demand.Observation) (int64, error) {
	var reportID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sales_reports (period_start, period_end, loaded_at) VALUES (?, ?, ?)`,
			periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"),
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting report: %w", err)
		}
		if reportID, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, o := range obs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO sales_report_lines (report_id, product_code, weekday, quantity) VALUES (?, ?, ?, ?)`,
				reportID, o.ProductCode, int(o.Weekday), o.Quantity.String(),
			)
			if err != nil {
				return fmt.Errorf("inserting report line for %q: %w", o.ProductCode, err)
			}
		}
		return nil
	})
	return reportID, err
}

// Reports lists ingested sales reports, most recent first.
func (s *Store) Reports(ctx context.Context) ([]ReportInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.period_start, r.period_end, r.loaded_at, COUNT(l.id)
		 FROM sales_reports r
		 LEFT JOIN sales_report_lines l ON l.report_id = r.id
		 GROUP BY r.id ORDER BY r.id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ReportInfo
	for rows.Next() {
		var info ReportInfo
		var start, end, loaded string
		if err := rows.Scan(&info.ID, &start, &end, &loaded, &info.LineCount); err != nil {
			return nil, err
		}
		info.PeriodStart, _ = time.Parse("2006-01-02", start)
		info.PeriodEnd, _ = time.Parse("2006-01-02", end)
		info.LoadedAt = parseTime(loaded)
		out = append(out, info)
	}
	return out, rows.Err()
}
