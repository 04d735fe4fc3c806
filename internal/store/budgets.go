package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/budget"
	"github.com/dgcastano/provision/internal/planner"
)

// CreateBudget implements budget.Repository. The budget header, its lines,
// its source-report links, and the derived total are written in one
// transaction.
func (s *Store) CreateBudget(ctx context.Context, b budget.Budget) (int64, error) {
	var budgetID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM budgets`).Scan(&count); err != nil {
			return err
		}

		createdAt := b.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		var total decimal.Decimal
		for _, l := range b.Lines {
			total = total.Add(l.Cost)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (number, month, year, description, total, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			count+1, b.Month, b.Year, b.Description, total.String(), createdAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting budget: %w", err)
		}
		if budgetID, err = res.LastInsertId(); err != nil {
			return err
		}

		for _, l := range b.Lines {
			if err := insertLineTx(ctx, tx, budgetID, l); err != nil {
				return err
			}
		}
		for _, rid := range b.ReportIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO budget_reports (budget_id, report_id) VALUES (?, ?)`, budgetID, rid)
			if err != nil {
				return fmt.Errorf("linking report %d: %w", rid, err)
			}
		}
		return nil
	})
	return budgetID, err
}

func insertLineTx(ctx context.Context, tx *sql.Tx, budgetID int64, l budget.Line) error {
	traceJSON, err := marshalTrace(l.Trace)
	if err != nil {
		return err
	}
	manual := 0
	if l.Manual {
		manual = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO budget_lines (budget_id, category, material, unit, quantity, cost, products, trace, manual)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		budgetID, l.Category, l.Material, l.Unit, l.Quantity.String(), l.Cost.String(),
		l.Products, traceJSON, manual,
	)
	if err != nil {
		return fmt.Errorf("inserting line %q: %w", l.Material, err)
	}
	return nil
}

func marshalTrace(t *planner.Trace) (string, error) {
	if t == nil {
		return "{}", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encoding trace: %w", err)
	}
	return string(data), nil
}

func unmarshalTrace(data string) (*planner.Trace, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var t planner.Trace
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return nil, fmt.Errorf("decoding trace: %w", err)
	}
	return &t, nil
}

// recomputeTotalTx re-derives a budget's total from its current lines. The
// sum runs over exact decimals in Go rather than SQL float arithmetic.
func recomputeTotalTx(ctx context.Context, tx *sql.Tx, budgetID int64) error {
	rows, err := tx.QueryContext(ctx, `SELECT cost FROM budget_lines WHERE budget_id = ?`, budgetID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	var total decimal.Decimal
	for rows.Next() {
		var cost string
		if err := rows.Scan(&cost); err != nil {
			return err
		}
		c, err := parseDec(cost)
		if err != nil {
			return fmt.Errorf("budget %d line cost: %w", budgetID, err)
		}
		total = total.Add(c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `UPDATE budgets SET total = ? WHERE id = ?`, total.String(), budgetID)
	return err
}

func scanLine(scanner interface{ Scan(...any) error }) (budget.Line, error) {
	var l budget.Line
	var qty, cost, trace string
	var manual int
	err := scanner.Scan(&l.ID, &l.BudgetID, &l.Category, &l.Material, &l.Unit,
		&qty, &cost, &l.Products, &trace, &manual)
	if err != nil {
		return l, err
	}
	if l.Quantity, err = parseDec(qty); err != nil {
		return l, fmt.Errorf("line %d quantity: %w", l.ID, err)
	}
	if l.Cost, err = parseDec(cost); err != nil {
		return l, fmt.Errorf("line %d cost: %w", l.ID, err)
	}
	if l.Trace, err = unmarshalTrace(trace); err != nil {
		return l, fmt.Errorf("line %d: %w", l.ID, err)
	}
	l.Manual = manual != 0
	return l, nil
}

const lineColumns = `id, budget_id, category, material, unit, quantity, cost, products, trace, manual`

// Line implements budget.Repository.
func (s *Store) Line(ctx context.Context, lineID int64) (budget.Line, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lineColumns+` FROM budget_lines WHERE id = ?`, lineID)
	l, err := scanLine(row)
	if err == sql.ErrNoRows {
		return l, fmt.Errorf("budget line %d not found", lineID)
	}
	return l, err
}

// InsertLine implements budget.Repository: appends a line and recomputes the
// budget total atomically.
func (s *Store) InsertLine(ctx context.Context, line budget.Line) (int64, error) {
	var lineID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM budgets WHERE id = ?`, line.BudgetID).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("budget %d not found", line.BudgetID)
		}
		if err := insertLineTx(ctx, tx, line.BudgetID, line); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, `SELECT last_insert_rowid()`).Scan(&lineID); err != nil {
			return err
		}
		return recomputeTotalTx(ctx, tx, line.BudgetID)
	})
	return lineID, err
}

// UpdateLine implements budget.Repository: rewrites a line and recomputes the
// budget total atomically.
func (s *Store) UpdateLine(ctx context.Context, line budget.Line) error {
	traceJSON, err := marshalTrace(line.Trace)
	if err != nil {
		return err
	}
	manual := 0
	if line.Manual {
		manual = 1
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE budget_lines SET category = ?, material = ?, unit = ?, quantity = ?, cost = ?, products = ?, trace = ?, manual = ?
			 WHERE id = ?`,
			line.Category, line.Material, line.Unit, line.Quantity.String(), line.Cost.String(),
			line.Products, traceJSON, manual, line.ID,
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("budget line %d not found", line.ID)
		}
		return recomputeTotalTx(ctx, tx, line.BudgetID)
	})
}

// DeleteLine implements budget.Repository: removes a line and recomputes the
// budget total atomically.
func (s *Store) DeleteLine(ctx context.Context, lineID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var budgetID int64
		err := tx.QueryRowContext(ctx, `SELECT budget_id FROM budget_lines WHERE id = ?`, lineID).Scan(&budgetID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("budget line %d not found", lineID)
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM budget_lines WHERE id = ?`, lineID); err != nil {
			return err
		}
		return recomputeTotalTx(ctx, tx, budgetID)
	})
}

// BudgetTotal implements budget.Repository.
func (s *Store) BudgetTotal(ctx context.Context, budgetID int64) (decimal.Decimal, error) {
	var total string
	err := s.db.QueryRowContext(ctx, `SELECT total FROM budgets WHERE id = ?`, budgetID).Scan(&total)
	if err == sql.ErrNoRows {
		return decimal.Decimal{}, fmt.Errorf("budget %d not found", budgetID)
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	return parseDec(total)
}

// Budget implements budget.Repository: loads a budget with its lines ordered
// by category then material, matching the audit view's grouping.
func (s *Store) Budget(ctx context.Context, id int64) (budget.Budget, error) {
	var b budget.Budget
	var total, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, number, month, year, description, total, created_at FROM budgets WHERE id = ?`, id).
		Scan(&b.ID, &b.Number, &b.Month, &b.Year, &b.Description, &total, &createdAt)
	if err == sql.ErrNoRows {
		return b, fmt.Errorf("budget %d not found", id)
	}
	if err != nil {
		return b, err
	}
	if b.Total, err = parseDec(total); err != nil {
		return b, fmt.Errorf("budget %d total: %w", id, err)
	}
	b.CreatedAt = parseTime(createdAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lineColumns+` FROM budget_lines WHERE budget_id = ? ORDER BY category, material`, id)
	if err != nil {
		return b, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return b, err
		}
		b.Lines = append(b.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return b, err
	}

	reportRows, err := s.db.QueryContext(ctx,
		`SELECT report_id FROM budget_reports WHERE budget_id = ? ORDER BY report_id`, id)
	if err != nil {
		return b, err
	}
	defer func() { _ = reportRows.Close() }()
	for reportRows.Next() {
		var rid int64
		if err := reportRows.Scan(&rid); err != nil {
			return b, err
		}
		b.ReportIDs = append(b.ReportIDs, rid)
	}
	return b, reportRows.Err()
}

// Budgets implements budget.Repository: lists budget headers, most recent
// first, without their lines.
func (s *Store) Budgets(ctx context.Context) ([]budget.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, number, month, year, description, total, created_at FROM budgets ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []budget.Budget
	for rows.Next() {
		var b budget.Budget
		var total, createdAt string
		if err := rows.Scan(&b.ID, &b.Number, &b.Month, &b.Year, &b.Description, &total, &createdAt); err != nil {
			return nil, err
		}
		if b.Total, err = parseDec(total); err != nil {
			return nil, fmt.Errorf("budget %d total: %w", b.ID, err)
		}
		b.CreatedAt = parseTime(createdAt)
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBudget removes a budget and its lines.
func (s *Store) DeleteBudget(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("budget %d not found", id)
	}
	return nil
}
