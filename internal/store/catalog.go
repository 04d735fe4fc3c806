package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/catalog"
	"github.com/dgcastano/provision/internal/demand"
)

// AddMaterial inserts a material and returns its ID.
func (s *Store) AddMaterial(ctx context.Context, m catalog.Material) (int64, error) {
	factor := m.ShrinkFactor
	if !factor.IsPositive() {
		factor = decimal.NewFromInt(1)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO materials (name, base_unit, category, shrink_factor, unit_cost) VALUES (?, ?, ?, ?, ?)`,
		m.Name, m.BaseUnit, m.Category, factor.String(), m.UnitCost.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting material %q: %w", m.Name, err)
	}
	return res.LastInsertId()
}

// AddPresentation inserts a packaging option. Insertion order determines
// which presentation a planning run selects (the first registered one).
func (s *Store) AddPresentation(ctx context.Context, p catalog.Presentation) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO presentations (material_id, name, content_qty, price) VALUES (?, ?, ?, ?)`,
		p.MaterialID, p.Name, p.Content.String(), p.Price.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting presentation %q: %w", p.Name, err)
	}
	return res.LastInsertId()
}

// AddProduct inserts a product and returns its ID.
func (s *Store) AddProduct(ctx context.Context, p catalog.Product) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (code, name) VALUES (?, ?)`, p.Code, p.Name)
	if err != nil {
		return 0, fmt.Errorf("inserting product %q: %w", p.Code, err)
	}
	return res.LastInsertId()
}

// AddRecipeLine links a product (by code) to a material with the quantity
// consumed per unit sold.
func (s *Store) AddRecipeLine(ctx context.Context, productCode string, materialID int64, qtyPerUnit decimal.Decimal) error {
	var productID int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM products WHERE code = ?`, productCode).Scan(&productID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("unknown product code %q", productCode)
	}
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recipe_lines (product_id, material_id, qty_per_unit) VALUES (?, ?, ?)`,
		productID, materialID, qtyPerUnit.String(),
	)
	return err
}

// Materials lists materials, optionally filtered to one category, ordered by
// name.
func (s *Store) Materials(ctx context.Context, category string) ([]catalog.Material, error) {
	query := `SELECT id, name, base_unit, category, shrink_factor, unit_cost FROM materials`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []catalog.Material
	for rows.Next() {
		var m catalog.Material
		var factor, cost string
		if err := rows.Scan(&m.ID, &m.Name, &m.BaseUnit, &m.Category, &factor, &cost); err != nil {
			return nil, err
		}
		if m.ShrinkFactor, err = parseDec(factor); err != nil {
			return nil, fmt.Errorf("material %q shrink factor: %w", m.Name, err)
		}
		if m.UnitCost, err = parseDec(cost); err != nil {
			return nil, fmt.Errorf("material %q unit cost: %w", m.Name, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Products lists all catalog products ordered by name.
func (s *Store) Products(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Presentations lists a material's packaging options in registration order.
func (s *Store) Presentations(ctx context.Context, materialID int64) ([]catalog.Presentation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, material_id, name, content_qty, price FROM presentations WHERE material_id = ? ORDER BY id ASC`,
		materialID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []catalog.Presentation
	for rows.Next() {
		var p catalog.Presentation
		var content, price string
		if err := rows.Scan(&p.ID, &p.MaterialID, &p.Name, &content, &price); err != nil {
			return nil, err
		}
		if p.Content, err = parseDec(content); err != nil {
			return nil, fmt.Errorf("presentation %q content: %w", p.Name, err)
		}
		if p.Price, err = parseDec(price); err != nil {
			return nil, fmt.Errorf("presentation %q price: %w", p.Name, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Snapshot implements catalog.Accessor with one batched read per run.
func (s *Store) Snapshot(ctx context.Context, category string) (*catalog.Snapshot, error) {
	materials, err := s.Materials(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("loading materials: %w", err)
	}

	snap := &catalog.Snapshot{
		Materials:     materials,
		Presentations: make(map[int64]catalog.Presentation),
		Products:      make(map[string]catalog.Product),
		Recipes:       make(map[string][]catalog.RecipeLine),
	}
	kept := make(map[int64]bool, len(materials))
	for _, m := range materials {
		kept[m.ID] = true
	}

	// First registered presentation per material, preserved by id order.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, material_id, name, content_qty, price FROM presentations ORDER BY material_id, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("loading presentations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p catalog.Presentation
		var content, price string
		if err := rows.Scan(&p.ID, &p.MaterialID, &p.Name, &content, &price); err != nil {
			return nil, err
		}
		if !kept[p.MaterialID] {
			continue
		}
		if _, ok := snap.Presentations[p.MaterialID]; ok {
			continue
		}
		if p.Content, err = parseDec(content); err != nil {
			return nil, fmt.Errorf("presentation %q content: %w", p.Name, err)
		}
		if p.Price, err = parseDec(price); err != nil {
			return nil, fmt.Errorf("presentation %q price: %w", p.Name, err)
		}
		snap.Presentations[p.MaterialID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	products, err := s.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}
	for _, p := range products {
		snap.Products[p.Code] = p
	}

	lineRows, err := s.db.QueryContext(ctx,
		`SELECT p.code, r.material_id, r.qty_per_unit
		 FROM recipe_lines r JOIN products p ON r.product_id = p.id
		 ORDER BY r.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("loading recipe lines: %w", err)
	}
	defer func() { _ = lineRows.Close() }()
	for lineRows.Next() {
		var l catalog.RecipeLine
		var qty string
		if err := lineRows.Scan(&l.ProductCode, &l.MaterialID, &qty); err != nil {
			return nil, err
		}
		if !kept[l.MaterialID] {
			continue
		}
		if l.QtyPerUnit, err = parseDec(qty); err != nil {
			return nil, fmt.Errorf("recipe line for %q: %w", l.ProductCode, err)
		}
		snap.Recipes[l.ProductCode] = append(snap.Recipes[l.ProductCode], l)
	}
	return snap, lineRows.Err()
}

// ProductsUsingCategory implements catalog.Accessor.
func (s *Store) ProductsUsingCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	query := `SELECT DISTINCT p.id, p.code, p.name
		FROM products p
		JOIN recipe_lines r ON r.product_id = p.id
		JOIN materials m ON m.id = r.material_id`
	var args []any
	if category != "" {
		query += ` WHERE m.category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY p.name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// HistoricalDemand implements catalog.Accessor: per-product per-weekday
// quantities summed over the selected reports and divided by the report
// count, so weekdays missing from some reports still average over all of
// them.
func (s *Store) HistoricalDemand(ctx context.Context, reportIDs []int64) (demand.Set, error) {
	if len(reportIDs) == 0 {
		rows, err := s.db.QueryContext(ctx, `SELECT id FROM sales_reports`)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			reportIDs = append(reportIDs, id)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	if len(reportIDs) == 0 {
		return demand.Set{}, nil
	}

	query := `SELECT product_code, weekday, quantity FROM sales_report_lines WHERE report_id IN (` +
		inPlaceholders(len(reportIDs)) + `)`
	rows, err := s.db.QueryContext(ctx, query, int64Args(reportIDs)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var obs []demand.Observation
	for rows.Next() {
		var o demand.Observation
		var weekday int
		var qty string
		if err := rows.Scan(&o.ProductCode, &weekday, &qty); err != nil {
			return nil, err
		}
		o.Weekday = time.Weekday(weekday)
		if o.Quantity, err = parseDec(qty); err != nil {
			return nil, fmt.Errorf("report line for %q: %w", o.ProductCode, err)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	set := demand.Collect(obs)
	n := decimal.NewFromInt(int64(len(reportIDs)))
	for _, week := range set {
		for d, q := range week {
			week[d] = q.Div(n)
		}
	}
	return set, nil
}
