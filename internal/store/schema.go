package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS materials (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT NOT NULL,
    base_unit      TEXT NOT NULL,
    category       TEXT NOT NULL DEFAULT '',
    shrink_factor  TEXT NOT NULL DEFAULT '1',
    unit_cost      TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS presentations (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    material_id    INTEGER NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
    name           TEXT NOT NULL,
    content_qty    TEXT NOT NULL,
    price          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    code           TEXT NOT NULL UNIQUE,
    name           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recipe_lines (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id     INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    material_id    INTEGER NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
    qty_per_unit   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sales_reports (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    period_start   TEXT NOT NULL,
    period_end     TEXT NOT NULL,
    loaded_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sales_report_lines (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    report_id      INTEGER NOT NULL REFERENCES sales_reports(id) ON DELETE CASCADE,
    product_code   TEXT NOT NULL,
    weekday        INTEGER NOT NULL,
    quantity       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS budgets (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    number         INTEGER NOT NULL,
    month          INTEGER NOT NULL,
    year           INTEGER NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    total          TEXT NOT NULL DEFAULT '0',
    created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS budget_lines (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    budget_id      INTEGER NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
    category       TEXT NOT NULL DEFAULT '',
    material       TEXT NOT NULL,
    unit           TEXT NOT NULL,
    quantity       TEXT NOT NULL,
    cost           TEXT NOT NULL,
    products       TEXT NOT NULL DEFAULT '',
    trace          TEXT NOT NULL DEFAULT '{}',
    manual         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS budget_reports (
    budget_id      INTEGER NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
    report_id      INTEGER NOT NULL REFERENCES sales_reports(id),
    PRIMARY KEY (budget_id, report_id)
);

CREATE INDEX IF NOT EXISTS idx_presentations_material ON presentations(material_id);
CREATE INDEX IF NOT EXISTS idx_recipe_lines_product ON recipe_lines(product_id);
CREATE INDEX IF NOT EXISTS idx_recipe_lines_material ON recipe_lines(material_id);
CREATE INDEX IF NOT EXISTS idx_report_lines_report ON sales_report_lines(report_id);
CREATE INDEX IF NOT EXISTS idx_budget_lines_budget ON budget_lines(budget_id);
`
