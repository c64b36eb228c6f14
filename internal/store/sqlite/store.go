package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver

	matchmodel "inventory-recon/internal/match/model"
	stockmodel "inventory-recon/internal/stock/model"
	"inventory-recon/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	sku         TEXT NOT NULL DEFAULT '',
	part_number TEXT NOT NULL DEFAULT '',
	quantity    REAL NOT NULL DEFAULT 0,
	price       TEXT NOT NULL DEFAULT '0',
	created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS jobs (
	id               TEXT PRIMARY KEY,
	applied_snapshot TEXT,
	updated_at       DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS stock_movements (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id TEXT NOT NULL,
	delta      REAL NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements(product_id);
`

// Store is the SQLite-backed document store: product catalog, per-job
// applied snapshots and a stock movement trail.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at path. WAL mode and
// a busy timeout keep concurrent adjustments from tripping over locks.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ListProducts(ctx context.Context) ([]matchmodel.CatalogProduct, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, sku, part_number, quantity FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var out []matchmodel.CatalogProduct
	for rows.Next() {
		var p matchmodel.CatalogProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Sku, &p.PartNumber, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (matchmodel.CatalogProduct, error) {
	var p matchmodel.CatalogProduct
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, sku, part_number, quantity FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Sku, &p.PartNumber, &p.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return p, store.ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("loading product %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p matchmodel.CatalogProduct, price decimal.Decimal) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, sku, part_number, quantity, price) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Sku, p.PartNumber, p.Quantity, price.String())
	if err != nil {
		return "", fmt.Errorf("creating product: %w", err)
	}
	return p.ID, nil
}

// AdjustQuantity is the atomic increment of the reconciliation contract:
// the read-modify-write happens inside a single UPDATE, so concurrent
// deltas against the same product compose in any interleaving. The
// movement row rides in the same transaction.
func (s *Store) AdjustQuantity(ctx context.Context, id string, delta float64, reason string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning adjustment: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx,
		`UPDATE products SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, id)
	if err != nil {
		return fmt.Errorf("adjusting quantity of %s: %w", id, err)
	}
	if n, err := r.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("adjusting quantity of %s: %w", id, store.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stock_movements (product_id, delta, reason) VALUES (?, ?, ?)`,
		id, delta, reason); err != nil {
		return fmt.Errorf("recording movement for %s: %w", id, err)
	}
	return tx.Commit()
}

func (s *Store) ProductQuantity(ctx context.Context, id string) (float64, error) {
	var q float64
	err := s.db.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = ?`, id).Scan(&q)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reading quantity of %s: %w", id, err)
	}
	return q, nil
}

func (s *Store) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error {
	r, err := s.db.ExecContext(ctx,
		`UPDATE products SET price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		price.String(), id)
	if err != nil {
		return fmt.Errorf("updating price of %s: %w", id, err)
	}
	if n, err := r.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating price of %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) AppliedSnapshot(ctx context.Context, jobID string) ([]stockmodel.SnapshotItem, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT applied_snapshot FROM jobs WHERE id = ?`, jobID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // never applied
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot of job %s: %w", jobID, err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var items []stockmodel.SnapshotItem
	if err := json.Unmarshal([]byte(raw.String), &items); err != nil {
		return nil, fmt.Errorf("decoding snapshot of job %s: %w", jobID, err)
	}
	return items, nil
}

func (s *Store) ReplaceAppliedSnapshot(ctx context.Context, jobID string, items []stockmodel.SnapshotItem) error {
	if items == nil {
		items = []stockmodel.SnapshotItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding snapshot of job %s: %w", jobID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, applied_snapshot) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET
			applied_snapshot = excluded.applied_snapshot,
			updated_at = CURRENT_TIMESTAMP`,
		jobID, string(raw))
	if err != nil {
		return fmt.Errorf("replacing snapshot of job %s: %w", jobID, err)
	}
	return nil
}
