package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"oilhub/internal/store"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a SnapshotStore backed by PostgreSQL.
func NewPostgresStore(pool *pgxpool.Pool) SnapshotStore {
	return &postgresStore{pool: pool}
}

func (p *postgresStore) Load(ctx context.Context) (*store.Snapshot, error) {
	var s store.Snapshot

	if err := p.loadHubs(ctx, &s); err != nil {
		return nil, err
	}
	if err := p.loadCustomers(ctx, &s); err != nil {
		return nil, err
	}
	if err := p.loadProducts(ctx, &s); err != nil {
		return nil, err
	}
	if err := p.loadPriceHistory(ctx, &s); err != nil {
		return nil, err
	}
	if err := p.loadConsignments(ctx, &s); err != nil {
		return nil, err
	}
	if err := p.loadSales(ctx, &s); err != nil {
		return nil, err
	}
	if err := p.loadPayments(ctx, &s); err != nil {
		return nil, err
	}
	if err := p.loadReturns(ctx, &s); err != nil {
		return nil, err
	}
	if err := p.loadAdmins(ctx, &s); err != nil {
		return nil, err
	}

	return store.Normalize(s), nil
}

func (p *postgresStore) loadHubs(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `SELECT id, name, address FROM hubs ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load hubs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h store.Hub
		if err := rows.Scan(&h.ID, &h.Name, &h.Address); err != nil {
			return fmt.Errorf("scan hub: %w", err)
		}
		s.Hubs = append(s.Hubs, h)
	}
	return rows.Err()
}

func (p *postgresStore) loadCustomers(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `SELECT id, salutation, name, phone, notes FROM customers ORDER BY name`)
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c store.Customer
		if err := rows.Scan(&c.ID, &c.Salutation, &c.Name, &c.Phone, &c.Notes); err != nil {
			return fmt.Errorf("scan customer: %w", err)
		}
		s.Customers = append(s.Customers, c)
	}
	return rows.Err()
}

func (p *postgresStore) loadProducts(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `SELECT id, name FROM products ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pr store.Product
		if err := rows.Scan(&pr.ID, &pr.Name); err != nil {
			return fmt.Errorf("scan product: %w", err)
		}
		s.Products = append(s.Products, pr)
	}
	return rows.Err()
}

func (p *postgresStore) loadPriceHistory(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `
		SELECT id, product_id, effective_date, unit_price
		FROM price_history ORDER BY effective_date, product_id`)
	if err != nil {
		return fmt.Errorf("load price history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e store.PriceEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.EffectiveDate, &e.UnitPrice); err != nil {
			return fmt.Errorf("scan price entry: %w", err)
		}
		s.PriceHistory = append(s.PriceHistory, e)
	}
	return rows.Err()
}

func (p *postgresStore) loadConsignments(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `
		SELECT id, consignment_no, receive_date, to_hub_id, transport_cost, notes, created_by
		FROM consignments ORDER BY receive_date, id`)
	if err != nil {
		return fmt.Errorf("load consignments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c store.Consignment
		if err := rows.Scan(&c.ID, &c.ConsignmentNo, &c.ReceiveDate, &c.ToHubID,
			&c.TransportCost, &c.Notes, &c.CreatedBy); err != nil {
			return fmt.Errorf("scan consignment: %w", err)
		}
		s.Consignments = append(s.Consignments, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	lineRows, err := p.pool.Query(ctx, `
		SELECT id, consignment_id, product_id, qty_l, unit_price
		FROM consignment_lines ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load consignment lines: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var l store.ConsignmentLine
		if err := lineRows.Scan(&l.ID, &l.ConsignmentID, &l.ProductID, &l.QtyL, &l.UnitPrice); err != nil {
			return fmt.Errorf("scan consignment line: %w", err)
		}
		s.ConsignmentLines = append(s.ConsignmentLines, l)
	}
	return lineRows.Err()
}

func (p *postgresStore) loadSales(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `
		SELECT id, sale_no, sale_date, hub_id, customer_id, reimbursement_amount, notes, created_by
		FROM sales ORDER BY sale_date, id`)
	if err != nil {
		return fmt.Errorf("load sales: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sl store.Sale
		if err := rows.Scan(&sl.ID, &sl.SaleNo, &sl.SaleDate, &sl.HubID, &sl.CustomerID,
			&sl.ReimbursementAmount, &sl.Notes, &sl.CreatedBy); err != nil {
			return fmt.Errorf("scan sale: %w", err)
		}
		s.Sales = append(s.Sales, sl)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	lineRows, err := p.pool.Query(ctx, `
		SELECT id, sale_id, product_id, qty_l, unit_price
		FROM sale_lines ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load sale lines: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var l store.SaleLine
		if err := lineRows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.QtyL, &l.UnitPrice); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		s.SaleLines = append(s.SaleLines, l)
	}
	return lineRows.Err()
}

func (p *postgresStore) loadPayments(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `
		SELECT id, payment_date, customer_id, amount, mode, type, reference, notes, created_by
		FROM payments ORDER BY payment_date, id`)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pay store.Payment
		if err := rows.Scan(&pay.ID, &pay.PaymentDate, &pay.CustomerID, &pay.Amount,
			&pay.Mode, &pay.Type, &pay.Reference, &pay.Notes, &pay.CreatedBy); err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		s.Payments = append(s.Payments, pay)
	}
	return rows.Err()
}

func (p *postgresStore) loadReturns(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `
		SELECT id, return_date, type, hub_id, customer_id, reference_id,
		       product_id, qty, unit_price_at_return, notes, created_by
		FROM returns ORDER BY return_date, id`)
	if err != nil {
		return fmt.Errorf("load returns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r store.ReturnRecord
		if err := rows.Scan(&r.ID, &r.Date, &r.Type, &r.HubID, &r.CustomerID, &r.ReferenceID,
			&r.ProductID, &r.Qty, &r.UnitPriceAtReturn, &r.Notes, &r.CreatedBy); err != nil {
			return fmt.Errorf("scan return: %w", err)
		}
		s.Returns = append(s.Returns, r)
	}
	return rows.Err()
}

func (p *postgresStore) loadAdmins(ctx context.Context, s *store.Snapshot) error {
	rows, err := p.pool.Query(ctx, `SELECT username FROM admin_usernames ORDER BY username`)
	if err != nil {
		return fmt.Errorf("load admins: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return fmt.Errorf("scan admin username: %w", err)
		}
		s.AdminUsernames = append(s.AdminUsernames, u)
	}
	return rows.Err()
}

// snapshotTables lists every table Save rewrites, in delete order.
var snapshotTables = []string{
	"admin_usernames", "returns", "payments",
	"sale_lines", "sales", "consignment_lines", "consignments",
	"price_history", "products", "customers", "hubs",
}

// Save replaces the stored state inside one transaction: delete everything,
// then bulk-insert each collection with CopyFrom. Readers either see the
// previous complete state or the new one, never a mix.
func (p *postgresStore) Save(ctx context.Context, s *store.Snapshot) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range snapshotTables {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := copyAll(ctx, tx, "hubs",
		[]string{"id", "name", "address"},
		s.Hubs, func(h store.Hub) []any { return []any{h.ID, h.Name, h.Address} }); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "customers",
		[]string{"id", "salutation", "name", "phone", "notes"},
		s.Customers, func(c store.Customer) []any {
			return []any{c.ID, c.Salutation, c.Name, c.Phone, c.Notes}
		}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "products",
		[]string{"id", "name"},
		s.Products, func(pr store.Product) []any { return []any{pr.ID, pr.Name} }); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "price_history",
		[]string{"id", "product_id", "effective_date", "unit_price"},
		s.PriceHistory, func(e store.PriceEntry) []any {
			return []any{e.ID, e.ProductID, string(e.EffectiveDate), e.UnitPrice}
		}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "consignments",
		[]string{"id", "consignment_no", "receive_date", "to_hub_id", "transport_cost", "notes", "created_by"},
		s.Consignments, func(c store.Consignment) []any {
			return []any{c.ID, c.ConsignmentNo, string(c.ReceiveDate), c.ToHubID, c.TransportCost, c.Notes, c.CreatedBy}
		}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "consignment_lines",
		[]string{"id", "consignment_id", "product_id", "qty_l", "unit_price"},
		s.ConsignmentLines, func(l store.ConsignmentLine) []any {
			return []any{l.ID, l.ConsignmentID, l.ProductID, l.QtyL, l.UnitPrice}
		}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "sales",
		[]string{"id", "sale_no", "sale_date", "hub_id", "customer_id", "reimbursement_amount", "notes", "created_by"},
		s.Sales, func(sl store.Sale) []any {
			return []any{sl.ID, sl.SaleNo, string(sl.SaleDate), sl.HubID, sl.CustomerID, sl.ReimbursementAmount, sl.Notes, sl.CreatedBy}
		}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "sale_lines",
		[]string{"id", "sale_id", "product_id", "qty_l", "unit_price"},
		s.SaleLines, func(l store.SaleLine) []any {
			return []any{l.ID, l.SaleID, l.ProductID, l.QtyL, l.UnitPrice}
		}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "payments",
		[]string{"id", "payment_date", "customer_id", "amount", "mode", "type", "reference", "notes", "created_by"},
		s.Payments, func(pay store.Payment) []any {
			return []any{pay.ID, string(pay.PaymentDate), pay.CustomerID, pay.Amount, pay.Mode, string(pay.Type), pay.Reference, pay.Notes, pay.CreatedBy}
		}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "returns",
		[]string{"id", "return_date", "type", "hub_id", "customer_id", "reference_id", "product_id", "qty", "unit_price_at_return", "notes", "created_by"},
		s.Returns, func(r store.ReturnRecord) []any {
			return []any{r.ID, string(r.Date), string(r.Type), r.HubID, r.CustomerID, r.ReferenceID, r.ProductID, r.Qty, r.UnitPriceAtReturn, r.Notes, r.CreatedBy}
		}); err != nil {
		return err
	}
	if err := copyAll(ctx, tx, "admin_usernames",
		[]string{"username"},
		s.AdminUsernames, func(u string) []any { return []any{u} }); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	return nil
}

// copyAll bulk-inserts one collection via the COPY protocol.
func copyAll[T any](ctx context.Context, tx pgx.Tx, table string, columns []string, recs []T, row func(T) []any) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns,
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			return row(recs[i]), nil
		}))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	return nil
}
