package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/marketarena/marketplace-api/internal/models"
	"github.com/marketarena/marketplace-api/internal/utils"
)

// PostgresStore implements Store on top of PostgreSQL via sqlx. The schema
// is managed by golang-migrate (see migrations/).
type PostgresStore struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// NewPostgresStore creates a store backed by the given database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// Atomic runs fn inside a serializable transaction. When the store is
// already transactional (nested call), fn runs against the same transaction.
func (s *PostgresStore) Atomic(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txStore := &PostgresStore{q: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) CreateSeller(ctx context.Context, sl *models.Seller) error {
	const q = `INSERT INTO sellers (id, name, auth_token) VALUES ($1, $2, $3)
	           RETURNING created_at`
	return sqlx.GetContext(ctx, s.q, &sl.CreatedAt, q, sl.ID, sl.Name, sl.AuthToken)
}

func (s *PostgresStore) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	const q = `SELECT * FROM sellers WHERE id = $1 LIMIT 1`
	var sl models.Seller
	if err := sqlx.GetContext(ctx, s.q, &sl, q, id); err != nil {
		return nil, mapNoRows(err)
	}
	return &sl, nil
}

func (s *PostgresStore) GetSellerByToken(ctx context.Context, token string) (*models.Seller, error) {
	const q = `SELECT * FROM sellers WHERE auth_token = $1 LIMIT 1`
	var sl models.Seller
	if err := sqlx.GetContext(ctx, s.q, &sl, q, token); err != nil {
		return nil, mapNoRows(err)
	}
	return &sl, nil
}

func (s *PostgresStore) ListSellers(ctx context.Context) ([]models.Seller, error) {
	const q = `SELECT * FROM sellers ORDER BY id`
	var out []models.Seller
	if err := sqlx.SelectContext(ctx, s.q, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) CreateBuyer(ctx context.Context, b *models.Buyer) error {
	const q = `INSERT INTO buyers (id, name, auth_token) VALUES ($1, $2, $3)
	           RETURNING created_at`
	return sqlx.GetContext(ctx, s.q, &b.CreatedAt, q, b.ID, b.Name, b.AuthToken)
}

func (s *PostgresStore) GetBuyerByToken(ctx context.Context, token string) (*models.Buyer, error) {
	const q = `SELECT * FROM buyers WHERE auth_token = $1 LIMIT 1`
	var b models.Buyer
	if err := sqlx.GetContext(ctx, s.q, &b, q, token); err != nil {
		return nil, mapNoRows(err)
	}
	return &b, nil
}

func (s *PostgresStore) ListBuyers(ctx context.Context) ([]models.Buyer, error) {
	const q = `SELECT * FROM buyers ORDER BY id`
	var out []models.Buyer
	if err := sqlx.SelectContext(ctx, s.q, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *models.Product) error {
	const q = `
	    INSERT INTO products (id, seller_id, variant, name, short_description,
	        long_description, price_in_cent, currency, gsm, width_inches,
	        length_inches, material, image_url, image_alt_text, bestseller)
	    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	    RETURNING created_at`
	err := sqlx.GetContext(ctx, s.q, &p.CreatedAt, q,
		p.ID, p.SellerID, p.Variant, p.Name, p.ShortDescription,
		p.LongDescription, p.PriceInCent, p.Currency, p.GSM, p.WidthInches,
		p.LengthInches, p.Material, p.ImageURL, p.ImageAltText, p.Bestseller,
	)
	if isUniqueViolation(err) {
		return utils.ErrDuplicateProductID
	}
	return err
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 LIMIT 1`
	var p models.Product
	if err := sqlx.GetContext(ctx, s.q, &p, q, id); err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	const q = `
	    UPDATE products
	    SET name = $2, short_description = $3, long_description = $4,
	        price_in_cent = $5, image_url = $6, image_alt_text = $7
	    WHERE id = $1`
	res, err := s.q.ExecContext(ctx, q,
		p.ID, p.Name, p.ShortDescription, p.LongDescription,
		p.PriceInCent, p.ImageURL, p.ImageAltText,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	const q = `SELECT * FROM products ORDER BY id`
	var out []models.Product
	if err := sqlx.SelectContext(ctx, s.q, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	const q = `
	    SELECT * FROM products
	    WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
	       OR short_description ILIKE '%' || $1 || '%' ESCAPE '\'
	       OR long_description ILIKE '%' || $1 || '%' ESCAPE '\'
	    ORDER BY ranking ASC NULLS LAST, id ASC`
	var out []models.Product
	if err := sqlx.SelectContext(ctx, s.q, &out, q, escapeLike(query)); err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLike neutralizes LIKE metacharacters so the search query matches as
// a literal substring, the same contract the memory store implements.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *PostgresStore) SetRankings(ctx context.Context, rankings map[string]int, bestsellers map[string]bool) error {
	const q = `UPDATE products SET ranking = $2, bestseller = $3 WHERE id = $1`
	for id, rank := range rankings {
		if _, err := s.q.ExecContext(ctx, q, id, rank, bestsellers[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) InsertPurchase(ctx context.Context, p *models.Purchase) error {
	const q = `
	    INSERT INTO purchases (id, product_id, buyer_id, seller_id,
	        price_of_purchase, wholesale_cost_at_purchase, day, round)
	    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	    RETURNING purchased_at`
	return sqlx.GetContext(ctx, s.q, &p.PurchasedAt, q,
		p.ID, p.ProductID, p.BuyerID, p.SellerID,
		p.PriceOfPurchase, p.WholesaleCostAtPurchase, p.Day, p.Round,
	)
}

func (s *PostgresStore) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	const q = `SELECT * FROM purchases WHERE id = $1 LIMIT 1`
	var p models.Purchase
	if err := sqlx.GetContext(ctx, s.q, &p, q, id); err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

func (s *PostgresStore) ListPurchases(ctx context.Context, round *int) ([]models.Purchase, error) {
	const q = `
	    SELECT * FROM purchases
	    WHERE ($1::int IS NULL OR round = $1)
	    ORDER BY purchased_at, id`
	var out []models.Purchase
	if err := sqlx.SelectContext(ctx, s.q, &out, q, round); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) CountPurchasesByProduct(ctx context.Context) (map[string]int, error) {
	const q = `SELECT product_id, COUNT(1) AS purchase_count FROM purchases GROUP BY product_id`
	rows := []struct {
		ProductID     string `db:"product_id"`
		PurchaseCount int    `db:"purchase_count"`
	}{}
	if err := sqlx.SelectContext(ctx, s.q, &rows, q); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.ProductID] = r.PurchaseCount
	}
	return counts, nil
}

func (s *PostgresStore) GetMeta(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM metadata WHERE key = $1 LIMIT 1`
	var v string
	if err := sqlx.GetContext(ctx, s.q, &v, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", utils.ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *PostgresStore) SetMeta(ctx context.Context, key, value string) error {
	const q = `
	    INSERT INTO metadata (key, value) VALUES ($1, $2)
	    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := s.q.ExecContext(ctx, q, key, value)
	return err
}

// Reset truncates every battle table in one statement. TRUNCATE takes an
// ACCESS EXCLUSIVE lock, so no other operation interleaves with the clear.
func (s *PostgresStore) Reset(ctx context.Context) error {
	const q = `TRUNCATE purchases, products, buyers, sellers, metadata`
	_, err := s.q.ExecContext(ctx, q)
	return err
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
