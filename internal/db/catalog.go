package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukanapp/dukan/internal/intake"
)

// CatalogStore reads products, variants and stock counts. It implements
// both intake.CatalogSearcher and intake.StockReader.
type CatalogStore struct {
	pool *pgxpool.Pool
}

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const productVariantColumns = `
	p.id, p.name, p.category, p.department_id,
	v.id, COALESCE(v.color_name, ''), COALESCE(v.size_code, ''),
	COALESCE(v.barcode, ''), v.unit_price_iqd, v.on_hand_qty, v.reserved_qty`

// SearchProducts returns every product whose name contains the query,
// with all of its variants. Matching is case-insensitive; callers fold
// the query before it gets here.
func (s *CatalogStore) SearchProducts(ctx context.Context, query string) ([]intake.CatalogProduct, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+productVariantColumns+`
		FROM products p
		JOIN product_variants v ON v.product_id = p.id
		WHERE p.active AND p.name_folded LIKE '%' || $1 || '%'
		ORDER BY p.id, v.id`, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ProductByBarcode returns the product owning the variant with the given
// barcode, or nil when no variant carries it.
func (s *CatalogStore) ProductByBarcode(ctx context.Context, barcode string) (*intake.CatalogProduct, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+productVariantColumns+`
		FROM products p
		JOIN product_variants v ON v.product_id = p.id
		WHERE p.active AND p.id = (
			SELECT product_id FROM product_variants WHERE barcode = $1
		)
		ORDER BY v.id`, barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up barcode: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

// VariantStock reads the live stock counts for one variant.
func (s *CatalogStore) VariantStock(ctx context.Context, productID, variantID int64) (intake.StockLevel, error) {
	var level intake.StockLevel
	err := s.pool.QueryRow(ctx, `
		SELECT on_hand_qty, reserved_qty
		FROM product_variants
		WHERE id = $1 AND product_id = $2`, variantID, productID).
		Scan(&level.OnHand, &level.Reserved)
	if errors.Is(err, pgx.ErrNoRows) {
		return intake.StockLevel{}, fmt.Errorf("variant %d of product %d not found", variantID, productID)
	}
	if err != nil {
		return intake.StockLevel{}, fmt.Errorf("failed to read stock: %w", err)
	}
	return level, nil
}

// ColorNames lists the distinct variant color names in the catalog, used
// to extend the color lexicon at startup.
func (s *CatalogStore) ColorNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT color_name
		FROM product_variants
		WHERE color_name IS NOT NULL AND color_name <> ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	defer rows.Close()

	var colors []string
	for rows.Next() {
		var color string
		if err := rows.Scan(&color); err != nil {
			return nil, err
		}
		colors = append(colors, color)
	}
	return colors, rows.Err()
}

func collectProducts(rows pgx.Rows) ([]intake.CatalogProduct, error) {
	var products []intake.CatalogProduct
	for rows.Next() {
		var product intake.CatalogProduct
		var variant intake.CatalogVariant
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Category, &product.DepartmentID,
			&variant.VariantID, &variant.ColorName, &variant.SizeCode,
			&variant.Barcode, &variant.UnitPrice, &variant.OnHandQty, &variant.ReservedQty,
		); err != nil {
			return nil, err
		}
		variant.ProductID = product.ID
		variant.ProductName = product.Name

		if len(products) > 0 && products[len(products)-1].ID == product.ID {
			last := &products[len(products)-1]
			last.Variants = append(last.Variants, variant)
			continue
		}
		product.Variants = []intake.CatalogVariant{variant}
		products = append(products, product)
	}
	return products, rows.Err()
}
