package db

import (
	"context"
	"fmt"

	"shopfloor/internal/catalog"
)

const listProductsSQL = `
select id, sku, name, category, unit_price_cents, unit_of_measure, created_at
from products
order by sku;
`

func (p *Pool) Products(ctx context.Context) ([]catalog.Product, error) {
	rows, err := p.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var product catalog.Product
		if err := rows.Scan(
			&product.ID,
			&product.SKU,
			&product.Name,
			&product.Category,
			&product.UnitPriceCents,
			&product.UnitOfMeasure,
			&product.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

const insertProductSQL = `
insert into products (id, sku, name, category, unit_price_cents, unit_of_measure, created_at)
values ($1, $2, $3, $4, $5, $6, $7)
on conflict (sku) do nothing;
`

func (p *Pool) InsertProduct(ctx context.Context, product catalog.Product) error {
	_, err := p.Exec(ctx, insertProductSQL,
		product.ID, product.SKU, product.Name, product.Category,
		product.UnitPriceCents, product.UnitOfMeasure, product.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", product.SKU, err)
	}
	return nil
}
