package db

import (
	"context"
	"fmt"

	"shopfloor/internal/catalog"
)

const listOrdersSQL = `
select id, reference, product_id, work_center_id, quantity, status, deadline, created_at
from manufacturing_orders
order by deadline;
`

func (p *Pool) Orders(ctx context.Context) ([]catalog.ManufacturingOrder, error) {
	rows, err := p.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []catalog.ManufacturingOrder
	for rows.Next() {
		var order catalog.ManufacturingOrder
		var status string
		if err := rows.Scan(
			&order.ID,
			&order.Reference,
			&order.ProductID,
			&order.WorkCenterID,
			&order.Quantity,
			&status,
			&order.Deadline,
			&order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		order.Status = catalog.OrderStatus(status)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

const insertOrderSQL = `
insert into manufacturing_orders (id, reference, product_id, work_center_id, quantity, status, deadline, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8)
on conflict (reference) do nothing;
`

func (p *Pool) InsertOrder(ctx context.Context, order catalog.ManufacturingOrder) error {
	_, err := p.Exec(ctx, insertOrderSQL,
		order.ID, order.Reference, order.ProductID, order.WorkCenterID,
		order.Quantity, string(order.Status), order.Deadline, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.Reference, err)
	}
	return nil
}
