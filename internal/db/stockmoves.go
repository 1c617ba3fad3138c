package db

import (
	"context"
	"fmt"

	"shopfloor/internal/catalog"
)

const listStockMovesSQL = `
select id, reference, product_id, quantity, source, destination, status, scheduled_at
from stock_moves
order by scheduled_at;
`

func (p *Pool) StockMoves(ctx context.Context) ([]catalog.StockMove, error) {
	rows, err := p.Query(ctx, listStockMovesSQL)
	if err != nil {
		return nil, fmt.Errorf("list stock moves: %w", err)
	}
	defer rows.Close()

	var moves []catalog.StockMove
	for rows.Next() {
		var move catalog.StockMove
		var status string
		if err := rows.Scan(
			&move.ID,
			&move.Reference,
			&move.ProductID,
			&move.Quantity,
			&move.Source,
			&move.Destination,
			&status,
			&move.ScheduledAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock move: %w", err)
		}
		move.Status = catalog.MoveStatus(status)
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

const insertStockMoveSQL = `
insert into stock_moves (id, reference, product_id, quantity, source, destination, status, scheduled_at)
values ($1, $2, $3, $4, $5, $6, $7, $8)
on conflict (reference) do nothing;
`

func (p *Pool) InsertStockMove(ctx context.Context, move catalog.StockMove) error {
	_, err := p.Exec(ctx, insertStockMoveSQL,
		move.ID, move.Reference, move.ProductID, move.Quantity,
		move.Source, move.Destination, string(move.Status), move.ScheduledAt)
	if err != nil {
		return fmt.Errorf("insert stock move %s: %w", move.Reference, err)
	}
	return nil
}
