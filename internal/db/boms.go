package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shopfloor/internal/catalog"
)

const listBOMsSQL = `
select id, reference, product_id, output_quantity
from boms
order by reference;
`

const listBOMLinesSQL = `
select bom_id, product_id, quantity
from bom_lines;
`

func (p *Pool) BOMs(ctx context.Context) ([]catalog.BOM, error) {
	rows, err := p.Query(ctx, listBOMsSQL)
	if err != nil {
		return nil, fmt.Errorf("list boms: %w", err)
	}
	defer rows.Close()

	var boms []catalog.BOM
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var bom catalog.BOM
		if err := rows.Scan(&bom.ID, &bom.Reference, &bom.ProductID, &bom.OutputQuantity); err != nil {
			return nil, fmt.Errorf("scan bom: %w", err)
		}
		index[bom.ID] = len(boms)
		boms = append(boms, bom)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	lineRows, err := p.Query(ctx, listBOMLinesSQL)
	if err != nil {
		return nil, fmt.Errorf("list bom lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var bomID uuid.UUID
		var line catalog.BOMLine
		if err := lineRows.Scan(&bomID, &line.ProductID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		if i, ok := index[bomID]; ok {
			boms[i].Lines = append(boms[i].Lines, line)
		}
	}
	return boms, lineRows.Err()
}

const insertBOMSQL = `
insert into boms (id, reference, product_id, output_quantity)
values ($1, $2, $3, $4)
on conflict (reference) do nothing;
`

const insertBOMLineSQL = `
insert into bom_lines (bom_id, product_id, quantity)
values ($1, $2, $3)
on conflict (bom_id, product_id) do nothing;
`

func (p *Pool) InsertBOM(ctx context.Context, bom catalog.BOM) error {
	if _, err := p.Exec(ctx, insertBOMSQL, bom.ID, bom.Reference, bom.ProductID, bom.OutputQuantity); err != nil {
		return fmt.Errorf("insert bom %s: %w", bom.Reference, err)
	}
	for _, line := range bom.Lines {
		if _, err := p.Exec(ctx, insertBOMLineSQL, bom.ID, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("insert bom line %s/%s: %w", bom.Reference, line.ProductID, err)
		}
	}
	return nil
}
