package db

import (
	"context"
	"fmt"

	"shopfloor/internal/catalog"
)

const listWorkCentersSQL = `
select id, code, name, cost_per_hour_cents, capacity_minutes, status
from work_centers
order by code;
`

func (p *Pool) WorkCenters(ctx context.Context) ([]catalog.WorkCenter, error) {
	rows, err := p.Query(ctx, listWorkCentersSQL)
	if err != nil {
		return nil, fmt.Errorf("list work centers: %w", err)
	}
	defer rows.Close()

	var centers []catalog.WorkCenter
	for rows.Next() {
		var wc catalog.WorkCenter
		var status string
		if err := rows.Scan(&wc.ID, &wc.Code, &wc.Name, &wc.CostPerHourCents, &wc.CapacityMinutes, &status); err != nil {
			return nil, fmt.Errorf("scan work center: %w", err)
		}
		wc.Status = catalog.WorkCenterStatus(status)
		centers = append(centers, wc)
	}
	return centers, rows.Err()
}

const insertWorkCenterSQL = `
insert into work_centers (id, code, name, cost_per_hour_cents, capacity_minutes, status)
values ($1, $2, $3, $4, $5, $6)
on conflict (code) do nothing;
`

func (p *Pool) InsertWorkCenter(ctx context.Context, wc catalog.WorkCenter) error {
	_, err := p.Exec(ctx, insertWorkCenterSQL,
		wc.ID, wc.Code, wc.Name, wc.CostPerHourCents, wc.CapacityMinutes, string(wc.Status))
	if err != nil {
		return fmt.Errorf("insert work center %s: %w", wc.Code, err)
	}
	return nil
}
