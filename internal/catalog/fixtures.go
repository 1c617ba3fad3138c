package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FixtureRepository serves a deterministic demo dataset. It backs demo mode
// (no database configured), the seed tool, and tests. IDs are derived from
// the record references so reseeding is stable.
type FixtureRepository struct{}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{}
}

func fixtureID(reference string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("shopfloor:"+reference))
}

var fixtureEpoch = time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)

func (FixtureRepository) Products(context.Context) ([]Product, error) {
	return []Product{
		{ID: fixtureID("SKU-1001"), SKU: "SKU-1001", Name: "Steel Frame 40x40", Category: "frames", UnitPriceCents: 12500, UnitOfMeasure: "unit", CreatedAt: fixtureEpoch},
		{ID: fixtureID("SKU-1002"), SKU: "SKU-1002", Name: "Aluminium Panel 2mm", Category: "panels", UnitPriceCents: 4875, UnitOfMeasure: "unit", CreatedAt: fixtureEpoch},
		{ID: fixtureID("SKU-1003"), SKU: "SKU-1003", Name: "Hex Bolt M8", Category: "fasteners", UnitPriceCents: 35, UnitOfMeasure: "unit", CreatedAt: fixtureEpoch},
		{ID: fixtureID("SKU-1004"), SKU: "SKU-1004", Name: "Bearing 608ZZ", Category: "mechanical", UnitPriceCents: 210, UnitOfMeasure: "unit", CreatedAt: fixtureEpoch},
		{ID: fixtureID("SKU-1005"), SKU: "SKU-1005", Name: "Conveyor Roller Assembly", Category: "assemblies", UnitPriceCents: 18900, UnitOfMeasure: "unit", CreatedAt: fixtureEpoch},
	}, nil
}

func (FixtureRepository) WorkCenters(context.Context) ([]WorkCenter, error) {
	return []WorkCenter{
		{ID: fixtureID("WC-CUT"), Code: "WC-CUT", Name: "Cutting Line", CostPerHourCents: 8500, CapacityMinutes: 480, Status: WorkCenterActive},
		{ID: fixtureID("WC-WELD"), Code: "WC-WELD", Name: "Welding Station", CostPerHourCents: 11000, CapacityMinutes: 420, Status: WorkCenterActive},
		{ID: fixtureID("WC-ASSY"), Code: "WC-ASSY", Name: "Assembly Cell", CostPerHourCents: 7250, CapacityMinutes: 480, Status: WorkCenterMaintenance},
	}, nil
}

func (FixtureRepository) Orders(context.Context) ([]ManufacturingOrder, error) {
	return []ManufacturingOrder{
		{ID: fixtureID("MO-2025-001"), Reference: "MO-2025-001", ProductID: fixtureID("SKU-1005"), WorkCenterID: fixtureID("WC-ASSY"), Quantity: 20, Status: OrderInProgress, Deadline: fixtureEpoch.AddDate(0, 0, 7), CreatedAt: fixtureEpoch},
		{ID: fixtureID("MO-2025-002"), Reference: "MO-2025-002", ProductID: fixtureID("SKU-1001"), WorkCenterID: fixtureID("WC-CUT"), Quantity: 150, Status: OrderConfirmed, Deadline: fixtureEpoch.AddDate(0, 0, 10), CreatedAt: fixtureEpoch},
		{ID: fixtureID("MO-2025-003"), Reference: "MO-2025-003", ProductID: fixtureID("SKU-1002"), WorkCenterID: fixtureID("WC-CUT"), Quantity: 80, Status: OrderDraft, Deadline: fixtureEpoch.AddDate(0, 0, 14), CreatedAt: fixtureEpoch},
		{ID: fixtureID("MO-2025-004"), Reference: "MO-2025-004", ProductID: fixtureID("SKU-1005"), WorkCenterID: fixtureID("WC-WELD"), Quantity: 10, Status: OrderDone, Deadline: fixtureEpoch.AddDate(0, 0, -3), CreatedAt: fixtureEpoch.AddDate(0, 0, -20)},
		{ID: fixtureID("MO-2025-005"), Reference: "MO-2025-005", ProductID: fixtureID("SKU-1001"), WorkCenterID: fixtureID("WC-WELD"), Quantity: 60, Status: OrderCancelled, Deadline: fixtureEpoch.AddDate(0, 0, 21), CreatedAt: fixtureEpoch},
	}, nil
}

func (FixtureRepository) BOMs(context.Context) ([]BOM, error) {
	return []BOM{
		{
			ID:             fixtureID("BOM-ROLLER"),
			Reference:      "BOM-ROLLER",
			ProductID:      fixtureID("SKU-1005"),
			OutputQuantity: 1,
			Lines: []BOMLine{
				{ProductID: fixtureID("SKU-1001"), Quantity: 2},
				{ProductID: fixtureID("SKU-1003"), Quantity: 16},
				{ProductID: fixtureID("SKU-1004"), Quantity: 4},
			},
		},
		{
			ID:             fixtureID("BOM-FRAME"),
			Reference:      "BOM-FRAME",
			ProductID:      fixtureID("SKU-1001"),
			OutputQuantity: 1,
			Lines: []BOMLine{
				{ProductID: fixtureID("SKU-1003"), Quantity: 8},
			},
		},
	}, nil
}

func (FixtureRepository) StockMoves(context.Context) ([]StockMove, error) {
	return []StockMove{
		{ID: fixtureID("SM-0001"), Reference: "SM-0001", ProductID: fixtureID("SKU-1003"), Quantity: 500, Source: "Receiving", Destination: "Main Warehouse", Status: MoveDone, ScheduledAt: fixtureEpoch.AddDate(0, 0, -2)},
		{ID: fixtureID("SM-0002"), Reference: "SM-0002", ProductID: fixtureID("SKU-1001"), Quantity: 40, Source: "Main Warehouse", Destination: "WC-CUT Input", Status: MoveReady, ScheduledAt: fixtureEpoch.AddDate(0, 0, 1)},
		{ID: fixtureID("SM-0003"), Reference: "SM-0003", ProductID: fixtureID("SKU-1004"), Quantity: 120, Source: "Main Warehouse", Destination: "WC-ASSY Input", Status: MoveWaiting, ScheduledAt: fixtureEpoch.AddDate(0, 0, 2)},
		{ID: fixtureID("SM-0004"), Reference: "SM-0004", ProductID: fixtureID("SKU-1005"), Quantity: 10, Source: "WC-ASSY Output", Destination: "Finished Goods", Status: MoveDraft, ScheduledAt: fixtureEpoch.AddDate(0, 0, 5)},
		{ID: fixtureID("SM-0005"), Reference: "SM-0005", ProductID: fixtureID("SKU-1002"), Quantity: 25, Source: "Main Warehouse", Destination: "Scrap", Status: MoveCancelled, ScheduledAt: fixtureEpoch.AddDate(0, 0, 3)},
	}, nil
}
