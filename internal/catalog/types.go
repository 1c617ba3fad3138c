// Package catalog holds the manufacturing resource collections the dashboard
// reads: products, manufacturing orders, bills of materials, work centers,
// and stock moves. Collections are primed into an in-memory cache when an
// operator logs in and dropped again on logout.
package catalog

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the manufacturing order lifecycle.
type OrderStatus string

const (
	OrderDraft      OrderStatus = "draft"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderInProgress OrderStatus = "in_progress"
	OrderDone       OrderStatus = "done"
	OrderCancelled  OrderStatus = "cancelled"
)

// MoveStatus is the stock move lifecycle.
type MoveStatus string

const (
	MoveDraft     MoveStatus = "draft"
	MoveWaiting   MoveStatus = "waiting"
	MoveReady     MoveStatus = "ready"
	MoveDone      MoveStatus = "done"
	MoveCancelled MoveStatus = "cancelled"
)

// WorkCenterStatus reports whether a work center can take load.
type WorkCenterStatus string

const (
	WorkCenterActive      WorkCenterStatus = "active"
	WorkCenterMaintenance WorkCenterStatus = "maintenance"
)

type Product struct {
	ID             uuid.UUID `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	UnitOfMeasure  string    `json:"unitOfMeasure"`
	CreatedAt      time.Time `json:"createdAt"`
}

type WorkCenter struct {
	ID               uuid.UUID        `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	CostPerHourCents int64            `json:"costPerHourCents"`
	CapacityMinutes  int              `json:"capacityMinutes"`
	Status           WorkCenterStatus `json:"status"`
}

type ManufacturingOrder struct {
	ID           uuid.UUID   `json:"id"`
	Reference    string      `json:"reference"`
	ProductID    uuid.UUID   `json:"productId"`
	WorkCenterID uuid.UUID   `json:"workCenterId"`
	Quantity     int         `json:"quantity"`
	Status       OrderStatus `json:"status"`
	Deadline     time.Time   `json:"deadline"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// TotalCents is the order's derived value at the given unit price.
func (o ManufacturingOrder) TotalCents(unitPriceCents int64) int64 {
	return int64(o.Quantity) * unitPriceCents
}

// BOMLine is one component requirement of a bill of materials.
type BOMLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// BOM describes how a finished product is assembled from components.
type BOM struct {
	ID             uuid.UUID `json:"id"`
	Reference      string    `json:"reference"`
	ProductID      uuid.UUID `json:"productId"`
	OutputQuantity int       `json:"outputQuantity"`
	Lines          []BOMLine `json:"lines"`
}

// ComponentCostCents sums the component line costs using the supplied unit
// prices. Lines whose product is missing from the price table contribute
// nothing.
func (b BOM) ComponentCostCents(unitPriceCents map[uuid.UUID]int64) int64 {
	var total int64
	for _, line := range b.Lines {
		total += int64(line.Quantity) * unitPriceCents[line.ProductID]
	}
	return total
}

type StockMove struct {
	ID          uuid.UUID  `json:"id"`
	Reference   string     `json:"reference"`
	ProductID   uuid.UUID  `json:"productId"`
	Quantity    int        `json:"quantity"`
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Status      MoveStatus `json:"status"`
	ScheduledAt time.Time  `json:"scheduledAt"`
}
