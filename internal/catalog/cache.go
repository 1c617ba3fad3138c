package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrNotLoaded is returned when a collection is read before login has primed
// the cache, or after logout has dropped it.
var ErrNotLoaded = errors.New("collections not loaded")

// ErrNotFound is returned for a record lookup that matches nothing.
var ErrNotFound = errors.New("record not found")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListOptions selects a page of a collection, optionally filtered by status.
type ListOptions struct {
	Page     int
	PageSize int
	Status   string
}

func (o ListOptions) bounds(total int) (lo, hi int) {
	page := o.Page
	if page < 1 {
		page = 1
	}
	size := o.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	lo = (page - 1) * size
	if lo > total {
		lo = total
	}
	hi = lo + size
	if hi > total {
		hi = total
	}
	return lo, hi
}

// Repository is the read interface the cache primes from, backed by Postgres
// in production and by fixtures in demo mode and tests.
type Repository interface {
	Products(ctx context.Context) ([]Product, error)
	WorkCenters(ctx context.Context) ([]WorkCenter, error)
	Orders(ctx context.Context) ([]ManufacturingOrder, error)
	BOMs(ctx context.Context) ([]BOM, error)
	StockMoves(ctx context.Context) ([]StockMove, error)
}

// Cache is the in-memory copy of every dashboard collection. It implements
// session.Collections: Initialize runs on login, Reset on logout. After Reset
// every read fails with ErrNotLoaded until the next Initialize.
type Cache struct {
	repo Repository

	mu          sync.RWMutex
	loaded      bool
	products    []Product
	workCenters []WorkCenter
	orders      []ManufacturingOrder
	boms        []BOM
	stockMoves  []StockMove
	prices      map[uuid.UUID]int64
}

func NewCache(repo Repository) *Cache {
	return &Cache{repo: repo}
}

// Initialize loads every collection from the repository. On any error the
// cache stays (or becomes) unloaded; a partially primed cache is never
// visible.
func (c *Cache) Initialize(ctx context.Context) error {
	products, err := c.repo.Products(ctx)
	if err != nil {
		return err
	}
	workCenters, err := c.repo.WorkCenters(ctx)
	if err != nil {
		return err
	}
	orders, err := c.repo.Orders(ctx)
	if err != nil {
		return err
	}
	boms, err := c.repo.BOMs(ctx)
	if err != nil {
		return err
	}
	stockMoves, err := c.repo.StockMoves(ctx)
	if err != nil {
		return err
	}

	prices := make(map[uuid.UUID]int64, len(products))
	for _, p := range products {
		prices[p.ID] = p.UnitPriceCents
	}

	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })
	sort.Slice(workCenters, func(i, j int) bool { return workCenters[i].Code < workCenters[j].Code })
	sort.Slice(orders, func(i, j int) bool { return orders[i].Deadline.Before(orders[j].Deadline) })
	sort.Slice(boms, func(i, j int) bool { return boms[i].Reference < boms[j].Reference })
	sort.Slice(stockMoves, func(i, j int) bool { return stockMoves[i].ScheduledAt.Before(stockMoves[j].ScheduledAt) })

	c.mu.Lock()
	c.products = products
	c.workCenters = workCenters
	c.orders = orders
	c.boms = boms
	c.stockMoves = stockMoves
	c.prices = prices
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Reset drops every collection. Reads fail until the next Initialize.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.products = nil
	c.workCenters = nil
	c.orders = nil
	c.boms = nil
	c.stockMoves = nil
	c.prices = nil
	c.loaded = false
	c.mu.Unlock()
}

// Loaded reports whether collections are currently primed.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Cache) ListProducts(opts ListOptions) ([]Product, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, 0, ErrNotLoaded
	}

	filtered := c.products
	if opts.Status != "" {
		filtered = nil
		for _, p := range c.products {
			if p.Category == opts.Status {
				filtered = append(filtered, p)
			}
		}
	}
	lo, hi := opts.bounds(len(filtered))
	return append([]Product(nil), filtered[lo:hi]...), len(filtered), nil
}

func (c *Cache) Product(id uuid.UUID) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return Product{}, ErrNotLoaded
	}
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (c *Cache) ListWorkCenters(opts ListOptions) ([]WorkCenter, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, 0, ErrNotLoaded
	}

	filtered := c.workCenters
	if opts.Status != "" {
		filtered = nil
		for _, wc := range c.workCenters {
			if string(wc.Status) == opts.Status {
				filtered = append(filtered, wc)
			}
		}
	}
	lo, hi := opts.bounds(len(filtered))
	return append([]WorkCenter(nil), filtered[lo:hi]...), len(filtered), nil
}

func (c *Cache) WorkCenter(id uuid.UUID) (WorkCenter, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return WorkCenter{}, ErrNotLoaded
	}
	for _, wc := range c.workCenters {
		if wc.ID == id {
			return wc, nil
		}
	}
	return WorkCenter{}, ErrNotFound
}

func (c *Cache) ListOrders(opts ListOptions) ([]ManufacturingOrder, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, 0, ErrNotLoaded
	}

	filtered := c.orders
	if opts.Status != "" {
		filtered = nil
		for _, o := range c.orders {
			if string(o.Status) == opts.Status {
				filtered = append(filtered, o)
			}
		}
	}
	lo, hi := opts.bounds(len(filtered))
	return append([]ManufacturingOrder(nil), filtered[lo:hi]...), len(filtered), nil
}

func (c *Cache) Order(id uuid.UUID) (ManufacturingOrder, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return ManufacturingOrder{}, ErrNotLoaded
	}
	for _, o := range c.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return ManufacturingOrder{}, ErrNotFound
}

func (c *Cache) ListBOMs(opts ListOptions) ([]BOM, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, 0, ErrNotLoaded
	}
	lo, hi := opts.bounds(len(c.boms))
	return append([]BOM(nil), c.boms[lo:hi]...), len(c.boms), nil
}

func (c *Cache) BOM(id uuid.UUID) (BOM, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return BOM{}, ErrNotLoaded
	}
	for _, b := range c.boms {
		if b.ID == id {
			return b, nil
		}
	}
	return BOM{}, ErrNotFound
}

func (c *Cache) ListStockMoves(opts ListOptions) ([]StockMove, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, 0, ErrNotLoaded
	}

	filtered := c.stockMoves
	if opts.Status != "" {
		filtered = nil
		for _, m := range c.stockMoves {
			if string(m.Status) == opts.Status {
				filtered = append(filtered, m)
			}
		}
	}
	lo, hi := opts.bounds(len(filtered))
	return append([]StockMove(nil), filtered[lo:hi]...), len(filtered), nil
}

func (c *Cache) StockMove(id uuid.UUID) (StockMove, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return StockMove{}, ErrNotLoaded
	}
	for _, m := range c.stockMoves {
		if m.ID == id {
			return m, nil
		}
	}
	return StockMove{}, ErrNotFound
}

// UnitPriceCents returns the cached unit price for a product, or zero when
// unknown. Used for derived totals on orders and BOM lines.
func (c *Cache) UnitPriceCents(productID uuid.UUID) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prices[productID]
}

// Prices returns a copy of the cached unit price table.
func (c *Cache) Prices() map[uuid.UUID]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	prices := make(map[uuid.UUID]int64, len(c.prices))
	for id, cents := range c.prices {
		prices[id] = cents
	}
	return prices
}
