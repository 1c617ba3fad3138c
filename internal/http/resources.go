package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopfloor/internal/catalog"
)

type listResponse struct {
	Items    any `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func listOptionsFromRequest(r *http.Request) catalog.ListOptions {
	query := r.URL.Query()
	opts := catalog.ListOptions{
		Page:     1,
		PageSize: 20,
		Status:   query.Get("status"),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		opts.Page = page
	}
	if size, err := strconv.Atoi(query.Get("pageSize")); err == nil && size > 0 {
		opts.PageSize = size
	}
	return opts
}

func (s *Server) writeCollectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotLoaded):
		s.writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, catalog.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func idParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// productView decorates a product with its formatted price.
type productView struct {
	catalog.Product
	UnitPrice string `json:"unitPrice"`
}

func productViewOf(p catalog.Product) productView {
	return productView{Product: p, UnitPrice: catalog.FormatCents(p.UnitPriceCents)}
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromRequest(r)
	products, total, err := s.cache.ListProducts(opts)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productViewOf(p))
	}
	s.writeJSON(w, http.StatusOK, listResponse{Items: views, Total: total, Page: opts.Page, PageSize: opts.PageSize})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	product, err := s.cache.Product(id)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, productViewOf(product))
}

// orderView decorates an order with its derived total value.
type orderView struct {
	catalog.ManufacturingOrder
	TotalCents int64  `json:"totalCents"`
	Total      string `json:"total"`
}

func (s *Server) orderViewOf(o catalog.ManufacturingOrder) orderView {
	total := o.TotalCents(s.cache.UnitPriceCents(o.ProductID))
	return orderView{ManufacturingOrder: o, TotalCents: total, Total: catalog.FormatCents(total)}
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromRequest(r)
	orders, total, err := s.cache.ListOrders(opts)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, s.orderViewOf(o))
	}
	s.writeJSON(w, http.StatusOK, listResponse{Items: views, Total: total, Page: opts.Page, PageSize: opts.PageSize})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := s.cache.Order(id)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.orderViewOf(order))
}

// bomView decorates a bill of materials with its derived component cost.
type bomView struct {
	catalog.BOM
	ComponentCostCents int64  `json:"componentCostCents"`
	ComponentCost      string `json:"componentCost"`
}

func (s *Server) bomViewOf(b catalog.BOM) bomView {
	cost := b.ComponentCostCents(s.cache.Prices())
	return bomView{BOM: b, ComponentCostCents: cost, ComponentCost: catalog.FormatCents(cost)}
}

func (s *Server) handleListBOMs(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromRequest(r)
	boms, total, err := s.cache.ListBOMs(opts)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}

	views := make([]bomView, 0, len(boms))
	for _, b := range boms {
		views = append(views, s.bomViewOf(b))
	}
	s.writeJSON(w, http.StatusOK, listResponse{Items: views, Total: total, Page: opts.Page, PageSize: opts.PageSize})
}

func (s *Server) handleGetBOM(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	bom, err := s.cache.BOM(id)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.bomViewOf(bom))
}

// workCenterView decorates a work center with formatted cost and capacity.
type workCenterView struct {
	catalog.WorkCenter
	CostPerHour string `json:"costPerHour"`
	Capacity    string `json:"capacity"`
}

func workCenterViewOf(wc catalog.WorkCenter) workCenterView {
	return workCenterView{
		WorkCenter:  wc,
		CostPerHour: catalog.FormatCents(wc.CostPerHourCents),
		Capacity:    catalog.FormatMinutes(wc.CapacityMinutes),
	}
}

func (s *Server) handleListWorkCenters(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromRequest(r)
	centers, total, err := s.cache.ListWorkCenters(opts)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}

	views := make([]workCenterView, 0, len(centers))
	for _, wc := range centers {
		views = append(views, workCenterViewOf(wc))
	}
	s.writeJSON(w, http.StatusOK, listResponse{Items: views, Total: total, Page: opts.Page, PageSize: opts.PageSize})
}

func (s *Server) handleGetWorkCenter(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	wc, err := s.cache.WorkCenter(id)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, workCenterViewOf(wc))
}

func (s *Server) handleListStockMoves(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromRequest(r)
	moves, total, err := s.cache.ListStockMoves(opts)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, listResponse{Items: moves, Total: total, Page: opts.Page, PageSize: opts.PageSize})
}

func (s *Server) handleGetStockMove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	move, err := s.cache.StockMove(id)
	if err != nil {
		s.writeCollectionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, move)
}
