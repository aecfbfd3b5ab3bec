package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/enum"
	"github.com/padrino-pos/api/internal/store"
)

// CatalogStore defines the database methods needed by menu and table
// handlers. Satisfied by *store.Store; narrow interface for testability.
type CatalogStore interface {
	ListMenuItems(ctx context.Context) ([]store.MenuItem, error)
	CreateMenuItem(ctx context.Context, item store.MenuItem) (int64, error)
	UpdateMenuItem(ctx context.Context, item store.MenuItem) error
	DeleteMenuItem(ctx context.Context, id int64) error
	ListTables(ctx context.Context) ([]store.Table, error)
	CreateTable(ctx context.Context, t store.Table) (int64, error)
	UpdateTable(ctx context.Context, t store.Table) error
	DeleteTable(ctx context.Context, id int64) error
}

// CatalogHandler handles menu and table reference data endpoints.
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.ListMenu)
	r.Post("/menu", h.CreateMenuItem)
	r.Put("/menu/{id}", h.UpdateMenuItem)
	r.Delete("/menu/{id}", h.DeleteMenuItem)

	r.Get("/tables", h.ListTables)
	r.Post("/tables", h.CreateTable)
	r.Put("/tables/{id}", h.UpdateTable)
	r.Delete("/tables/{id}", h.DeleteTable)
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name        string   `json:"name"`
	Cost        string   `json:"cost"`
	Shortcuts   []string `json:"shortcuts"`
	Color       string   `json:"color"`
	Shape       string   `json:"shape"`
	Position    int      `json:"position"`
	ProductType string   `json:"product_type"`
	IsActive    bool     `json:"is_active"`
}

type menuItemResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Cost        string   `json:"cost"`
	Shortcuts   []string `json:"shortcuts"`
	Color       string   `json:"color"`
	Shape       string   `json:"shape"`
	Position    int      `json:"position"`
	ProductType string   `json:"product_type"`
	IsActive    bool     `json:"is_active"`
}

type tableRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	IsActive bool   `json:"is_active"`
}

type tableResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	IsActive bool   `json:"is_active"`
}

func toMenuItemResponse(it store.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Cost:        it.Cost.StringFixed(2),
		Shortcuts:   it.Shortcuts,
		Color:       it.Color,
		Shape:       it.Shape,
		Position:    it.Position,
		ProductType: it.ProductType,
		IsActive:    it.IsActive,
	}
}

func (req menuItemRequest) toMenuItem() (store.MenuItem, error) {
	cost := decimal.Zero
	if req.Cost != "" {
		var err error
		cost, err = decimal.NewFromString(req.Cost)
		if err != nil {
			return store.MenuItem{}, err
		}
	}
	productType := req.ProductType
	if productType == "" {
		productType = enum.ProductTypeFood
	}
	return store.MenuItem{
		Name:        req.Name,
		Cost:        cost,
		Shortcuts:   req.Shortcuts,
		Color:       req.Color,
		Shape:       req.Shape,
		Position:    req.Position,
		ProductType: productType,
		IsActive:    req.IsActive,
	}, nil
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// --- Handlers ---

// ListMenu handles GET /menu.
func (h *CatalogHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]menuItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, toMenuItemResponse(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateMenuItem handles POST /menu.
func (h *CatalogHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := req.toMenuItem()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cost")
		return
	}

	id, err := h.store.CreateMenuItem(r.Context(), item)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	item.ID = id
	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// UpdateMenuItem handles PUT /menu/{id}.
func (h *CatalogHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := req.toMenuItem()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cost")
		return
	}
	item.ID = id

	if err := h.store.UpdateMenuItem(r.Context(), item); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// DeleteMenuItem handles DELETE /menu/{id}.
func (h *CatalogHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid menu item id")
		return
	}
	if err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTables handles GET /tables.
func (h *CatalogHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]tableResponse, 0, len(tables))
	for _, t := range tables {
		resp = append(resp, tableResponse{ID: t.ID, Name: t.Name, Position: t.Position, IsActive: t.IsActive})
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTable handles POST /tables.
func (h *CatalogHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	t := store.Table{Name: req.Name, Position: req.Position, IsActive: req.IsActive}
	id, err := h.store.CreateTable(r.Context(), t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	t.ID = id
	writeJSON(w, http.StatusCreated, tableResponse{ID: t.ID, Name: t.Name, Position: t.Position, IsActive: t.IsActive})
}

// UpdateTable handles PUT /tables/{id}.
func (h *CatalogHandler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid table id")
		return
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t := store.Table{ID: id, Name: req.Name, Position: req.Position, IsActive: req.IsActive}
	if err := h.store.UpdateTable(r.Context(), t); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tableResponse{ID: t.ID, Name: t.Name, Position: t.Position, IsActive: t.IsActive})
}

// DeleteTable handles DELETE /tables/{id}.
func (h *CatalogHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid table id")
		return
	}
	if err := h.store.DeleteTable(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
