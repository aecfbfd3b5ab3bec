package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/model"
	"github.com/padrino-pos/api/internal/service"
	"github.com/padrino-pos/api/internal/ticket"
)

// Notifier pushes order change events to connected clients. Satisfied by
// *ws.Hub; narrow interface for testability.
type Notifier interface {
	NotifyOrderUpdated(orderID string)
	NotifyOrderDeleted(orderID string)
}

// OrderHandler handles order, dish and product endpoints. It works against
// the stateful order service, which owns selection and persistence.
type OrderHandler struct {
	svc      *service.OrderService
	notifier Notifier
}

// NewOrderHandler creates a new OrderHandler. notifier may be nil.
func NewOrderHandler(svc *service.OrderService, notifier Notifier) *OrderHandler {
	return &OrderHandler{svc: svc, notifier: notifier}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Post("/orders", h.Create)
	r.Get("/orders/{id}", h.Get)
	r.Post("/orders/{id}/select", h.Select)
	r.Delete("/orders/active/select", h.ClearSelection)
	r.Post("/orders/{id}/unlock", h.Unlock)
	r.Post("/orders/{id}/relock", h.Relock)
	r.Delete("/orders/{id}", h.Delete)

	r.Post("/orders/active/save", h.Save)
	r.Patch("/orders/active/status", h.UpdateStatus)
	r.Post("/orders/active/close", h.Close)
	r.Post("/orders/active/reopen", h.Reopen)
	r.Post("/orders/active/send", h.SendAll)
	r.Put("/orders/active/details", h.RegisterDetails)
	r.Put("/orders/active/togo", h.ApplyToGo)
	r.Get("/orders/active/ticket", h.Ticket)

	r.Post("/orders/active/dishes", h.AddDish)
	r.Delete("/orders/active/dishes/{dishID}", h.RemoveDish)
	r.Post("/orders/active/dishes/{dishID}/select", h.SelectDish)
	r.Post("/orders/active/dishes/{dishID}/send", h.SendDish)
	r.Patch("/orders/active/dishes/{dishID}/togo", h.SetDishToGo)

	r.Post("/orders/active/products", h.AddProduct)
	r.Delete("/orders/active/products/{name}", h.RemoveProduct)
	r.Patch("/orders/active/products/{name}", h.UpdateProduct)

	r.Get("/register-form-data", h.RegisterFormData)
}

// --- Request / Response types ---

type productResponse struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	Price          string   `json:"price"`
	Quantity       int      `json:"quantity"`
	Notes          string   `json:"notes"`
	NotesShortcuts []string `json:"notes_shortcuts"`
	IsCustom       bool     `json:"is_custom"`
	Subtotal       string   `json:"subtotal"`
}

type dishResponse struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Status      string            `json:"status"`
	SentCount   int               `json:"sent_count"`
	ToGo        bool              `json:"to_go"`
	TotalAmount string            `json:"total_amount"`
	Products    []productResponse `json:"products"`
}

type orderResponse struct {
	ID                             string         `json:"id"`
	CreatedAt                      time.Time      `json:"created_at"`
	ClosedAt                       *time.Time     `json:"closed_at"`
	ServiceDate                    string         `json:"service_date"`
	Name                           string         `json:"name"`
	Table                          string         `json:"table"`
	Status                         string         `json:"status"`
	SentStatus                     bool           `json:"sent_status"`
	ToGo                           bool           `json:"to_go"`
	AdditionalNotes                string         `json:"additional_notes"`
	IncludeAdditionalNotesInTicket bool           `json:"include_additional_notes_in_ticket"`
	AmountPaid                     string         `json:"amount_paid"`
	TotalAmount                    string         `json:"total_amount"`
	ActiveDishID                   string         `json:"active_dish_id"`
	Editable                       bool           `json:"editable"`
	Dishes                         []dishResponse `json:"dishes"`
}

type orderListResponse struct {
	Orders        []orderResponse `json:"orders"`
	ActiveOrderID string          `json:"active_order_id"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type registerDetailsRequest struct {
	Name                           string `json:"name"`
	Table                          string `json:"table"`
	ServiceDate                    string `json:"service_date"`
	ToGo                           bool   `json:"to_go"`
	AdditionalNotes                string `json:"additional_notes"`
	IncludeAdditionalNotesInTicket bool   `json:"include_additional_notes_in_ticket"`
	AmountPaid                     string `json:"amount_paid"`
}

type addProductRequest struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	Price          string   `json:"price"`
	Notes          string   `json:"notes"`
	NotesShortcuts []string `json:"notes_shortcuts"`
	IsCustom       bool     `json:"is_custom"`
}

type updateProductRequest struct {
	NewName  *string `json:"new_name"`
	Quantity *int    `json:"quantity"`
	Price    *string `json:"price"`
	Notes    *string `json:"notes"`
}

type toGoRequest struct {
	ToGo bool `json:"to_go"`
}

type registerFormDataResponse struct {
	Products []menuProductResponse `json:"products"`
	Tables   []string              `json:"tables"`
}

type menuProductResponse struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	Price          string   `json:"price"`
	NotesShortcuts []string `json:"notes_shortcuts"`
	IsCustom       bool     `json:"is_custom"`
}

func (h *OrderHandler) toOrderResponse(o *model.Order) orderResponse {
	resp := orderResponse{
		ID:                             o.ID,
		CreatedAt:                      o.CreatedAt,
		ServiceDate:                    o.ServiceDate,
		Name:                           o.Name,
		Table:                          o.Table,
		Status:                         o.Status,
		SentStatus:                     o.SentStatus,
		ToGo:                           o.ToGo,
		AdditionalNotes:                o.AdditionalNotes,
		IncludeAdditionalNotesInTicket: o.IncludeAdditionalNotesInTicket,
		AmountPaid:                     o.AmountPaid.StringFixed(2),
		TotalAmount:                    o.TotalAmount.StringFixed(2),
		Editable:                       h.svc.IsEditable(o.ID),
		Dishes:                         make([]dishResponse, 0, len(o.Dishes)),
	}
	if !o.ClosedAt.IsZero() {
		closedAt := o.ClosedAt
		resp.ClosedAt = &closedAt
	}
	if o.ActiveDish != nil {
		resp.ActiveDishID = o.ActiveDish.ID
	}
	for _, d := range o.Dishes {
		resp.Dishes = append(resp.Dishes, toDishResponse(d))
	}
	return resp
}

func toDishResponse(d *model.Dish) dishResponse {
	resp := dishResponse{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		Status:      d.Status,
		SentCount:   d.SentCount,
		ToGo:        d.ToGo,
		TotalAmount: d.TotalAmount.StringFixed(2),
		Products:    make([]productResponse, 0, len(d.Products)),
	}
	for _, p := range d.Products {
		resp.Products = append(resp.Products, productResponse{
			Name:           p.Name,
			DisplayName:    p.DisplayName,
			Price:          p.Price.StringFixed(2),
			Quantity:       p.Quantity,
			Notes:          p.Notes,
			NotesShortcuts: p.NotesShortcuts,
			IsCustom:       p.IsCustom,
			Subtotal:       p.Subtotal().StringFixed(2),
		})
	}
	return resp
}

func (h *OrderHandler) notifyUpdated(orderID string) {
	if h.notifier != nil {
		h.notifier.NotifyOrderUpdated(orderID)
	}
}

func (h *OrderHandler) notifyDeleted(orderID string) {
	if h.notifier != nil {
		h.notifier.NotifyOrderDeleted(orderID)
	}
}

// respondActiveOrder writes the active order after a mutation, broadcasting
// the change.
func (h *OrderHandler) respondActiveOrder(w http.ResponseWriter, o *model.Order) {
	h.notifyUpdated(o.ID)
	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

// --- Handlers ---

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders := h.svc.Orders()
	resp := orderListResponse{
		Orders:        make([]orderResponse, 0, len(orders)),
		ActiveOrderID: h.svc.ActiveOrderID(),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, h.toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	o := h.svc.NewOrder()
	h.notifyUpdated(o.ID)
	writeJSON(w, http.StatusCreated, h.toOrderResponse(o))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o := h.svc.Order(chi.URLParam(r, "id"))
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

// Select handles POST /orders/{id}/select.
func (h *OrderHandler) Select(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.SelectOrder(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

// ClearSelection handles DELETE /orders/active/select.
func (h *OrderHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// Unlock handles POST /orders/{id}/unlock. Grants a session override making
// a closed order editable.
func (h *OrderHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.svc.Order(id) == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	h.svc.UnlockClosedOrder(id)
	writeJSON(w, http.StatusOK, map[string]bool{"editable": true})
}

// Relock handles POST /orders/{id}/relock.
func (h *OrderHandler) Relock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.svc.RelockOrder(id)
	writeJSON(w, http.StatusOK, map[string]bool{"editable": h.svc.IsEditable(id)})
}

// Delete handles DELETE /orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	h.notifyDeleted(id)
	w.WriteHeader(http.StatusNoContent)
}

// Save handles POST /orders/active/save.
func (h *OrderHandler) Save(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.PersistActiveOrder(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, o)
}

// UpdateStatus handles PATCH /orders/active/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	o, err := h.svc.SetOrderStatus(req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, o)
}

// Close handles POST /orders/active/close.
func (h *OrderHandler) Close(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.CloseOrder(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, o)
}

// Reopen handles POST /orders/active/reopen.
func (h *OrderHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.ReopenOrder(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, o)
}

// SendAll handles POST /orders/active/send.
func (h *OrderHandler) SendAll(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.SendAllDishes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, o)
}

// RegisterDetails handles PUT /orders/active/details.
func (h *OrderHandler) RegisterDetails(w http.ResponseWriter, r *http.Request) {
	var req registerDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amountPaid := decimal.Zero
	if req.AmountPaid != "" {
		var err error
		amountPaid, err = decimal.NewFromString(req.AmountPaid)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount_paid")
			return
		}
	}

	o, err := h.svc.RegisterOrderDetails(service.OrderDetails{
		Name:                           req.Name,
		Table:                          req.Table,
		ServiceDate:                    req.ServiceDate,
		ToGo:                           req.ToGo,
		AdditionalNotes:                req.AdditionalNotes,
		IncludeAdditionalNotesInTicket: req.IncludeAdditionalNotesInTicket,
		AmountPaid:                     amountPaid,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, o)
}

// ApplyToGo handles PUT /orders/active/togo. Forces the flag onto every
// dish, clearing per-dish overrides.
func (h *OrderHandler) ApplyToGo(w http.ResponseWriter, r *http.Request) {
	var req toGoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ApplyToGoToAllDishes(req.ToGo); err != nil {
		writeServiceError(w, err)
		return
	}
	o := h.svc.ActiveOrder()
	h.respondActiveOrder(w, o)
}

// Ticket handles GET /orders/active/ticket. Returns plain text sized for
// the receipt printer; ?print_time=true stamps the current time instead of
// the order's creation time.
func (h *OrderHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	o := h.svc.ActiveOrder()
	if o == nil {
		writeServiceError(w, service.ErrNoActiveOrder)
		return
	}

	var printedAt time.Time
	if r.URL.Query().Get("print_time") == "true" {
		printedAt = time.Now()
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, ticket.Build(o, printedAt))
}

// AddDish handles POST /orders/active/dishes.
func (h *OrderHandler) AddDish(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.AddDish()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.notifyUpdated(h.svc.ActiveOrderID())
	writeJSON(w, http.StatusCreated, toDishResponse(d))
}

// RemoveDish handles DELETE /orders/active/dishes/{dishID}.
func (h *OrderHandler) RemoveDish(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveDish(chi.URLParam(r, "dishID")); err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, h.svc.ActiveOrder())
}

// SelectDish handles POST /orders/active/dishes/{dishID}/select.
func (h *OrderHandler) SelectDish(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.SelectDish(chi.URLParam(r, "dishID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDishResponse(d))
}

// SendDish handles POST /orders/active/dishes/{dishID}/send.
func (h *OrderHandler) SendDish(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.SendDish(r.Context(), chi.URLParam(r, "dishID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.notifyUpdated(h.svc.ActiveOrderID())
	writeJSON(w, http.StatusOK, toDishResponse(d))
}

// SetDishToGo handles PATCH /orders/active/dishes/{dishID}/togo.
func (h *OrderHandler) SetDishToGo(w http.ResponseWriter, r *http.Request) {
	var req toGoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SetDishToGo(chi.URLParam(r, "dishID"), req.ToGo); err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, h.svc.ActiveOrder())
}

// AddProduct handles POST /orders/active/products.
func (h *OrderHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price := decimal.Zero
	if req.Price != "" {
		var err error
		price, err = decimal.NewFromString(req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid price")
			return
		}
	}

	p, err := h.svc.AddProduct(service.ProductInput{
		Name:           req.Name,
		DisplayName:    req.DisplayName,
		Price:          price,
		Notes:          req.Notes,
		NotesShortcuts: req.NotesShortcuts,
		IsCustom:       req.IsCustom,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.notifyUpdated(h.svc.ActiveOrderID())
	writeJSON(w, http.StatusCreated, productResponse{
		Name:           p.Name,
		DisplayName:    p.DisplayName,
		Price:          p.Price.StringFixed(2),
		Quantity:       p.Quantity,
		Notes:          p.Notes,
		NotesShortcuts: p.NotesShortcuts,
		IsCustom:       p.IsCustom,
		Subtotal:       p.Subtotal().StringFixed(2),
	})
}

// RemoveProduct handles DELETE /orders/active/products/{name}.
func (h *OrderHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveProduct(chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, err)
		return
	}
	h.respondActiveOrder(w, h.svc.ActiveOrder())
}

// UpdateProduct handles PATCH /orders/active/products/{name}. Accepts any
// combination of rename, quantity, price and notes changes.
func (h *OrderHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := chi.URLParam(r, "name")

	if req.Quantity != nil {
		if err := h.svc.SetProductQuantity(name, *req.Quantity); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid price")
			return
		}
		if err := h.svc.SetProductPrice(name, price); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.Notes != nil {
		if err := h.svc.SetProductNotes(name, *req.Notes); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.NewName != nil {
		if err := h.svc.RenameProduct(name, *req.NewName); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	h.respondActiveOrder(w, h.svc.ActiveOrder())
}

// RegisterFormData handles GET /register-form-data. Returns the menu and
// table reference data the register form needs; both degrade to fallbacks
// when the reference tables are empty.
func (h *OrderHandler) RegisterFormData(w http.ResponseWriter, r *http.Request) {
	products := h.svc.MenuProducts(r.Context())
	resp := registerFormDataResponse{
		Products: make([]menuProductResponse, 0, len(products)),
		Tables:   h.svc.TableNames(r.Context()),
	}
	for _, p := range products {
		resp.Products = append(resp.Products, menuProductResponse{
			Name:           p.Name,
			DisplayName:    p.DisplayName,
			Price:          p.Price.StringFixed(2),
			NotesShortcuts: p.NotesShortcuts,
			IsCustom:       p.IsCustom,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
