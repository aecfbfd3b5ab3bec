package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/padrino-pos/api/internal/handler"
	"github.com/padrino-pos/api/internal/model"
	"github.com/padrino-pos/api/internal/ordernum"
	"github.com/padrino-pos/api/internal/service"
	"github.com/padrino-pos/api/internal/store"
)

// --- Mock store ---

// mockOrderStore backs a real OrderService with in-memory persistence.
type mockOrderStore struct {
	saved   map[string]bool
	deleted []string
	menu    []store.MenuItem
	tables  []store.Table
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{saved: make(map[string]bool)}
}

func (m *mockOrderStore) SaveOrder(_ context.Context, order *model.Order) error {
	m.saved[order.ID] = true
	return nil
}

func (m *mockOrderStore) LoadOpenOrders(_ context.Context) ([]*model.Order, error) {
	return nil, nil
}

func (m *mockOrderStore) DeleteOrder(_ context.Context, orderID string) error {
	m.deleted = append(m.deleted, orderID)
	if !m.saved[orderID] {
		return store.ErrNotFound
	}
	delete(m.saved, orderID)
	return nil
}

func (m *mockOrderStore) ListMenuItems(_ context.Context) ([]store.MenuItem, error) {
	return m.menu, nil
}

func (m *mockOrderStore) ListTables(_ context.Context) ([]store.Table, error) {
	return m.tables, nil
}

// mockNotifier records broadcast events.
type mockNotifier struct {
	updated []string
	deleted []string
}

func (m *mockNotifier) NotifyOrderUpdated(orderID string) { m.updated = append(m.updated, orderID) }
func (m *mockNotifier) NotifyOrderDeleted(orderID string) { m.deleted = append(m.deleted, orderID) }

// --- Helpers ---

func setupOrderRouter(repo *mockOrderStore, notifier *mockNotifier) (*chi.Mux, *service.OrderService) {
	gen := ordernum.New(func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	})
	svc := service.NewOrderService(repo, gen, func() string { return "2024-06-15" })

	h := handler.NewOrderHandler(svc, notifier)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, svc
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeOrderResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestCreateOrder(t *testing.T) {
	router, _ := setupOrderRouter(newMockOrderStore(), &mockNotifier{})

	rr := doJSON(t, router, http.MethodPost, "/orders", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}

	resp := decodeOrderResponse(t, rr)
	if resp["id"] != "O202406150001" {
		t.Errorf("id = %v, want O202406150001", resp["id"])
	}
	if resp["status"] != "New" {
		t.Errorf("status = %v, want New", resp["status"])
	}
}

func TestOrderFlowThroughAPI(t *testing.T) {
	notifier := &mockNotifier{}
	router, _ := setupOrderRouter(newMockOrderStore(), notifier)

	if rr := doJSON(t, router, http.MethodPost, "/orders", nil); rr.Code != http.StatusCreated {
		t.Fatalf("create order: %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodPost, "/orders/active/dishes", nil); rr.Code != http.StatusCreated {
		t.Fatalf("add dish: %d", rr.Code)
	}

	add := map[string]interface{}{"name": "taco_pastor", "display_name": "Taco al pastor", "price": "30"}
	if rr := doJSON(t, router, http.MethodPost, "/orders/active/products", add); rr.Code != http.StatusCreated {
		t.Fatalf("add product: %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodPost, "/orders/active/products", add); rr.Code != http.StatusCreated {
		t.Fatalf("add product again: %d", rr.Code)
	}

	rr := doJSON(t, router, http.MethodGet, "/orders/O202406150001", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get order: %d", rr.Code)
	}
	resp := decodeOrderResponse(t, rr)
	if resp["total_amount"] != "60.00" {
		t.Errorf("total_amount = %v, want 60.00 (merged quantity 2)", resp["total_amount"])
	}

	dishes := resp["dishes"].([]interface{})
	if len(dishes) != 1 {
		t.Fatalf("len(dishes) = %d, want 1", len(dishes))
	}
	products := dishes[0].(map[string]interface{})["products"].([]interface{})
	if len(products) != 1 {
		t.Fatalf("len(products) = %d, want 1 merged line", len(products))
	}
	if q := products[0].(map[string]interface{})["quantity"].(float64); q != 2 {
		t.Errorf("quantity = %v, want 2", q)
	}

	if len(notifier.updated) == 0 {
		t.Errorf("no order_updated events broadcast")
	}
}

func TestUpdateProductPatch(t *testing.T) {
	router, _ := setupOrderRouter(newMockOrderStore(), &mockNotifier{})
	doJSON(t, router, http.MethodPost, "/orders", nil)
	doJSON(t, router, http.MethodPost, "/orders/active/dishes", nil)
	doJSON(t, router, http.MethodPost, "/orders/active/products",
		map[string]interface{}{"name": "quesadilla", "price": "45"})

	rr := doJSON(t, router, http.MethodPatch, "/orders/active/products/quesadilla",
		map[string]interface{}{"quantity": 3})
	if rr.Code != http.StatusOK {
		t.Fatalf("patch product: %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeOrderResponse(t, rr)
	if resp["total_amount"] != "135.00" {
		t.Errorf("total_amount = %v, want 135.00", resp["total_amount"])
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	router, _ := setupOrderRouter(newMockOrderStore(), &mockNotifier{})
	doJSON(t, router, http.MethodPost, "/orders", nil)
	doJSON(t, router, http.MethodPost, "/orders/active/dishes", nil)

	rr := doJSON(t, router, http.MethodPatch, "/orders/active/products/nonexistent",
		map[string]interface{}{"quantity": 2})
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestMutationWithoutActiveOrder(t *testing.T) {
	router, _ := setupOrderRouter(newMockOrderStore(), &mockNotifier{})

	rr := doJSON(t, router, http.MethodPost, "/orders/active/dishes", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestClosedOrderConflict(t *testing.T) {
	router, _ := setupOrderRouter(newMockOrderStore(), &mockNotifier{})
	doJSON(t, router, http.MethodPost, "/orders", nil)
	if rr := doJSON(t, router, http.MethodPost, "/orders/active/close", nil); rr.Code != http.StatusOK {
		t.Fatalf("close: %d", rr.Code)
	}

	rr := doJSON(t, router, http.MethodPost, "/orders/active/dishes", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}

	if rr := doJSON(t, router, http.MethodPost, "/orders/O202406150001/unlock", nil); rr.Code != http.StatusOK {
		t.Fatalf("unlock: %d", rr.Code)
	}
	if rr := doJSON(t, router, http.MethodPost, "/orders/active/dishes", nil); rr.Code != http.StatusCreated {
		t.Errorf("add dish after unlock: %d", rr.Code)
	}
}

func TestDeleteOrderBroadcasts(t *testing.T) {
	notifier := &mockNotifier{}
	router, _ := setupOrderRouter(newMockOrderStore(), notifier)
	doJSON(t, router, http.MethodPost, "/orders", nil)

	rr := doJSON(t, router, http.MethodDelete, "/orders/O202406150001", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if len(notifier.deleted) != 1 || notifier.deleted[0] != "O202406150001" {
		t.Errorf("deleted events = %v, want [O202406150001]", notifier.deleted)
	}
}

func TestTicketEndpoint(t *testing.T) {
	router, svc := setupOrderRouter(newMockOrderStore(), &mockNotifier{})
	doJSON(t, router, http.MethodPost, "/orders", nil)
	doJSON(t, router, http.MethodPost, "/orders/active/dishes", nil)
	doJSON(t, router, http.MethodPost, "/orders/active/products",
		map[string]interface{}{"name": "taco_pastor", "display_name": "Taco al pastor", "price": "30"})

	if _, err := svc.RegisterOrderDetails(service.OrderDetails{Name: "Walk-in", AmountPaid: decimal.NewFromInt(50)}); err != nil {
		t.Fatalf("RegisterOrderDetails: %v", err)
	}

	rr := doJSON(t, router, http.MethodGet, "/orders/active/ticket", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %s, want text/plain", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{"Folio: O202406150001", "Customer: Walk-in", "Taco al pastor"} {
		if !strings.Contains(body, want) {
			t.Errorf("ticket missing %q", want)
		}
	}
}

func TestRegisterFormData(t *testing.T) {
	repo := newMockOrderStore()
	repo.menu = []store.MenuItem{
		{ID: 1, Name: "Taco al pastor", Cost: decimal.NewFromInt(30), IsActive: true},
		{ID: 2, Name: "Retired item", Cost: decimal.NewFromInt(10), IsActive: false},
	}
	repo.tables = []store.Table{{ID: 1, Name: "Patio", IsActive: true}}
	router, _ := setupOrderRouter(repo, &mockNotifier{})

	rr := doJSON(t, router, http.MethodGet, "/register-form-data", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	resp := decodeOrderResponse(t, rr)
	products := resp["products"].([]interface{})
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want active item plus custom entry", len(products))
	}
	last := products[len(products)-1].(map[string]interface{})
	if last["is_custom"] != true {
		t.Errorf("last product is not the custom entry: %v", last)
	}

	tables := resp["tables"].([]interface{})
	if len(tables) != 1 || tables[0] != "Patio" {
		t.Errorf("tables = %v, want [Patio]", tables)
	}
}
