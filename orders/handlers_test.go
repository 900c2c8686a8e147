package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"kirana/globals"
	"kirana/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]models.Order)}
}

func (s *memStore) Insert(_ context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.OrderID] = order
	return nil
}

func (s *memStore) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (s *memStore) FindByUser(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *memStore) FindAllWithOwners(_ context.Context) ([]models.AdminOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.AdminOrder
	for _, o := range s.orders {
		list = append(list, models.AdminOrder{Order: o, OwnerName: "user-" + o.UserID})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *memStore) MarkPaid(_ context.Context, orderID string) (*models.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if order.PaymentStatus == models.PaymentPaid {
		return &order, false, nil
	}
	order.PaymentStatus = models.PaymentPaid
	order.OrderStatus = models.StatusProcessing
	order.UpdatedAt = time.Now()
	s.orders[orderID] = order
	return &order, true, nil
}

func (s *memStore) SetStatus(_ context.Context, orderID, status string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	order.OrderStatus = status
	order.UpdatedAt = time.Now()
	s.orders[orderID] = order
	return &order, nil
}

func (s *memStore) Delete(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return ErrNotFound
	}
	delete(s.orders, orderID)
	return nil
}

func (s *memStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.orders))
	s.orders = make(map[string]models.Order)
	return n, nil
}

func asUser(r *http.Request, userID string, roles ...string) *http.Request {
	ctx := context.WithValue(r.Context(), globals.UserIDKey, userID)
	if len(roles) > 0 {
		ctx = context.WithValue(ctx, globals.RoleKey, roles)
	}
	return r.WithContext(ctx)
}

func seedOrder(t *testing.T, store Store, orderID, userID string, createdAt time.Time) {
	t.Helper()
	err := store.Insert(context.Background(), models.Order{
		OrderID:       orderID,
		UserID:        userID,
		Items:         []models.OrderItem{{ProductID: "p1", Name: "Rice", Price: 100, Quantity: 1}},
		TotalAmount:   100,
		PaymentStatus: models.PaymentUnpaid,
		OrderStatus:   models.StatusPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	})
	require.NoError(t, err)
}

func TestGetMyOrdersFiltersAndSortsNewestFirst(t *testing.T) {
	store := newMemStore()
	h := NewHandler(store)

	now := time.Now()
	seedOrder(t, store, "o1", "u1", now.Add(-2*time.Hour))
	seedOrder(t, store, "o2", "u1", now)
	seedOrder(t, store, "o3", "u2", now.Add(-time.Hour))

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/orders/my", nil), "u1")
	rec := httptest.NewRecorder()
	h.GetMyOrders(rec, req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.NotContains(t, body, "o3")
	require.Less(t, strings.Index(body, "o2"), strings.Index(body, "o1"))
}

func TestGetMyOrdersRequiresAuth(t *testing.T) {
	h := NewHandler(newMemStore())

	rec := httptest.NewRecorder()
	h.GetMyOrders(rec, httptest.NewRequest(http.MethodGet, "/api/orders/my", nil), nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateOrderStatusOverwrites(t *testing.T) {
	store := newMemStore()
	h := NewHandler(store)
	seedOrder(t, store, "o1", "u1", time.Now())

	req := httptest.NewRequest(http.MethodPut, "/api/admin/orders/o1", strings.NewReader(`{"status":"Shipped"}`))
	rec := httptest.NewRecorder()
	h.UpdateOrderStatus(rec, req, httprouter.Params{{Key: "id", Value: "o1"}})

	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, models.StatusShipped, got.OrderStatus)

	// no forward-only constraint: back to Pending is accepted
	req = httptest.NewRequest(http.MethodPut, "/api/admin/orders/o1", strings.NewReader(`{"status":"Pending"}`))
	rec = httptest.NewRecorder()
	h.UpdateOrderStatus(rec, req, httprouter.Params{{Key: "id", Value: "o1"}})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateOrderStatusRejectsUnknownValue(t *testing.T) {
	store := newMemStore()
	h := NewHandler(store)
	seedOrder(t, store, "o1", "u1", time.Now())

	req := httptest.NewRequest(http.MethodPut, "/api/admin/orders/o1", strings.NewReader(`{"status":"Lost"}`))
	rec := httptest.NewRecorder()
	h.UpdateOrderStatus(rec, req, httprouter.Params{{Key: "id", Value: "o1"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	got, err := store.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, got.OrderStatus)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	h := NewHandler(newMemStore())

	req := httptest.NewRequest(http.MethodPut, "/api/admin/orders/nope", strings.NewReader(`{"status":"Shipped"}`))
	rec := httptest.NewRecorder()
	h.UpdateOrderStatus(rec, req, httprouter.Params{{Key: "id", Value: "nope"}})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteOrderNotFound(t *testing.T) {
	h := NewHandler(newMemStore())

	rec := httptest.NewRecorder()
	h.DeleteOrder(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/orders/nope", nil),
		httprouter.Params{{Key: "id", Value: "nope"}})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAllOrdersReportsCount(t *testing.T) {
	store := newMemStore()
	h := NewHandler(store)
	now := time.Now()
	seedOrder(t, store, "o1", "u1", now)
	seedOrder(t, store, "o2", "u2", now)
	seedOrder(t, store, "o3", "u3", now)

	rec := httptest.NewRecorder()
	h.DeleteAllOrders(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/orders", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"deletedCount":3`)

	list, err := store.FindAllWithOwners(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAdminOverrideSurvivesAfterPayment(t *testing.T) {
	store := newMemStore()
	h := NewHandler(store)
	seedOrder(t, store, "o1", "u1", time.Now())

	_, changed, err := store.MarkPaid(context.Background(), "o1")
	require.NoError(t, err)
	require.True(t, changed)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/orders/o1", strings.NewReader(`{"status":"Shipped"}`))
	rec := httptest.NewRecorder()
	h.UpdateOrderStatus(rec, req, httprouter.Params{{Key: "id", Value: "o1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentPaid, got.PaymentStatus)
	require.Equal(t, models.StatusShipped, got.OrderStatus)
}
