package invoices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kirana/globals"
	"kirana/models"
	"kirana/orders"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

// stubStore serves a single order; other Store methods are never hit.
type stubStore struct {
	orders.Store
	order *models.Order
}

func (s stubStore) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	if s.order == nil || s.order.OrderID != orderID {
		return nil, orders.ErrNotFound
	}
	o := *s.order
	return &o, nil
}

func paidOrder() *models.Order {
	now := time.Now()
	return &models.Order{
		OrderID: "ord-1",
		UserID:  "u1",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Rice 1kg", Price: 100, Quantity: 2},
			{ProductID: "p2", Name: "Dal 500g", Price: 50, Quantity: 1},
		},
		TotalAmount:   250,
		PaymentStatus: models.PaymentPaid,
		OrderStatus:   models.StatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func invoiceRequest(orderID, userID string, roles ...string) (*http.Request, httprouter.Params) {
	r := httptest.NewRequest(http.MethodGet, "/api/invoices/"+orderID, nil)
	ctx := r.Context()
	if userID != "" {
		ctx = context.WithValue(ctx, globals.UserIDKey, userID)
	}
	if len(roles) > 0 {
		ctx = context.WithValue(ctx, globals.RoleKey, roles)
	}
	return r.WithContext(ctx), httprouter.Params{{Key: "id", Value: orderID}}
}

func TestPrintInvoiceStreamsPDFForOwner(t *testing.T) {
	h := NewHandler(stubStore{order: paidOrder()})

	req, ps := invoiceRequest("ord-1", "u1")
	rec := httptest.NewRecorder()
	h.PrintInvoice(rec, req, ps)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "invoice-ord-1.pdf")
	require.True(t, rec.Body.Len() > 4 && string(rec.Body.Bytes()[:4]) == "%PDF")
}

func TestPrintInvoiceAllowsAdminForAnyOrder(t *testing.T) {
	h := NewHandler(stubStore{order: paidOrder()})

	req, ps := invoiceRequest("ord-1", "admin-user", "admin")
	rec := httptest.NewRecorder()
	h.PrintInvoice(rec, req, ps)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestPrintInvoiceForbidsOtherCustomers(t *testing.T) {
	h := NewHandler(stubStore{order: paidOrder()})

	req, ps := invoiceRequest("ord-1", "u2")
	rec := httptest.NewRecorder()
	h.PrintInvoice(rec, req, ps)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPrintInvoiceRequiresAuth(t *testing.T) {
	h := NewHandler(stubStore{order: paidOrder()})

	req, ps := invoiceRequest("ord-1", "")
	rec := httptest.NewRecorder()
	h.PrintInvoice(rec, req, ps)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPrintInvoiceRejectsUnpaidOrder(t *testing.T) {
	order := paidOrder()
	order.PaymentStatus = models.PaymentUnpaid
	order.OrderStatus = models.StatusPending
	h := NewHandler(stubStore{order: order})

	req, ps := invoiceRequest("ord-1", "u1")
	rec := httptest.NewRecorder()
	h.PrintInvoice(rec, req, ps)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestPrintInvoiceNotFound(t *testing.T) {
	h := NewHandler(stubStore{})

	req, ps := invoiceRequest("nope", "u1")
	rec := httptest.NewRecorder()
	h.PrintInvoice(rec, req, ps)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
