package payments

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"kirana/models"
	"kirana/mq"
	"kirana/orders"
	"kirana/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// SessionCreator requests a hosted checkout session from the payment
// provider. The returned URL is where the customer completes payment.
type SessionCreator interface {
	Create(ctx context.Context, order models.Order) (url string, err error)
}

// Deduper answers whether a webhook event id is being seen for the
// first time. Implementations must fail open: the conditional DB update
// in the order store is the authoritative idempotency check.
type Deduper interface {
	FirstDelivery(ctx context.Context, eventID string) bool
}

// Service owns checkout session creation and webhook reconciliation.
type Service struct {
	Store         orders.Store
	Sessions      SessionCreator
	Dedup         Deduper
	WebhookSecret string

	// publish is mq.Emit unless a test swaps it out.
	publish func(event string, evt mq.OrderEvent)
}

func NewService(store orders.Store, sessions SessionCreator, dedup Deduper, webhookSecret string) *Service {
	return &Service{
		Store:         store,
		Sessions:      sessions,
		Dedup:         dedup,
		WebhookSecret: webhookSecret,
		publish:       mq.Emit,
	}
}

type checkoutItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // unit price in paise
	Quantity  int    `json:"quantity"`
}

type checkoutRequest struct {
	Items []checkoutItem `json:"cartItems"`
}

// CreateCheckoutSession snapshots the cart into a Pending/unpaid order,
// then asks the provider for a session carrying the order id as
// metadata. If the provider call fails the freshly inserted order is
// removed so no unpayable orphan is left behind.
func (s *Service) CreateCheckoutSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Println("CreateCheckoutSession decode error:", err)
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "Cart is empty", http.StatusBadRequest)
		return
	}

	now := time.Now()
	order := models.Order{
		OrderID:       uuid.NewString(),
		UserID:        userID,
		Items:         make([]models.OrderItem, 0, len(req.Items)),
		PaymentStatus: models.PaymentUnpaid,
		OrderStatus:   models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, it := range req.Items {
		if it.Name == "" || it.Price <= 0 || it.Quantity <= 0 {
			http.Error(w, "Missing or invalid cart item fields", http.StatusBadRequest)
			return
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
		order.TotalAmount += it.Price * int64(it.Quantity)
	}

	if err := s.Store.Insert(ctx, order); err != nil {
		log.Println("CreateCheckoutSession insert error:", err)
		http.Error(w, "Order creation failed", http.StatusInternalServerError)
		return
	}

	url, err := s.Sessions.Create(ctx, order)
	if err != nil {
		log.Printf("CreateCheckoutSession session error for order %s: %v", order.OrderID, err)
		// compensate on a fresh context so no never-payable order
		// survives; the request ctx may be why the provider call failed
		cleanupCtx, cancelCleanup := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelCleanup()
		if delErr := s.Store.Delete(cleanupCtx, order.OrderID); delErr != nil {
			log.Printf("CreateCheckoutSession cleanup failed for order %s: %v", order.OrderID, delErr)
		}
		http.Error(w, "Payment provider unavailable", http.StatusBadGateway)
		return
	}

	s.publish("order-created", mq.OrderEvent{
		OrderID: order.OrderID,
		UserID:  order.UserID,
		Total:   order.TotalAmount,
		Status:  order.OrderStatus,
	})

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}
