package payments

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"kirana/mq"
	"kirana/orders"
	"kirana/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// HandleWebhook receives Stripe events. Order of checks matters:
// signature first (reject forged events before touching anything), then
// event type, then correlation. Once the signature is good the handler
// answers 200 even for unknown orders, otherwise Stripe retries a
// permanently unresolvable event forever.
func (s *Service) HandleWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), s.WebhookSecret)
	if err != nil {
		log.Println("HandleWebhook signature verification failed:", err)
		http.Error(w, "Webhook signature verification failed", http.StatusBadRequest)
		return
	}

	// Acknowledge every event type; only completed checkouts act.
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	if s.Dedup != nil && !s.Dedup.FirstDelivery(ctx, event.ID) {
		log.Printf("HandleWebhook duplicate event %s skipped", event.ID)
		utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Println("HandleWebhook session parse error:", err)
		http.Error(w, "Malformed event payload", http.StatusBadRequest)
		return
	}

	orderID := session.Metadata["orderId"]
	if orderID == "" {
		log.Printf("HandleWebhook event %s has no orderId metadata", event.ID)
		utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	updated, changed, err := s.Store.MarkPaid(ctx, orderID)
	switch {
	case err == orders.ErrNotFound:
		// Acknowledge anyway: retrying cannot resurrect a deleted order.
		log.Printf("HandleWebhook order not found for id %s (event %s)", orderID, event.ID)
	case err != nil:
		log.Printf("HandleWebhook update error for order %s: %v", orderID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	case changed:
		log.Printf("Order %s marked as paid and processing", orderID)
		s.publish("order-paid", mq.OrderEvent{
			OrderID: updated.OrderID,
			UserID:  updated.UserID,
			Total:   updated.TotalAmount,
			Status:  updated.OrderStatus,
		})
	default:
		log.Printf("Order %s already paid; event %s is a redelivery", orderID, event.ID)
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
