package payments

import (
	"context"
	"os"
	"strings"

	"kirana/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeSessions creates hosted Checkout sessions. Amounts are already
// in paise, which is exactly Stripe's unit_amount for INR.
type StripeSessions struct {
	SuccessURL string
	CancelURL  string
}

func NewStripeSessions() *StripeSessions {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	front := strings.TrimRight(os.Getenv("FRONTEND_URL"), "/")
	if front == "" {
		front = "http://localhost:5173"
	}
	return &StripeSessions{
		SuccessURL: front + "/success",
		CancelURL:  front + "/cart",
	}
}

func (c *StripeSessions) Create(ctx context.Context, order models.Order) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items))
	for _, it := range order.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String("inr"),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
				UnitAmount: stripe.Int64(it.Price),
			},
			Quantity: stripe.Int64(int64(it.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(c.SuccessURL),
		CancelURL:          stripe.String(c.CancelURL),
	}
	params.Context = ctx
	// the one correlation key between our order and the provider session
	params.AddMetadata("orderId", order.OrderID)

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}
