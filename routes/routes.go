package routes

import (
	"net/http"
	"os"

	"kirana/auth"
	"kirana/cart"
	"kirana/invoices"
	"kirana/middleware"
	"kirana/orders"
	"kirana/payments"
	"kirana/products"
	"kirana/ratelim"
	"kirana/rdx"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/productpic/*filepath", http.Dir("static/productpic"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(auth.RefreshToken))
}

func AddProductRoutes(router *httprouter.Router) {
	router.GET("/api/products", ratelim.RateLimit(products.GetProducts))
	router.GET("/api/products/:id", ratelim.RateLimit(products.GetProduct))

	adminOnly := middleware.Chain(middleware.Authenticate, middleware.RequireRoles("admin"))
	router.POST("/api/admin/products", adminOnly(products.CreateProduct))
	router.PUT("/api/admin/products/:id", adminOnly(products.UpdateProduct))
	router.DELETE("/api/admin/products/:id", adminOnly(products.DeleteProduct))
}

func AddCartRoutes(router *httprouter.Router) {
	router.POST("/api/cart", middleware.Authenticate(cart.AddToCart))
	router.GET("/api/cart", middleware.Authenticate(cart.GetCart))
	router.PUT("/api/cart", middleware.Authenticate(cart.UpdateCart))
	router.DELETE("/api/cart", middleware.Authenticate(cart.ClearCart))
}

// AddOrderRoutes wires the customer viewer, the invoice printer and the
// admin fulfillment console on top of a shared order store.
func AddOrderRoutes(router *httprouter.Router, store orders.Store) {
	orderHandler := orders.NewHandler(store)
	invoiceHandler := invoices.NewHandler(store)

	router.GET("/api/orders/my", middleware.Authenticate(orderHandler.GetMyOrders))
	// separate prefix: httprouter cannot mix /orders/my with /orders/:id
	router.GET("/api/invoices/:id", middleware.Authenticate(invoiceHandler.PrintInvoice))

	adminOnly := middleware.Chain(middleware.Authenticate, middleware.RequireRoles("admin"))
	router.GET("/api/admin/orders", adminOnly(orderHandler.GetAllOrders))
	router.PUT("/api/admin/orders/:id", adminOnly(orderHandler.UpdateOrderStatus))
	router.DELETE("/api/admin/orders/:id", adminOnly(orderHandler.DeleteOrder))
	router.DELETE("/api/admin/orders", adminOnly(orderHandler.DeleteAllOrders))
}

// AddPaymentRoutes wires checkout and the Stripe webhook. The webhook
// endpoint is deliberately unauthenticated and unlimited: the signature
// check is its gate, and throttling it would only trigger provider
// retry storms.
func AddPaymentRoutes(router *httprouter.Router, store orders.Store) {
	payService := payments.NewService(
		store,
		payments.NewStripeSessions(),
		rdx.NewEventDedup(),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
	)

	router.POST("/api/payment/checkout", ratelim.RateLimit(middleware.Authenticate(payService.CreateCheckoutSession)))
	router.POST("/webhook", payService.HandleWebhook)
}
