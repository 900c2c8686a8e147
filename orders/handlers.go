package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"kirana/models"
	"kirana/mq"
	"kirana/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler serves the customer order viewer and the admin fulfillment
// endpoints. Route-level middleware enforces who may call what.
type Handler struct {
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// GetMyOrders returns the authenticated user's orders, newest first.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	list, err := h.Store.FindByUser(ctx, userID)
	if err != nil {
		log.Println("GetMyOrders find error:", err)
		http.Error(w, "Could not retrieve orders", http.StatusInternalServerError)
		return
	}
	if len(list) == 0 {
		list = []models.Order{}
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GetAllOrders lists every order with the owning account's name and
// email for the admin console.
func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := h.Store.FindAllWithOwners(ctx)
	if err != nil {
		log.Println("GetAllOrders aggregate error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(list) == 0 {
		list = []models.AdminOrder{}
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

// UpdateOrderStatus overwrites an order's fulfillment status with any
// value from the known set. No forward-only constraint: the admin may
// move an order back to Pending.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if !models.OrderStatuses[payload.Status] {
		http.Error(w, "Unknown order status", http.StatusBadRequest)
		return
	}

	orderID := ps.ByName("id")
	updated, err := h.Store.SetStatus(ctx, orderID, payload.Status)
	if err == ErrNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Println("UpdateOrderStatus update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	mq.Emit("order-status-changed", mq.OrderEvent{
		OrderID: updated.OrderID,
		UserID:  updated.UserID,
		Total:   updated.TotalAmount,
		Status:  updated.OrderStatus,
	})

	utils.RespondWithJSON(w, http.StatusOK, updated)
}

// DeleteOrder removes a single order by id.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("id")
	err := h.Store.Delete(ctx, orderID)
	if err == ErrNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Println("DeleteOrder delete error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

// DeleteAllOrders wipes the whole order store. Irreversible; any
// confirmation dialog is the UI's job.
func (h *Handler) DeleteAllOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := h.Store.DeleteAll(ctx)
	if err != nil {
		log.Println("DeleteAllOrders delete error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete all orders")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":      "All orders deleted successfully",
		"deletedCount": count,
	})
}
