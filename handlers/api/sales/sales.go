// Package sales implements the register endpoints. Every successful write
// fans out realtime events to the sale's business room so open terminals
// refresh without polling.
package sales

import (
	"encoding/json"
	"math"
	"net/http"

	"pos-server/core"
	"pos-server/handlers/api"
	"pos-server/middleware"
	"pos-server/realtime"
	"pos-server/stores"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type saleItemRequest struct {
	ProductID int64   `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

type saleRequest struct {
	TableID *int64            `json:"tableId"`
	Items   []saleItemRequest `json:"items"`
}

type paymentRequest struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		sales, err := store.ListSales(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Sales")
			return
		}
		if sales == nil {
			sales = []*core.Sale{}
		}
		render.JSON(w, r, sales)
	}
}

func HandleGet(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "sale id")
			return
		}

		sale, err := store.GetSale(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Sale")
			return
		}
		render.JSON(w, r, sale)
	}
}

// HandleCreate prices the requested items from the current catalog, records
// the sale, decrements stock and notifies the business room.
func HandleCreate(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req saleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "At least one sale item is required"})
			return
		}

		// Prices come from the catalog, never from the client.
		items := make([]core.SaleItem, 0, len(req.Items))
		var total int64
		for _, item := range req.Items {
			if item.Quantity <= 0 {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, map[string]string{"error": "Item quantity must be positive"})
				return
			}
			product, err := store.GetProduct(r.Context(), claims.BusinessID, item.ProductID)
			if err != nil {
				api.RenderStoreError(w, r, err, "Product")
				return
			}
			// Fractional quantities (weighed goods) round to the nearest cent.
			lineTotal := int64(math.Round(float64(product.Price) * item.Quantity))
			items = append(items, core.SaleItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
				Total:     lineTotal,
			})
			total += lineTotal
		}

		sale := &core.Sale{
			BusinessID: claims.BusinessID,
			TableID:    req.TableID,
			UserID:     api.SubjectID(claims),
			Status:     core.SaleStatusOpen,
			Items:      items,
			Total:      total,
		}
		id, err := store.CreateSale(r.Context(), sale)
		if err != nil {
			api.RenderStoreError(w, r, err, "Sale")
			return
		}

		for _, item := range items {
			if err := store.AdjustStock(r.Context(), claims.BusinessID, item.ProductID, -item.Quantity); err != nil {
				logrus.WithFields(logrus.Fields{
					"error":     err,
					"saleID":    id,
					"productID": item.ProductID,
				}).Warn("Failed to decrement stock for sale item")
			}
		}

		sale, err = store.GetSale(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Sale")
			return
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.SaleCreated, sale)
		rt.BroadcastToTenant(claims.BusinessID, realtime.SalesUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.InventoryUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.DashboardUpdated, nil)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, sale)
	}
}

// HandleCancel voids a sale and restores the stock its items consumed.
func HandleCancel(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "sale id")
			return
		}

		sale, err := store.GetSale(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Sale")
			return
		}
		if sale.Status == core.SaleStatusCancelled {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, map[string]string{"error": "Sale is already cancelled"})
			return
		}
		if err := store.CancelSale(r.Context(), claims.BusinessID, id); err != nil {
			api.RenderStoreError(w, r, err, "Sale")
			return
		}

		for _, item := range sale.Items {
			if err := store.AdjustStock(r.Context(), claims.BusinessID, item.ProductID, item.Quantity); err != nil {
				logrus.WithFields(logrus.Fields{
					"error":     err,
					"saleID":    id,
					"productID": item.ProductID,
				}).Warn("Failed to restore stock for cancelled sale item")
			}
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.SaleCancelled, map[string]any{"id": id})
		rt.BroadcastToTenant(claims.BusinessID, realtime.SalesUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.InventoryUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.DashboardUpdated, nil)

		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "cancelled"})
	}
}

func HandleAddPayment(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "sale id")
			return
		}

		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method == "" || req.Amount <= 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Payment method and a positive amount are required"})
			return
		}

		payment := &core.Payment{SaleID: id, Method: req.Method, Amount: req.Amount}
		paymentID, err := store.AddPayment(r.Context(), claims.BusinessID, payment)
		if err != nil {
			api.RenderStoreError(w, r, err, "Sale")
			return
		}
		payment.ID = paymentID

		rt.BroadcastToTenant(claims.BusinessID, realtime.PaymentsUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.DashboardUpdated, nil)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, payment)
	}
}
