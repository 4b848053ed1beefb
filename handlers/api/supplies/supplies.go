package supplies

import (
	"encoding/json"
	"net/http"

	"pos-server/core"
	"pos-server/handlers/api"
	"pos-server/middleware"
	"pos-server/realtime"
	"pos-server/stores"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type supplyRequest struct {
	ProductID int64   `json:"productId"`
	Quantity  float64 `json:"quantity"`
	UnitCost  int64   `json:"unitCost"`
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		supplies, err := store.ListSupplies(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Supplies")
			return
		}
		if supplies == nil {
			supplies = []*core.Supply{}
		}
		render.JSON(w, r, supplies)
	}
}

// HandleCreate records a stock intake and increments the product's stock.
func HandleCreate(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req supplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity <= 0 || req.UnitCost < 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "A positive quantity and a non-negative unit cost are required"})
			return
		}

		// Supplies only make sense for products in this business.
		if _, err := store.GetProduct(r.Context(), claims.BusinessID, req.ProductID); err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}

		supply := &core.Supply{
			BusinessID: claims.BusinessID,
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
			UnitCost:   req.UnitCost,
		}
		id, err := store.CreateSupply(r.Context(), supply)
		if err != nil {
			api.RenderStoreError(w, r, err, "Supply")
			return
		}
		supply.ID = id

		if err := store.AdjustStock(r.Context(), claims.BusinessID, req.ProductID, req.Quantity); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":     err,
				"supplyID":  id,
				"productID": req.ProductID,
			}).Warn("Failed to increment stock for supply")
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.SuppliesUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.InventoryUpdated, nil)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, supply)
	}
}
