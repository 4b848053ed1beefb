package products

import (
	"encoding/json"
	"io"
	"net/http"

	"pos-server/core"
	"pos-server/handlers/api"
	"pos-server/middleware"
	"pos-server/realtime"
	"pos-server/stores"

	"github.com/go-chi/render"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type productRequest struct {
	CategoryID int64   `json:"categoryId"`
	Name       string  `json:"name"`
	Price      int64   `json:"price"`
	Stock      float64 `json:"stock"`
	Active     *bool   `json:"active"`
}

type stockRequest struct {
	Delta float64 `json:"delta"`
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		products, err := store.ListProducts(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Products")
			return
		}
		if products == nil {
			products = []*core.Product{}
		}
		render.JSON(w, r, products)
	}
}

func HandleGet(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "product id")
			return
		}

		product, err := store.GetProduct(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}
		render.JSON(w, r, product)
	}
}

func HandleCreate(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Price < 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Product name and a non-negative price are required"})
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}
		product := &core.Product{
			BusinessID: claims.BusinessID,
			CategoryID: req.CategoryID,
			Name:       req.Name,
			Price:      req.Price,
			Stock:      req.Stock,
			Active:     active,
		}
		id, err := store.CreateProduct(r.Context(), product)
		if err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}
		product.ID = id

		rt.BroadcastToTenant(claims.BusinessID, realtime.ProductsUpdated, nil)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, product)
	}
}

func HandleUpdate(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "product id")
			return
		}

		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Price < 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Product name and a non-negative price are required"})
			return
		}

		existing, err := store.GetProduct(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}

		existing.CategoryID = req.CategoryID
		existing.Name = req.Name
		existing.Price = req.Price
		existing.Stock = req.Stock
		if req.Active != nil {
			existing.Active = *req.Active
		}
		if err := store.UpdateProduct(r.Context(), existing); err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ProductsUpdated, nil)
		render.JSON(w, r, existing)
	}
}

func HandleDelete(store stores.Store, images core.ImageStore, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "product id")
			return
		}

		product, err := store.GetProduct(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}
		if err := store.DeleteProduct(r.Context(), claims.BusinessID, id); err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}
		if product.ImageKey != "" {
			if err := images.DeleteImage(r.Context(), claims.BusinessID, product.ImageKey); err != nil && err != core.ErrNotFound {
				logrus.WithFields(logrus.Fields{"error": err, "key": product.ImageKey}).Warn("Failed to delete product image")
			}
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ProductsUpdated, nil)
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}

// HandleAdjustStock applies a relative stock change (a count correction or
// manual intake) and fans out inventory events.
func HandleAdjustStock(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "product id")
			return
		}

		var req stockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "A non-zero delta is required"})
			return
		}

		if err := store.AdjustStock(r.Context(), claims.BusinessID, id, req.Delta); err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}
		product, err := store.GetProduct(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ProductsUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.InventoryUpdated, nil)
		render.JSON(w, r, product)
	}
}

// HandleUploadImage stores the raw body as the product image.
func HandleUploadImage(store stores.Store, images core.ImageStore, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "product id")
			return
		}

		product, err := store.GetProduct(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}

		data, err := io.ReadAll(r.Body)
		if err != nil || len(data) == 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Image data is required"})
			return
		}
		defer r.Body.Close()

		key := ulid.Make().String()
		if err := images.SaveImage(r.Context(), claims.BusinessID, key, data); err != nil {
			logrus.WithFields(logrus.Fields{"error": err, "productID": id}).Error("Failed to save product image")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to save image"})
			return
		}

		oldKey := product.ImageKey
		product.ImageKey = key
		if err := store.UpdateProduct(r.Context(), product); err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}
		if oldKey != "" {
			if err := images.DeleteImage(r.Context(), claims.BusinessID, oldKey); err != nil && err != core.ErrNotFound {
				logrus.WithFields(logrus.Fields{"error": err, "key": oldKey}).Warn("Failed to delete old product image")
			}
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ProductsUpdated, nil)
		render.JSON(w, r, map[string]string{"imageKey": key})
	}
}

func HandleGetImage(store stores.Store, images core.ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "product id")
			return
		}

		product, err := store.GetProduct(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Product")
			return
		}
		if product.ImageKey == "" {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Product has no image"})
			return
		}

		data, err := images.GetImage(r.Context(), claims.BusinessID, product.ImageKey)
		if err != nil {
			api.RenderStoreError(w, r, err, "Image")
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.Write(data)
	}
}
