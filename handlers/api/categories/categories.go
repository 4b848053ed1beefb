package categories

import (
	"encoding/json"
	"net/http"

	"pos-server/core"
	"pos-server/handlers/api"
	"pos-server/middleware"
	"pos-server/realtime"
	"pos-server/stores"

	"github.com/go-chi/render"
)

type categoryRequest struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		categories, err := store.ListCategories(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Categories")
			return
		}
		if categories == nil {
			categories = []*core.Category{}
		}
		render.JSON(w, r, categories)
	}
}

func HandleCreate(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Category name is required"})
			return
		}

		category := &core.Category{BusinessID: claims.BusinessID, Name: req.Name, Position: req.Position}
		id, err := store.CreateCategory(r.Context(), category)
		if err != nil {
			api.RenderStoreError(w, r, err, "Category")
			return
		}
		category.ID = id

		rt.BroadcastToTenant(claims.BusinessID, realtime.ProductsUpdated, nil)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, category)
	}
}

func HandleUpdate(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "category id")
			return
		}

		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Category name is required"})
			return
		}

		category := &core.Category{ID: id, BusinessID: claims.BusinessID, Name: req.Name, Position: req.Position}
		if err := store.UpdateCategory(r.Context(), category); err != nil {
			api.RenderStoreError(w, r, err, "Category")
			return
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ProductsUpdated, nil)
		render.JSON(w, r, category)
	}
}

func HandleDelete(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "category id")
			return
		}

		if err := store.DeleteCategory(r.Context(), claims.BusinessID, id); err != nil {
			api.RenderStoreError(w, r, err, "Category")
			return
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ProductsUpdated, nil)
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}
