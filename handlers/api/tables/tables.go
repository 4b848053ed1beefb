package tables

import (
	"encoding/json"
	"net/http"

	"pos-server/core"
	"pos-server/handlers/api"
	"pos-server/middleware"
	"pos-server/stores"

	"github.com/go-chi/render"
)

type tableRequest struct {
	Name   string `json:"name"`
	Seats  int    `json:"seats"`
	Active *bool  `json:"active"`
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		tables, err := store.ListTables(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Tables")
			return
		}
		if tables == nil {
			tables = []*core.Table{}
		}
		render.JSON(w, r, tables)
	}
}

func HandleCreate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req tableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Table name is required"})
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}
		table := &core.Table{BusinessID: claims.BusinessID, Name: req.Name, Seats: req.Seats, Active: active}
		id, err := store.CreateTable(r.Context(), table)
		if err != nil {
			api.RenderStoreError(w, r, err, "Table")
			return
		}
		table.ID = id

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, table)
	}
}

func HandleUpdate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "table id")
			return
		}

		var req tableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Table name is required"})
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}
		table := &core.Table{ID: id, BusinessID: claims.BusinessID, Name: req.Name, Seats: req.Seats, Active: active}
		if err := store.UpdateTable(r.Context(), table); err != nil {
			api.RenderStoreError(w, r, err, "Table")
			return
		}
		render.JSON(w, r, table)
	}
}

func HandleDelete(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "table id")
			return
		}

		if err := store.DeleteTable(r.Context(), claims.BusinessID, id); err != nil {
			api.RenderStoreError(w, r, err, "Table")
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}
