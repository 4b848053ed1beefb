package businesses

import (
	"encoding/json"
	"io"
	"net/http"

	"pos-server/core"
	"pos-server/handlers/api"
	"pos-server/middleware"
	"pos-server/stores"

	"github.com/go-chi/render"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type businessRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businesses, err := store.ListBusinesses(r.Context())
		if err != nil {
			api.RenderStoreError(w, r, err, "Businesses")
			return
		}
		if businesses == nil {
			businesses = []*core.Business{}
		}
		render.JSON(w, r, businesses)
	}
}

// HandleGetCurrent returns the caller's own business.
func HandleGetCurrent(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		business, err := store.GetBusiness(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Business")
			return
		}
		render.JSON(w, r, business)
	}
}

func HandleCreate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req businessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Business name is required"})
			return
		}

		business := &core.Business{Name: req.Name, Address: req.Address, Phone: req.Phone}
		id, err := store.CreateBusiness(r.Context(), business)
		if err != nil {
			api.RenderStoreError(w, r, err, "Business")
			return
		}
		business, err = store.GetBusiness(r.Context(), id)
		if err != nil {
			api.RenderStoreError(w, r, err, "Business")
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, business)
	}
}

func HandleUpdate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req businessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Business name is required"})
			return
		}

		existing, err := store.GetBusiness(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Business")
			return
		}

		existing.Name = req.Name
		existing.Address = req.Address
		existing.Phone = req.Phone
		if err := store.UpdateBusiness(r.Context(), existing); err != nil {
			api.RenderStoreError(w, r, err, "Business")
			return
		}
		render.JSON(w, r, existing)
	}
}

func HandleDelete(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "business id")
			return
		}
		if err := store.DeleteBusiness(r.Context(), id); err != nil {
			api.RenderStoreError(w, r, err, "Business")
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}

// HandleUploadLogo stores the logo bytes and records the new key on the
// business. The previous logo, if any, is removed.
func HandleUploadLogo(store stores.Store, images core.ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		business, err := store.GetBusiness(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Business")
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
			logrus.WithFields(logrus.Fields{"error": err, "businessID": claims.BusinessID}).Error("Failed to save logo")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to save logo"})
			return
		}

		oldKey := business.LogoKey
		business.LogoKey = key
		if err := store.UpdateBusiness(r.Context(), business); err != nil {
			api.RenderStoreError(w, r, err, "Business")
			return
		}
		if oldKey != "" {
			if err := images.DeleteImage(r.Context(), claims.BusinessID, oldKey); err != nil && err != core.ErrNotFound {
				logrus.WithFields(logrus.Fields{"error": err, "key": oldKey}).Warn("Failed to delete old logo")
			}
		}

		render.JSON(w, r, map[string]string{"logoKey": key})
	}
}

func HandleGetLogo(store stores.Store, images core.ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		business, err := store.GetBusiness(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Business")
			return
		}
		if business.LogoKey == "" {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Business has no logo"})
			return
		}

		data, err := images.GetImage(r.Context(), claims.BusinessID, business.LogoKey)
		if err != nil {
			api.RenderStoreError(w, r, err, "Logo")
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.Write(data)
	}
}
