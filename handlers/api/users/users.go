package users

import (
	"encoding/json"
	"net/http"

	"pos-server/core"
	"pos-server/handlers/api"
	"pos-server/handlers/auth"
	"pos-server/middleware"
	"pos-server/stores"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type userRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func validRole(role string) bool {
	switch role {
	case core.RoleAdmin, core.RoleCashier, core.RoleWaiter:
		return true
	}
	return false
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		users, err := store.ListUsers(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Users")
			return
		}
		if users == nil {
			users = []*core.User{}
		}
		render.JSON(w, r, users)
	}
}

func HandleCreate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req userRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
			req.Username == "" || req.Password == "" || !validRole(req.Role) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "username, password and a valid role are required"})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			logrus.WithError(err).Error("Failed to hash password")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to create user"})
			return
		}

		user := &core.User{
			BusinessID:   claims.BusinessID,
			Username:     req.Username,
			Name:         req.Name,
			Role:         req.Role,
			PasswordHash: hash,
		}
		id, err := store.CreateUser(r.Context(), user)
		if err != nil {
			api.RenderStoreError(w, r, err, "User")
			return
		}
		user.ID = id

		logrus.WithFields(logrus.Fields{
			"username":   req.Username,
			"role":       req.Role,
			"businessID": claims.BusinessID,
		}).Info("User created")
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, user)
	}
}

func HandleUpdate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "user id")
			return
		}

		var req userRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || !validRole(req.Role) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "username and a valid role are required"})
			return
		}

		current, err := store.GetUser(r.Context(), claims.BusinessID, id)
		if err != nil {
			api.RenderStoreError(w, r, err, "User")
			return
		}

		if req.Username != current.Username {
			other, err := store.GetUserByUsername(r.Context(), req.Username)
			if err == nil && other.ID != id {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, map[string]string{"error": "User already exists"})
				return
			}
			if err != nil && err != core.ErrNotFound {
				api.RenderStoreError(w, r, err, "User")
				return
			}
		}

		// The hash carries over unless the request sets a new password.
		user := &core.User{
			ID:           id,
			BusinessID:   claims.BusinessID,
			Username:     req.Username,
			Name:         req.Name,
			Role:         req.Role,
			PasswordHash: current.PasswordHash,
		}
		if req.Password != "" {
			hash, err := auth.HashPassword(req.Password)
			if err != nil {
				logrus.WithError(err).Error("Failed to hash password")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, map[string]string{"error": "Failed to update user"})
				return
			}
			user.PasswordHash = hash
		}

		if err := store.UpdateUser(r.Context(), user); err != nil {
			api.RenderStoreError(w, r, err, "User")
			return
		}
		render.JSON(w, r, user)
	}
}

func HandleDelete(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "user id")
			return
		}

		// An admin cannot delete themselves.
		if claims.Subject == "" || api.SubjectID(claims) == id {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Cannot delete your own account"})
			return
		}

		if err := store.DeleteUser(r.Context(), claims.BusinessID, id); err != nil {
			api.RenderStoreError(w, r, err, "User")
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}
