package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pos-server/core"
	"pos-server/handlers/auth"
	"pos-server/middleware"
	"pos-server/stores"
	"pos-server/stores/memory"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func requestWithClaims(method, target string, body []byte, businessID int64) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	claims := &auth.AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "99"},
		BusinessID:       businessID,
		Role:             core.RoleAdmin,
	}
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsContextKey, claims))
}

func seedUser(t *testing.T, store stores.Store, businessID int64, username, password string) *core.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &core.User{
		BusinessID:   businessID,
		Username:     username,
		Name:         "Ana",
		Role:         core.RoleCashier,
		PasswordHash: hash,
	}
	id, err := store.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	user.ID = id
	return user
}

func TestRenameKeepsPassword(t *testing.T) {
	store := memory.NewStore()
	seeded := seedUser(t, store, 7, "ana", "hunter2")

	router := chi.NewRouter()
	router.Put("/users/{id}", HandleUpdate(store))

	body, _ := json.Marshal(map[string]string{
		"username": "anita",
		"name":     "Anita",
		"role":     core.RoleCashier,
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, requestWithClaims(http.MethodPut, "/users/1", body, 7))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated, err := store.GetUser(context.Background(), 7, seeded.ID)
	if err != nil {
		t.Fatalf("Failed to load updated user: %v", err)
	}
	if updated.Username != "anita" {
		t.Errorf("Expected username anita, got %q", updated.Username)
	}
	if updated.PasswordHash == "" {
		t.Fatal("Rename wiped the password hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("hunter2")); err != nil {
		t.Error("Old password no longer matches after a rename without a password change")
	}
}

func TestUpdateChangesPassword(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 7, "ana", "hunter2")

	router := chi.NewRouter()
	router.Put("/users/{id}", HandleUpdate(store))

	body, _ := json.Marshal(map[string]string{
		"username": "ana",
		"role":     core.RoleCashier,
		"password": "correct-horse",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, requestWithClaims(http.MethodPut, "/users/1", body, 7))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated, _ := store.GetUser(context.Background(), 7, 1)
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("correct-horse")); err != nil {
		t.Error("New password does not match after update")
	}
}

func TestUpdateRejectsTakenUsername(t *testing.T) {
	store := memory.NewStore()
	seedUser(t, store, 7, "ana", "hunter2")
	seedUser(t, store, 7, "berta", "hunter2")

	router := chi.NewRouter()
	router.Put("/users/{id}", HandleUpdate(store))

	body, _ := json.Marshal(map[string]string{
		"username": "berta",
		"role":     core.RoleCashier,
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, requestWithClaims(http.MethodPut, "/users/1", body, 7))

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for a taken username, got %d", w.Code)
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	store := memory.NewStore()

	router := chi.NewRouter()
	router.Put("/users/{id}", HandleUpdate(store))

	body, _ := json.Marshal(map[string]string{
		"username": "ghost",
		"role":     core.RoleCashier,
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, requestWithClaims(http.MethodPut, "/users/404", body, 7))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
