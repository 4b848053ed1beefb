package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pos-server/core"
	"pos-server/stores/memory"
)

func setupAuth(t *testing.T) core.UserStore {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	store := memory.NewStore()
	InitAuth(store)
	return store
}

func seedUser(t *testing.T, store core.UserStore, username, password string) *core.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &core.User{
		BusinessID:   7,
		Username:     username,
		Name:         "Ana",
		Role:         core.RoleAdmin,
		PasswordHash: hash,
	}
	id, err := store.CreateUser(context.Background(), user)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	user.ID = id
	return user
}

func TestJWTRoundTrip(t *testing.T) {
	setupAuth(t)
	user := &core.User{ID: 42, BusinessID: 7, Username: "ana", Name: "Ana", Role: core.RoleAdmin}

	token, err := CreateJWT(user)
	if err != nil {
		t.Fatalf("Failed to create JWT: %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("Failed to parse JWT: %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("Expected subject 42, got %q", claims.Subject)
	}
	if claims.BusinessID != 7 {
		t.Errorf("Expected businessId 7, got %d", claims.BusinessID)
	}
	if claims.Login != "ana" || claims.Role != core.RoleAdmin {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestParseJWTRejectsTampering(t *testing.T) {
	setupAuth(t)
	token, err := CreateJWT(&core.User{ID: 1, BusinessID: 7, Username: "ana"})
	if err != nil {
		t.Fatalf("Failed to create JWT: %v", err)
	}

	if _, err := ParseJWT(token + "x"); err == nil {
		t.Error("Expected a tampered token to be rejected")
	}
	if _, err := ParseJWT("not-a-token"); err == nil {
		t.Error("Expected garbage to be rejected")
	}
}

func TestHandleLogin(t *testing.T) {
	store := setupAuth(t)
	seedUser(t, store, "ana", "hunter2")

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "hunter2"})
	w := httptest.NewRecorder()
	HandleLogin(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string    `json:"token"`
		User  core.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token in the response")
	}
	if resp.User.Username != "ana" {
		t.Errorf("Expected user ana, got %q", resp.User.Username)
	}

	claims, err := ParseJWT(resp.Token)
	if err != nil {
		t.Fatalf("Login token did not parse: %v", err)
	}
	if claims.BusinessID != 7 {
		t.Errorf("Expected businessId 7 in token, got %d", claims.BusinessID)
	}
}

func TestHandleLoginWrongPassword(t *testing.T) {
	store := setupAuth(t)
	seedUser(t, store, "ana", "hunter2")

	body, _ := json.Marshal(map[string]string{"username": "ana", "password": "wrong"})
	w := httptest.NewRecorder()
	HandleLogin(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestHandleLoginUnknownUser(t *testing.T) {
	setupAuth(t)

	body, _ := json.Marshal(map[string]string{"username": "ghost", "password": "whatever"})
	w := httptest.NewRecorder()
	HandleLogin(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestHandleLoginMissingFields(t *testing.T) {
	setupAuth(t)

	w := httptest.NewRecorder()
	HandleLogin(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{}`))))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}
