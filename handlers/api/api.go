// Package api holds the helpers every entity handler shares: URL id parsing
// and the mapping from store sentinels to HTTP status codes.
package api

import (
	"net/http"
	"strconv"

	"pos-server/core"
	"pos-server/handlers/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// SubjectID parses the user id out of the JWT subject. Returns 0 when the
// subject is not numeric.
func SubjectID(claims *auth.AppClaims) int64 {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// IDParam parses a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// RenderBadID writes the 400 every handler uses for a malformed id.
func RenderBadID(w http.ResponseWriter, r *http.Request, name string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]string{"error": "Invalid " + name})
}

// RenderStoreError maps store sentinels to 404/409 and everything else to a
// logged 500. what names the entity for the client message.
func RenderStoreError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch err {
	case core.ErrNotFound:
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": what + " not found"})
	case core.ErrDuplicate:
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, map[string]string{"error": what + " already exists"})
	default:
		logrus.WithFields(logrus.Fields{"error": err, "entity": what}).Error("Store operation failed")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Internal server error"})
	}
}
