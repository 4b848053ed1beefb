package shifts

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

type openShiftRequest struct {
	OpeningCash int64 `json:"openingCash"`
}

type closeShiftRequest struct {
	ClosingCash int64 `json:"closingCash"`
}

type cashMovementRequest struct {
	Kind   string `json:"kind"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// HandleCurrent returns the open shift, or 404 when the register is closed.
func HandleCurrent(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		shift, err := store.CurrentShift(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Shift")
			return
		}
		render.JSON(w, r, shift)
	}
}

func HandleOpen(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req openShiftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OpeningCash < 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "A non-negative opening cash amount is required"})
			return
		}

		shift := &core.Shift{
			BusinessID:  claims.BusinessID,
			UserID:      api.SubjectID(claims),
			OpeningCash: req.OpeningCash,
		}
		if _, err := store.OpenShift(r.Context(), shift); err != nil {
			api.RenderStoreError(w, r, err, "Shift")
			return
		}
		shift, err := store.CurrentShift(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Shift")
			return
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ShiftOpened, shift)
		rt.BroadcastToTenant(claims.BusinessID, realtime.ShiftsUpdated, nil)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, shift)
	}
}

func HandleClose(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "shift id")
			return
		}

		var req closeShiftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClosingCash < 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "A non-negative closing cash amount is required"})
			return
		}

		if err := store.CloseShift(r.Context(), claims.BusinessID, id, req.ClosingCash); err != nil {
			api.RenderStoreError(w, r, err, "Shift")
			return
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ShiftClosed, map[string]any{"id": id})
		rt.BroadcastToTenant(claims.BusinessID, realtime.ShiftsUpdated, nil)

		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "closed"})
	}
}

// HandleAddCashMovement records cash in or out of the open drawer.
func HandleAddCashMovement(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req cashMovementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
			(req.Kind != core.CashIn && req.Kind != core.CashOut) || req.Amount <= 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "A kind of in or out and a positive amount are required"})
			return
		}

		shift, err := store.CurrentShift(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Shift")
			return
		}

		movement := &core.CashMovement{
			BusinessID: claims.BusinessID,
			ShiftID:    shift.ID,
			Kind:       req.Kind,
			Amount:     req.Amount,
			Reason:     req.Reason,
		}
		id, err := store.AddCashMovement(r.Context(), movement)
		if err != nil {
			api.RenderStoreError(w, r, err, "Cash movement")
			return
		}
		movement.ID = id

		rt.BroadcastToTenant(claims.BusinessID, realtime.CashMovementsUpdated, nil)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, movement)
	}
}

func HandleListCashMovements(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		shift, err := store.CurrentShift(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Shift")
			return
		}

		movements, err := store.ListCashMovements(r.Context(), claims.BusinessID, shift.ID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Cash movements")
			return
		}
		if movements == nil {
			movements = []*core.CashMovement{}
		}
		render.JSON(w, r, movements)
	}
}
