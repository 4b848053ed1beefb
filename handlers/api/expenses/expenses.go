package expenses

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

type expenseRequest struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		expenses, err := store.ListExpenses(r.Context(), claims.BusinessID)
		if err != nil {
			api.RenderStoreError(w, r, err, "Expenses")
			return
		}
		if expenses == nil {
			expenses = []*core.Expense{}
		}
		render.JSON(w, r, expenses)
	}
}

func HandleCreate(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)

		var req expenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Description == "" || req.Amount <= 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "A description and a positive amount are required"})
			return
		}

		expense := &core.Expense{
			BusinessID:  claims.BusinessID,
			Description: req.Description,
			Amount:      req.Amount,
		}
		id, err := store.CreateExpense(r.Context(), expense)
		if err != nil {
			api.RenderStoreError(w, r, err, "Expense")
			return
		}
		expense.ID = id

		rt.BroadcastToTenant(claims.BusinessID, realtime.ExpensesUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.DashboardUpdated, nil)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, expense)
	}
}

func HandleDelete(store stores.Store, rt realtime.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.Claims(r)
		id, ok := api.IDParam(r, "id")
		if !ok {
			api.RenderBadID(w, r, "expense id")
			return
		}

		if err := store.DeleteExpense(r.Context(), claims.BusinessID, id); err != nil {
			api.RenderStoreError(w, r, err, "Expense")
			return
		}

		rt.BroadcastToTenant(claims.BusinessID, realtime.ExpensesUpdated, nil)
		rt.BroadcastToTenant(claims.BusinessID, realtime.DashboardUpdated, nil)

		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}
