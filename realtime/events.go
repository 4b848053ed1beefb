package realtime

import "sort"

// Event is a server-to-client notification name. The catalog below is
// closed: write handlers emit these constants and clients subscribe to them
// by name. A broadcast with an event outside the catalog is dropped.
//
// Every domain has an "updated" event that signals bulk invalidation; a few
// domains additionally carry per-action events. Payloads are hints only,
// clients re-fetch authoritative state over the REST API.
type Event string

const (
	SalesUpdated  Event = "sales:updated"
	SaleCreated   Event = "sale:created"
	SaleCancelled Event = "sale:cancelled"

	PaymentsUpdated Event = "payments:updated"

	ShiftsUpdated Event = "shifts:updated"
	ShiftOpened   Event = "shift:opened"
	ShiftClosed   Event = "shift:closed"

	CashMovementsUpdated Event = "cash-movements:updated"

	ExpensesUpdated Event = "expenses:updated"

	DashboardUpdated Event = "dashboard:updated"

	InventoryUpdated Event = "inventory:updated"
	ProductsUpdated  Event = "products:updated"
	SuppliesUpdated  Event = "supplies:updated"
)

var catalog = map[Event]struct{}{
	SalesUpdated:         {},
	SaleCreated:          {},
	SaleCancelled:        {},
	PaymentsUpdated:      {},
	ShiftsUpdated:        {},
	ShiftOpened:          {},
	ShiftClosed:          {},
	CashMovementsUpdated: {},
	ExpensesUpdated:      {},
	DashboardUpdated:     {},
	InventoryUpdated:     {},
	ProductsUpdated:      {},
	SuppliesUpdated:      {},
}

// Known reports whether e is part of the event catalog.
func (e Event) Known() bool {
	_, ok := catalog[e]
	return ok
}

// Catalog returns the full event catalog, sorted by name.
func Catalog() []Event {
	events := make([]Event, 0, len(catalog))
	for e := range catalog {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
	return events
}
