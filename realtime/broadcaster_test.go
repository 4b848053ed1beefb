package realtime

import (
	"reflect"
	"testing"
)

type recordedEmit struct {
	room    string
	event   Event
	payload any
	global  bool
}

// recordingEmitter captures fan-out addressing instead of touching the wire.
type recordingEmitter struct {
	emits []recordedEmit
}

func (r *recordingEmitter) toRoom(room string, event Event, payload any) {
	r.emits = append(r.emits, recordedEmit{room: room, event: event, payload: payload})
}

func (r *recordingEmitter) toAll(event Event, payload any) {
	r.emits = append(r.emits, recordedEmit{event: event, payload: payload, global: true})
}

func newTestBroadcaster(t *testing.T) (*Broadcaster, *recordingEmitter) {
	t.Helper()
	b := New()
	t.Cleanup(b.hub.close)
	rec := &recordingEmitter{}
	b.emit = rec
	b.allow = newOriginPolicy(nil)
	return b, rec
}

func TestBroadcastBeforeInitializeIsDropped(t *testing.T) {
	b := New()
	defer b.hub.close()

	if b.Ready() {
		t.Fatal("New broadcaster must not be ready")
	}

	// Must not panic and must not error out.
	b.BroadcastToTenant(7, SalesUpdated, map[string]any{"x": 1})
	b.BroadcastGlobal(DashboardUpdated, nil)
}

func TestBroadcastReachesOnlyTargetTenantRoom(t *testing.T) {
	b, rec := newTestBroadcaster(t)

	b.hub.join("client-a", 7)
	b.hub.join("client-b", 9)

	payload := map[string]any{"x": 1}
	b.BroadcastToTenant(7, SalesUpdated, payload)

	if len(rec.emits) != 1 {
		t.Fatalf("Expected exactly 1 emit, got %d", len(rec.emits))
	}
	got := rec.emits[0]
	if got.room != TenantRoom(7) {
		t.Errorf("Expected room %q, got %q", TenantRoom(7), got.room)
	}
	if got.room == TenantRoom(9) {
		t.Error("Broadcast addressed to tenant 9's room")
	}
	if got.event != SalesUpdated {
		t.Errorf("Expected event %q, got %q", SalesUpdated, got.event)
	}
	if !reflect.DeepEqual(got.payload, payload) {
		t.Errorf("Expected payload %v, got %v", payload, got.payload)
	}
}

func TestBroadcastAfterDisconnectDoesNotFail(t *testing.T) {
	b, rec := newTestBroadcaster(t)

	b.hub.join("client-a", 7)
	b.hub.drop("client-a")

	b.BroadcastToTenant(7, SalesUpdated, map[string]any{})

	// The room is empty; addressing it is still fine.
	if len(rec.emits) != 1 {
		t.Fatalf("Expected 1 emit, got %d", len(rec.emits))
	}
	if counts := b.Rooms(); len(counts) != 0 {
		t.Errorf("Expected no occupied rooms, got %v", counts)
	}
}

func TestUnknownEventIsDropped(t *testing.T) {
	b, rec := newTestBroadcaster(t)

	b.BroadcastToTenant(7, Event("made-up:event"), nil)
	b.BroadcastGlobal(Event("made-up:event"), nil)

	if len(rec.emits) != 0 {
		t.Errorf("Expected no emits for an event outside the catalog, got %d", len(rec.emits))
	}
}

func TestBroadcastGlobalAddressesEveryone(t *testing.T) {
	b, rec := newTestBroadcaster(t)

	b.BroadcastGlobal(DashboardUpdated, nil)

	if len(rec.emits) != 1 {
		t.Fatalf("Expected 1 emit, got %d", len(rec.emits))
	}
	if !rec.emits[0].global {
		t.Error("Expected a global emit, got a room emit")
	}
}

func TestInitializeTwiceKeepsFirstServer(t *testing.T) {
	b := New()
	defer b.Close()

	first := b.Initialize(Options{})
	if first == nil {
		t.Fatal("Initialize returned nil server")
	}
	if !b.Ready() {
		t.Fatal("Broadcaster not ready after Initialize")
	}

	b.hub.join("client-a", 7)

	second := b.Initialize(Options{AllowedOrigins: []string{"https://elsewhere.example"}})
	if first != second {
		t.Error("Second Initialize returned a different server")
	}

	counts := b.Rooms()
	if counts[7] != 1 {
		t.Errorf("Second Initialize reset room memberships: %v", counts)
	}
}

func TestCloseWithoutMountDoesNotPanic(t *testing.T) {
	b := New()
	b.Initialize(Options{})

	// The transport engine does not exist until ServeHandler runs; Close
	// must skip the server teardown in that case.
	b.Close()

	if counts := b.Rooms(); counts != nil {
		t.Errorf("Expected no room counts after close, got %v", counts)
	}
}

func TestServeHandlerBeforeInitialize(t *testing.T) {
	b := New()
	defer b.hub.close()

	if h := b.ServeHandler(); h != nil {
		t.Error("Expected nil handler before Initialize")
	}
}

func TestCloseAfterMountShutsTransportDown(t *testing.T) {
	b := New()
	b.Initialize(Options{})

	if h := b.ServeHandler(); h == nil {
		t.Fatal("Expected a handler after Initialize")
	}
	b.Close()
}

func TestTenantRoomName(t *testing.T) {
	if got := TenantRoom(7); got != "tenant:7" {
		t.Errorf("TenantRoom(7) = %q, want tenant:7", got)
	}
}

func TestTenantArg(t *testing.T) {
	cases := []struct {
		name string
		args []any
		want int64
		ok   bool
	}{
		{"json number", []any{float64(7)}, 7, true},
		{"int", []any{42}, 42, true},
		{"numeric string", []any{"9"}, 9, true},
		{"fractional", []any{7.5}, 0, false},
		{"zero", []any{float64(0)}, 0, false},
		{"negative", []any{float64(-3)}, 0, false},
		{"non-numeric string", []any{"seven"}, 0, false},
		{"missing", nil, 0, false},
		{"wrong type", []any{map[string]any{}}, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tenantArg(tc.args)
			if ok != tc.ok || got != tc.want {
				t.Errorf("tenantArg(%v) = (%d, %v), want (%d, %v)", tc.args, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestOriginPolicy(t *testing.T) {
	p := newOriginPolicy([]string{"https://pos.example.com"})

	cases := []struct {
		origin string
		want   bool
	}{
		{"", true}, // non-browser clients send no Origin
		{"https://pos.example.com", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:8080", true},
		{"https://evil.example.com", false},
		{"https://pos.example.com.evil.com", false},
	}

	for _, tc := range cases {
		if got := p.Allowed(tc.origin); got != tc.want {
			t.Errorf("Allowed(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}

func TestOriginAllowedBeforeInitialize(t *testing.T) {
	b := New()
	defer b.hub.close()

	if !b.OriginAllowed("") {
		t.Error("Absent origin must be allowed before Initialize")
	}
	if b.OriginAllowed("https://pos.example.com") {
		t.Error("No origin should pass the allow-list before Initialize")
	}
}

func TestEventCatalog(t *testing.T) {
	if !SalesUpdated.Known() {
		t.Error("sales:updated must be in the catalog")
	}
	if Event("tables:updated").Known() {
		t.Error("tables:updated is not a catalog event")
	}

	events := Catalog()
	if len(events) != len(catalog) {
		t.Fatalf("Catalog() returned %d events, want %d", len(events), len(catalog))
	}
	for i := 1; i < len(events); i++ {
		if events[i-1] >= events[i] {
			t.Fatalf("Catalog() not sorted: %q before %q", events[i-1], events[i])
		}
	}
}
