package realtime

import (
	"reflect"
	"testing"
)

func TestJoinIsIdempotent(t *testing.T) {
	h := newHub()
	defer h.close()

	h.join("conn-1", 7)
	h.join("conn-1", 7)

	members := h.members(7)
	if len(members) != 1 {
		t.Fatalf("Expected 1 member after double join, got %d", len(members))
	}
	if members[0] != "conn-1" {
		t.Errorf("Expected member conn-1, got %s", members[0])
	}
}

func TestJoinThenLeaveRestoresMembership(t *testing.T) {
	h := newHub()
	defer h.close()

	h.join("conn-1", 7)
	before := h.members(7)

	h.join("conn-2", 7)
	h.leave("conn-2", 7)

	after := h.members(7)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Membership changed by join+leave round trip: before %v, after %v", before, after)
	}
}

func TestLeaveWithoutJoinIsNoOp(t *testing.T) {
	h := newHub()
	defer h.close()

	h.join("conn-1", 7)
	h.leave("conn-2", 7)
	h.leave("conn-1", 9)

	counts := h.counts()
	if counts[7] != 1 {
		t.Errorf("Expected tenant 7 to keep 1 member, got %d", counts[7])
	}
	if _, ok := counts[9]; ok {
		t.Error("Expected no room for tenant 9")
	}
}

func TestConnectionMayJoinMultipleTenants(t *testing.T) {
	h := newHub()
	defer h.close()

	h.join("conn-1", 7)
	h.join("conn-1", 9)

	counts := h.counts()
	if counts[7] != 1 || counts[9] != 1 {
		t.Errorf("Expected membership in both rooms, got %v", counts)
	}
}

func TestDropRemovesAllMemberships(t *testing.T) {
	h := newHub()
	defer h.close()

	h.join("conn-1", 7)
	h.join("conn-1", 9)
	h.join("conn-2", 7)

	h.drop("conn-1")

	counts := h.counts()
	if counts[7] != 1 {
		t.Errorf("Expected tenant 7 to keep conn-2, got %d members", counts[7])
	}
	if _, ok := counts[9]; ok {
		t.Error("Expected tenant 9 room to be gone after drop")
	}

	members := h.members(7)
	if len(members) != 1 || members[0] != "conn-2" {
		t.Errorf("Expected only conn-2 in tenant 7, got %v", members)
	}
}

func TestEmptyRoomsAreDeleted(t *testing.T) {
	h := newHub()
	defer h.close()

	h.join("conn-1", 7)
	h.leave("conn-1", 7)

	counts := h.counts()
	if len(counts) != 0 {
		t.Errorf("Expected no rooms, got %v", counts)
	}
}

func TestQueriesAfterCloseDoNotBlock(t *testing.T) {
	h := newHub()
	h.join("conn-1", 7)
	h.close()

	if counts := h.counts(); counts != nil {
		t.Errorf("Expected nil counts after close, got %v", counts)
	}
	if members := h.members(7); members != nil {
		t.Errorf("Expected nil members after close, got %v", members)
	}

	// Sends after close must not block either.
	h.join("conn-2", 7)
	h.drop("conn-2")
}
