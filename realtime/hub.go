package realtime

import "sort"

// The hub mirrors tenant room membership for bookkeeping: the admin rooms
// endpoint and tests read it, while actual delivery is addressed through the
// transport's own room table. A single goroutine owns the maps; everything
// else talks to it through one channel, so messages are applied in send
// order and no lock is needed.

type hubOp int

const (
	opJoin hubOp = iota
	opLeave
	opDrop
	opCounts
	opMembers
)

type hubMsg struct {
	op     hubOp
	conn   string
	tenant int64

	countsReply  chan map[int64]int
	membersReply chan []string
}

type hub struct {
	msgs chan hubMsg
	quit chan struct{}
}

func newHub() *hub {
	h := &hub{
		msgs: make(chan hubMsg, 64),
		quit: make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *hub) run() {
	rooms := make(map[int64]map[string]struct{})
	conns := make(map[string]map[int64]struct{})

	for {
		select {
		case m := <-h.msgs:
			switch m.op {
			case opJoin:
				// Joining twice is a no-op.
				if rooms[m.tenant] == nil {
					rooms[m.tenant] = make(map[string]struct{})
				}
				rooms[m.tenant][m.conn] = struct{}{}
				if conns[m.conn] == nil {
					conns[m.conn] = make(map[int64]struct{})
				}
				conns[m.conn][m.tenant] = struct{}{}

			case opLeave:
				// Leaving a room never joined is a no-op.
				if members, ok := rooms[m.tenant]; ok {
					delete(members, m.conn)
					if len(members) == 0 {
						delete(rooms, m.tenant)
					}
				}
				if tenants, ok := conns[m.conn]; ok {
					delete(tenants, m.tenant)
					if len(tenants) == 0 {
						delete(conns, m.conn)
					}
				}

			case opDrop:
				for tenant := range conns[m.conn] {
					delete(rooms[tenant], m.conn)
					if len(rooms[tenant]) == 0 {
						delete(rooms, tenant)
					}
				}
				delete(conns, m.conn)

			case opCounts:
				counts := make(map[int64]int, len(rooms))
				for tenant, members := range rooms {
					counts[tenant] = len(members)
				}
				m.countsReply <- counts

			case opMembers:
				members := make([]string, 0, len(rooms[m.tenant]))
				for conn := range rooms[m.tenant] {
					members = append(members, conn)
				}
				sort.Strings(members)
				m.membersReply <- members
			}

		case <-h.quit:
			return
		}
	}
}

func (h *hub) send(m hubMsg) {
	select {
	case h.msgs <- m:
	case <-h.quit:
	}
}

func (h *hub) join(conn string, tenant int64) {
	h.send(hubMsg{op: opJoin, conn: conn, tenant: tenant})
}

func (h *hub) leave(conn string, tenant int64) {
	h.send(hubMsg{op: opLeave, conn: conn, tenant: tenant})
}

func (h *hub) drop(conn string) {
	h.send(hubMsg{op: opDrop, conn: conn})
}

// counts returns the number of connections per tenant room.
func (h *hub) counts() map[int64]int {
	reply := make(chan map[int64]int, 1)
	h.send(hubMsg{op: opCounts, countsReply: reply})
	select {
	case counts := <-reply:
		return counts
	case <-h.quit:
		return nil
	}
}

// members returns the connection ids in a tenant room, sorted.
func (h *hub) members(tenant int64) []string {
	reply := make(chan []string, 1)
	h.send(hubMsg{op: opMembers, tenant: tenant, membersReply: reply})
	select {
	case members := <-reply:
		return members
	case <-h.quit:
		return nil
	}
}

func (h *hub) close() {
	close(h.quit)
}
