package realtime

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// Notifier is what write handlers depend on. *Broadcaster satisfies it;
// tests substitute a recorder.
type Notifier interface {
	BroadcastToTenant(tenantID int64, event Event, payload any)
	BroadcastGlobal(event Event, payload any)
}

// emitter abstracts the transport fan-out so delivery addressing can be
// asserted without a live Socket.IO server.
type emitter interface {
	toRoom(room string, event Event, payload any)
	toAll(event Event, payload any)
}

type socketEmitter struct {
	srv *socketio.Server
}

func (e socketEmitter) toRoom(room string, event Event, payload any) {
	// Best effort: a client that disconnects mid-send just misses the event.
	_ = e.srv.To(socketio.Room(room)).Emit(string(event), payload)
}

func (e socketEmitter) toAll(event Event, payload any) {
	_ = e.srv.To(socketio.Room(globalRoom)).Emit(string(event), payload)
}

// Options configures the Socket.IO transport at Initialize time.
type Options struct {
	// Path defaults to /socket.io.
	Path string
	// AllowedOrigins is the handshake allow-list; localhost origins and
	// requests without an Origin header are always accepted.
	AllowedOrigins []string
	// MaxHTTPBuffer caps a single transport payload, defaulting to 1 MB.
	MaxHTTPBuffer int64
}

// Broadcaster partitions realtime clients into per-business rooms and lets
// write handlers announce tenant-scoped changes. It has two states: a
// Broadcaster from New is uninitialized and drops broadcasts with a warning;
// Initialize binds it to a Socket.IO server exactly once for the life of the
// process. Construct one per process and pass it to every handler that
// emits; there is no package-level instance.
type Broadcaster struct {
	mu      sync.RWMutex
	srv     *socketio.Server
	emit    emitter
	allow   *originPolicy
	mounted bool

	hub *hub
}

func New() *Broadcaster {
	return &Broadcaster{hub: newHub()}
}

// Initialize builds the Socket.IO server and transitions the broadcaster to
// ready. Calling it again is a no-op that logs a warning and returns the
// server built by the first call; existing room memberships are untouched.
func (b *Broadcaster) Initialize(opts Options) *socketio.Server {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.srv != nil {
		logrus.Warn("realtime: Initialize called more than once, keeping existing server")
		return b.srv
	}

	if opts.Path == "" {
		opts.Path = "/socket.io"
	}
	if opts.MaxHTTPBuffer <= 0 {
		opts.MaxHTTPBuffer = 1_000_000
	}
	b.allow = newOriginPolicy(opts.AllowedOrigins)

	ioOpts := socketio.DefaultServerOptions()
	ioOpts.SetPath(opts.Path)
	ioOpts.SetMaxHttpBufferSize(opts.MaxHTTPBuffer)
	ioOpts.SetAllowEIO3(true)
	ioOpts.SetCors(&types.Cors{
		Origin:      b.allow.corsOrigins(),
		Credentials: true,
	})

	srv := socketio.NewServer(nil, ioOpts)

	srv.On("connection", func(clients ...any) {
		b.handleConnection(clients...)
	})

	b.srv = srv
	b.emit = socketEmitter{srv: srv}
	logrus.WithField("path", opts.Path).Info("realtime broadcaster ready")
	return srv
}

// Ready reports whether Initialize has run.
func (b *Broadcaster) Ready() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.srv != nil
}

// OriginAllowed applies the handshake allow-list; the REST CORS layer uses
// the same policy so both surfaces accept the same set of browsers.
func (b *Broadcaster) OriginAllowed(origin string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.allow == nil {
		return origin == ""
	}
	return b.allow.Allowed(origin)
}

// BroadcastToTenant delivers an event to every connection currently in the
// tenant's room. Delivery is fire and forget; before Initialize the call
// logs a warning and returns, so a write handler never fails a mutation
// because notification failed.
func (b *Broadcaster) BroadcastToTenant(tenantID int64, event Event, payload any) {
	b.mu.RLock()
	em := b.emit
	b.mu.RUnlock()

	if em == nil {
		logrus.WithFields(logrus.Fields{
			"event":     string(event),
			"tenant_id": tenantID,
		}).Warn("realtime: broadcast before Initialize, dropping")
		return
	}
	if !event.Known() {
		logrus.WithField("event", string(event)).Warn("realtime: event not in catalog, dropping")
		return
	}
	em.toRoom(TenantRoom(tenantID), event, payload)
}

// BroadcastGlobal delivers an event to every connected client regardless of
// tenant. Same best-effort semantics as BroadcastToTenant.
func (b *Broadcaster) BroadcastGlobal(event Event, payload any) {
	b.mu.RLock()
	em := b.emit
	b.mu.RUnlock()

	if em == nil {
		logrus.WithField("event", string(event)).Warn("realtime: broadcast before Initialize, dropping")
		return
	}
	if !event.Known() {
		logrus.WithField("event", string(event)).Warn("realtime: event not in catalog, dropping")
		return
	}
	em.toAll(event, payload)
}

// Rooms returns the current connection count per tenant room.
func (b *Broadcaster) Rooms() map[int64]int {
	return b.hub.counts()
}

// ServeHandler returns the HTTP handler to mount at the Socket.IO path, or
// nil before Initialize. The transport engine is created lazily on the first
// mount, so Close only tears the server down once this has been called.
func (b *Broadcaster) ServeHandler() http.Handler {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.srv == nil {
		return nil
	}
	b.mounted = true
	return b.srv.ServeHandler(nil)
}

// Close shuts the transport down. There is no way back to ready; this is for
// process shutdown only.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	srv := b.srv
	mounted := b.mounted
	b.mu.Unlock()
	// The server's engine only exists after ServeHandler; closing an
	// unmounted server would dereference a nil engine.
	if srv != nil && mounted {
		srv.Close(nil)
	}
	b.hub.close()
}

// TenantRoom is the room key for a business: "tenant:<id>".
func TenantRoom(tenantID int64) string {
	return fmt.Sprintf("tenant:%d", tenantID)
}

// Every connection sits in this room so global broadcasts have an address.
const globalRoom = "global"

func (b *Broadcaster) handleConnection(clients ...any) {
	socket, ok := clients[0].(*socketio.Socket)
	if !ok {
		return
	}

	me := string(socket.Id())
	log := logrus.WithField("socket_id", me)
	log.Debug("realtime client connected")

	socket.Join(socketio.Room(globalRoom))

	socket.On("join:tenant", func(datas ...any) {
		id, ok := tenantArg(datas)
		if !ok {
			log.Warn("join:tenant without a valid tenant id")
			return
		}
		socket.Join(socketio.Room(TenantRoom(id)))
		b.hub.join(me, id)
		log.WithField("tenant_id", id).Debug("joined tenant room")
	})

	socket.On("leave:tenant", func(datas ...any) {
		id, ok := tenantArg(datas)
		if !ok {
			log.Warn("leave:tenant without a valid tenant id")
			return
		}
		socket.Leave(socketio.Room(TenantRoom(id)))
		b.hub.leave(me, id)
		log.WithField("tenant_id", id).Debug("left tenant room")
	})

	socket.On("disconnecting", func(datas ...any) {
		log.Debug("realtime client disconnecting")
		b.hub.drop(me)
	})

	socket.On("disconnect", func(datas ...any) {
		socket.RemoveAllListeners("")
	})
}

// tenantArg pulls the tenant id out of a client message. JSON numbers arrive
// as float64; tolerate integers and numeric strings as well.
func tenantArg(datas []any) (int64, bool) {
	if len(datas) == 0 {
		return 0, false
	}
	switch v := datas[0].(type) {
	case float64:
		if v != float64(int64(v)) || v <= 0 {
			return 0, false
		}
		return int64(v), true
	case int:
		if v <= 0 {
			return 0, false
		}
		return int64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return v, true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
