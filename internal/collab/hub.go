package collab

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Hub relays envelopes between websocket clients of the same room. It keeps no board
// state of its own; every envelope is forwarded to the other members as received.
type Hub struct {
	mu        sync.Mutex
	rooms     map[string]map[*member]struct{}
	upgrader  websocket.Upgrader
	writeWait time.Duration
	log       *slog.Logger
}

type member struct {
	conn          *websocket.Conn
	wmu           sync.Mutex
	participantID string
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		rooms: make(map[string]map[*member]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeWait: writeWait,
		log:       log,
	}
}

// Router exposes GET /health and the /ws/{room} upgrade route.
func (h *Hub) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/ws/{room}", h.serveWS)
	return r
}

// RoomSize reports how many connections are joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (h *Hub) health(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	rooms := len(h.rooms)
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"rooms":  rooms,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.log.Warn("health response failed", slog.Any("error", err))
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}
	m := &member{conn: conn}
	h.join(room, m)
	h.log.Info("client joined", slog.String("room", room), slog.String("remote", r.RemoteAddr))

	defer func() {
		h.leave(room, m)
		conn.Close()
		h.log.Info("client left", slog.String("room", room), slog.String("participant", m.participantID))
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("read failed", slog.String("room", room), slog.Any("error", err))
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.log.Warn("dropping malformed envelope", slog.String("room", room), slog.Any("error", err))
			continue
		}
		if env.Cursor != nil && env.Type == TypeCursor {
			m.participantID = env.Cursor.ParticipantID
		}
		h.broadcast(room, m, raw)
	}
}

func (h *Hub) join(room string, m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*member]struct{})
		h.rooms[room] = members
	}
	members[m] = struct{}{}
}

// leave removes m and tells the rest of the room to drop its cursor.
func (h *Hub) leave(room string, m *member) {
	h.mu.Lock()
	delete(h.rooms[room], m)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	h.mu.Unlock()

	if m.participantID == "" {
		return
	}
	raw, err := json.Marshal(Envelope{Type: TypeLeave, Cursor: &CursorUpdate{ParticipantID: m.participantID}})
	if err != nil {
		return
	}
	h.broadcast(room, m, raw)
}

func (h *Hub) broadcast(room string, from *member, raw []byte) {
	h.mu.Lock()
	targets := make([]*member, 0, len(h.rooms[room]))
	for m := range h.rooms[room] {
		if m != from {
			targets = append(targets, m)
		}
	}
	h.mu.Unlock()

	// A member that cannot take a message within writeWait is disconnected; its read
	// loop then fails and leave() cleans up.
	for _, m := range targets {
		m.wmu.Lock()
		err := m.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err == nil {
			err = m.conn.WriteMessage(websocket.TextMessage, raw)
		}
		m.wmu.Unlock()
		if err != nil {
			h.log.Debug("relay write failed", slog.String("room", room), slog.Any("error", err))
			m.conn.Close()
		}
	}
}
