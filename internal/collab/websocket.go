package collab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	closeGrace = time.Second
	writeWait  = 5 * time.Second
	outboxCap  = 256
)

// WebSocket is a Transport over a single websocket connection carrying JSON envelopes.
// Send only queues; a writer goroutine owns the connection's write side, so a stalled
// peer never blocks the caller.
type WebSocket struct {
	conn *websocket.Conn
	log  *slog.Logger

	wmu  sync.Mutex
	out  *outbox
	wake chan struct{}
	in   chan Envelope
	done chan struct{}
	once sync.Once

	errMu    sync.Mutex
	readErr  error
	writeErr error
}

// outbox holds envelopes waiting to be written. Cursor updates collapse to the newest
// one; everything else is kept in order up to outboxCap, dropping the oldest.
type outbox struct {
	mu      sync.Mutex
	cursor  *Envelope
	queue   []Envelope
	dropped int
}

func (o *outbox) push(env Envelope) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if env.Type == TypeCursor {
		o.cursor = &env
		return
	}
	if len(o.queue) == outboxCap {
		o.queue = o.queue[1:]
		o.dropped++
	}
	o.queue = append(o.queue, env)
}

// next pops queued envelopes first, then the pending cursor.
func (o *outbox) next() (Envelope, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) > 0 {
		env := o.queue[0]
		o.queue = o.queue[1:]
		return env, true
	}
	if o.cursor != nil {
		env := *o.cursor
		o.cursor = nil
		return env, true
	}
	return Envelope{}, false
}

// Dial connects to a relay hub room, e.g. ws://host:8090/ws/kitchen.
func Dial(ctx context.Context, url string, log *slog.Logger) (*WebSocket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("collab: dial %s: %w", url, err)
	}
	return newWebSocket(conn, log), nil
}

func newWebSocket(conn *websocket.Conn, log *slog.Logger) *WebSocket {
	if log == nil {
		log = slog.Default()
	}
	ws := &WebSocket{
		conn: conn,
		log:  log,
		out:  &outbox{},
		wake: make(chan struct{}, 1),
		in:   make(chan Envelope, 64),
		done: make(chan struct{}),
	}
	go ws.readLoop()
	go ws.writeLoop()
	return ws
}

func (ws *WebSocket) writeLoop() {
	for {
		select {
		case <-ws.done:
			return
		case <-ws.wake:
		}
		for {
			env, ok := ws.out.next()
			if !ok {
				break
			}
			if err := ws.write(env); err != nil {
				ws.log.Debug("envelope not written", slog.String("type", string(env.Type)), slog.Any("error", err))
				ws.errMu.Lock()
				ws.writeErr = err
				ws.errMu.Unlock()
			}
		}
	}
}

func (ws *WebSocket) write(env Envelope) error {
	ws.wmu.Lock()
	defer ws.wmu.Unlock()
	if err := ws.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("collab: set write deadline: %w", err)
	}
	if err := ws.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("collab: write %s: %w", env.Type, err)
	}
	return nil
}

func (ws *WebSocket) readLoop() {
	defer close(ws.in)
	for {
		var env Envelope
		if err := ws.conn.ReadJSON(&env); err != nil {
			ws.setErr(err)
			return
		}
		select {
		case ws.in <- env:
		case <-ws.done:
			return
		}
	}
}

func (ws *WebSocket) setErr(err error) {
	select {
	case <-ws.done:
		err = ErrClosed
	default:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			err = ErrClosed
		}
	}
	ws.errMu.Lock()
	ws.readErr = err
	ws.errMu.Unlock()
}

// Send queues env for the writer and returns at once. A failure of an earlier write is
// reported by the next Send.
func (ws *WebSocket) Send(ctx context.Context, env Envelope) error {
	select {
	case <-ws.done:
		return ErrClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ws.errMu.Lock()
	err := ws.writeErr
	ws.writeErr = nil
	ws.errMu.Unlock()

	ws.out.push(env)
	select {
	case ws.wake <- struct{}{}:
	default:
	}
	return err
}

func (ws *WebSocket) Receive(ctx context.Context) (Envelope, error) {
	select {
	case env, ok := <-ws.in:
		if !ok {
			ws.errMu.Lock()
			err := ws.readErr
			ws.errMu.Unlock()
			if err == nil || errors.Is(err, ErrClosed) {
				return Envelope{}, ErrClosed
			}
			return Envelope{}, fmt.Errorf("collab: read: %w", err)
		}
		return env, nil
	case <-ws.done:
		return Envelope{}, ErrClosed
	case <-ctx.Done():
		return Envelope{}, ctx.Err()
	}
}

// Close sends a close frame and tears the connection down. It is safe to call twice.
func (ws *WebSocket) Close() error {
	var err error
	ws.once.Do(func() {
		close(ws.done)
		ws.wmu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := ws.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace)); werr != nil {
			ws.log.Debug("close frame not sent", slog.Any("error", werr))
		}
		ws.wmu.Unlock()
		err = ws.conn.Close()
	})
	return err
}
