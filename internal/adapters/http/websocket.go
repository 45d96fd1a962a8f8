package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/core/ports"
	"github.com/samirrijal/wayfinder/internal/core/usecases"
	"github.com/samirrijal/wayfinder/internal/pkg/metrics"
)

const (
	pingInterval         = 30 * time.Second
	defaultLocateTimeout = 10 * time.Second
)

// clientMessage is sent by the client of a screen session.
// Type is one of: permission, position, position_error, query, focus,
// select, mode, clear, recenter.
type clientMessage struct {
	Type      string   `json:"type"`
	RequestID string   `json:"request_id,omitempty"`
	Granted   bool     `json:"granted,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Message   string   `json:"message,omitempty"`
	Text      string   `json:"text,omitempty"`
	Focused   bool     `json:"focused,omitempty"`
	PlaceID   int64    `json:"place_id,omitempty"`
	Mode      string   `json:"mode,omitempty"`
}

// serverMessage is sent to the client: state, permission_request, locate
// or error.
type serverMessage struct {
	Type      string              `json:"type"`
	RequestID string              `json:"request_id,omitempty"`
	State     *domain.ScreenState `json:"state,omitempty"`
	Error     string              `json:"error,omitempty"`
}

var (
	errLocateTimeout  = errors.New("client did not answer in time")
	errUnknownRequest = errors.New("unknown request_id")
	errSocketClosed   = errors.New("socket closed")
)

// socketWriter serializes writes to a connection and refuses them once the
// session has ended. The underlying *websocket.Conn is pooled after the
// handler returns and must not be touched again.
type socketWriter struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func (w *socketWriter) write(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errSocketClosed
	}
	return w.conn.WriteMessage(messageType, data)
}

func (w *socketWriter) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.write(websocket.TextMessage, data)
}

func (w *socketWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

type locateReply struct {
	granted bool
	pos     domain.Coordinate
	err     error
}

// ClientLocator implements ports.LocationProvider by asking the connected
// client for permission and position fixes over the socket. Replies are
// matched to requests by request id.
type ClientLocator struct {
	send    func(v any) error
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]chan locateReply
}

// NewClientLocator creates a locator that writes requests with send and
// gives up after timeout.
func NewClientLocator(send func(v any) error, timeout time.Duration) *ClientLocator {
	if timeout <= 0 {
		timeout = defaultLocateTimeout
	}
	return &ClientLocator{send: send, timeout: timeout, pending: make(map[string]chan locateReply)}
}

func (l *ClientLocator) RequestPermission(ctx context.Context) (bool, error) {
	r, err := l.ask(ctx, "permission_request")
	if err != nil {
		return false, err
	}
	return r.granted, r.err
}

func (l *ClientLocator) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	r, err := l.ask(ctx, "locate")
	if err != nil {
		return domain.Coordinate{}, err
	}
	return r.pos, r.err
}

func (l *ClientLocator) ask(ctx context.Context, kind string) (locateReply, error) {
	id := uuid.NewString()
	ch := make(chan locateReply, 1)

	l.mu.Lock()
	l.pending[id] = ch
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.pending, id)
		l.mu.Unlock()
	}()

	if err := l.send(serverMessage{Type: kind, RequestID: id}); err != nil {
		return locateReply{}, fmt.Errorf("send %s: %w", kind, err)
	}

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r, nil
	case <-timer.C:
		return locateReply{}, errLocateTimeout
	case <-ctx.Done():
		return locateReply{}, ctx.Err()
	}
}

// resolve hands a reply to the request waiting on id. It reports false
// when nothing is waiting.
func (l *ClientLocator) resolve(id string, r locateReply) bool {
	if id == "" {
		return false
	}
	l.mu.Lock()
	ch, ok := l.pending[id]
	delete(l.pending, id)
	l.mu.Unlock()
	if !ok {
		return false
	}
	ch <- r
	return true
}

// ScreenSocketHandler runs one map screen per connection. Every state
// change is pushed to the client as a "state" message. The handler returns
// only after every goroutine of the session has finished, and no write
// reaches the connection after that.
func ScreenSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		screenID := uuid.NewString()
		log := slog.Default().With("screen_id", screenID, "remote_addr", c.RemoteAddr().String())
		log.Info("screen session opened")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		w := &socketWriter{conn: c}
		writeJSON := w.writeJSON

		locator := NewClientLocator(writeJSON, deps.LocateTimeout)
		opts := deps.Screen
		if opts.Search == nil {
			opts.Search = deps.Search
		}
		if opts.Routes == nil {
			opts.Routes = deps.Routes
		}
		opts.Locator = locator
		opts.Logger = log
		opts.Notify = func(st domain.ScreenState) {
			_ = writeJSON(serverMessage{Type: "state", State: &st})
		}

		ctx, cancel := context.WithCancel(context.Background())
		screen := usecases.NewScreen(ctx, screenID, opts)

		var wg sync.WaitGroup
		done := make(chan struct{})
		defer func() {
			cancel()
			wg.Wait()
			screen.Close()
			close(done)
			w.close()
			log.Info("screen session closed")
		}()

		initial := screen.Snapshot()
		_ = writeJSON(serverMessage{Type: "state", State: &initial})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := screen.Start(ctx); err != nil {
				log.Info("screen start", "error", err)
			}
		}()

		go keepAlive(w, done)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			var m clientMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(serverMessage{Type: "error", Error: "invalid JSON"})
				continue
			}
			if err := applyClientMessage(ctx, screen, locator, m, &wg, log); err != nil {
				_ = writeJSON(serverMessage{Type: "error", Error: err.Error()})
			}
		}
	}
}

// applyClientMessage maps one client message onto a screen transition.
// Location requests block until the client answers, so they run in their
// own goroutine, tracked by wg, to keep the read loop free.
func applyClientMessage(ctx context.Context, screen *usecases.Screen, locator *ClientLocator, m clientMessage, wg *sync.WaitGroup, log *slog.Logger) error {
	switch m.Type {
	case "permission":
		if !locator.resolve(m.RequestID, locateReply{granted: m.Granted}) {
			return errUnknownRequest
		}
	case "position":
		if m.Lat == nil || m.Lon == nil {
			return errors.New("lat and lon are required")
		}
		pos := domain.Coordinate{Lat: *m.Lat, Lon: *m.Lon}
		if locator.resolve(m.RequestID, locateReply{pos: pos}) {
			return nil
		}
		// Unsolicited fixes come from the client's own position watch.
		return screen.SetLocation(pos)
	case "position_error":
		msg := m.Message
		if msg == "" {
			msg = "position unavailable"
		}
		if !locator.resolve(m.RequestID, locateReply{err: errors.New(msg)}) {
			return errUnknownRequest
		}
	case "query":
		screen.SetQuery(m.Text)
	case "focus":
		screen.SetSearchFocus(m.Focused)
	case "select":
		return screen.SelectResult(m.PlaceID)
	case "mode":
		mode, err := domain.ParseTransportMode(m.Mode)
		if err != nil {
			return err
		}
		return screen.SetMode(mode)
	case "clear":
		screen.ClearSearch()
	case "recenter":
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := screen.Recenter(ctx); err != nil {
				log.Info("recenter", "error", err)
			}
		}()
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// EventsSocketHandler relays published screen events to the client. The
// optional screen_id query parameter narrows the relay to one screen.
func EventsSocketHandler(sub ports.EventSubscriber) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		screenID := c.Query("screen_id")
		log := slog.Default().With("remote_addr", c.RemoteAddr().String(), "screen_id", screenID)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		w := &socketWriter{conn: c}
		defer w.close()
		unsubscribe, err := sub.SubscribeScreenEvents(screenID, func(data []byte) {
			_ = w.write(websocket.TextMessage, data)
		})
		if err != nil {
			log.Error("event relay subscribe", "error", err)
			return
		}
		defer unsubscribe()

		done := make(chan struct{})
		defer close(done)
		go keepAlive(w, done)

		// Client messages are ignored; reading detects the close.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		log.Debug("event relay closed")
	}
}

func keepAlive(w *socketWriter, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := w.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
