// Package ws pushes signals to browser clients over /ws.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	svcmetrics "FinSignal/internal/service/metrics"
	xlogger "FinSignal/pkg/logger"
)

// Frame types sent to clients.
const (
	FrameInitialData = "INITIAL_DATA"
	FrameNewSignal   = "NEW_SIGNAL"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Frame is the envelope of every server message.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// InitialData is the payload of the first frame a client receives.
type InitialData struct {
	Signals []models.Signal `json:"signals"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks connected clients and implements repository.Broadcaster.
type Hub struct {
	upgrader websocket.Upgrader
	latest   domrepo.LatestSignals
	log      *xlogger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(latest domrepo.LatestSignals, lgr *xlogger.Logger) *Hub {
	if lgr == nil {
		lgr = xlogger.Nop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		latest:  latest,
		log:     lgr,
		clients: make(map[*client]struct{}),
	}
}

var _ domrepo.Broadcaster = (*Hub)(nil)

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve upgrades the request and sends INITIAL_DATA with the latest scan.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if frame, err := h.initialFrame(c.Request().Context()); err != nil {
		h.log.Warn("load initial signals", xlogger.Error(err))
	} else {
		cl.send <- frame
	}
	h.add(cl)

	go h.writePump(cl)
	go h.readPump(cl)
	return nil
}

// Broadcast sends NEW_SIGNAL to every client. Clients whose buffer is full
// are disconnected.
func (h *Hub) Broadcast(s models.Signal) {
	frame, err := json.Marshal(Frame{Type: FrameNewSignal, Data: s})
	if err != nil {
		h.log.Error("marshal signal frame", xlogger.Error(err))
		return
	}

	var slow []*client
	h.mu.RLock()
	for cl := range h.clients {
		select {
		case cl.send <- frame:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		h.log.Warn("dropping slow websocket client")
		h.remove(cl)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for cl := range clients {
		cl.close()
	}
	svcmetrics.WSClients.Set(0)
}

func (h *Hub) initialFrame(ctx context.Context) ([]byte, error) {
	sigs, err := h.latest.Load(ctx)
	if errors.Is(err, domrepo.ErrNoSignals) {
		sigs, err = []models.Signal{}, nil
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: FrameInitialData, Data: InitialData{Signals: sigs}})
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	svcmetrics.WSClients.Set(float64(n))
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl]
	delete(h.clients, cl)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		cl.close()
		svcmetrics.WSClients.Set(float64(n))
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(cl)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(cl)
				return
			}
		}
	}
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(cl *client) {
	defer h.remove(cl)

	cl.conn.SetReadLimit(4096)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
