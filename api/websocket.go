package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ForumViriumHelsinki/R4C-Cesium-Viewer-sub002/tiles"
)

const (
	// Connection timeouts
	WS_PING_INTERVAL = 20 * time.Second
	WS_PONG_TIMEOUT  = 60 * time.Second
	WS_WRITE_TIMEOUT = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The viewer frontend is served from a different origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsInbound is a client message: viewport reports and activity pings
type wsInbound struct {
	Type     string            `json:"type"`
	Viewport *tiles.CameraView `json:"viewport,omitempty"`
}

// wsState is the frame pushed whenever layer, tile or session state
// changes
type wsState struct {
	Type     string            `json:"type"`
	Layers   map[string]string `json:"layers"`
	Tiles    wsTileCounts      `json:"tiles"`
	Sessions int               `json:"sessions"`
}

type wsTileCounts struct {
	Loaded   int `json:"loaded"`
	Queued   int `json:"queued"`
	InFlight int `json:"in_flight"`
}

// handleWebSocket upgrades the connection and bridges it to the
// internal change subscriptions: viewport and activity messages flow in,
// state snapshots flow out
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	log.Printf("WebSocket client connected: %s", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	go s.wsWriteLoop(ctx, conn)

	s.wsReadLoop(conn)
	cancel()
	conn.Close()
	log.Printf("WebSocket client disconnected: %s", r.RemoteAddr)
}

// wsReadLoop consumes client messages until the connection drops
func (s *Server) wsReadLoop(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(WS_PONG_TIMEOUT))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(WS_PONG_TIMEOUT))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		s.wsHandleMessage(message)
	}
}

func (s *Server) wsHandleMessage(message []byte) {
	var inbound wsInbound
	if err := json.Unmarshal(message, &inbound); err != nil {
		log.Printf("WebSocket: discarding malformed message: %v", err)
		return
	}

	switch inbound.Type {
	case "viewport":
		s.monitor.ReportActivity()
		if inbound.Viewport != nil {
			s.tilesManager.SetViewport(*inbound.Viewport)
		}
	case "activity":
		s.monitor.ReportActivity()
	default:
		log.Printf("WebSocket: ignoring message type %q", inbound.Type)
	}
}

// wsWriteLoop pushes a state snapshot on every internal change signal
// and keeps the connection alive with pings. It is the only writer on
// the connection.
func (s *Server) wsWriteLoop(ctx context.Context, conn *websocket.Conn) {
	layerSub := s.loaderService.SubscribeStateChanges()
	defer layerSub.Cancel()
	tileSub := s.tilesManager.SubscribeTileUpdates()
	defer tileSub.Cancel()
	sessionSub := s.coordinatorService.SubscribeSessionChanges()
	defer sessionSub.Cancel()

	ticker := time.NewTicker(WS_PING_INTERVAL)
	defer ticker.Stop()

	// Initial snapshot so the client starts from known state
	if !s.wsPushState(conn) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(WS_WRITE_TIMEOUT)
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
				log.Printf("WebSocket ping failed: %v", err)
				return
			}
		case <-layerSub.Chan():
			if !s.wsPushState(conn) {
				return
			}
		case <-tileSub.Chan():
			if !s.wsPushState(conn) {
				return
			}
		case <-sessionSub.Chan():
			if !s.wsPushState(conn) {
				return
			}
		}
	}
}

func (s *Server) wsPushState(conn *websocket.Conn) bool {
	states := s.loaderService.States()
	layers := make(map[string]string, len(states))
	for id, status := range states {
		layers[id] = string(status)
	}
	loaded, queued, inFlight := s.tilesManager.Counts()

	frame := wsState{
		Type:     "state",
		Layers:   layers,
		Tiles:    wsTileCounts{Loaded: loaded, Queued: queued, InFlight: inFlight},
		Sessions: len(s.coordinatorService.Sessions()),
	}

	conn.SetWriteDeadline(time.Now().Add(WS_WRITE_TIMEOUT))
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("WebSocket write error: %v", err)
		return false
	}
	return true
}
