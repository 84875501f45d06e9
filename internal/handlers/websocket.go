package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/pyhub-apps/pdfregion/pkg/selection"
	"github.com/pyhub-apps/pdfregion/pkg/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Pointer event types accepted from the client
const (
	PointerDown  = "down"
	PointerMove  = "move"
	PointerUp    = "up"
	PointerLeave = "leave"
)

// PointerEvent is a pointer event on the render surface, in surface pixels
type PointerEvent struct {
	Type string  `json:"type" validate:"required,oneof=down move up leave"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// SelectionMessage reports the selection after a pointer event
type SelectionMessage struct {
	Type      string          `json:"type"`
	Selecting bool            `json:"selecting"`
	Rect      *selection.Rect `json:"rect,omitempty"`
}

// WebSocketHandler streams pointer events into the session
type WebSocketHandler struct {
	session      *session.Session
	logger       arbor.ILogger
	moveInterval time.Duration
}

// NewWebSocketHandler creates a WebSocketHandler. Selection updates for
// pointer moves are sent at most once per moveInterval; zero disables
// throttling.
func NewWebSocketHandler(s *session.Session, logger arbor.ILogger, moveInterval time.Duration) *WebSocketHandler {
	return &WebSocketHandler{session: s, logger: logger, moveInterval: moveInterval}
}

// HandleWebSocket handles GET /ws
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client connected")

	var throttle *rate.Limiter
	if h.moveInterval > 0 {
		throttle = rate.NewLimiter(rate.Every(h.moveInterval), 1)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}

		var event PointerEvent
		if err := json.Unmarshal(data, &event); err != nil {
			h.logger.Warn().Err(err).Msg("Invalid pointer event")
			continue
		}
		if err := validate.Struct(event); err != nil {
			h.logger.Warn().Err(err).Str("type", event.Type).Msg("Invalid pointer event")
			continue
		}

		snap := h.dispatch(event)

		// The session always sees every move; only the echo is throttled
		if event.Type == PointerMove && throttle != nil && !throttle.Allow() {
			continue
		}

		msg := SelectionMessage{Type: "selection", Selecting: snap.Selecting, Rect: snap.Selection}
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to send selection")
			break
		}
	}

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("WebSocket client disconnected")
}

func (h *WebSocketHandler) dispatch(event PointerEvent) session.Snapshot {
	p := selection.Point{X: event.X, Y: event.Y}

	switch event.Type {
	case PointerDown:
		return h.session.PointerDown(p)
	case PointerMove:
		return h.session.PointerMove(p)
	case PointerUp:
		return h.session.PointerUp()
	default:
		return h.session.PointerLeave()
	}
}
