package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Stream event types.
const (
	EventReady  = "ready"
	EventResult = "result"
	EventScore  = "score"
	EventPlan   = "plan"
	EventError  = "error"
)

const maxFrameBytes = 64 << 10

// Event describes websocket payloads pushed to stream clients.
type Event struct {
	Type      string         `json:"type"`
	Score     *ScoreResponse `json:"score,omitempty"`
	Plan      *PlanDTO       `json:"plan,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Notifier keeps track of active websocket clients and broadcasts score and plan events.
type Notifier struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewNotifier constructs a notifier instance.
func NewNotifier() *Notifier {
	return &Notifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and returns a client handle.
func (n *Notifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	streamClients.Set(float64(len(n.clients)))
	n.mu.Unlock()

	_ = client.writeJSON(Event{Type: EventReady, Timestamp: time.Now().UTC()})
	return client
}

// Unregister removes the websocket client from the notifier and closes the socket.
func (n *Notifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	streamClients.Set(float64(len(n.clients)))
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Count returns the number of connected clients.
func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

// Broadcast sends the supplied event to all registered websocket clients.
func (n *Notifier) Broadcast(event Event) {
	n.broadcast(event, nil)
}

// broadcast sends the event to every client except skip.
func (n *Notifier) broadcast(event Event, skip *wsClient) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	defer n.mu.Unlock()
	for client := range n.clients {
		if client == skip {
			continue
		}
		if err := client.writeJSON(event); err != nil {
			delete(n.clients, client)
			_ = client.conn.Close()
		}
	}
	streamClients.Set(float64(len(n.clients)))
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}

// frameText extracts the ad text from a frame: either a JSON object with a text field or the raw text.
func frameText(data []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return string(data), true
	}
	var req ScoreRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return "", false
	}
	return req.Text, true
}

func (s *Server) handleAdStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("ad stream connected")
	defer s.notifier.Unregister(client)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("ad stream closed")
			} else {
				logrus.WithError(err).Warn("ad stream unexpected close")
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		text, ok := frameText(data)
		if !ok {
			_ = client.writeJSON(Event{Type: EventError, Message: "invalid frame: expected text or {\"text\": ...}", Timestamp: time.Now().UTC()})
			continue
		}
		resp := s.score(text, "stream")
		if err := client.writeJSON(Event{Type: EventResult, Score: &resp, Timestamp: time.Now().UTC()}); err != nil {
			logrus.WithError(err).Warn("write ad stream result")
			break
		}
		s.notifier.broadcast(Event{Type: EventScore, Score: &resp}, client)
	}
}
