package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/franckalain/nutritiontracker/internal/models"
	"github.com/franckalain/nutritiontracker/internal/nutrition"
	"github.com/franckalain/nutritiontracker/internal/tracker"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client serializes writes to one websocket connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (cl *client) send(v any) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.conn.WriteJSON(v)
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	cl := &client{conn: conn}
	clientID := uuid.New().String()
	s.clients.Store(clientID, cl)
	defer s.clients.Delete(clientID)

	log := s.log.With(zap.String("client", clientID))
	log.Debug("WebSocket client connected")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("WebSocket read ended", zap.Error(err))
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			s.sendError(cl, "Invalid message format")
			continue
		}
		s.handleWebSocketMessage(c.Request.Context(), cl, msg)
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, cl *client, msg wsMessage) {
	switch msg.Type {
	case "log":
		var data struct {
			Message string `json:"message"`
			User    string `json:"user"`
		}
		if err := decodeData(msg.Data, &data); err != nil || data.Message == "" {
			s.sendError(cl, "Message is required")
			return
		}
		res, err := s.svc.LogMessage(ctx, data.User, data.Message)
		if err != nil {
			s.sendServiceError(cl, err)
			return
		}
		s.sendMessage(cl, "log_result", parsedBody(res))
	case "get_status":
		var data struct {
			User string `json:"user"`
		}
		if err := decodeData(msg.Data, &data); err != nil || data.User == "" {
			s.sendError(cl, "User is required")
			return
		}
		st, err := s.svc.Status(ctx, data.User)
		if err != nil {
			s.sendServiceError(cl, err)
			return
		}
		s.sendMessage(cl, "status", statusBody(st))
	case "get_catalog":
		s.sendMessage(cl, "catalog", s.svc.Catalog())
	default:
		s.sendError(cl, "Unknown message type")
	}
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(raw, v)
}

// broadcastMeal pushes a logged meal to every connected client.
func (s *Server) broadcastMeal(m *models.Meal) {
	s.clients.Range(func(key, value any) bool {
		s.sendMessage(value.(*client), "meal_logged", m)
		return true
	})
}

func (s *Server) closeClients() {
	s.clients.Range(func(key, value any) bool {
		value.(*client).conn.Close()
		return true
	})
}

func (s *Server) sendMessage(cl *client, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}
	if err := cl.send(msg); err != nil {
		s.log.Debug("Error sending message", zap.String("type", messageType), zap.Error(err))
	}
}

func (s *Server) sendError(cl *client, message string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}
	if err := cl.send(msg); err != nil {
		s.log.Debug("Error sending error message", zap.Error(err))
	}
}

func (s *Server) sendServiceError(cl *client, err error) {
	var fe *nutrition.FormatError
	switch {
	case errors.As(err, &fe):
		s.sendError(cl, "Invalid message format. Use: '"+fe.Template+"'")
	case errors.Is(err, tracker.ErrNotFound):
		s.sendError(cl, "User not found")
	default:
		s.log.Error("WebSocket request failed", zap.Error(err))
		s.sendError(cl, "Internal server error")
	}
}
