package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Client → Agent messages
type ClientMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Command string `json:"command,omitempty"`
}

// Agent → Client messages
type ServerMessage struct {
	Type     string   `json:"type"`
	ID       string   `json:"id,omitempty"`
	Data     any      `json:"data,omitempty"`
	Commands []string `json:"commands,omitempty"`
	Message  string   `json:"message,omitempty"`
}

type Server struct {
	config   *Config
	commands *CommandSet
	stats    *bridgeMetrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func newServer(config *Config, commands *CommandSet, stats *bridgeMetrics, logger *zap.Logger) *Server {
	s := &Server{
		config:   config,
		commands: commands,
		stats:    stats,
		logger:   logger,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.originAllowed}
	return s
}

// originAllowed applies the CORS origin list to WebSocket upgrades.
// Requests without an Origin header come from native clients, not pages.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	s.logger.Debug("ws origin rejected", zap.String("origin", origin))
	return false
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.Handle("/metrics", requireToken(s.config.Token, s.stats.Handler())).Methods(http.MethodGet)
	r.Handle("/ws", requireToken(s.config.Token, http.HandlerFunc(s.handleWebSocket)))
	r.Handle("/invoke/{command}", requireToken(s.config.Token, http.HandlerFunc(s.handleInvoke))).
		Methods(http.MethodGet, http.MethodPost)

	return cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["command"]
	result, err := s.commands.Invoke(r.Context(), name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownCommand) {
			status = http.StatusNotFound
		}
		s.writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Debug("bridge client connected", zap.String("remote", r.RemoteAddr))

	// Requests on one connection are answered in order; the read loop is
	// the only writer.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(conn, "", "invalid message")
			continue
		}

		switch msg.Type {
		case "invoke":
			if msg.Command == "" {
				s.sendError(conn, msg.ID, "command required")
				continue
			}
			result, err := s.commands.Invoke(r.Context(), msg.Command)
			if err != nil {
				s.sendError(conn, msg.ID, err.Error())
				continue
			}
			s.sendMessage(conn, ServerMessage{Type: "result", ID: msg.ID, Data: result})

		case "list_commands":
			s.sendMessage(conn, ServerMessage{Type: "commands", ID: msg.ID, Commands: s.commands.Names()})

		default:
			s.sendError(conn, msg.ID, "unknown message type: "+msg.Type)
		}
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("encode reply", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("ws write", zap.Error(err))
	}
}

func (s *Server) sendError(conn *websocket.Conn, id, message string) {
	s.sendMessage(conn, ServerMessage{Type: "error", ID: id, Message: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("encode response", zap.Error(err))
	}
}
