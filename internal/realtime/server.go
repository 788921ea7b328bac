package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"qced_directory/internal/common"
	"qced_directory/internal/logger"
)

// Identity là người dùng đã xác thực của một kết nối
type Identity struct {
	UserID       string
	Role         string
	DepartmentID string
	Name         string
}

// Rooms trả về các phòng client tham gia
func (i *Identity) Rooms() []string {
	rooms := []string{UserRoom(i.UserID)}
	if i.Role != "" {
		rooms = append(rooms, RoleRoom(i.Role))
	}
	if i.DepartmentID != "" {
		rooms = append(rooms, DepartmentRoom(i.DepartmentID))
	}
	return rooms
}

// AuthenticateFunc kiểm tra token khi bắt tay
type AuthenticateFunc func(ctx context.Context, token string) (*Identity, error)

// Server phục vụ endpoint /ws
type Server struct {
	hub          *Hub
	authenticate AuthenticateFunc
	upgrader     websocket.Upgrader
}

// NewServer tạo Server. allowedOrigins rỗng hoặc chứa "*" thì chấp nhận mọi origin.
func NewServer(hub *Hub, authenticate AuthenticateFunc, allowedOrigins []string) *Server {
	s := &Server{hub: hub, authenticate: authenticate}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return s
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimSuffix(a, "/"), origin) {
				return true
			}
		}
		return false
	}
}

// tokenFromRequest đọc token từ query ?token= hoặc header Authorization
func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// ServeWS xác thực rồi nâng cấp kết nối lên WebSocket
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := s.authenticate(r.Context(), tokenFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithModule("realtime").WithError(err).Warn("Socket upgrade failed")
		return
	}

	client := newClient(s.hub, conn, identity)
	if !s.hub.join(client) {
		conn.Close()
		return
	}
	s.hub.sendTo(client, Frame{Event: EventConnected, Data: map[string]interface{}{
		"userId": identity.UserID,
		"rooms":  client.rooms,
	}})

	go client.writePump()
	client.readPump()
}

func writeError(w http.ResponseWriter, err error) {
	status := common.StatusOf(err)
	message := err.Error()
	var appErr *common.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
		"errors":  []interface{}{},
	})
}

// Handler trả về http.Handler với /ws và /health
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "sockets": s.hub.ClientCount()})
	})
	return mux
}

// ListenAndServe chạy socket server tới khi ctx bị hủy
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithModule("realtime").Infof("Socket server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
