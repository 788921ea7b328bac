package realtime

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"qced_directory/internal/logger"
)

type broadcastMessage struct {
	rooms   []string
	payload []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub quản lý client và phòng. Mọi thay đổi trạng thái đi qua một vòng Run duy nhất.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage
	direct     chan directMessage
	done       chan struct{}

	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	count   atomic.Int64
}

// NewHub tạo Hub
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage, 256),
		direct:     make(chan directMessage, 64),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]struct{}),
	}
}

// Run xử lý register/unregister/broadcast cho tới khi ctx bị hủy
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			for _, room := range client.rooms {
				if h.rooms[room] == nil {
					h.rooms[room] = make(map[*Client]struct{})
				}
				h.rooms[room][client] = struct{}{}
			}
			h.count.Store(int64(len(h.clients)))

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			for client := range h.targets(msg.rooms) {
				h.deliver(client, msg.payload)
			}

		case msg := <-h.direct:
			if _, ok := h.clients[msg.client]; ok {
				h.deliver(msg.client, msg.payload)
			}
		}
	}
}

// deliver đưa payload vào buffer của client. Client chậm (buffer đầy) bị ngắt kết nối.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		logger.WithModule("realtime").WithField("user_id", client.userID).Warn("Slow socket client dropped")
		h.remove(client)
	}
}

// targets gom client của các phòng, mỗi client chỉ nhận một lần
func (h *Hub) targets(rooms []string) map[*Client]struct{} {
	result := make(map[*Client]struct{})
	for _, room := range rooms {
		for client := range h.rooms[room] {
			result[client] = struct{}{}
		}
	}
	return result
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for _, room := range client.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(client.send)
	h.count.Store(int64(len(h.clients)))
}

// Publish đẩy sự kiện tới các phòng
func (h *Hub) Publish(event string, data interface{}, rooms ...string) {
	if len(rooms) == 0 {
		return
	}
	payload, err := Frame{Event: event, Data: data}.Encode()
	if err != nil {
		logger.WithModule("realtime").WithError(err).WithFields(logrus.Fields{"event": event}).Error("Failed to encode frame")
		return
	}
	select {
	case h.broadcast <- broadcastMessage{rooms: rooms, payload: payload}:
	default:
		logger.WithModule("realtime").WithField("event", event).Warn("Broadcast buffer full, event dropped")
	}
}

// join đăng ký client vào hub, trả về false nếu hub đã dừng
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hủy đăng ký client
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// sendTo gửi frame cho riêng một client
func (h *Hub) sendTo(client *Client, frame Frame) {
	payload, err := frame.Encode()
	if err != nil {
		return
	}
	select {
	case h.direct <- directMessage{client: client, payload: payload}:
	case <-h.done:
	default:
	}
}

// ClientCount trả về số client đang kết nối
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
