package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/common/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Publisher 实时推送出口。业务层只依赖这个接口，由 main 注入 Hub。
type Publisher interface {
	Publish(event string, payload interface{})
}

// Event 推送给客户端的事件帧。
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendBuf  = 32
	maxMessageSize = 1024
)

// Hub 进程内的 WebSocket 广播器。
// 推送是尽力而为：不做服务端按定向过滤，也没有 ack/重试；
// 客户端根据事件字段自行判断相关性，掉线期间的事件只能靠轮询补。
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	log        logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		log:        log,
	}
}

// Run 事件循环，随进程生命周期运行；ctx 取消时关闭所有连接。
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 发送缓冲打满视为死连接，直接剔除
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish 向所有在线客户端广播一个事件。
func (h *Hub) Publish(event string, payload interface{}) {
	if h == nil {
		return
	}
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		if h.log != nil {
			h.log.Warnf("failed to marshal event %s: %v", event, err)
		}
		return
	}
	select {
	case h.broadcast <- data:
	default:
		if h.log != nil {
			h.log.Warnf("broadcast queue full, dropping event %s", event)
		}
	}
}

// Client 一条 WebSocket 连接。
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 推送通道本身不做鉴权过滤，握手放开跨域
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS 握手并注册客户端连接。
func ServeWS(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			if h.log != nil {
				h.log.Warnf("websocket upgrade failed: %v", err)
			}
			return
		}
		client := &Client{hub: h, conn: conn, send: make(chan []byte, clientSendBuf)}
		h.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump 只消费客户端消息用于保活与断线检测（客户端到服务端没有业务指令）。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
