package support_chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cydxin/support-chat-sdk/cons"
	"github.com/cydxin/support-chat-sdk/service"
	"github.com/cydxin/support-chat-sdk/syncer"
	"github.com/gorilla/websocket"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for SDK
	},
}

var errNotYourThread = errors.New("not your thread")

// 视图名（watch/unwatch 的目标，也是下行帧的 view 字段）
const (
	ViewThread        = "thread"
	ViewAnnouncements = "announcements"
	ViewDashboard     = "dashboard"
)

// wsReq 上行帧。watch/unwatch 管视图挂载，action 是视图内操作。
type wsReq struct {
	Watch   string `json:"watch,omitempty"`
	Unwatch string `json:"unwatch,omitempty"`
	Action  string `json:"action,omitempty"`

	ThreadID       uint64 `json:"thread_id,omitempty"`
	MessageID      uint64 `json:"message_id,omitempty"`
	AnnouncementID uint64 `json:"announcement_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Emoji          string `json:"emoji,omitempty"`
}

// wsFrame 下行帧。Type 取 cons.FrameSnapshot / cons.FrameError。
type wsFrame struct {
	Type string      `json:"type"`
	View string      `json:"view,omitempty"`
	Data interface{} `json:"data,omitempty"`
	Msg  string      `json:"msg,omitempty"`
}

// Client ws和hub的连接
// 一个连接上最多同时挂三个视图（会话/公告/看板），watch 切换会话时
// 先拆旧同步器再挂新的，断开连接兜底全部拆除。
type Client struct {
	hub *WsServer

	// 🔗链接
	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte

	// 登录身份
	UserID  uint64
	Email   string
	IsAdmin bool

	// 已挂载的同步器
	mu            sync.Mutex
	thread        *syncer.MessageSynchronizer
	announcements *syncer.AnnouncementSynchronizer
	dashboard     *syncer.DashboardSynchronizer
}

// readPump 将消息从client (websocket 连接) 到hub管理。
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error: %v", err)
			}
			break
		}
		c.hub.handleMessage(c, message)
	}
}

// writePump 将消息从hub管理写到具体的client (websocket 连接)。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("writePump 写入ping失败")
				return
			}
		}
	}
}

// pushFrame 帧序列化后进发送缓冲，满则丢弃（快照是全量的，丢一帧无碍）
func (c *Client) pushFrame(f wsFrame) {
	b, err := json.Marshal(f)
	if err != nil {
		log.Printf("marshal frame failed: %v", err)
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func (c *Client) pushError(view string, err error) {
	if err == nil {
		return
	}
	c.pushFrame(wsFrame{Type: cons.FrameError, View: view, Msg: err.Error()})
}

// closeSyncers 拆除该连接上挂载的全部同步器
func (c *Client) closeSyncers() {
	c.mu.Lock()
	t, a, d := c.thread, c.announcements, c.dashboard
	c.thread, c.announcements, c.dashboard = nil, nil, nil
	c.mu.Unlock()

	if t != nil {
		t.Close()
	}
	if a != nil {
		a.Close()
	}
	if d != nil {
		d.Close()
	}
}

type WsServer struct {
	engine *Engine

	clients map[*Client]bool
	// 用户ID ->该用户所有活跃的Websocket连接（支持多设备）
	userClients map[uint64][]*Client

	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewWsServer(e *Engine) *WsServer {
	return &WsServer{
		engine:      e,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint64][]*Client),
	}
}

func (h *WsServer) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				if userConns, exists := h.userClients[client.UserID]; exists {
					for i, conn := range userConns {
						if conn == client {
							h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
							break
						}
					}
					if len(h.userClients[client.UserID]) == 0 {
						delete(h.userClients, client.UserID)
					}
				}
			}
			h.mu.Unlock()

			// 同步器善后放在锁外（Cancel 只动总线，不打 DB）
			client.closeSyncers()
		}
	}
}

// handleMessage 解析上行帧并分发
func (h *WsServer) handleMessage(client *Client, msg []byte) {
	var req wsReq
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Printf("Invalid message format: %v", err)
		return
	}

	switch {
	case req.Watch != "":
		h.handleWatch(client, req)
	case req.Unwatch != "":
		h.handleUnwatch(client, req.Unwatch)
	case req.Action != "":
		h.handleAction(client, req)
	}
}

func (h *WsServer) handleWatch(client *Client, req wsReq) {
	gw := h.engine.Gateway()

	switch req.Watch {
	case ViewThread:
		threadID := req.ThreadID
		if threadID == 0 {
			// 不带 thread_id：解析（或创建）自己的会话
			id, err := syncer.ResolveThread(gw, client.UserID)
			if err != nil {
				client.pushError(ViewThread, err)
				return
			}
			threadID = id
		} else if !client.IsAdmin {
			// 非管理员只能挂自己的会话（与 HTTP 侧的归属校验一致）。
			// 不校验的话，挂载时的已读副作用会把别人会话的 seen_at 写掉。
			t, err := h.engine.ThreadService.GetThread(threadID)
			if err != nil {
				client.pushError(ViewThread, errNotYourThread)
				return
			}
			if t.UserID != client.UserID {
				client.pushError(ViewThread, errNotYourThread)
				return
			}
		}

		s := syncer.NewMessageSynchronizer(gw, threadID, client.UserID)
		s.OnUpdate = func() {
			client.pushFrame(wsFrame{Type: cons.FrameSnapshot, View: ViewThread, Data: s.Snapshot()})
		}
		s.OnError = func(err error) { client.pushError(ViewThread, err) }

		client.mu.Lock()
		old := client.thread
		client.thread = s
		client.mu.Unlock()
		if old != nil {
			old.Close()
		}

		if err := s.Start(); err != nil {
			client.pushError(ViewThread, err)
		}

	case ViewAnnouncements:
		s := syncer.NewAnnouncementSynchronizer(gw, client.UserID, client.IsAdmin)
		s.OnUpdate = func() {
			client.pushFrame(wsFrame{Type: cons.FrameSnapshot, View: ViewAnnouncements, Data: s.Snapshot()})
		}
		s.OnError = func(err error) { client.pushError(ViewAnnouncements, err) }

		client.mu.Lock()
		old := client.announcements
		client.announcements = s
		client.mu.Unlock()
		if old != nil {
			old.Close()
		}

		if err := s.Start(); err != nil {
			client.pushError(ViewAnnouncements, err)
		}

	case ViewDashboard:
		if !client.IsAdmin {
			client.pushError(ViewDashboard, service.ErrNotAdmin)
			return
		}
		s := syncer.NewDashboardSynchronizer(gw)
		s.OnUpdate = func() {
			client.pushFrame(wsFrame{Type: cons.FrameSnapshot, View: ViewDashboard, Data: s.Snapshot()})
		}
		s.OnError = func(err error) { client.pushError(ViewDashboard, err) }

		client.mu.Lock()
		old := client.dashboard
		client.dashboard = s
		client.mu.Unlock()
		if old != nil {
			old.Close()
		}

		if err := s.Start(); err != nil {
			client.pushError(ViewDashboard, err)
		}
	}
}

func (h *WsServer) handleUnwatch(client *Client, view string) {
	client.mu.Lock()
	var s interface{ Close() }
	switch view {
	case ViewThread:
		if client.thread != nil {
			s, client.thread = client.thread, nil
		}
	case ViewAnnouncements:
		if client.announcements != nil {
			s, client.announcements = client.announcements, nil
		}
	case ViewDashboard:
		if client.dashboard != nil {
			s, client.dashboard = client.dashboard, nil
		}
	}
	client.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

func (h *WsServer) handleAction(client *Client, req wsReq) {
	client.mu.Lock()
	thread := client.thread
	ann := client.announcements
	client.mu.Unlock()

	switch req.Action {
	case "send":
		if thread == nil {
			return
		}
		if err := thread.Send(req.Content); err != nil {
			client.pushError(ViewThread, err)
		}

	case "toggle_message_reaction":
		if thread == nil {
			return
		}
		thread.ToggleReaction(req.MessageID, req.Emoji)

	case "toggle_announcement_reaction":
		if ann == nil {
			return
		}
		ann.ToggleReaction(req.AnnouncementID, req.Emoji)

	case "post_announcement":
		if ann == nil {
			return
		}
		if err := ann.Post(req.ThreadID, req.Content); err != nil {
			client.pushError(ViewAnnouncements, err)
		}
	}
}

// ServeWS 处理ws的请求。调用方负责先鉴权，传入登录身份。
func (h *WsServer) ServeWS(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		UserID:  sess.UserID,
		Email:   sess.Email,
		IsAdmin: sess.IsAdmin,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendToUser 发送消息到用户的全部活跃连接
func (h *WsServer) SendToUser(userID uint64, msg []byte) {
	h.mu.RLock()
	clients := h.userClients[userID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- msg:
		default:
			// 丢弃避免阻塞
		}
	}
}
