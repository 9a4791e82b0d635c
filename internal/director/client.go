package director

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"github.com/malexanderboyd/pwr9-cubeflow/internal"
	"github.com/malexanderboyd/pwr9-cubeflow/internal/director/models"
)

var maxId = atomic.NewInt64(-1)

type Client struct {
	Id        string
	server    *Server
	Websocket *websocket.Conn
	ch        chan *models.Message
	doneCh    chan struct{}
	doneOnce  sync.Once
}

// NewClient registers a connection with the server. A non-empty id is
// reused so a reconnecting drafter keeps their identity.
func NewClient(server *Server, id string) (*Client, error) {
	if server == nil {
		return nil, errors.New("cannot add client with nil Server")
	}
	if id == "" {
		id = fmt.Sprintf("%s_%d", server.DraftID, maxId.Inc())
	}
	return &Client{
		Id:     id,
		server: server,
		ch:     make(chan *models.Message, models.ChannelBufSize),
		doneCh: make(chan struct{}),
	}, nil
}

// Write queues msg, dropping the client when its buffer is full.
func (c *Client) Write(msg *models.Message) {
	select {
	case c.ch <- msg:
	default:
		c.Done()
	}
}

func (c *Client) Listen() {
	go c.listenWrite()
	c.listenRead()
}

func (c *Client) listenRead() {
	c.Websocket.SetReadLimit(models.MaxMessageSize)
	_ = c.Websocket.SetReadDeadline(time.Now().Add(models.PongWait))
	c.Websocket.SetPongHandler(func(string) error {
		return c.Websocket.SetReadDeadline(time.Now().Add(models.PongWait))
	})
	logger := internal.GetLogger()
	logger.Debugw("listening to read", "client", c.Id)
	defer c.Done()
	for {
		_, msgContent, err := c.Websocket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.Error(err)
			}
			logger.Debugw("client done reading", "client", c.Id)
			return
		}
		var msg models.Message
		if err := json.Unmarshal(msgContent, &msg); err != nil {
			c.server.Error(fmt.Errorf("client %s sent malformed message: %w", c.Id, err))
			continue
		}
		c.server.HandleClientMessage(c.Id, &msg)
	}
}

func (c *Client) listenWrite() {
	logger := internal.GetLogger()
	logger.Debugw("listening to write", "client", c.Id)
	ticker := time.NewTicker(models.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Websocket.Close()
		c.server.DeleteClient(c)
	}()
	for {
		select {
		case msg := <-c.ch:
			_ = c.Websocket.SetWriteDeadline(time.Now().Add(models.WriteWait))
			if err := c.Websocket.WriteJSON(msg); err != nil {
				c.server.Error(err)
				return
			}
		case <-c.doneCh:
			c.flush()
			_ = c.Websocket.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(models.WriteWait))
			logger.Debugw("client done writing", "client", c.Id)
			return
		case <-ticker.C:
			_ = c.Websocket.SetWriteDeadline(time.Now().Add(models.WriteWait))
			if err := c.Websocket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// flush writes whatever is still queued before the connection closes.
func (c *Client) flush() {
	for {
		select {
		case msg := <-c.ch:
			_ = c.Websocket.SetWriteDeadline(time.Now().Add(models.WriteWait))
			if err := c.Websocket.WriteJSON(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) Done() {
	c.doneOnce.Do(func() { close(c.doneCh) })
}

// WriteJSON wraps payload as a message of type t.
func (c *Client) WriteJSON(t models.GameMessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.server.Error(err)
		return
	}
	c.Write(&models.Message{Type: t, Data: string(data)})
}
