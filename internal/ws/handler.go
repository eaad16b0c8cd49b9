package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/duel/internal/game"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// upgrader accepts any Origin. ServeWS must be mounted behind
// middleware.WebSocketOriginCheck, which rejects foreign origins before the
// upgrade (see api.SetupRoutes).
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Game is the part of game.Manager the gateway drives.
type Game interface {
	Connect(id game.ConnID, name, mode string) game.Conn
	PlayAgain(id game.ConnID)
	SubmitMove(id game.ConnID, matchID game.MatchID, move string)
	Tap(id game.ConnID, matchID game.MatchID)
	TimeSync(id game.ConnID, clientTime int64)
	Disconnect(id game.ConnID)
}

// Client is one websocket connection.
type Client struct {
	conn *websocket.Conn
	id   game.ConnID
	send chan []byte
	log  zerolog.Logger
}

// Inbound message types
const (
	MsgSubmitMove = "submit_move"
	MsgCritTap    = "crit_tap"
	MsgPlayAgain  = "play_again"
	MsgTimeSync   = "time_sync"
)

type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type SubmitMoveData struct {
	MatchID string `json:"match_id"`
	Move    string `json:"move"`
}

type CritTapData struct {
	MatchID string `json:"match_id"`
}

type TimeSyncData struct {
	ClientTime int64 `json:"client_time"`
}

// Handler upgrades HTTP requests and pumps messages between sockets and the
// game.
type Handler struct {
	hub        *Hub
	game       Game
	sendBuffer int
}

func NewHandler(hub *Hub, g Game, sendBuffer int) *Handler {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Handler{hub: hub, game: g, sendBuffer: sendBuffer}
}

// ServeWS handles GET /ws?name=&mode=.
func (h *Handler) ServeWS(c *gin.Context) {
	name := c.Query("name")
	mode := c.Query("mode")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	id := game.ConnID(uuid.NewString())
	client := &Client{
		conn: conn,
		id:   id,
		send: make(chan []byte, h.sendBuffer),
		log:  h.hub.log.With().Str("conn_id", string(id)).Logger(),
	}
	h.hub.register(client)

	go client.writePump()
	h.game.Connect(id, name, mode)
	go h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.unregister(c)
		h.game.Disconnect(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("unexpected close")
			} else {
				c.log.Debug().Err(err).Msg("read ended")
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.Debug().Err(err).Msg("malformed message ignored")
			continue
		}
		h.handleMessage(c, msg)
	}
}

// handleMessage dispatches one inbound message. Malformed payloads are
// dropped without a reply.
func (h *Handler) handleMessage(c *Client, msg WSMessage) {
	switch msg.Type {
	case MsgSubmitMove:
		var d SubmitMoveData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return
		}
		h.game.SubmitMove(c.id, game.MatchID(d.MatchID), d.Move)

	case MsgCritTap:
		var d CritTapData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return
		}
		h.game.Tap(c.id, game.MatchID(d.MatchID))

	case MsgPlayAgain:
		h.game.PlayAgain(c.id)

	case MsgTimeSync:
		var d TimeSyncData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return
		}
		h.game.TimeSync(c.id, d.ClientTime)

	default:
		c.log.Debug().Str("type", msg.Type).Msg("unknown message type")
	}
}

// writePump writes queued events and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}
