package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cinestream/internal/catalog"
	"cinestream/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts clients without an Origin header and pages served by
// this host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// liveMessage is what the page reports: pointer and media events plus the
// measured extent of the latest strip.
type liveMessage struct {
	Type        string `json:"type"`
	Active      bool   `json:"active"`
	ScrollWidth int    `json:"scroll_width"`
	ClientWidth int    `json:"client_width"`
}

type liveMovie struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Trailer     string `json:"trailer"`
}

type liveEvent struct {
	Type     string     `json:"type"`
	Index    *int       `json:"index,omitempty"`
	Position *int       `json:"position,omitempty"`
	Playing  *bool      `json:"playing,omitempty"`
	Movie    *liveMovie `json:"movie,omitempty"`
}

func encodeEvent(ev catalog.Event, media func(string) string) liveEvent {
	out := liveEvent{Type: string(ev.Kind)}
	switch ev.Kind {
	case catalog.EventTrailer:
		idx := ev.Index
		out.Index = &idx
		if ev.Movie != nil {
			out.Movie = &liveMovie{
				ID:          ev.Movie.ID,
				Title:       ev.Movie.Title,
				Description: ev.Movie.Description,
				Trailer:     media(ev.Movie.Trailer),
			}
		}
	case catalog.EventScroll:
		pos := ev.Position
		out.Position = &pos
	case catalog.EventPlayback:
		playing := ev.Playing
		out.Playing = &playing
	}
	return out
}

type liveConn struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	log  zerolog.Logger
}

// push queues a frame. Frames are dropped once the connection is gone or
// the browser falls behind.
func (c *liveConn) push(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- msg:
	default:
		c.log.Debug().Msg("live frame dropped")
	}
}

func (c *liveConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// readPump feeds browser events to handle until the socket closes or handle
// returns false.
func (c *liveConn) readPump(handle func(liveMessage) bool) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("live view read failed")
			}
			return
		}
		var msg liveMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Debug().Err(err).Msg("ignoring malformed live message")
			continue
		}
		if !handle(msg) {
			return
		}
	}
}

// handleLive mounts the catalog's timers on a websocket for as long as the
// page stays open.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	claims := session.ClaimsFromContext(r.Context())
	sh := s.shellFor(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("live view upgrade failed")
		return
	}
	c := &liveConn{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.log = s.log.With().Str("session", claims.SessionID).Str("live_id", c.id).Logger()

	view := sh.Catalog()
	unmount := view.Mount(func(ev catalog.Event) {
		raw, err := json.Marshal(encodeEvent(ev, s.api.MediaURL))
		if err != nil {
			return
		}
		c.push(raw)
	})
	s.metrics.LiveViewOpened()
	c.log.Debug().Msg("live view opened")

	go c.writePump()
	c.readPump(func(msg liveMessage) bool {
		if _, ok := s.shells.Lookup(claims.SessionID, s.now()); !ok {
			return false
		}
		s.dispatch(view, msg)
		return true
	})

	close(c.done)
	unmount()
	s.metrics.LiveViewClosed()
	_ = conn.Close()
	c.log.Debug().Msg("live view closed")
}

func (s *Server) dispatch(view *catalog.View, msg liveMessage) {
	switch msg.Type {
	case "hover":
		if msg.Active {
			view.PointerEnter()
		} else {
			view.PointerLeave()
		}
	case "pointer":
		view.PointerState(msg.Active)
	case "measure":
		view.Measure(msg.ScrollWidth, msg.ClientWidth)
	case "ended":
		view.TrailerEnded()
	case "toggle_play":
		view.TogglePlay()
	}
}
