// Liar game transport
//
// Every browser holds one websocket to {prefix}/ws. The connection gets a fresh
// uuid, which the game uses as the player id for as long as the socket lives.
//
// Features:
// - JSON frames decoded into the closed command set of internal/game
// - Per-connection token bucket; frames over the limit are dropped
// - Optional ?token= login token, whose nickname overrides the one sent on join
// - A lost connection leaves its room like an explicit leave_room
// - Room listing over HTTP and a PNG QR code per room, backed by go-qrcode

package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"

	"github.com/Seednode/liarparty/internal/crypto"
	"github.com/Seednode/liarparty/internal/game"
)

const (
	maxFrameSize = 4096
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	writeWait    = 10 * time.Second
	qrSize       = 320
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// tokenParser verifies the optional login token presented on upgrade.
type tokenParser interface {
	Parse(token string) (crypto.Identity, error)
}

type liarServer struct {
	cfg         *Config
	coordinator *game.Coordinator
	hub         *Hub
	tokens      tokenParser
	log         zerolog.Logger
}

func (s *liarServer) serveWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var identity *crypto.Identity
		if token := r.URL.Query().Get("token"); token != "" {
			id, err := s.tokens.Parse(token)
			if err != nil {
				writeError(s.cfg, w, err)
				return
			}
			identity = &id
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Debug().Err(err).Str("ip", realIP(r)).Msg("upgrade failed")
			return
		}

		limiter := rate.NewLimiter(rate.Limit(s.cfg.rateLimit), s.cfg.rateBurst)
		c := newClient(uuid.NewString(), conn, limiter, identity)

		s.hub.add(c)

		s.log.Debug().Str("conn", c.id).Str("ip", realIP(r)).Msg("connected")

		session := game.SessionMessage{ConnectionID: c.id}
		if identity != nil {
			session.Nickname = identity.Nickname
		}
		s.hub.Unicast(c.id, session)

		ctx := r.Context()
		_ = s.coordinator.Handle(ctx, c.id, game.RequestRoomList{})

		go c.writePump()
		s.readPump(ctx, c)
	}
}

func (s *liarServer) readPump(ctx context.Context, c *Client) {
	defer func() {
		s.hub.remove(c.id)
		s.coordinator.Leave(c.id)
		_ = c.conn.Close()

		s.log.Debug().Str("conn", c.id).Msg("disconnected")
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Str("conn", c.id).Msg("read failed")
			}
			return
		}

		if !c.limiter.Allow() {
			s.log.Debug().Str("conn", c.id).Msg("rate limited, dropping frame")
			continue
		}

		cmd, err := game.DecodeCommand(data)
		if err != nil {
			s.coordinator.Reject(c.id, err)
			continue
		}

		if join, ok := cmd.(game.JoinRoom); ok && c.identity != nil {
			join.Nickname = c.identity.Nickname
			cmd = join
		}

		if err := s.coordinator.Handle(ctx, c.id, cmd); err != nil && !game.IsRejection(err) {
			s.log.Error().Err(err).Str("conn", c.id).Msg("command failed")
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
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func (s *liarServer) serveRooms() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		start := time.Now()

		written := writeJSON(s.cfg, w, http.StatusOK, s.coordinator.Store().List())

		logServe(s.log, "rooms", r, written, start)
	}
}

func (s *liarServer) serveRoom() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()

		name := ps.ByName("room")
		for _, sum := range s.coordinator.Store().List() {
			if sum.Name == name {
				written := writeJSON(s.cfg, w, http.StatusOK, sum)
				logServe(s.log, "room", r, written, start)
				return
			}
		}

		writeError(s.cfg, w, ErrRoomNotFound)
	}
}

// serveQR renders a PNG QR code pointing at the room.
func (s *liarServer) serveQR() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()

		if strings.TrimSpace(ps.ByName("room")) == "" {
			writeError(s.cfg, w, ErrBadRequest)
			return
		}

		// we are at .../rooms/:room/qr; the room URL is the same path minus /qr
		target := externalURL(r, strings.TrimSuffix(r.URL.EscapedPath(), "/qr"))

		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			writeError(s.cfg, w, errors.Join(errors.New("qr generation failed"), err))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(s.cfg, w)

		written, _ := w.Write(png)

		logServe(s.log, "qr", r, written, start)
	}
}

// registerLiarGame sets up routes so that:
//   - $prefix/ws               → game websocket
//   - $prefix/api/rooms        → room listing
//   - $prefix/rooms/:room      → one room's summary
//   - $prefix/rooms/:room/qr   → PNG QR code for that room
func registerLiarGame(s *liarServer, mux *httprouter.Router) {
	prefix := s.cfg.prefix

	mux.GET(prefix+"/ws", s.serveWS())
	mux.GET(prefix+"/api/rooms", s.serveRooms())
	mux.GET(prefix+"/rooms/:room", s.serveRoom())
	mux.GET(prefix+"/rooms/:room/qr", s.serveQR())
}
