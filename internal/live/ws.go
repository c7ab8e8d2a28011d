package live

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// subscribeMsg is what a connected client sends to attach to or detach
// from a topic: {"subscribe": "/topic/listing/42/favoriteCount"} or
// {"unsubscribe": "..."}.
type subscribeMsg struct {
	Subscribe   string `json:"subscribe,omitempty"`
	Unsubscribe string `json:"unsubscribe,omitempty"`
}

type frame struct {
	Topic string `json:"topic"`
	Event Event  `json:"event"`
}

// WSHandler bridges hub topics onto a WebSocket connection. All of a
// connection's subscriptions are dropped when it goes away.
func WSHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		subs := make(map[string]*Subscription)
		out := make(chan frame, 16)
		done := make(chan struct{})

		defer func() {
			close(done)
			for _, s := range subs {
				s.Unsubscribe()
			}
			conn.Close()
		}()

		// writer: one goroutine owns the connection's write side
		go func() {
			for {
				select {
				case <-done:
					return
				case f := <-out:
					conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteJSON(f); err != nil {
						return
					}
				}
			}
		}()

		for {
			var msg subscribeMsg
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Msg("websocket closed unexpectedly")
				}
				return
			}

			if t := msg.Unsubscribe; t != "" {
				if s, ok := subs[t]; ok {
					s.Unsubscribe()
					delete(subs, t)
				}
				continue
			}
			t := msg.Subscribe
			if t == "" {
				continue
			}
			if _, ok := subs[t]; ok {
				continue
			}
			sub := hub.Subscribe(t)
			subs[t] = sub
			go func(topic string, sub *Subscription) {
				for e := range sub.C {
					select {
					case out <- frame{Topic: topic, Event: e}:
					case <-done:
						return
					}
				}
			}(t, sub)
		}
	}
}
