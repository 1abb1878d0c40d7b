package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/turismap/internal/adapters/nats"
	"github.com/samirrijal/turismap/internal/core/domain"
	"github.com/samirrijal/turismap/internal/pkg/metrics"
	"github.com/samirrijal/turismap/internal/pkg/validation"
)

// wsMessage is sent from client to request places or manage feeds.
type wsMessage struct {
	Action   string   `json:"action"` // "nearby" | "subscribe" | "unsubscribe"
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Radius   int      `json:"radius"`
	Category []string `json:"category"`
	Channel  string   `json:"channel"` // "searches" (default)
}

// wsNearbyResult is pushed after each "nearby" request.
type wsNearbyResult struct {
	Type   string         `json:"type"`
	Places []domain.Place `json:"places"`
	Count  int            `json:"count"`
	Query  QueryEcho      `json:"query"`
}

const (
	wsRequestTimeout = 20 * time.Second
	// wsSeenEvents bounds the event ids remembered per connection.
	wsSeenEvents = 256
)

var errWSClosed = errors.New("websocket closed")

type wsWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// wsSession serializes writes to one connection. NATS callbacks run on their
// own goroutines and may still fire after the read loop ends, so writes after
// close are dropped.
type wsSession struct {
	mu     sync.Mutex
	conn   wsWriter
	closed bool
	seen   map[string]struct{}
	order  []string
}

func newWSSession(conn wsWriter) *wsSession {
	return &wsSession{conn: conn, seen: make(map[string]struct{})}
}

func (s *wsSession) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errWSClosed
	}
	return s.conn.WriteMessage(messageType, data)
}

func (s *wsSession) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.write(websocket.TextMessage, data)
}

func (s *wsSession) writeError(msg string) {
	_ = s.writeJSON(map[string]string{"type": "error", "error": msg})
}

// relay forwards a search event once, even when it arrives on several of
// this connection's subscriptions.
func (s *wsSession) relay(msg *nats.Msg) {
	data, err := json.Marshal(map[string]interface{}{"type": "search", "event": json.RawMessage(msg.Data)})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if id := msg.Header.Get(natsadapter.EventIDHeader); id != "" {
		if _, dup := s.seen[id]; dup {
			return
		}
		if len(s.order) == wsSeenEvents {
			delete(s.seen, s.order[0])
			s.order = s.order[1:]
		}
		s.seen[id] = struct{}{}
		s.order = append(s.order, id)
	}
	_ = s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSession) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// WebSocketHandler returns a handler for the live map channel. A client that
// follows the user sends {"action":"nearby","lat":..,"lng":..} on each move
// and receives the nearby result. It may also subscribe to the NATS search
// feed: {"action":"subscribe","channel":"searches","category":["museos"]}.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		session := newWSSession(c)
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := session.write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				session.writeError("invalid JSON")
				continue
			}

			switch m.Action {
			case "nearby":
				res, err := wsNearby(deps, m)
				if err != nil {
					var vErr *domain.ValidationError
					if errors.As(err, &vErr) {
						session.writeError(vErr.Message)
					} else {
						session.writeError(err.Error())
					}
					continue
				}
				_ = session.writeJSON(res)

			case "subscribe", "unsubscribe":
				if deps.NATS == nil {
					session.writeError("live feed not available")
					continue
				}
				if m.Channel != "" && m.Channel != "searches" {
					session.writeError("unknown channel: " + m.Channel)
					continue
				}
				subjects, err := feedSubjects(deps, parseCategoryList(m.Category))
				if err != nil {
					session.writeError(err.Error())
					continue
				}

				if m.Action == "subscribe" {
					var added []string
					for _, subject := range subjects {
						if _, exists := subs[subject]; exists {
							continue
						}
						sub, err := deps.NATS.Subscribe(subject, session.relay)
						if err != nil {
							session.writeError("subscribe failed: " + err.Error())
							break
						}
						subs[subject] = sub
						added = append(added, subject)
					}
					if len(added) == 0 {
						_ = session.writeJSON(map[string]interface{}{"status": "already subscribed", "subjects": subjects})
						continue
					}
					_ = session.writeJSON(map[string]interface{}{"status": "subscribed", "subjects": added})
					continue
				}

				var removed []string
				for _, subject := range subjects {
					if sub, exists := subs[subject]; exists {
						_ = sub.Unsubscribe()
						delete(subs, subject)
						removed = append(removed, subject)
					}
				}
				if len(removed) == 0 {
					session.writeError("not subscribed")
					continue
				}
				_ = session.writeJSON(map[string]interface{}{"status": "unsubscribed", "subjects": removed})

			default:
				session.writeError("unknown action: " + m.Action)
			}
		}

		for _, sub := range subs {
			_ = sub.Unsubscribe()
		}
		session.close()
		close(done)
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}

func wsNearby(deps *Dependencies, m wsMessage) (*wsNearbyResult, error) {
	if err := validation.Struct(&coordinates{Lat: m.Lat, Lng: m.Lng}); err != nil {
		return nil, domain.NewValidationError("lat", msgInvalidCoords)
	}
	radius := m.Radius
	if radius == 0 {
		radius = deps.defaultRadius()
	}
	if radius < 0 || radius > deps.maxRadius() {
		return nil, domain.NewValidationError("radius", fmt.Sprintf("Radio inválido. Debe estar entre 1 y %d metros", deps.maxRadius()))
	}
	cats := parseCategoryList(m.Category)

	ctx, cancel := context.WithTimeout(context.Background(), wsRequestTimeout)
	defer cancel()

	origin := domain.Coordinate{Lat: m.Lat, Lng: m.Lng}
	places, err := deps.Places.FindNearby(ctx, origin, float64(radius), cats)
	if err != nil {
		return nil, publicError(ctx, deps.Options, err)
	}
	metrics.ObserveSearch(cats, len(places))

	return &wsNearbyResult{
		Type:   "nearby",
		Places: places,
		Count:  len(places),
		Query:  QueryEcho{Lat: m.Lat, Lng: m.Lng, Radius: radius, Category: cats},
	}, nil
}

// feedSubjects maps a subscription request to NATS subjects. No categories
// follows every search; otherwise unknown ids are ignored and at least one
// must be known.
func feedSubjects(deps *Dependencies, categories []string) ([]string, error) {
	if len(categories) == 0 {
		return []string{natsadapter.SearchSubjectPrefix + ">"}, nil
	}
	var known []string
	for _, c := range categories {
		if deps.Places.HasCategory(c) {
			known = append(known, c)
		}
	}
	if len(known) == 0 {
		return nil, errors.New("Categoría no válida")
	}
	return natsadapter.SearchSubjects(known), nil
}
