package natsadapter

import (
	"context"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/turismap/internal/core/domain"
)

const (
	SearchSubjectPrefix   = "places.search."
	FavoriteSubjectPrefix = "places.favorites."

	// SearchAllSubject carries searches made without a category filter.
	SearchAllSubject = SearchSubjectPrefix + "all"

	// EventIDHeader identifies one event across the subjects it is
	// published on, so a consumer of several subjects can drop repeats.
	EventIDHeader = "Event-Id"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "PLACE_SEARCHES",
			Subjects:  []string{SearchSubjectPrefix + ">"},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "PLACE_FAVORITES",
			Subjects:  []string{FavoriteSubjectPrefix + ">"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// SearchSubjects returns the subjects a search over categories is published
// on: one per category, sorted, so a subscriber to places.search.museos sees
// every search that included museos. Ids that are not a single subject token
// are dropped. No categories means SearchAllSubject.
func SearchSubjects(categories []string) []string {
	if len(categories) == 0 {
		return []string{SearchAllSubject}
	}
	seen := make(map[string]struct{}, len(categories))
	subjects := make([]string, 0, len(categories))
	for _, c := range categories {
		if !validToken(c) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		subjects = append(subjects, SearchSubjectPrefix+c)
	}
	sort.Strings(subjects)
	return subjects
}

// validToken accepts lowercase ascii letters, digits, '_' and '-'. Anything
// else could be a subject separator or wildcard.
func validToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

func (p *Publisher) PublishSearch(ctx context.Context, event *domain.SearchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	for _, subject := range SearchSubjects(event.Categories) {
		if err := p.publish(ctx, subject, id, data); err != nil {
			return fmt.Errorf("publish %s: %w", subject, err)
		}
	}
	return nil
}

func (p *Publisher) PublishFavorite(ctx context.Context, event *domain.FavoriteEvent) error {
	if !validToken(event.UserID) {
		return fmt.Errorf("invalid user id for subject: %q", event.UserID)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.publish(ctx, FavoriteSubjectPrefix+event.UserID, uuid.NewString(), data)
}

func (p *Publisher) publish(ctx context.Context, subject, eventID string, data []byte) error {
	msg := nats.NewMsg(subject)
	msg.Header.Set(EventIDHeader, eventID)
	msg.Data = data
	_, err := p.js.PublishMsg(msg, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for core NATS subscribers such as
// the WebSocket relay.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Ping reports whether the connection is up.
func (p *Publisher) Ping(_ context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats: %s", p.conn.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("turismap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
