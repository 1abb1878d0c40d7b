package http

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/turismap/internal/adapters/nats"
	"github.com/samirrijal/turismap/internal/core/categories"
	"github.com/samirrijal/turismap/internal/core/usecases"
)

type recordingConn struct {
	mu     sync.Mutex
	frames [][]byte
}

func (r *recordingConn) WriteMessage(_ int, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, data)
	return nil
}

func (r *recordingConn) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func searchMsg(subject, id string) *nats.Msg {
	msg := nats.NewMsg(subject)
	if id != "" {
		msg.Header.Set(natsadapter.EventIDHeader, id)
	}
	msg.Data = []byte(`{"results":1}`)
	return msg
}

func TestWSSession_DropsWritesAfterClose(t *testing.T) {
	conn := &recordingConn{}
	s := newWSSession(conn)

	if err := s.writeJSON(map[string]string{"status": "ok"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.close()

	if err := s.writeJSON(map[string]string{"status": "late"}); !errors.Is(err, errWSClosed) {
		t.Errorf("expected errWSClosed, got %v", err)
	}
	s.relay(searchMsg("places.search.museos", "e1"))

	if n := conn.count(); n != 1 {
		t.Errorf("expected 1 frame, got %d", n)
	}
}

func TestWSSession_LateCallbacksRaceClose(t *testing.T) {
	conn := &recordingConn{}
	s := newWSSession(conn)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.relay(searchMsg("places.search.parques", fmt.Sprintf("e%d", i)))
		}(i)
	}
	s.close()
	before := conn.count()
	wg.Wait()

	if after := conn.count(); after != before {
		t.Errorf("frames written after close: %d -> %d", before, after)
	}
}

func TestWSSession_RelayDeduplicatesByEventID(t *testing.T) {
	conn := &recordingConn{}
	s := newWSSession(conn)

	// A search for museos and parques arrives once per subscribed subject.
	s.relay(searchMsg("places.search.museos", "e1"))
	s.relay(searchMsg("places.search.parques", "e1"))
	s.relay(searchMsg("places.search.parques", "e2"))
	if n := conn.count(); n != 2 {
		t.Fatalf("expected 2 frames, got %d", n)
	}

	// Messages without an id are always forwarded.
	s.relay(searchMsg("places.search.all", ""))
	s.relay(searchMsg("places.search.all", ""))
	if n := conn.count(); n != 4 {
		t.Errorf("expected 4 frames, got %d", n)
	}
}

func TestWSSession_SeenEventsBounded(t *testing.T) {
	conn := &recordingConn{}
	s := newWSSession(conn)

	for i := 0; i <= wsSeenEvents; i++ {
		s.relay(searchMsg("places.search.zoos", fmt.Sprintf("e%d", i)))
	}
	if len(s.seen) != wsSeenEvents || len(s.order) != wsSeenEvents {
		t.Fatalf("seen set grew to %d/%d", len(s.seen), len(s.order))
	}

	// e0 was evicted, so it is forwarded again.
	s.relay(searchMsg("places.search.zoos", "e0"))
	if n := conn.count(); n != wsSeenEvents+2 {
		t.Errorf("expected %d frames, got %d", wsSeenEvents+2, n)
	}
}

func TestFeedSubjects(t *testing.T) {
	deps := &Dependencies{Places: usecases.NewPlaceService(nil, categories.Default(), nil)}

	tests := []struct {
		name       string
		categories []string
		want       []string
		wantErr    bool
	}{
		{"everything", nil, []string{"places.search.>"}, false},
		{"one per category", []string{"zoos", "parques"}, []string{"places.search.parques", "places.search.zoos"}, false},
		{"unknown ignored", []string{"museos.>", "parques"}, []string{"places.search.parques"}, false},
		{"all unknown", []string{"a b", "volcanes"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := feedSubjects(deps, tt.categories)
			if tt.wantErr {
				if err == nil || err.Error() != "Categoría no válida" {
					t.Fatalf("expected Categoría no válida, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("feedSubjects(%q) = %q, want %q", tt.categories, got, tt.want)
			}
		})
	}
}
