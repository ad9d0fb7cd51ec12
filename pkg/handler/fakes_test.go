package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/savaki/events-bot/pkg/models"
)

// fakeEventStore is an in-memory EventStore
type fakeEventStore struct {
	mu     sync.Mutex
	events map[string]*models.Event
	fail   bool // when set, every call errors
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[string]*models.Event)}
}

var errFakeStorage = errors.New("fake storage down")

func (f *fakeEventStore) Put(_ context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeStorage
	}
	copied := *event
	f.events[event.EventID] = &copied
	return nil
}

func (f *fakeEventStore) GetByID(_ context.Context, eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errFakeStorage
	}
	event, ok := f.events[eventID]
	if !ok {
		return nil, nil
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventStore) Delete(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeStorage
	}
	delete(f.events, eventID)
	return nil
}

func (f *fakeEventStore) ListByOwner(_ context.Context, owner string) ([]*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errFakeStorage
	}
	var out []*models.Event
	for _, event := range f.events {
		if event.Owner == owner {
			copied := *event
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// fakePosterStore is an in-memory PosterStore
type fakePosterStore struct {
	stored int
	fail   bool
}

func (f *fakePosterStore) Store(_ context.Context, body []byte, contentType string) (string, error) {
	if f.fail {
		return "", errFakeStorage
	}
	f.stored++
	return fmt.Sprintf("https://posters.example.com/posters/%d.jpg", f.stored), nil
}

// fakeMediaFetcher returns canned media bytes
type fakeMediaFetcher struct {
	fail bool
}

func (f *fakeMediaFetcher) Download(_ context.Context, mediaURL string) ([]byte, string, error) {
	if f.fail {
		return nil, "", errFakeStorage
	}
	return []byte("image-bytes"), "image/jpeg", nil
}

// fakeSessionStore is an in-memory SessionStore
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	getErr   error
	putErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*models.Session)}
}

func (f *fakeSessionStore) Get(_ context.Context, sender string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	sess, ok := f.sessions[sender]
	if !ok {
		return nil, nil
	}
	return sess.Clone(), nil
}

func (f *fakeSessionStore) Put(_ context.Context, sess *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.sessions[sess.Sender] = sess.Clone()
	return nil
}
