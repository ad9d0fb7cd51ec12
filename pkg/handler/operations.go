package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/savaki/events-bot/pkg/conversation"
	"github.com/savaki/events-bot/pkg/logging"
	"github.com/savaki/events-bot/pkg/models"
)

// Error kinds surfaced by the operations. The router translates these into
// user-facing replies; none of them is fatal.
var (
	// ErrStorageUnavailable means a storage or network call could not
	// complete. The conversation is not advanced so the sender can retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFoundOrForbidden covers both a missing event and an event owned
	// by someone else. Collapsing the two avoids leaking whether an id
	// exists.
	ErrNotFoundOrForbidden = errors.New("event not found or not owned by sender")

	// ErrDuplicateName means the sender already has an event with this name
	ErrDuplicateName = errors.New("duplicate event name")
)

// EventStore is the event persistence collaborator
type EventStore interface {
	Put(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, eventID string) (*models.Event, error)
	Delete(ctx context.Context, eventID string) error
	ListByOwner(ctx context.Context, owner string) ([]*models.Event, error)
}

// PosterStore is the object storage collaborator for poster images
type PosterStore interface {
	Store(ctx context.Context, body []byte, contentType string) (string, error)
}

// MediaFetcher downloads provider-hosted message media
type MediaFetcher interface {
	Download(ctx context.Context, mediaURL string) ([]byte, string, error)
}

// Operations implements the three event operations. Each receives fully
// validated arguments (the state machine validated them before completing)
// and is safe to replay on duplicate webhook delivery.
type Operations struct {
	events  EventStore
	posters PosterStore
	media   MediaFetcher
	logger  *logging.Logger
}

// NewOperations creates the operation handlers
func NewOperations(events EventStore, posters PosterStore, media MediaFetcher, logger *logging.Logger) *Operations {
	if logger == nil {
		logger = logging.Default()
	}
	return &Operations{
		events:  events,
		posters: posters,
		media:   media,
		logger:  logger,
	}
}

// CreateEvent stores the poster image first, then writes the event record.
// A failed upload aborts the whole operation before anything is persisted.
func (o *Operations) CreateEvent(ctx context.Context, owner string, fields map[string]string) (*models.Event, error) {
	name := fields[conversation.FieldName]

	// The duplicate check is read-only, so it runs before the upload to
	// avoid orphaned posters.
	existing, err := o.events.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrStorageUnavailable, err)
	}
	for _, evt := range existing {
		if strings.EqualFold(evt.Name, name) {
			return nil, ErrDuplicateName
		}
	}

	var posterURL string
	if mediaURL := fields[conversation.FieldPoster]; mediaURL != "" {
		body, contentType, err := o.media.Download(ctx, mediaURL)
		if err != nil {
			return nil, fmt.Errorf("%w: download poster: %v", ErrStorageUnavailable, err)
		}
		posterURL, err = o.posters.Store(ctx, body, contentType)
		if err != nil {
			return nil, fmt.Errorf("%w: store poster: %v", ErrStorageUnavailable, err)
		}
	}

	event := models.NewEvent(
		owner,
		name,
		fields[conversation.FieldDate],
		fields[conversation.FieldAddress],
		fields[conversation.FieldDescription],
	)
	event.PosterURL = posterURL

	if err := o.events.Put(ctx, event); err != nil {
		return nil, fmt.Errorf("%w: put event: %v", ErrStorageUnavailable, err)
	}

	o.logger.Info("created event", "event_id", event.EventID, "owner", owner)
	return event, nil
}

// ListEvents returns the sender's events ordered by date ascending. An empty
// result is not an error.
func (o *Operations) ListEvents(ctx context.Context, owner string) ([]*models.Event, error) {
	events, err := o.events.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrStorageUnavailable, err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})

	return events, nil
}

// DeleteEvent removes an event the sender owns. Missing id and foreign
// ownership produce the identical ErrNotFoundOrForbidden, so repeating a
// successful delete yields the same outcome rather than a crash.
func (o *Operations) DeleteEvent(ctx context.Context, owner, eventID string) error {
	event, err := o.events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("%w: get event: %v", ErrStorageUnavailable, err)
	}
	if event == nil || event.Owner != owner {
		return ErrNotFoundOrForbidden
	}

	if err := o.events.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("%w: delete event: %v", ErrStorageUnavailable, err)
	}

	o.logger.Info("deleted event", "event_id", eventID, "owner", owner)
	return nil
}
