package handler

import (
	"context"
	"testing"
	"time"

	"github.com/savaki/events-bot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontendURL = "events.example.com"

type routerFixture struct {
	router   *Router
	events   *fakeEventStore
	sessions *fakeSessionStore
	posters  *fakePosterStore
	media    *fakeMediaFetcher
}

func newRouterFixture() *routerFixture {
	events := newFakeEventStore()
	sessions := newFakeSessionStore()
	posters := &fakePosterStore{}
	media := &fakeMediaFetcher{}
	ops := NewOperations(events, posters, media, nil)
	return &routerFixture{
		router:   NewRouter(sessions, ops, frontendURL, 24*time.Hour, nil),
		events:   events,
		sessions: sessions,
		posters:  posters,
		media:    media,
	}
}

func (f *routerFixture) send(t *testing.T, sender, text string) string {
	t.Helper()
	return f.router.HandleInboundMessage(context.Background(), models.InboundMessage{
		Sender:     sender,
		Text:       text,
		ReceivedAt: time.Now(),
	})
}

func (f *routerFixture) sendMedia(t *testing.T, sender, mediaURL string) string {
	t.Helper()
	return f.router.HandleInboundMessage(context.Background(), models.InboundMessage{
		Sender:     sender,
		MediaURL:   mediaURL,
		ReceivedAt: time.Now(),
	})
}

func (f *routerFixture) session(sender string) *models.Session {
	return f.sessions.sessions[sender]
}

func TestFullCreateScenario(t *testing.T) {
	f := newRouterFixture()
	sender := "whatsapp:+15551230001"

	reply := f.send(t, sender, "new event")
	assert.Contains(t, reply, "called")

	reply = f.send(t, sender, "Birthday Bash")
	assert.Contains(t, reply, "date")

	// Invalid date re-prompts and stays put.
	reply = f.send(t, sender, "2024-13-40")
	assert.Contains(t, reply, "date")
	assert.Contains(t, reply, "2024-13-40")

	reply = f.send(t, sender, "2024-12-01")
	assert.Contains(t, reply, "address")

	reply = f.send(t, sender, "123 Main St")
	assert.Contains(t, reply, "poster")

	reply = f.sendMedia(t, sender, "https://api.twilio.com/media/1")
	assert.Contains(t, reply, "description")

	reply = f.send(t, sender, "Fun party")
	assert.Contains(t, reply, "evt-", "reply should contain the new event id")
	assert.Contains(t, reply, "https://events.example.com/event/")

	// Exactly one event exists, owned by the sender, and state is idle.
	listed, err := f.events.ListByOwner(context.Background(), sender)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Birthday Bash", listed[0].Name)
	assert.Equal(t, "2024-12-01", listed[0].Date)
	assert.NotEmpty(t, listed[0].PosterURL)

	require.NotNil(t, f.session(sender))
	assert.True(t, f.session(sender).Idle())
}

func TestCancelMidFlowResetsState(t *testing.T) {
	f := newRouterFixture()
	sender := "whatsapp:+15551230002"

	f.send(t, sender, "new event")
	f.send(t, sender, "Birthday Bash")
	f.send(t, sender, "2024-12-01")

	reply := f.send(t, sender, "cancel")
	assert.Equal(t, ReplyCancelled, reply)

	sess := f.session(sender)
	require.NotNil(t, sess)
	assert.True(t, sess.Idle())
	assert.Empty(t, sess.Fields)
}

func TestDeleteDenialParity(t *testing.T) {
	f := newRouterFixture()
	owner := "whatsapp:+15551230003"
	stranger := "whatsapp:+15551230004"

	event := models.NewEvent(owner, "Mine", "2024-12-01", "a", "")
	f.events.Put(context.Background(), event)

	missingReply := f.send(t, stranger, "delete evt-does-not-exist")
	foreignReply := f.send(t, stranger, "delete "+event.EventID)

	assert.Equal(t, ReplyDeleteDenied, missingReply)
	assert.Equal(t, missingReply, foreignReply, "missing and foreign ids must be indistinguishable")

	// Stranger's state returns to idle.
	sess := f.session(stranger)
	require.NotNil(t, sess)
	assert.True(t, sess.Idle())
}

func TestDeleteOwnEvent(t *testing.T) {
	f := newRouterFixture()
	owner := "whatsapp:+15551230005"

	event := models.NewEvent(owner, "Mine", "2024-12-01", "a", "")
	f.events.Put(context.Background(), event)

	reply := f.send(t, owner, "delete "+event.EventID)
	assert.Equal(t, ReplyDeleted, reply)

	// Duplicate webhook delivery of the same command lands on the denial
	// message, a safely ignorable outcome.
	reply = f.send(t, owner, "delete "+event.EventID)
	assert.Equal(t, ReplyDeleteDenied, reply)
}

func TestListEventsEmptyMessage(t *testing.T) {
	f := newRouterFixture()

	reply := f.send(t, "whatsapp:+15551230006", "my events")
	assert.Equal(t, ReplyNoEvents, reply)
}

func TestListEventsRendersEach(t *testing.T) {
	f := newRouterFixture()
	sender := "whatsapp:+15551230007"
	ctx := context.Background()

	f.events.Put(ctx, models.NewEvent(sender, "Alpha", "2024-01-01", "Addr A", ""))
	f.events.Put(ctx, models.NewEvent(sender, "Beta", "2024-06-01", "Addr B", ""))

	reply := f.send(t, sender, "my events")
	assert.Contains(t, reply, "Alpha")
	assert.Contains(t, reply, "Beta")
	assert.Contains(t, reply, "Addr A")
	assert.Less(t, indexOf(reply, "Alpha"), indexOf(reply, "Beta"), "events should be date ascending")
}

func TestUnknownMessageGetsHelp(t *testing.T) {
	f := newRouterFixture()

	reply := f.send(t, "whatsapp:+15551230008", "what can you do?")
	assert.Equal(t, Help(), reply)
}

func TestExpiredSessionBehavesLikeNoState(t *testing.T) {
	f := newRouterFixture()
	sender := "whatsapp:+15551230009"

	// Mid-create session that went stale.
	stale := models.NewSession(sender, 24*time.Hour)
	stale.Intent = models.IntentCreating
	stale.Step = 1
	stale.Fields["name"] = "Old Party"
	stale.LastUpdatedAt = time.Now().Add(-25 * time.Hour)
	f.sessions.Put(context.Background(), stale)

	// Free text that would have been the date field now gets the help
	// reply, exactly like a sender with no prior state.
	reply := f.send(t, sender, "2024-12-01")
	assert.Equal(t, Help(), reply)

	sess := f.session(sender)
	require.NotNil(t, sess)
	assert.True(t, sess.Idle())
}

func TestStorageFailureDoesNotAdvanceCreateFlow(t *testing.T) {
	f := newRouterFixture()
	sender := "whatsapp:+15551230010"

	f.send(t, sender, "new event")
	f.send(t, sender, "Birthday Bash")
	f.send(t, sender, "2024-12-01")
	f.send(t, sender, "123 Main St")
	f.sendMedia(t, sender, "https://api.twilio.com/media/1")

	// The record write fails at the final step.
	f.events.fail = true
	reply := f.send(t, sender, "Fun party")
	assert.Equal(t, ReplyRetryLater, reply)

	// The sender is still on the description step.
	sess := f.session(sender)
	require.NotNil(t, sess)
	assert.Equal(t, models.IntentCreating, sess.Intent)
	assert.Equal(t, 4, sess.Step)

	// Resending the same message succeeds once storage recovers.
	f.events.fail = false
	reply = f.send(t, sender, "Fun party")
	assert.Contains(t, reply, "evt-")
}

func TestSessionLoadFailureStillReplies(t *testing.T) {
	f := newRouterFixture()
	f.sessions.getErr = errFakeStorage

	reply := f.send(t, "whatsapp:+15551230011", "my events")
	assert.Equal(t, ReplyRetryLater, reply)
}

func TestDuplicateNameResetsFlow(t *testing.T) {
	f := newRouterFixture()
	sender := "whatsapp:+15551230012"
	ctx := context.Background()

	f.events.Put(ctx, models.NewEvent(sender, "Birthday Bash", "2023-01-01", "a", ""))

	f.send(t, sender, "new event")
	f.send(t, sender, "Birthday Bash")
	f.send(t, sender, "2024-12-01")
	f.send(t, sender, "123 Main St")
	f.sendMedia(t, sender, "https://api.twilio.com/media/1")
	reply := f.send(t, sender, "Fun party")

	assert.Equal(t, ReplyDuplicateName, reply)
	assert.True(t, f.session(sender).Idle())
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
