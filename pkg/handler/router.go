package handler

import (
	"context"
	"errors"
	"time"

	"github.com/savaki/events-bot/pkg/conversation"
	"github.com/savaki/events-bot/pkg/intent"
	"github.com/savaki/events-bot/pkg/logging"
	"github.com/savaki/events-bot/pkg/models"
)

// SessionStore is the conversational-state persistence collaborator
type SessionStore interface {
	Get(ctx context.Context, sender string) (*models.Session, error)
	Put(ctx context.Context, sess *models.Session) error
}

// Router orchestrates one inbound message end to end: load state, classify,
// step the state machine, run the resolved operation, persist state, format
// the reply. It always produces a reply.
type Router struct {
	sessions      SessionStore
	ops           *Operations
	frontendURL   string
	sessionExpiry time.Duration
	logger        *logging.Logger
}

// NewRouter creates the inbound message router
func NewRouter(sessions SessionStore, ops *Operations, frontendURL string, sessionExpiry time.Duration, logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{
		sessions:      sessions,
		ops:           ops,
		frontendURL:   frontendURL,
		sessionExpiry: sessionExpiry,
		logger:        logger,
	}
}

// HandleInboundMessage processes a single chat message and returns the reply
// text. Operation side effects happen before the session write, so a crash
// in between is an at-least-once risk the operations are written to absorb.
func (r *Router) HandleInboundMessage(ctx context.Context, msg models.InboundMessage) string {
	sess, err := r.sessions.Get(ctx, msg.Sender)
	if err != nil {
		r.logger.Error("session load failed", "sender", msg.Sender, "error", err)
		return ReplyRetryLater
	}

	// Expire-then-evaluate: a stale session behaves exactly like no session.
	if sess == nil || sess.Expired(r.sessionExpiry) {
		sess = models.NewSession(msg.Sender, r.sessionExpiry)
	}

	res := intent.Classify(msg.Text, !sess.Idle())

	// Snapshot before stepping so a failed storage write can put the sender
	// back on the same step.
	prior := sess.Clone()

	outcome := conversation.Step(sess, res, msg)

	var reply string
	persist := sess

	switch outcome.Kind {
	case conversation.OutcomePrompt:
		reply = PromptFor(outcome.Field)
	case conversation.OutcomeReprompt:
		reply = RepromptFor(outcome.Field, outcome.Reason)
	case conversation.OutcomeCancelled:
		reply = ReplyCancelled
	case conversation.OutcomeHelp:
		reply = Help()
	case conversation.OutcomeComplete:
		var retryable bool
		reply, retryable = r.dispatch(ctx, msg.Sender, outcome)
		if retryable {
			// Keep the pre-transition state so resending the last message
			// retries the same step.
			persist = prior
		}
	default:
		r.logger.Error("unexpected state machine outcome", "sender", msg.Sender, "kind", int(outcome.Kind))
		sess.Reset()
		reply = ReplyTryAgain
	}

	persist.Touch(r.sessionExpiry)
	if err := r.sessions.Put(ctx, persist); err != nil {
		// The reply is already decided; losing one transition is the
		// accepted failure mode here.
		r.logger.Error("session persist failed", "sender", msg.Sender, "error", err)
	}

	return reply
}

// dispatch invokes the operation a completed flow resolved to. It returns
// the reply and whether the failure is retryable (conversation state must
// not advance).
func (r *Router) dispatch(ctx context.Context, sender string, outcome conversation.Outcome) (reply string, retryable bool) {
	switch outcome.Op {
	case conversation.OpList:
		events, err := r.ops.ListEvents(ctx, sender)
		if err != nil {
			r.logger.Error("list events failed", "sender", sender, "error", err)
			return ReplyRetryLater, false
		}
		return FormatEventList(events, r.frontendURL), false

	case conversation.OpCreate:
		event, err := r.ops.CreateEvent(ctx, sender, outcome.Fields)
		switch {
		case errors.Is(err, ErrDuplicateName):
			return ReplyDuplicateName, false
		case errors.Is(err, ErrStorageUnavailable):
			r.logger.Error("create event failed", "sender", sender, "error", err)
			return ReplyRetryLater, true
		case err != nil:
			r.logger.Error("create event failed", "sender", sender, "error", err)
			return ReplyTryAgain, false
		}
		return FormatCreated(event, r.frontendURL), false

	case conversation.OpDelete:
		err := r.ops.DeleteEvent(ctx, sender, outcome.Fields[conversation.FieldEventID])
		switch {
		case errors.Is(err, ErrNotFoundOrForbidden):
			return ReplyDeleteDenied, false
		case errors.Is(err, ErrStorageUnavailable):
			r.logger.Error("delete event failed", "sender", sender, "error", err)
			return ReplyRetryLater, true
		case err != nil:
			r.logger.Error("delete event failed", "sender", sender, "error", err)
			return ReplyTryAgain, false
		}
		return ReplyDeleted, false
	}

	r.logger.Error("completed flow resolved to unknown operation", "sender", sender, "op", string(outcome.Op))
	return ReplyTryAgain, false
}
