package services

import (
	"context"
	"log"

	"github.com/privchat/privchat-backend/internal/models"
)

// UserDirectory looks up account records. FindUser returns (nil, nil) when
// the username is unknown.
type UserDirectory interface {
	FindUser(ctx context.Context, username string) (*models.User, error)
}

// Appender persists a message, returning the stored record.
type Appender interface {
	Append(ctx context.Context, from, to, text string) (models.Message, error)
}

// ConnectionFinder resolves the live socket ids for a set of usernames,
// excluding one socket id.
type ConnectionFinder interface {
	ConnectionsFor(ctx context.Context, usernames []string, excluding string) ([]string, error)
}

// Deliverer pushes a delivery event to a set of socket ids.
type Deliverer interface {
	Deliver(ctx context.Context, socketIDs []string, event DeliveryEvent) error
}

// DeliveryEvent is the outbound payload pushed to every other live
// connection of the sender and recipient.
type DeliveryEvent struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendEnvelope is the inbound send-message payload.
type SendEnvelope struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// AckFunc is the caller-supplied acknowledgment, invoked exactly once per
// event with nil on success or the captured error on failure. A nil AckFunc
// is legal and means the caller did not ask for an acknowledgment.
type AckFunc func(err error)

// sendState tracks an inbound send event through its lifecycle. A send
// either walks Received → Validated → Persisted → Delivered or
// short-circuits to Failed at whichever gate rejected it.
type sendState int

const (
	stateReceived sendState = iota
	stateValidated
	statePersisted
	stateDelivered
	stateFailed
)

func (s sendState) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateValidated:
		return "validated"
	case statePersisted:
		return "persisted"
	case stateDelivered:
		return "delivered"
	default:
		return "failed"
	}
}

// Router resolves an inbound send-message event into a validation check, a
// persisted record, and a targeted push to every other live connection of
// the sender and recipient.
type Router struct {
	directory UserDirectory
	store     Appender
	presence  ConnectionFinder
	deliverer Deliverer
}

func NewRouter(directory UserDirectory, store Appender, presence ConnectionFinder, deliverer Deliverer) *Router {
	return &Router{
		directory: directory,
		store:     store,
		presence:  presence,
		deliverer: deliverer,
	}
}

// HandleSend processes one send-message event originating from socket
// originID. Validation and store errors are reported through ack only; they
// never panic past this boundary.
func (r *Router) HandleSend(ctx context.Context, originID string, data *SendEnvelope, ack AckFunc) {
	state, err := r.process(ctx, originID, data)
	if err != nil {
		// state names the last gate the send cleared before failing.
		log.Printf("send from socket %s failed after state %s: %v", originID, state, err)
	}
	if ack != nil {
		ack(err)
	}
}

func (r *Router) process(ctx context.Context, originID string, data *SendEnvelope) (sendState, error) {
	state := stateReceived

	// Received: the payload must carry from, to, and text. Nothing has had
	// side effects yet, so a bad payload stops here.
	if data == nil || data.From == "" || data.To == "" || data.Message == "" {
		return state, ErrMissingData
	}

	// Validated: the sender must exist and the recipient must be in the
	// sender's contact list. An unknown sender is indistinguishable from an
	// unauthorized one as far as the wire is concerned; both stop before
	// anything is persisted.
	sender, err := r.directory.FindUser(ctx, data.From)
	if err != nil {
		return state, err
	}
	if sender == nil {
		return state, ErrInvalidUser
	}
	if !sender.HasContact(data.To) {
		return state, ErrInvalidReceiver
	}
	state = stateValidated

	// Persisted: the store is the system of record, so the write happens
	// before any delivery attempt. A store failure propagates verbatim and
	// no push is sent for a message that was never persisted.
	if _, err := r.store.Append(ctx, data.From, data.To, data.Message); err != nil {
		return state, err
	}
	state = statePersisted

	// Delivered: find every other live connection of the sender or the
	// recipient. The originating socket is excluded so the sender never
	// receives an echo of its own message. Zero live targets means the
	// recipient is offline, which is silent success: the message is already
	// retrievable from the store.
	targets, err := r.presence.ConnectionsFor(ctx, []string{data.From, data.To}, originID)
	if err != nil {
		return state, err
	}
	if len(targets) > 0 {
		event := DeliveryEvent{From: data.From, To: data.To, Message: data.Message}
		if err := r.deliverer.Deliver(ctx, targets, event); err != nil {
			// Live push is best effort; the persisted record is authoritative.
			log.Printf("delivery push to %d sockets failed: %v", len(targets), err)
		}
	}
	state = stateDelivered

	return state, nil
}
