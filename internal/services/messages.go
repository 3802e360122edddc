package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/privchat/privchat-backend/internal/models"
)

// MessageRecords is the document-store surface for the append-only message
// collection. The production implementation is MongoDB-backed.
type MessageRecords interface {
	Insert(ctx context.Context, msg models.Message) (models.Message, error)
	FindByParticipant(ctx context.Context, username string) ([]models.Message, error)
}

// MessageStore is the system of record for messages, independent of live
// delivery: a persisted message is retrievable even if no push ever reached
// the recipient.
type MessageStore struct {
	records MessageRecords
	seq     atomic.Int64
}

func NewMessageStore(records MessageRecords) *MessageStore {
	return &MessageStore{records: records}
}

// Append persists one message. CreatedTime is taken from the server clock
// here, never from the client, so a client cannot forge message times. Seq
// is process-monotonic and disambiguates messages that land on the same
// timestamp.
func (s *MessageStore) Append(ctx context.Context, from, to, text string) (models.Message, error) {
	msg := models.Message{
		From:        from,
		To:          to,
		MessageText: text,
		CreatedTime: time.Now().UTC(),
		Seq:         s.seq.Add(1),
	}
	return s.records.Insert(ctx, msg)
}

// FindConversation returns every message the user sent or received,
// unordered. Sorting and filtering by counterpart is presentation-layer
// work.
func (s *MessageStore) FindConversation(ctx context.Context, username string) ([]models.Message, error) {
	return s.records.FindByParticipant(ctx, username)
}
