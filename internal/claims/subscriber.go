package claims

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/claimguard/pkg/logger"
	"go.uber.org/zap"
)

// SubmittedEvent is published by the claim intake service once a claim and
// its images are stored
type SubmittedEvent struct {
	ClaimID string `json:"claim_id"`
}

// Subscriber feeds claim submission events into the dispatcher
type Subscriber struct {
	conn       *nats.Conn
	subject    string
	queue      string
	dispatcher Submitter
	sub        *nats.Subscription
}

// NewSubscriber creates a subscriber. Instances sharing queue split the
// event stream between them
func NewSubscriber(conn *nats.Conn, subject, queue string, dispatcher Submitter) *Subscriber {
	return &Subscriber{
		conn:       conn,
		subject:    subject,
		queue:      queue,
		dispatcher: dispatcher,
	}
}

// Start subscribes to the submission subject
func (s *Subscriber) Start() error {
	sub, err := s.conn.QueueSubscribe(s.subject, s.queue, s.handle)
	if err != nil {
		return err
	}
	s.sub = sub
	logger.Info("Subscribed to claim submissions",
		zap.String("subject", s.subject),
		zap.String("queue", s.queue),
	)
	return nil
}

// Stop drains the subscription so in-flight messages are still handled
func (s *Subscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Drain()
}

func (s *Subscriber) handle(msg *nats.Msg) {
	var event SubmittedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Warn("Discarding malformed claim event",
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return
	}

	claimID, err := uuid.Parse(event.ClaimID)
	if err != nil {
		logger.Warn("Discarding claim event with invalid id",
			zap.String("claim_id", event.ClaimID),
		)
		return
	}

	if err := s.dispatcher.Submit(context.Background(), claimID); err != nil {
		logger.Error("Failed to dispatch claim event",
			zap.String("claim_id", claimID.String()),
			zap.Error(err),
		)
	}
}
