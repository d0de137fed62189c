package natsbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Bus subjects. Outbound messages are fanned out per identity so channel
// bridges can subscribe to the identities they own.
const (
	SubjectInbound        = "screening.inbound"
	SubjectOutboundPrefix = "screening.outbound."
	SubjectNotify         = "screening.notify"

	// queueGroup load-balances inbound messages across backend instances.
	queueGroup = "screening-engine"
)

// handleTimeout bounds one inbound message end to end.
const handleTimeout = 30 * time.Second

// Message is the wire format on the inbound and outbound subjects.
type Message struct {
	Identity string `json:"identity"`
	Text     string `json:"text"`
}

// Handler processes one inbound candidate message (implemented by the
// engine).
type Handler interface {
	HandleMessage(ctx context.Context, identity, text string) error
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// Bus adapts a NATS connection to the engine's transport contract.
type Bus struct {
	conn *nats.Conn
	pub  publisher
}

// NewBus wraps an established NATS connection.
func NewBus(conn *nats.Conn) *Bus {
	return &Bus{conn: conn, pub: conn}
}

// Send publishes a reply for the candidate identity.
func (b *Bus) Send(ctx context.Context, identity, text string) error {
	data, err := json.Marshal(Message{Identity: identity, Text: text})
	if err != nil {
		return err
	}
	return b.pub.Publish(SubjectOutboundPrefix+identity, data)
}

// Notify publishes an admin notification.
func (b *Bus) Notify(ctx context.Context, text string) error {
	data, err := json.Marshal(Message{Text: text})
	if err != nil {
		return err
	}
	return b.pub.Publish(SubjectNotify, data)
}

// Subscribe starts consuming inbound messages in the backend queue group
// and hands them to the engine. Malformed payloads and handler errors are
// logged and the message is dropped; the bridge side owns redelivery.
func (b *Bus) Subscribe(h Handler) (*nats.Subscription, error) {
	return b.conn.QueueSubscribe(SubjectInbound, queueGroup, func(m *nats.Msg) {
		var msg Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			log.Warn().Err(err).Str("subject", m.Subject).Msg("dropping malformed inbound payload")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()

		if err := h.HandleMessage(ctx, msg.Identity, msg.Text); err != nil {
			log.Error().Err(err).Str("identity", msg.Identity).Msg("inbound message failed")
		}
	})
}
