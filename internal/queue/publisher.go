package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Queue names declared by both publisher and consumer.
const (
	BookingCreatedQueue       = "booking.created"
	BookingStatusChangedQueue = "booking.status_changed"
)

// Publisher emits booking lifecycle events to RabbitMQ. It is
// deliberately fire-and-forget: a broker outage is logged and the
// request that triggered the event still succeeds, so no external
// call ever sits inside the booking transaction.
type Publisher struct {
	url string
	log zerolog.Logger
}

// NewPublisher returns a publisher for the given AMQP URL.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log.With().Str("component", "queue-publisher").Logger()}
}

// BookingCreated publishes a BookingCreatedEvent.
func (p *Publisher) BookingCreated(ctx context.Context, b *model.Booking) {
	event := BookingCreatedEvent{
		EventID:          uuid.NewString(),
		BookingID:        b.ID,
		RoomID:           b.RoomID,
		HotelID:          b.HotelID,
		UserID:           b.UserID,
		CheckIn:          b.CheckIn.UTC().Format(time.RFC3339),
		CheckOut:         b.CheckOut.UTC().Format(time.RFC3339),
		TotalAmountCents: b.TotalAmountCents,
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
	}
	p.publish(ctx, BookingCreatedQueue, event)
}

// BookingStatusChanged publishes a BookingStatusChangedEvent.
func (p *Publisher) BookingStatusChanged(ctx context.Context, b *model.Booking, from model.BookingStatus) {
	event := BookingStatusChangedEvent{
		EventID:    uuid.NewString(),
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		HotelID:    b.HotelID,
		UserID:     b.UserID,
		FromStatus: string(from),
		ToStatus:   string(b.Status),
		ChangedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	p.publish(ctx, BookingStatusChangedQueue, event)
}

// publish declares the queue (idempotent, durable) and sends one
// persistent JSON message. Errors are logged, never propagated.
func (p *Publisher) publish(ctx context.Context, queueName string, event any) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("broker dial failed")
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("channel open failed")
		return
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("queue declare failed")
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("queue", queueName).Msg("marshal event failed")
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Warn().Err(err).Str("queue", queueName).Msg("publish failed")
	}
}
