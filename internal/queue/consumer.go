package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// StartAuditConsumer connects to RabbitMQ, declares both booking
// lifecycle queues (durable) and appends one line per event to
// logs/booking-audit.log. It runs a reconnect loop with capped
// backoff and keeps going until the process exits; processing errors
// are logged and the offending message rejected without requeue so a
// poison message cannot wedge the consumer.
func StartAuditConsumer(url string, log zerolog.Logger) {
	log = log.With().Str("component", "audit-consumer").Logger()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("broker dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.Warn().Err(err).Msg("consume loop ended, reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log zerolog.Logger) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("set QoS failed")
	}

	for _, name := range []string{BookingCreatedQueue, BookingStatusChangedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	created, err := ch.Consume(BookingCreatedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", BookingCreatedQueue, err)
	}
	changed, err := ch.Consume(BookingStatusChangedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", BookingStatusChangedQueue, err)
	}

	for {
		select {
		case d, ok := <-created:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ackOrReject(d, handleCreated(d.Body), log)
		case d, ok := <-changed:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			ackOrReject(d, handleStatusChanged(d.Body), log)
		}
	}
}

func ackOrReject(d amqp.Delivery, err error, log zerolog.Logger) {
	if err != nil {
		log.Warn().Err(err).Msg("handle message failed")
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func handleCreated(body []byte) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Booking created | booking_id=%d | user_id=%d | room_id=%d | hotel_id=%d | %s -> %s | total=%d cents\n",
		ev.CreatedAt, ev.BookingID, ev.UserID, ev.RoomID, ev.HotelID, ev.CheckIn, ev.CheckOut, ev.TotalAmountCents)
	return appendAuditLine(line)
}

func handleStatusChanged(body []byte) error {
	var ev BookingStatusChangedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Booking status changed | booking_id=%d | user_id=%d | room_id=%d | %s -> %s\n",
		ev.ChangedAt, ev.BookingID, ev.UserID, ev.RoomID, ev.FromStatus, ev.ToStatus)
	return appendAuditLine(line)
}

func appendAuditLine(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "booking-audit.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
