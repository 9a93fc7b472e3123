package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lynriescoop/cinema-booking/internal/mailer"
	"github.com/lynriescoop/cinema-booking/internal/ticket"
)

// Consumer reads booking.confirmed messages and sends the confirmation
// email with the PDF e-ticket attached. It runs a reconnect loop with
// exponential backoff so a broker restart never takes it down.
type Consumer struct {
	url    string
	mailer *mailer.Mailer
}

// NewConsumer constructs a Consumer for the given AMQP URL.
func NewConsumer(url string, m *mailer.Mailer) *Consumer {
	return &Consumer{url: url, mailer: m}
}

// Run consumes until the context is cancelled. Dial and consume
// failures are logged and retried.
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			if ctx.Err() != nil {
				_ = conn.Close()
				return
			}
			log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(BookingQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(BookingQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(ctx, d.Body); err != nil {
				log.Printf("booking-consumer: handle message failed: %v", err)
				// Reject without requeue to avoid tight redelivery loops.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	starts, err := time.Parse(time.RFC3339, ev.StartsAt)
	if err != nil {
		return fmt.Errorf("parse starts_at: %w", err)
	}
	pdf, _, err := ticket.Build(ticket.Data{
		BookingNumber: ev.BookingNumber,
		HolderName:    ev.UserName,
		MovieTitle:    ev.MovieTitle,
		CinemaName:    ev.CinemaName,
		RoomName:      ev.RoomName,
		StartsAt:      starts,
		Seats:         ev.SeatLabels,
		TicketCount:   ev.TicketCount,
		TotalCents:    ev.TotalPriceCents,
	})
	if err != nil {
		// Still send the confirmation; the ticket is downloadable from
		// the API as well.
		log.Printf("booking-consumer: ticket render failed for %s: %v", ev.BookingNumber, err)
		pdf = nil
	}
	return c.mailer.SendBookingConfirmation(ctx, mailer.BookingConfirmation{
		BookingNumber:   ev.BookingNumber,
		UserEmail:       ev.UserEmail,
		UserName:        ev.UserName,
		MovieTitle:      ev.MovieTitle,
		CinemaName:      ev.CinemaName,
		RoomName:        ev.RoomName,
		StartsAt:        starts.Format("Mon, 2 Jan 2006 15:04 MST"),
		SeatLabels:      ev.SeatLabels,
		TicketCount:     ev.TicketCount,
		TotalPriceCents: ev.TotalPriceCents,
	}, pdf)
}
