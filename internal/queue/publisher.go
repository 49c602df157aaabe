package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-booking/internal/model"
)

const bookingQueueName = "booking.confirmed"

// Publisher sends BookingConfirmedEvent messages to RabbitMQ.  Publish
// failures are logged and swallowed: a booking that committed must not
// be failed retroactively because the broker is down.
type Publisher struct {
	URL string
}

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// PublishBookingConfirmed fires the confirmation off in a goroutine so
// the request path never waits on the broker.
func (p *Publisher) PublishBookingConfirmed(b *model.BookingDetail) {
	ev := BookingConfirmedEvent{
		BookingID:        b.ID,
		EventID:          b.EventID,
		UserID:           b.UserID,
		EventTitle:       b.EventTitle,
		EventDate:        b.EventDate.UTC().Format(time.RFC3339),
		EventLocation:    b.EventLocation,
		Seats:            b.Seats,
		TotalAmountCents: b.TotalAmountCents,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.publish(ctx, ev); err != nil {
			log.Printf("rabbitmq: publish booking %d failed: %v", ev.BookingID, err)
		}
	}()
}

func (p *Publisher) publish(ctx context.Context, ev BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(bookingQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"", bookingQueueName, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
