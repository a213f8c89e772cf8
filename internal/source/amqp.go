package source

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

// AMQP consumes full snapshots published to a fanout exchange. Each message
// body is a JSON array of records.
//
// The exchange also feeds a durable queue holding only the newest snapshot.
// Subscribe reads and requeues it, so a new subscriber starts from the last
// published list instead of waiting for the next publish.
type AMQP struct {
	url      string
	exchange string
}

// NewAMQP creates a source for exchange on the broker at url.
func NewAMQP(url, exchange string) *AMQP {
	return &AMQP{url: url, exchange: exchange}
}

func (a *AMQP) Name() string { return "amqp" }

func (a *AMQP) Subscribe(ctx context.Context, h Handler) (*Subscription, error) {
	conn, err := amqp.Dial(a.url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	msgs, err := declareBindAndConsume(ch, a.exchange)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	if err := declareLatest(ch, a.exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return start(ctx, a.Name(), func(ctx context.Context) {
		defer conn.Close()
		defer ch.Close()

		logger := logging.WithFields(ctx, "exchange", a.exchange)
		a.seed(ctx, ch, h)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					sourceErrors.WithLabelValues(a.Name()).Inc()
					logger.Warn("delivery channel closed")
					<-ctx.Done()
					return
				}
				records, err := core.DecodeRecords(d.Body)
				if err != nil {
					sourceErrors.WithLabelValues(a.Name()).Inc()
					logger.Warn("dropping malformed snapshot", "error", err, "bytes", len(d.Body))
					d.Nack(false, false)
					continue
				}
				AssignIDs(records, a.exchange+"/"+d.MessageId)
				emit(ctx, a.Name(), h, records)
				d.Ack(false)
			}
		}
	}), nil
}

// seed emits the newest retained snapshot, if any, and puts it back.
func (a *AMQP) seed(ctx context.Context, ch *amqp.Channel, h Handler) {
	logger := logging.WithFields(ctx, "exchange", a.exchange)

	d, ok, err := ch.Get(latestQueue(a.exchange), false)
	if err != nil {
		sourceErrors.WithLabelValues(a.Name()).Inc()
		logger.Warn("cannot read latest snapshot", "error", err)
		return
	}
	if !ok {
		logger.Info("no snapshot published yet")
		return
	}
	defer d.Nack(false, true)

	records, err := core.DecodeRecords(d.Body)
	if err != nil {
		sourceErrors.WithLabelValues(a.Name()).Inc()
		logger.Warn("ignoring malformed latest snapshot", "error", err, "bytes", len(d.Body))
		return
	}
	AssignIDs(records, a.exchange+"/"+d.MessageId)
	emit(ctx, a.Name(), h, records)
}

// latestQueue names the queue that retains the newest snapshot.
func latestQueue(exchange string) string {
	return exchange + ".latest"
}

// latestQueueArgs keeps one message, dropping the oldest on overflow.
func latestQueueArgs() amqp.Table {
	return amqp.Table{
		"x-max-length": int32(1),
		"x-overflow":   "drop-head",
	}
}

// declareLatest declares the retained-snapshot queue and binds it to exchange.
func declareLatest(ch *amqp.Channel, exchange string) error {
	q, err := ch.QueueDeclare(
		latestQueue(exchange),
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		latestQueueArgs(),
	)
	if err != nil {
		return fmt.Errorf("declare latest queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return fmt.Errorf("bind latest queue: %w", err)
	}
	return nil
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"fanout", // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

func declareBindAndConsume(ch *amqp.Channel, exchange string) (<-chan amqp.Delivery, error) {
	if err := declareExchange(ch, exchange); err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return ch.Consume(
		q.Name,
		"",    // consumer
		false, // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
}

// Publish sends a snapshot to the exchange for every subscribed consumer and
// for the retained-snapshot queue.
func Publish(ctx context.Context, url, exchange string, records []core.Record) error {
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareExchange(ch, exchange); err != nil {
		return err
	}
	if err := declareLatest(ch, exchange); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
