package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"moex-client/internal/domain/entity/market"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends reading batches to a RabbitMQ fanout exchange.
type Publisher struct {
	channel  *amqp.Channel
	exchange string
	logger   *logrus.Entry
	mu       sync.Mutex
}

var _ ReadingSink = (*Publisher)(nil)

// NewPublisher opens a channel on conn and declares the exchange.
func NewPublisher(conn *amqp.Connection, exchange string, logger *logrus.Logger) (*Publisher, error) {
	if exchange == "" {
		return nil, errors.New("exchange name cannot be empty")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger.WithField("component", "publisher"),
	}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.channel.Close(); err != nil {
		p.logger.Errorf("close rabbitmq channel: %v", err)
	}
}

func (p *Publisher) PublishReadings(ctx context.Context, readings []market.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	body, err := encodeBatch(readings, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func encodeBatch(readings []market.Reading, at time.Time) ([]byte, error) {
	body, err := json.Marshal(BatchMessage{PublishedAt: at.UTC(), Readings: readings})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return body, nil
}
