package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPPublisher forwards events to a durable queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	appID string
	mu    sync.Mutex
}

func DialAMQP(url, queue, appID string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "amqp channel")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.Wrapf(err, "amqp declare %s", queue)
	}
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue, appID: appID}, nil
}

// Forward publishes one event. Failures are logged; the broker is best effort.
func (p *AMQPPublisher) Forward(e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		zap.L().Error("encode event", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		AppId:        p.appID,
		Type:         e.Action,
		Timestamp:    e.At,
		Body:         body,
	})
	if err != nil {
		zap.L().Warn("amqp publish failed", zap.String("action", e.Action), zap.Error(err))
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		zap.L().Warn("amqp channel close", zap.Error(err))
	}
	return p.conn.Close()
}
