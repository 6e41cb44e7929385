package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"OrderNotifier/internal/domain"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

// ChannelPublisher часть amqp091.Channel, нужная для публикации.
type ChannelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool,
		msg amqp091.Publishing) error
}

// Publisher публикует события новых заказов в RabbitMQ.
type Publisher struct {
	channel     ChannelPublisher
	exchange    string
	routingKey  string
	contentType string
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(channel ChannelPublisher, exchange, routingKey, contentType string) *Publisher {
	return &Publisher{channel: channel, exchange: exchange, routingKey: routingKey, contentType: contentType}
}

// PublishOrderCreated публикует заказ как событие создания.
func (p *Publisher) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	msg := amqp091.Publishing{
		ContentType:  p.contentType,
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		zlog.Logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order event")
		return err
	}

	zlog.Logger.Debug().Str("order_id", order.ID).Str("message_id", msg.MessageId).Msg("order event published")
	return nil
}
