package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"OrderNotifier/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

// ChannelOpener открывает канал к брокеру.
type ChannelOpener interface {
	Channel() (*amqp091.Channel, error)
}

// Consumer читает события новых заказов из очереди и передает их диспетчеру.
type Consumer struct {
	dispatcher domain.OrderDispatcher
	client     ChannelOpener
}

func NewConsumer(dispatcher domain.OrderDispatcher, client ChannelOpener) *Consumer {
	return &Consumer{
		dispatcher: dispatcher,
		client:     client,
	}
}

// Start блокируется до отмены ctx или закрытия канала доставки.
// Закрытие канала брокером возвращает ErrDeliveriesClosed.
func (c *Consumer) Start(ctx context.Context, queueName string, workerNum int, prefetchCount int) error {
	if workerNum <= 0 {
		workerNum = 1
	}
	if prefetchCount <= 0 {
		prefetchCount = 1
	}

	ch, err := c.client.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queueName, err)
	}

	zlog.Logger.Info().Str("queue", queueName).Int("workers", workerNum).Msg("consumer started")

	if err := c.consume(ctx, deliveries, workerNum); err != nil {
		zlog.Logger.Error().Err(err).Str("queue", queueName).Msg("consumer stopped")
		return err
	}

	zlog.Logger.Info().Str("queue", queueName).Msg("consumer stopped")
	return nil
}

// ErrDeliveriesClosed брокер закрыл канал доставки до отмены контекста.
var ErrDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

func (c *Consumer) consume(ctx context.Context, deliveries <-chan amqp091.Delivery, workerNum int) error {
	var wg sync.WaitGroup
	for i := 0; i < workerNum; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-deliveries:
					if !ok {
						return
					}
					c.handle(ctx, msg)
				}
			}
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil
	}
	return ErrDeliveriesClosed
}

func (c *Consumer) handle(ctx context.Context, msg amqp091.Delivery) {
	if err := c.process(ctx, msg.Body); err != nil {
		if rejErr := msg.Reject(false); rejErr != nil {
			zlog.Logger.Error().Err(rejErr).Msg("failed to reject message")
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to ack message")
	}
}

var errEmptyBody = errors.New("empty message body")

func (c *Consumer) process(ctx context.Context, body []byte) error {
	if len(body) == 0 {
		zlog.Logger.Error().Err(errEmptyBody).Msg("failed to decode order event")
		return errEmptyBody
	}
	zlog.Logger.Debug().Str("body", string(body)).Msg("order event received")

	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to unmarshal body")
		return err
	}

	c.dispatcher.OnNewOrder(ctx, order)
	return nil
}
