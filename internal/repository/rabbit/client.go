package rabbit

import (
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

// ClientConfig параметры подключения к RabbitMQ.
type ClientConfig struct {
	URL            string
	ConnectionName string
	ConnectTimeout time.Duration
	Heartbeat      time.Duration
}

// Client держит соединение с брокером и выдает каналы.
type Client struct {
	conn *amqp091.Connection
}

// NewClient подключается к RabbitMQ.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is empty")
	}
	props := amqp091.NewConnectionProperties()
	props.SetClientConnectionName(cfg.ConnectionName)

	amqpCfg := amqp091.Config{
		Heartbeat:  cfg.Heartbeat,
		Properties: props,
	}
	if cfg.ConnectTimeout > 0 {
		amqpCfg.Dial = amqp091.DefaultDial(cfg.ConnectTimeout)
	}

	conn, err := amqp091.DialConfig(cfg.URL, amqpCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Channel открывает новый канал.
func (c *Client) Channel() (*amqp091.Channel, error) {
	if c.conn == nil || c.conn.IsClosed() {
		return nil, amqp091.ErrClosed
	}
	return c.conn.Channel()
}

// DeclareQueue объявляет exchange типа direct, очередь и связывает их по routingKey.
func (c *Client) DeclareQueue(queue, exchange, routingKey string, args amqp091.Table) error {
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if exchange != "" {
		if err := ch.ExchangeDeclare(exchange, amqp091.ExchangeDirect, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if exchange != "" {
		if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", queue, err)
		}
	}
	zlog.Logger.Debug().Str("queue", queue).Str("exchange", exchange).Msg("queue declared")
	return nil
}

// Ping проверяет, что соединение живо и канал открывается.
func (c *Client) Ping() error {
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	return ch.Close()
}

// Close закрывает соединение.
func (c *Client) Close() error {
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	err := c.conn.Close()
	if errors.Is(err, amqp091.ErrClosed) {
		return nil
	}
	return err
}
