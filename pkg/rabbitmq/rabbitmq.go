package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient connects to RabbitMQ, opens a channel and declares cfg.Queue.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		return nil, fmt.Errorf("rabbitmq queue name is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	zap.L().Info("RabbitMQ client connected", zap.String("queue", cfg.Queue))

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
	}, nil
}

func declare(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message to the client's queue.
func (c *Client) Publish(body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Consume delivers each message body on the client's queue to handler in a
// background goroutine. A message is acked when handler returns nil and
// dropped without requeue otherwise, so a poison message cannot loop.
// The goroutine exits when the channel closes.
func (c *Client) Consume(handler func(body []byte) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("Waiting for messages", zap.String("queue", c.queue))

	go func() {
		for msg := range msgs {
			if err := handler(msg.Body); err != nil {
				zap.L().Error("Error processing message", zap.Uint64("deliveryTag", msg.DeliveryTag), zap.Error(err))
				if nackErr := msg.Nack(false, false); nackErr != nil {
					zap.L().Error("Error nacking message", zap.Uint64("deliveryTag", msg.DeliveryTag), zap.Error(nackErr))
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				zap.L().Error("Error acking message", zap.Uint64("deliveryTag", msg.DeliveryTag), zap.Error(ackErr))
			}
		}
	}()

	return nil
}
