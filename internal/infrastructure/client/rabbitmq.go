package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/St1cky1/roster/internal/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrClientClosed = errors.New("rabbitmq client closed")

// RabbitMQClient переподключается сам: если брокер закрыл соединение или канал,
// следующий Publish/Consume заново выполняет Dial.
type RabbitMQClient struct {
	url       string
	queueName string

	mu      sync.Mutex // amqp.Channel нельзя использовать из нескольких горутин
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

func NewRabbitMQClient(url, queueName string) (*RabbitMQClient, error) {
	c := &RabbitMQClient{url: url, queueName: queueName}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// connect открывает соединение и канал публикации, вызывается под mu
func (c *RabbitMQClient) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareQueue(channel, c.queueName); err != nil {
		conn.Close()
		return err
	}

	c.conn = conn
	c.channel = channel
	return nil
}

// ensureConnected восстанавливает соединение или только канал, вызывается под mu
func (c *RabbitMQClient) ensureConnected() error {
	if c.closed {
		return ErrClientClosed
	}
	if c.conn == nil || c.conn.IsClosed() {
		return c.connect()
	}
	if c.channel == nil || c.channel.IsClosed() {
		channel, err := c.conn.Channel()
		if err != nil {
			return c.connect()
		}
		if err := declareQueue(channel, c.queueName); err != nil {
			channel.Close()
			return err
		}
		c.channel = channel
	}
	return nil
}

// Объявляем очередь для аудита
func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}

// QueueName возвращает имя очереди
func (c *RabbitMQClient) QueueName() string {
	return c.queueName
}

func (c *RabbitMQClient) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}
	publishing := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    message.ID,
		Timestamp:    message.Timestamp,
		Body:         body,
		DeliveryMode: amqp.Persistent, // Сообщения сохраняются на диск
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnected(); err != nil {
		return err
	}
	err = c.channel.PublishWithContext(ctx, "", c.queueName, false, false, publishing)
	if errors.Is(err, amqp.ErrClosed) {
		// канал закрылся между проверкой и отправкой, одна повторная попытка
		if err := c.ensureConnected(); err != nil {
			return err
		}
		err = c.channel.PublishWithContext(ctx, "", c.queueName, false, false, publishing)
	}
	if err != nil {
		return fmt.Errorf("publish audit message: %w", err)
	}
	return nil
}

// Consume открывает отдельный канал для consumer'а.
// Канал закрывается вызовом возвращенной функции.
func (c *RabbitMQClient) Consume(consumerTag string) (<-chan amqp.Delivery, func() error, error) {
	c.mu.Lock()
	if err := c.ensureConnected(); err != nil {
		c.mu.Unlock()
		return nil, nil, err
	}
	ch, err := c.conn.Channel()
	c.mu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("open consumer channel: %w", err)
	}

	if err := declareQueue(ch, c.queueName); err != nil {
		ch.Close()
		return nil, nil, err
	}
	if err := ch.Qos(10, 0, false); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("consume %s: %w", c.queueName, err)
	}
	return msgs, ch.Close, nil
}

func (c *RabbitMQClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
