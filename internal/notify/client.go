// Package notify carries the app's asynchronous events over RabbitMQ: record
// backup requests for the worker and user-facing goal/reminder notifications.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

type Client struct {
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	exchange    string
	backupQueue string
	eventQueue  string
}

func NewClient(url, exchange, backupQueue, eventQueue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:        conn,
		channel:     channel,
		exchange:    exchange,
		backupQueue: backupQueue,
		eventQueue:  eventQueue,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queues: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, queue := range []string{c.backupQueue, c.eventQueue} {
		_, err = c.channel.QueueDeclare(
			queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		// Routing key matches the queue name on the direct exchange.
		err = c.channel.QueueBind(queue, queue, c.exchange, false, nil)
		if err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// PublishRecordBackup enqueues a record for spreadsheet backup.
func (c *Client) PublishRecordBackup(ctx context.Context, id int64) error {
	msg := NewRecordBackupMessage(id)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal backup message: %w", err)
	}

	if err := c.publish(ctx, c.backupQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published record backup message",
		"id", id,
		"exchange", c.exchange,
		"queue", c.backupQueue)
	return nil
}

// PublishGoalAchieved announces the daily goal crossing.
func (c *Client) PublishGoalAchieved(ctx context.Context, date string, total, goal int64) error {
	msg := NewGoalAchievedMessage(date, total, goal)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal goal message: %w", err)
	}

	if err := c.publish(ctx, c.eventQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published goal achieved message",
		"date", date,
		"total_ml", total,
		"goal_ml", goal)
	return nil
}

// PublishReminder enqueues a drink reminder for the notification edge.
func (c *Client) PublishReminder(ctx context.Context, scheduledFor time.Time, intervalHours int) error {
	msg := NewReminderMessage(scheduledFor, intervalHours)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal reminder message: %w", err)
	}

	if err := c.publish(ctx, c.eventQueue, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published reminder message",
		"scheduled_for", scheduledFor,
		"interval_hours", intervalHours)
	return nil
}

// ConsumeBackups blocks consuming backup messages until ctx is cancelled or
// the broker channel closes. Failed handlers requeue the delivery; unreadable
// payloads are dropped.
func (c *Client) ConsumeBackups(ctx context.Context, handler func(*RecordBackupMessage) error) error {
	msgs, err := c.channel.Consume(
		c.backupQueue,
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming backup messages", "queue", c.backupQueue)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := RecordBackupMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle backup message",
					"error", err,
					"id", msg.ID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
			slog.InfoContext(ctx, "Backed up record", "id", msg.ID)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
